package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewMigrateCommand creates the migrate command
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create tables, collections and unique indexes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := rootOpts.env(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			if err := env.Backend.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			backend := env.Config.StoreBackend
			return rootOpts.emit(cmd.OutOrStdout(), map[string]string{"backend": backend, "status": "migrated"}, func(w io.Writer) {
				fmt.Fprintf(w, "migrated %s store\n", backend)
			})
		},
	}
}
