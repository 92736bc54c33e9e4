package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/anonto42/component-feed/backend/internal/middleware"
	"github.com/anonto42/component-feed/backend/pkg/config"
)

// NewTokenCommand creates the token command, which signs a viewer token for
// AUTH_PROVIDER=jwt deployments
func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	var ttl time.Duration
	var name string
	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Sign an HS256 viewer token with JWT_SECRET",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := rootOpts.env(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			if env.Config.AuthProvider != config.AuthJWT || env.Config.JWTSecret == "" {
				return errors.New("token needs AUTH_PROVIDER=jwt and JWT_SECRET")
			}
			token, err := middleware.NewJWTVerifier(env.Config.JWTSecret).Sign(args[0], name, ttl)
			if err != nil {
				return err
			}
			return rootOpts.emit(cmd.OutOrStdout(), map[string]string{"user_id": args[0], "token": token}, func(w io.Writer) {
				fmt.Fprintln(w, token)
			})
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	cmd.Flags().StringVar(&name, "name", "", "display name claim")
	return cmd
}
