package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/anonto42/component-feed/backend/internal/repositories"
)

// ReconcileResult is one item's recounted counters
type ReconcileResult struct {
	ItemID string `json:"item_id"`
	Likes  int    `json:"likes_count"`
	Saves  int    `json:"saves_count"`
	Error  string `json:"error,omitempty"`
}

// NewReconcileCommand creates the reconcile command
func NewReconcileCommand(rootOpts *RootOptions) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "reconcile [item-id...]",
		Short: "Recount likes and saves from the engagement facts",
		Long: `Recount likes and saves from the engagement facts and overwrite the
item counters. Repairs skew left by interrupted or concurrent toggles.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) > 0) {
				return errors.New("give item ids or --all, not both")
			}
			ctx := cmd.Context()
			env, err := rootOpts.env(ctx)
			if err != nil {
				return err
			}
			defer env.Close()

			ids := args
			if all {
				items, err := env.Services.Items.ListItems(ctx, "", repositories.NewestFirst)
				if err != nil {
					return err
				}
				for _, it := range items {
					ids = append(ids, it.ID)
				}
			}

			results := make([]ReconcileResult, 0, len(ids))
			failed := 0
			for _, id := range ids {
				r := ReconcileResult{ItemID: id}
				r.Likes, r.Saves, err = env.Services.Ledger.Reconcile(ctx, id)
				if err != nil {
					r.Error = err.Error()
					failed++
				}
				results = append(results, r)
			}

			err = rootOpts.emit(cmd.OutOrStdout(), results, func(w io.Writer) {
				for _, r := range results {
					if r.Error != "" {
						fmt.Fprintf(w, "%s\terror: %s\n", r.ItemID, r.Error)
						continue
					}
					fmt.Fprintf(w, "%s\tlikes=%d\tsaves=%d\n", r.ItemID, r.Likes, r.Saves)
				}
				fmt.Fprintf(w, "reconciled %d item(s)\n", len(results)-failed)
			})
			if err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d item(s) failed", failed)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "reconcile every item")
	return cmd
}
