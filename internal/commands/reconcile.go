package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/balance"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/pipeline"
)

func newReconcileCommand() *cobra.Command {
	var accountID int
	var fix bool

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Check stored balances against transaction history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := openBook(cmd)
			if err != nil {
				return err
			}
			defer b.Close()
			ctx := b.context(cmd.Context())

			accts, err := b.ledger.FetchAccounts(ctx)
			if err != nil {
				return err
			}
			if accountID != 0 {
				accts = filterAccount(accts, accountID)
				if len(accts) == 0 {
					return fmt.Errorf("%w: %d", pipeline.ErrAccountNotFound, accountID)
				}
			}

			reconciler := balance.NewReconciler(b.ledger)
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tSTORED\tCOMPUTED\tSTATUS")

			drifted := 0
			for _, a := range accts {
				txns, err := b.ledger.Transactions(ctx, a.ID)
				if err != nil {
					return err
				}
				d := balance.Audit(a, txns)

				status := "ok"
				if !d.Balanced() {
					drifted++
					status = "drift " + d.Diff().StringFixed(2)
					if fix {
						if err := reconciler.Set(ctx, a.ID, d.Computed); err != nil {
							return err
						}
						status += " (fixed)"
					}
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
					a.ID, a.Name, d.Stored.StringFixed(2), d.Computed.StringFixed(2), status)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			if drifted > 0 && !fix {
				return fmt.Errorf("%d account(s) out of balance (rerun with --fix to repair)", drifted)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&accountID, "account", 0, "only check this account")
	cmd.Flags().BoolVar(&fix, "fix", false, "store the recomputed balance for drifted accounts")

	return cmd
}

func filterAccount(accts []model.Account, id int) []model.Account {
	for _, a := range accts {
		if a.ID == id {
			return []model.Account{a}
		}
	}
	return nil
}
