package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/model"
)

func newAccountCommand() *cobra.Command {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Account operations",
	}
	accountCmd.AddCommand(newAccountAddCommand())
	return accountCmd
}

func newAccountAddCommand() *cobra.Command {
	var name, bank, accountType, initial string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a bank account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			typ, err := model.ParseAccountType(accountType)
			if err != nil {
				return err
			}
			amount, err := decimal.NewFromString(strings.TrimSpace(initial))
			if err != nil {
				return fmt.Errorf("invalid initial balance %q: %w", initial, err)
			}

			b, err := openBook(cmd)
			if err != nil {
				return err
			}
			defer b.Close()

			acct, err := b.ledger.AddAccount(b.context(cmd.Context()), model.Account{
				Name:           strings.TrimSpace(name),
				BankName:       strings.TrimSpace(bank),
				Type:           typ,
				InitialBalance: amount,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added account %d: %s (%s, %s) balance %s\n",
				acct.ID, acct.Name, acct.BankName, acct.Type, acct.CurrentBalance.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "account name (required)")
	cmd.Flags().StringVar(&bank, "bank", "", "bank name (required)")
	cmd.Flags().StringVar(&accountType, "type", string(model.AccountTypeCheckings), "account type: Checkings or Savings")
	cmd.Flags().StringVar(&initial, "initial-balance", "0", "opening balance")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("bank")

	return cmd
}

func newAccountsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := openBook(cmd)
			if err != nil {
				return err
			}
			defer b.Close()

			accts, err := b.ledger.FetchAccounts(b.context(cmd.Context()))
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tBANK\tTYPE\tINITIAL\tBALANCE")
			for _, a := range accts {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
					a.ID, a.Name, a.BankName, a.Type, a.InitialBalance.StringFixed(2), a.CurrentBalance.StringFixed(2))
			}
			return tw.Flush()
		},
	}
}

func newCategoriesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := openBook(cmd)
			if err != nil {
				return err
			}
			defer b.Close()

			cats, err := b.ledger.FetchCategories(b.context(cmd.Context()))
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCOLOR\tICON")
			for _, c := range cats {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", c.ID, c.Name, c.Color, c.Icon)
			}
			return tw.Flush()
		},
	}
}
