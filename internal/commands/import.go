package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/balance"
	"github.com/tally-dev/tally/internal/catalog"
	"github.com/tally-dev/tally/internal/gitops"
	"github.com/tally-dev/tally/internal/importer"
	"github.com/tally-dev/tally/internal/importlog"
	"github.com/tally-dev/tally/internal/logger"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/pipeline"
)

type importOptions struct {
	bank      string
	accountID int
	category  string
	dryRun    bool
}

func newImportCommand() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import [file...]",
		Short: "Import bank statements into an account",
		Long: "Import bank statements into an account. With no files, every statement in\n" +
			"the book's import/ directory is imported.",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBook(cmd)
			if err != nil {
				return err
			}
			defer b.Close()
			return runImport(b.context(cmd.Context()), cmd.OutOrStdout(), b, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.bank, "bank", "", "bank that produced the statements (default from tally.yaml)")
	cmd.Flags().IntVar(&opts.accountID, "account", 0, "account id to import into (required)")
	cmd.Flags().StringVar(&opts.category, "category", "", "category id or name for rows without one")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "normalize and report without saving")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}

// statement is one file queued for import.
type statement struct {
	path    string
	scanned bool
}

func runImport(ctx context.Context, out io.Writer, b *book, files []string, opts importOptions) error {
	bank := opts.bank
	if bank == "" {
		bank = b.cfg.Import.DefaultBank
	}
	if bank == "" {
		return errors.New("no bank given: pass --bank or set import.default_bank")
	}

	var queue []statement
	for _, f := range files {
		queue = append(queue, statement{path: f})
	}
	if len(files) == 0 {
		scanned, err := importer.Scan(b.root)
		if err != nil {
			return err
		}
		for _, f := range scanned {
			queue = append(queue, statement{path: f.Path, scanned: true})
		}
	}
	if len(queue) == 0 {
		fmt.Fprintln(out, "No statements to import.")
		return nil
	}

	svc := pipeline.NewService(
		importer.DefaultRegistry(),
		pipeline.New(catalog.NewCache(b.ledger)),
		b.ledger,
		balance.NewReconciler(b.ledger),
	)

	log := logger.FromContext(ctx)
	committed := 0
	for _, st := range queue {
		res, err := svc.Import(ctx, pipeline.Request{
			FilePath:        st.path,
			BankName:        bank,
			AccountID:       opts.accountID,
			DefaultCategory: categoryRef(opts.category),
			DryRun:          opts.dryRun,
		})
		if res == nil {
			return fmt.Errorf("importing %s: %w", filepath.Base(st.path), err)
		}
		printResult(out, res, err == nil)
		if res.DryRun {
			continue
		}

		// Stored transactions are recorded even if the balance update failed.
		committed += len(res.Committed)
		if rerr := recordBatch(b, st, res); rerr != nil {
			return errors.Join(err, rerr)
		}
		if err != nil {
			fmt.Fprintf(out, "  warning: batch %s is saved but the balance was not updated; run tally reconcile --account %d --fix\n",
				res.ID, opts.accountID)
			return fmt.Errorf("importing %s: %w", filepath.Base(st.path), err)
		}
	}

	if opts.dryRun || committed == 0 || !b.cfg.Git.AutoCommit || !gitops.IsRepo(b.root) {
		return nil
	}
	msg := fmt.Sprintf("import: %d transactions from %s into account %d", committed, bank, opts.accountID)
	hash, err := gitops.Commit(ctx, b.root, msg, gitops.Author{Name: b.cfg.Git.AuthorName, Email: b.cfg.Git.AuthorEmail})
	if errors.Is(err, gitops.ErrNothingToCommit) {
		return nil
	}
	if err != nil {
		return err
	}
	log.Info().Str("commit", hash).Msg("committed book")
	return nil
}

// recordBatch appends res to the import log and moves a scanned statement
// out of import/.
func recordBatch(b *book, st statement, res *pipeline.Result) error {
	if err := importlog.Append(b.root, []importlog.Entry{importlog.FromResult(res, time.Now())}); err != nil {
		return err
	}
	if st.scanned && b.cfg.Import.MoveProcessed {
		if err := importer.MarkProcessed(b.root, filepath.Base(st.path)); err != nil {
			return err
		}
	}
	return nil
}

// categoryRef reads a --category value: a number is an id, anything else a name.
func categoryRef(s string) model.CategoryRef {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.NoCategory()
	}
	if id, err := strconv.Atoi(s); err == nil {
		return model.CategoryByID(id)
	}
	return model.CategoryByName(s)
}

func printResult(out io.Writer, res *pipeline.Result, reconciled bool) {
	verb := "imported"
	if res.DryRun {
		verb = "would import"
	}
	fmt.Fprintf(out, "%s: %s %d of %d rows, net %s (batch %s)\n",
		filepath.Base(res.File), verb, res.Imported(), res.Rows, res.Net.StringFixed(2), res.ID)
	for _, re := range res.RowErrors {
		fmt.Fprintf(out, "  %s\n", re.Error())
	}
	if !res.DryRun && reconciled {
		fmt.Fprintf(out, "  balance %s\n", res.Balance.StringFixed(2))
	}
}
