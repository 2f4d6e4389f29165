package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/catalog"
	"github.com/tally-dev/tally/internal/config"
	"github.com/tally-dev/tally/internal/gitops"
)

func newInitCommand() *cobra.Command {
	var storage string
	var useGit bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new book",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.Context(), cmd.OutOrStdout(), absDir, storage, useGit)
		},
	}

	cmd.Flags().StringVar(&storage, "storage", config.DriverCSV, "ledger storage: csv or sqlite")
	cmd.Flags().BoolVar(&useGit, "git", false, "track the book in git and commit after imports")

	return cmd
}

func runInit(ctx context.Context, out io.Writer, dir, storage string, useGit bool) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	}

	cfg := config.Default()
	cfg.Storage.Driver = storage
	if storage == config.DriverSQLite {
		cfg.Storage.Path = "tally.db"
	}
	cfg.Git.AutoCommit = useGit
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Create directory structure.
	for _, d := range []string{"logs", "import", filepath.Join("import", "processed")} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	ledger, err := openLedger(dir, cfg.Storage)
	if err != nil {
		return err
	}
	defer ledger.Close()
	if err := ledger.Init(ctx, catalog.DefaultCategories()); err != nil {
		return fmt.Errorf("creating ledger: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "import", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	if !useGit {
		fmt.Fprintf(out, "Initialized tally book at %s\n", dir)
		return nil
	}

	gitignore := ".env\nimport/*.csv\nimport/*.txt\n*.db-journal\n*.db-wal\n*.db-shm\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}
	if err := gitops.Init(ctx, dir); err != nil {
		return fmt.Errorf("git init: %w", err)
	}
	hash, err := gitops.Commit(ctx, dir, "init: tally book", gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail})
	if err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}

	fmt.Fprintf(out, "Initialized tally book at %s (%s)\n", dir, hash)
	return nil
}
