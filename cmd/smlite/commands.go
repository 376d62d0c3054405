package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"smlite/internal/adapter"
	"smlite/internal/apply"
	"smlite/internal/engine"
	"smlite/internal/parser"
	"smlite/internal/query"
)

func (a *app) migrateCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "migrate <migration.toml>...",
		Short: "Reconcile tables with migration files",
		Long: `Migrate applies each migration file in order. A table is created when
it does not exist; otherwise missing columns are added. Versions already
recorded in the ledger are skipped, and changes that would need a full table
rewrite are refused without touching the table.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.formatter()
			if err != nil {
				return err
			}

			var opts []adapter.Option
			if dryRun {
				opts = append(opts, adapter.WithDryRun(a.stderr))
			}
			ad, err := a.open(opts...)
			if err != nil {
				return err
			}
			defer ad.Close()

			results := make([]*apply.Result, 0, len(args))
			var migrateErr error
			for _, path := range args {
				spec, err := parser.ParseFile(path)
				if err != nil {
					migrateErr = err
					break
				}
				res, err := ad.Migrate(cmd.Context(), spec)
				if res != nil {
					results = append(results, res)
				}
				if err != nil {
					migrateErr = fmt.Errorf("migrate %s: %w", path, err)
					break
				}
			}

			out, err := f.FormatMigrations(results)
			if err != nil {
				return err
			}
			if err := a.print(out); err != nil {
				return err
			}
			return migrateErr
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Plan the migrations and print the report without executing anything")
	return cmd
}

func (a *app) execCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "exec [sql]",
		Short: "Execute SQL text or a script file",
		Long: `Exec runs one statement given as arguments, or every statement of a
script given with --file. Script statements run in a single transaction.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			stmts, err := a.statements(file, args)
			if err != nil {
				return err
			}
			f, err := a.formatter()
			if err != nil {
				return err
			}

			ad, err := a.open()
			if err != nil {
				return err
			}
			defer ad.Close()

			var results []*engine.Result
			err = ad.RunInTransaction(cmd.Context(), func(ctx context.Context) error {
				for _, stmt := range stmts {
					res, err := ad.Execute(ctx, stmt)
					if err != nil {
						return err
					}
					results = append(results, res)
				}
				return nil
			})
			if err != nil {
				return err
			}

			for _, res := range results {
				out, err := f.FormatRows(res)
				if err != nil {
					return err
				}
				if err := a.print(out); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "SQL script to execute")
	return cmd
}

func (a *app) statements(file string, args []string) ([]string, error) {
	switch {
	case file != "" && len(args) > 0:
		return nil, fmt.Errorf("exec: pass SQL either as arguments or with --file, not both")
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read script: %w", err)
		}
		stmts := engine.SplitStatements(string(data))
		if len(stmts) == 0 {
			return nil, fmt.Errorf("exec: %s contains no statements", file)
		}
		return stmts, nil
	case len(args) > 0:
		return []string{strings.Join(args, " ")}, nil
	default:
		return nil, fmt.Errorf("exec: no SQL given")
	}
}

func (a *app) nextValueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next-value <entity> <attribute>",
		Short: "Hand out the next value of an emulated sequence",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ad, err := a.open()
			if err != nil {
				return err
			}
			defer ad.Close()

			v, err := ad.NextValue(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return a.printf("%d\n", v)
		},
	}
}

func (a *app) columnsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "columns <table>",
		Short: "Show the physical columns of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.formatter()
			if err != nil {
				return err
			}
			ad, err := a.open()
			if err != nil {
				return err
			}
			defer ad.Close()

			cols, err := ad.TableColumns(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out, err := f.FormatColumns(args[0], cols)
			if err != nil {
				return err
			}
			return a.print(out)
		},
	}
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version <table>",
		Short: "Show the latest migration version recorded for a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ad, err := a.open()
			if err != nil {
				return err
			}
			defer ad.Close()

			v, err := ad.TableVersion(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printf("%s\n", v)
		},
	}
}

func (a *app) viewCmd() *cobra.Command {
	viewCmd := &cobra.Command{
		Use:   "view",
		Short: "Create or drop views",
	}

	createCmd := &cobra.Command{
		Use:   "create <name> <table> [field...]",
		Short: "Create (or replace) a view selecting fields of a table",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ad, err := a.open()
			if err != nil {
				return err
			}
			defer ad.Close()

			sel := query.From(args[1])
			if len(args) > 2 {
				sel = sel.Columns(args[2:]...)
			}
			if err := ad.CreateView(cmd.Context(), args[0], sel); err != nil {
				return err
			}
			return a.printf("view %s created\n", args[0])
		},
	}

	dropCmd := &cobra.Command{
		Use:   "drop <name>",
		Short: "Drop a view if it exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ad, err := a.open()
			if err != nil {
				return err
			}
			defer ad.Close()

			if err := ad.DropView(cmd.Context(), args[0]); err != nil {
				return err
			}
			return a.printf("view %s dropped\n", args[0])
		},
	}

	viewCmd.AddCommand(createCmd, dropCmd)
	return viewCmd
}
