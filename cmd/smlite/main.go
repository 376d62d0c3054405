// Package main contains the cli implementation of the tool. It uses cobra
// package for cli tool implementation.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"smlite/internal/adapter"
	"smlite/internal/config"
	"smlite/internal/output"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// app carries the state shared by all commands.
type app struct {
	v       *viper.Viper
	cfgFile string
	format  string
	stdout  io.Writer
	stderr  io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{v: config.New(), stdout: stdout, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:          "smlite",
		Short:        "SQLite storage adapter: schema migrations, queries and sequences",
		SilenceUsage: true,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is ./smlite.toml)")
	flags.String("database", config.DefaultDatabasePath, "path to the SQLite database file")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text or json)")
	flags.StringVarP(&a.format, "format", "f", "sql", "output format (sql, json or summary)")

	_ = a.v.BindPFlag(config.KeyDatabasePath, flags.Lookup("database"))
	_ = a.v.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))
	_ = a.v.BindPFlag(config.KeyLogFormat, flags.Lookup("log-format"))

	rootCmd.AddCommand(
		a.migrateCmd(),
		a.execCmd(),
		a.nextValueCmd(),
		a.columnsCmd(),
		a.versionCmd(),
		a.viewCmd(),
	)
	return rootCmd
}

// open loads the configuration and opens an adapter on the configured
// database. The caller closes it.
func (a *app) open(opts ...adapter.Option) (*adapter.Adapter, error) {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return nil, err
	}
	logger, err := cfg.Logger(a.stderr)
	if err != nil {
		return nil, err
	}
	return adapter.Open(cfg.Database.Path, append([]adapter.Option{adapter.WithLogger(logger)}, opts...)...)
}

func (a *app) formatter() (output.Formatter, error) {
	return output.NewFormatter(a.format)
}

func (a *app) print(s string) error {
	_, err := io.WriteString(a.stdout, s)
	return err
}

func (a *app) printf(format string, args ...any) error {
	_, err := fmt.Fprintf(a.stdout, format, args...)
	return err
}
