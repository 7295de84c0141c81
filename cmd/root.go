package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/simonvc/minibooks/internal/books"
	"github.com/simonvc/minibooks/internal/client"
	"github.com/simonvc/minibooks/internal/config"
	"github.com/simonvc/minibooks/internal/logger"
	"github.com/simonvc/minibooks/internal/store"
)

var (
	v       = config.New()
	cfg     *config.Config
	log     zerolog.Logger
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:           "minibooks",
	Short:         "Small-business double-entry bookkeeping",
	Long:          "A double-entry bookkeeping system for small businesses: sales, purchases, expenses and journal entries posted to a SQLite ledger, with approval workflows and financial statements.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgFile != "" {
			v.SetConfigFile(cfgFile)
		}
		var err error
		if cfg, err = config.Load(v); err != nil {
			return err
		}
		log = logger.New(cfg.Log, os.Stderr)
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default ./minibooks.yaml)")
	pf.String("server", "http://localhost:8888", "server URL")
	pf.String("db", "minibooks.db", "SQLite database path")
	pf.String("user", "admin", "user id to act as")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")

	for key, name := range map[string]string{
		"server.url": "server",
		"db.path":    "db",
		"user":       "user",
		"log.level":  "log-level",
	} {
		if err := v.BindPFlag(key, pf.Lookup(name)); err != nil {
			panic(err)
		}
	}
}

func Execute() error {
	return rootCmd.Execute()
}

func newClient() *client.Client {
	return client.New(cfg.Server.URL, cfg.User)
}

// openService opens the database directly, for commands that run the
// server in-process.
func openService() (*books.Service, *store.Store, error) {
	st, err := store.Open(cfg.DB.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return books.New(st, log, books.WithLowStockThreshold(cfg.Dashboard.LowStockThreshold)), st, nil
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
