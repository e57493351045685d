// Package cli implements the tagbot commands.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/en9inerd/tagbot/internal/config"
	"github.com/en9inerd/tagbot/internal/store"
)

// Version is set at build time.
var Version = "dev"

var (
	envFile string
	dbURL   string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "tagbot",
	Short: "Telegram group tagging bot",
	Long:  "A Telegram bot that tags group members, tracks AFK status, manages admins and broadcasts announcements.",
}

func init() {
	RootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to a .env file (ignored when missing)")
	RootCmd.PersistentFlags().StringVarP(&dbURL, "db", "d", "", "Database path or PostgreSQL URL (default: $DATABASE_URL or bot_data.db)")
	RootCmd.Version = Version
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	if dbURL != "" {
		cfg.DatabaseURL = dbURL
	}
	return cfg, nil
}

func openStore(ctx context.Context) (*store.SQLStore, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return store.Open(ctx, cfg.DatabaseURL)
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
