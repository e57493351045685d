package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/en9inerd/tagbot"
	"github.com/en9inerd/tagbot/internal/commands"
	"github.com/en9inerd/tagbot/internal/config"
	"github.com/en9inerd/tagbot/internal/keepalive"
	"github.com/en9inerd/tagbot/internal/runner"
	"github.com/en9inerd/tagbot/internal/sentryutil"
	"github.com/en9inerd/tagbot/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the bot with the keep-alive server",
		Run:   runBot,
	}

	cmd.Flags().StringP("port", "p", "", "Keep-alive HTTP port (default: $PORT or 5000)")

	RootCmd.AddCommand(cmd)
}

func runBot(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		exitErr("load config", err)
	}
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Port = port
	}
	if err := cfg.Validate(); err != nil {
		exitErr("config", err)
	}

	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	if err := sentryutil.Init(sentryutil.Options{
		DSN:         cfg.SentryDSN,
		Environment: cfg.SentryEnvironment,
		Release:     "tagbot@" + Version,
	}, logger); err != nil {
		logger.Warn("error reporting disabled", "error", err)
	}
	defer sentryutil.Flush()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		exitErr("open store", err)
	}
	defer st.Close()

	if err := serve(ctx, cfg, st, logger); err != nil {
		logger.Error("tagbot stopped", "error", err)
		sentryutil.CaptureError(err, map[string]string{"component": "main"})
		sentryutil.Flush()
		os.Exit(1)
	}
	logger.Info("tagbot stopped")
}

// serve runs the supervised bot next to the keep-alive server until ctx
// is cancelled or the bot gives up.
func serve(ctx context.Context, cfg *config.Config, st *store.SQLStore, logger *slog.Logger) error {
	settings := commands.Settings{
		OwnerID:           cfg.OwnerID,
		DefaultEmoji:      cfg.DefaultEmoji,
		TagBatchSize:      cfg.TagBatchSize,
		SendInterval:      cfg.SendInterval,
		BroadcastInterval: cfg.BroadcastInterval,
	}

	var current atomic.Pointer[tagbot.Bot]
	botActive := func() bool {
		b := current.Load()
		return b != nil && b.Running()
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		addr := net.JoinHostPort("", cfg.Port)
		return keepalive.Serve(ctx, addr, keepalive.NewRouter(botActive, logger), logger)
	})

	g.Go(func() error {
		return runner.Run(ctx, runner.Options{
			MaxRestarts:  cfg.MaxRestarts,
			RestartDelay: cfg.RestartDelay,
			Logger:       logger,
		}, func(ctx context.Context) error {
			bot, err := tagbot.New(tagbot.Config{
				APIID:          cfg.APIID,
				APIHash:        cfg.APIHash,
				BotToken:       cfg.BotToken,
				SessionDir:     cfg.SessionDir,
				SessionStorage: st.SessionStorage("bot"),
				Logger:         logger,
				AppVersion:     Version,
				SyncCommands:   cfg.SyncCommands,
				Verbose:        cfg.Verbose,
				BotInfo: &tagbot.BotInfo{
					About:       "Tags group members, tracks AFK status and broadcasts announcements.",
					Description: "Add me to a group and send /tag to mention everyone. Send /help for all commands.",
				},
			})
			if err != nil {
				return err
			}

			h := commands.New(st, bot, settings, logger)
			if err := h.SeedOwner(ctx); err != nil {
				return fmt.Errorf("record configured owner: %w", err)
			}
			h.Register(bot)
			bot.OnReady(func(ctx context.Context) {
				logger.Info("tagbot ready", "self_id", bot.SelfID(), "version", Version)
			})

			current.Store(bot)
			return bot.Run(ctx)
		})
	})

	return g.Wait()
}
