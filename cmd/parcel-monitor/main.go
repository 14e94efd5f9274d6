package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ignite/parcel-monitor/internal/bot"
	"github.com/ignite/parcel-monitor/internal/config"
	"github.com/ignite/parcel-monitor/internal/notify"
	"github.com/ignite/parcel-monitor/internal/state"
	"github.com/ignite/parcel-monitor/internal/tracker"
	"github.com/ignite/parcel-monitor/internal/ups"
	"github.com/ignite/parcel-monitor/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "parcel-monitor",
		Short:         "Watches UPS shipments and pushes status-change notifications",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the YAML config file (env vars override)")
	root.AddCommand(newOnceCmd(&configPath), newBotCmd(&configPath))
	return root
}

// newOnceCmd runs a single poll pass and exits: the batch mode intended
// for invocation by an external periodic trigger.
func newOnceCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Run a single poll pass over all tracked shipments and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, err := buildApp(*configPath)
			if err != nil {
				return err
			}
			defer app.close()

			report, err := app.runner.RunPass(ctx)
			if err != nil {
				return err
			}
			app.log.Info().
				Int("shipments", len(report.Results)).
				Int("notified", report.NotifiedCount()).
				Msg("pass complete")
			return nil
		},
	}
}

// newBotCmd starts the interactive loop: one pass at startup, then
// long-polling for /track commands and refresh button presses until the
// process is stopped.
func newBotCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the interactive Telegram command loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, err := buildApp(*configPath)
			if err != nil {
				return err
			}
			defer app.close()

			if app.telegram == nil {
				return fmt.Errorf("interactive mode requires the telegram transport")
			}

			loop := bot.New(app.telegram, app.runner, app.sender, app.cfg.Telegram.Idle(), app.log)
			app.log.Info().Msg("command loop started")
			return loop.Run(ctx)
		},
	}
}

// app bundles the wired-up collaborators for one invocation.
type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	runner   *tracker.Runner
	sender   notify.Sender
	telegram *notify.Telegram
	rdb      *redis.Client
}

func buildApp(configPath string) (*app, error) {
	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logger.New(logger.Options{
		Level:  cfg.Logging.Level,
		Pretty: cfg.Logging.Pretty,
	})

	a := &app{cfg: cfg, log: log}

	var store state.Store
	switch cfg.State.Type {
	case "redis":
		a.rdb = redis.NewClient(&redis.Options{Addr: cfg.State.RedisAddr})
		store = state.NewRedisStore(a.rdb, cfg.State.RedisKey)
	default:
		store = state.NewFileStore(cfg.State.FilePath)
	}

	switch cfg.Notify.Transport {
	case "sms":
		a.sender = notify.NewSMS(notify.SMSConfig{
			AccountSID: cfg.SMS.AccountSID,
			AuthToken:  cfg.SMS.AuthToken,
			From:       cfg.SMS.From,
			To:         cfg.SMS.To,
			BaseURL:    cfg.SMS.BaseURL,
		})
	default:
		a.telegram = notify.NewTelegram(notify.TelegramConfig{
			BotToken:    cfg.Telegram.BotToken,
			ChatID:      cfg.Telegram.ChatID,
			BaseURL:     cfg.Telegram.BaseURL,
			PollTimeout: cfg.Telegram.PollTimeout(),
		})
		a.sender = a.telegram
	}

	upsClient := ups.NewClient(ups.Config{
		ClientID:     cfg.UPS.ClientID,
		ClientSecret: cfg.UPS.ClientSecret,
		AuthURL:      cfg.UPS.AuthURL,
		TrackURL:     cfg.UPS.TrackURL,
		Timeout:      cfg.UPS.Timeout(),
	})

	a.runner = tracker.NewRunner(cfg.Shipments, upsClient, store, a.sender, nil, log)
	return a, nil
}

func (a *app) close() {
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
}
