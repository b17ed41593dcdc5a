package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/stridiv/postbot/internal/config"
	"github.com/stridiv/postbot/internal/domain"
	"github.com/stridiv/postbot/internal/draft"
	"github.com/stridiv/postbot/internal/logging"
	"github.com/stridiv/postbot/internal/publish"
	"github.com/stridiv/postbot/internal/store"
	"github.com/stridiv/postbot/internal/telegram"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}

			// The config's log level applies unless the flag set one.
			if logLevel == "" && cfg.Logging.Level != "" {
				log = logging.New(nil, cfg.Logging.Level)
			}

			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				for _, issue := range issues {
					log.Error().Str("path", issue.Path).Msg(issue.Message)
				}
				return fmt.Errorf("config validation failed with %d issue(s)", len(issues))
			}

			if err := paths.EnsureDirs(); err != nil {
				return fmt.Errorf("creating data directories: %w", err)
			}

			// Publish-history log (SQLite), optional.
			var history publish.History
			if cfg.History.Enabled {
				dbPath := cfg.History.Path
				if dbPath == "" {
					dbPath = filepath.Join(paths.Data, "postbot.db")
				}
				db, err := store.Open(dbPath, log)
				if err != nil {
					return fmt.Errorf("opening history database: %w", err)
				}
				defer db.Close()
				history = store.NewPostLog(db)
				log.Info().Str("path", dbPath).Msg("publish history enabled")
			} else {
				log.Info().Msg("publish history disabled")
			}

			channel := telegram.New(cfg.Bot, log)

			pub := publish.New(publish.Config{
				Channel:      domain.ChatRefFrom(cfg.Channel),
				Autosign:     cfg.Format.Autosign,
				AutoTitle:    cfg.Format.AutoTitle,
				SubscribeURL: cfg.Links.Subscribe,
				SuggestURL:   cfg.Links.Suggest,
				AlbumWindow:  cfg.AlbumWindow(),
			}, channel, draft.NewStore(), publish.NewAllowSet(cfg.Admins), history, log)

			// Block until SIGINT/SIGTERM
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			channel.Bind(pub)
			channel.OnPost(func(post domain.InboundPost) {
				pub.HandlePost(ctx, post)
			})
			channel.OnCallback(func(press domain.CallbackPress) {
				pub.HandleCallback(ctx, press)
			})

			log.Info().
				Str("channel", cfg.Channel).
				Int("admins", len(cfg.Admins)).
				Dur("albumWindow", cfg.AlbumWindow()).
				Msg("starting postbot")

			if err := channel.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			log.Info().Msg("shut down")
			return nil
		},
	}

	return cmd
}
