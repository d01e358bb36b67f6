package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/glebarez/sqlite"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Aditi-179/Docify/config"
	"github.com/Aditi-179/Docify/generate"
	"github.com/Aditi-179/Docify/server"
	"github.com/Aditi-179/Docify/store"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := cobra.Command{
		Use:           "docify",
		Short:         "Generate and edit structured documents.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "docify.yaml", "Path to the YAML config file.")

	cmd.AddCommand(serveCmd(&configPath))
	cmd.AddCommand(generateCmd(&configPath))
	return &cmd
}

func serveCmd(configPath *string) *cobra.Command {
	var addr string

	cmd := cobra.Command{
		Use:   "serve",
		Short: "Start the editor WebSocket and HTTP server.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			logger, err := cfg.Logger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			st, closeStore, err := openStore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			gen, err := newGenerator(ctx, cfg, logger)
			if err != nil {
				return err
			}

			hub := server.NewHub(st, gen, logger)
			go hub.Run()
			defer hub.Close()

			srv := &http.Server{Addr: cfg.Server.Addr, Handler: server.NewHandler(hub)}
			errc := make(chan error, 1)
			go func() { errc <- srv.ListenAndServe() }()
			logger.Info("starting server", zap.String("addr", cfg.Server.Addr),
				zap.String("store", cfg.Store.Backend), zap.String("generator", cfg.Generator.Provider))

			select {
			case err := <-errc:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address, overrides the config.")
	return &cmd
}

// openStore opens the configured document store. Remote backends are
// wrapped in a write-behind cache.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.DocumentStore, func(), error) {
	switch cfg.Store.Backend {
	case config.StoreSQLite:
		db, err := gorm.Open(sqlite.Open(cfg.Store.SQLitePath), &gorm.Config{})
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		st, err := store.NewSQLStore(db)
		if err != nil {
			return nil, nil, err
		}
		closeDB := func() {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		}
		return st, closeDB, nil
	case config.StoreFirestore:
		client, err := firestore.NewClient(ctx, cfg.Store.FirestoreProject)
		if err != nil {
			return nil, nil, fmt.Errorf("firestore client: %w", err)
		}
		cs := store.NewCachedStore(store.NewFirestoreStore(client), cfg.Store.FlushInterval, logger)
		return cs, func() {
			cs.Close()
			client.Close()
		}, nil
	default:
		return store.NewMemoryStore(), func() {}, nil
	}
}

func newGenerator(ctx context.Context, cfg *config.Config, logger *zap.Logger) (generate.Generator, error) {
	if cfg.Generator.Provider == config.ProviderGemini {
		return generate.NewGemini(ctx, cfg.Generator.APIKey, cfg.Generator.Model, logger)
	}
	return &generate.Mock{Delay: cfg.Generator.Delay, Jitter: cfg.Generator.Delay / 2}, nil
}
