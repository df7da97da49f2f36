// Command cvforge runs the resume editor gateway and offers management
// commands over the storage backends.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cvforge/cvforge/internal/config"
	"github.com/cvforge/cvforge/internal/core/events/bus"
	"github.com/cvforge/cvforge/internal/core/observability/log"
	"github.com/cvforge/cvforge/internal/core/storage"
	"github.com/cvforge/cvforge/internal/core/store"
	"github.com/cvforge/cvforge/internal/server"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "cvforge",
		Short:         "Resume editor gateway and storage tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML or JSON config file")

	root.AddCommand(serveCmd(), listCmd(), deleteCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.LoadFile(configPath)
}

// openBackend builds the selector over the durable file store and, when
// configured, the sqlite engine.
func openBackend(ctx context.Context, cfg config.Config, logger log.Log) (storage.Backend, func(), error) {
	fallback, err := storage.NewFileBackend(cfg.StorageRoot, logger)
	if err != nil {
		return nil, nil, err
	}
	if cfg.SQLitePath == "" {
		return fallback, func() {}, nil
	}
	engine, err := storage.OpenSQLite(ctx, cfg.SQLitePath, logger)
	if err != nil {
		// The engine is optional; the durable fallback keeps serving.
		logger.Warn("sqlite engine unavailable, using file backend", log.Error(err))
		return fallback, func() {}, nil
	}
	return storage.NewSelector(engine, fallback), func() { _ = engine.Close() }, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the editor gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := log.New(log.ParseLevel(cfg.LogLevel))

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			backend, closeBackend, err := openBackend(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer closeBackend()

			st := store.New(backend, bus.New(), store.Config{
				AutosaveDelay: cfg.AutosaveDelay(),
				Logger:        logger,
			})
			defer st.Close()

			srvCfg := server.DefaultConfig()
			srvCfg.ListenAddr = cfg.Listen
			srv, err := server.New(st, backend, srvCfg, logger)
			if err != nil {
				return err
			}

			stopCh := make(chan os.Signal, 1)
			signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM)

			if err := srv.Start(ctx); err != nil {
				return err
			}

			<-stopCh
			cancel()
			return srv.Stop()
		},
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored resume IDs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := log.New(log.ParseLevel(cfg.LogLevel))
			backend, closeBackend, err := openBackend(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer closeBackend()

			ids, err := backend.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Println(id)
			}
			return nil
		},
	}
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored resume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := log.New(log.ParseLevel(cfg.LogLevel))
			backend, closeBackend, err := openBackend(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer closeBackend()

			return backend.Delete(cmd.Context(), args[0])
		},
	}
}
