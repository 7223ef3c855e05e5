package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/escaper/internal/config"
	"github.com/vango-dev/escaper/internal/logging"
	"github.com/vango-dev/escaper/pkg/server"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		address    string
		watch      bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the escaping API over HTTP and WebSocket",
		Long: `Serve the escaping API over HTTP and WebSocket.

Configuration is read from --config, or from escaper.json / escaper.yaml in
the working directory when present, or defaults otherwise. With --watch the
URL scheme allow-list is reloaded whenever the file changes.

Examples:
  escaper serve
  escaper serve --config escaper.yaml --watch
  escaper serve --address 127.0.0.1:9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if address != "" {
				cfg.Server.Address = address
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := logging.FromConfig(cfg.Log, cmd.ErrOrStderr())
			srv, err := server.New(cfg, server.WithLogger(logger))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if watch {
				if cfg.Path() == "" {
					warn(cmd.ErrOrStderr(), "--watch ignored: no config file")
				} else {
					w, err := config.NewWatcher(cfg.Path(), config.DefaultDebounce, logger)
					if err != nil {
						return err
					}
					w.OnChange(func(next *config.Config) {
						if err := srv.Reload(next); err != nil {
							logger.Warn("config reload rejected", "error", err)
						}
					})
					go func() { _ = w.Start(ctx) }()
					defer w.Stop()
					info(cmd.ErrOrStderr(), "Watching %s", cfg.Path())
				}
			}

			success(cmd.ErrOrStderr(), "Serving on %s", cfg.Server.Address)
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Config file (escaper.json or escaper.yaml)")
	cmd.Flags().StringVar(&address, "address", "", "Listen address (overrides the config)")
	cmd.Flags().BoolVar(&watch, "watch", false, "Reload the scheme allow-list when the config file changes")

	return cmd
}

// loadConfig reads path, or the config in the working directory, or the
// defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	if config.Exists(".") {
		return config.Load(".")
	}
	return config.New(), nil
}
