package cmd

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/fulmenhq/gofulmen/signals"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/sudobility/ratelimit-client/internal/config"
	apperrors "github.com/sudobility/ratelimit-client/internal/errors"
	"github.com/sudobility/ratelimit-client/internal/observability"
	"github.com/sudobility/ratelimit-client/internal/server"
)

var (
	serverPort int
	serverHost string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a local rate limit service backed by fixture data",
	Long: `Start an HTTP server exposing the rate limit endpoints with
deterministic fixture data. Point the client at it with
--base-url http://localhost:8080 to try the CLI without a real service.

Signal Handling:
  • Ctrl+C (SIGINT) or SIGTERM: Graceful shutdown
  • Ctrl+C twice within 2s: Force quit
  • SIGHUP: Config file reload`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := loadConfig()
		if err != nil {
			return apperrors.WrapConfigInvalid(ctx, err, "failed to load configuration")
		}
		if err := cfg.ValidateServer(); err != nil {
			return apperrors.WrapConfigInvalid(ctx, err, "invalid server configuration")
		}

		observability.InitServerLogger(config.AppName, cfg.Logging.Level)
		logger := observability.ServerLogger

		logger.Info("Initializing server",
			zap.String("service", config.AppName),
			zap.String("version", versionInfo.Version),
			zap.String("host", cfg.Server.Host),
			zap.Int("port", cfg.Server.Port),
			zap.String("path_prefix", cfg.Server.PathPrefix),
			zap.Int("request_limit", cfg.Server.RequestLimit),
			zap.Duration("request_window", cfg.Server.RequestWindow))

		srv := server.New(cfg.Server.Host, cfg.Server.Port,
			server.WithPathPrefix(cfg.Server.PathPrefix),
			server.WithThrottle(cfg.Server.RequestLimit, cfg.Server.RequestWindow))

		// Shutdown handlers run LIFO: the HTTP server stops before the logger flushes.
		signals.OnShutdown(func(ctx context.Context) error {
			if err := logger.Sync(); err != nil {
				logger.Warn("Logger sync returned error (may be benign)", zap.Error(err))
			}
			return nil
		})

		signals.OnShutdown(func(ctx context.Context) error {
			logger.Info("Shutting down HTTP server...")
			shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				return apperrors.Wrap(ctx, apperrors.CodeInternal, err, "server shutdown failed")
			}
			logger.Info("HTTP server stopped gracefully")
			return nil
		})

		signals.OnReload(func(ctx context.Context) error {
			logger.Info("Received SIGHUP: attempting config reload")

			if err := viper.ReadInConfig(); err != nil {
				var notFound viper.ConfigFileNotFoundError
				if stderrors.As(err, &notFound) {
					logger.Info("No config file found - using defaults and environment variables")
					return nil
				}
				logger.Error("Failed to reload config file",
					zap.String("file", viper.ConfigFileUsed()),
					zap.Error(err))
				return apperrors.WrapConfigInvalid(ctx, err, "config reload failed")
			}

			// Host, port and prefix are fixed for the life of the listener.
			logger.Info("Configuration reloaded; listener settings apply on restart",
				zap.String("file", viper.ConfigFileUsed()))
			return nil
		})

		if err := signals.EnableDoubleTap(signals.DoubleTapConfig{
			Window:  2 * time.Second,
			Message: "Press Ctrl+C again within 2 seconds to force quit",
		}); err != nil {
			logger.Warn("Failed to enable double-tap force quit", zap.Error(err))
		}

		errChan := make(chan error, 1)
		go func() {
			if err := srv.Start(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

		go func() {
			if err := signals.Listen(ctx); err != nil {
				logger.Error("Signal handler error", zap.Error(err))
				errChan <- err
			}
		}()

		if err := <-errChan; err != nil {
			return apperrors.Wrap(ctx, apperrors.CodeInternal, err, "server error")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverHost, "host", "localhost", "server host")
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "server port")

	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}
