package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/loan-planner/internal/server"
	"github.com/iwvelando/loan-planner/pkg/constants"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var (
	serverConfigFile string
	serverAddress    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP calculation API",
	Long: `Serve starts the HTTP API:

  POST /api/calculate  schedules as JSON
  POST /api/report     schedules as a PDF report
  GET  /api/version    version information
  GET  /metrics        Prometheus metrics`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serverConfigFile, "config", constants.DefaultServerConfigFile, "path to server configuration file")
	serveCmd.Flags().StringVar(&serverAddress, "address", "", "listen address override")
	rootCmd.AddCommand(serveCmd)
}

func runServe() error {
	cfg, err := server.LoadConfig(serverConfigFile)
	if err != nil {
		return fmt.Errorf("failed to load server configuration at %s: %w", serverConfigFile, err)
	}
	if serverAddress != "" {
		cfg.Address = serverAddress
	}

	logger, err := initializeLogger(cfg.Logging, logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           server.NewHandler(logger, cfg.UploadSizeBytes(), cfg.UnitScale, Version),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("listening on %s", cfg.Address),
			zap.String("op", "cmd.serve"),
			zap.Int64("max_upload_size", cfg.UploadSizeBytes()),
			zap.Int64("unit_scale", cfg.UnitScale),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed",
				zap.String("op", "cmd.serve"),
				zap.Error(err),
			)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received, stopping server",
		zap.String("op", "cmd.serve"),
	)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
