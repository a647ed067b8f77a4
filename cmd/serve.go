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

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/umlforge/umlforge/internal/config"
	"github.com/umlforge/umlforge/internal/services"
	"github.com/umlforge/umlforge/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the umlforge HTTP server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", config.GetServerAddr(), "listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	zerolog.SetGlobalLevel(logger.ZerologLevel())

	logger.Info(logger.APP, "Starting umlforge %s", version)

	svcs, err := services.InitializeServices(services.ConfigFromEnv())
	if err != nil {
		return fmt.Errorf("initializing services: %w", err)
	}
	defer func() {
		if err := svcs.Close(); err != nil {
			logger.Error(logger.APP, "Failed to close services: %v", err)
		}
	}()

	srv := &http.Server{
		Addr:              serveAddr,
		Handler:           setupRouter(svcs),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", serveAddr).Msg("Server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info(logger.APP, "Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
