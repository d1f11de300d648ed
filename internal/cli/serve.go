package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"travelapproval/internal/database"
	"travelapproval/internal/injector"
	"travelapproval/internal/logger"
	"travelapproval/internal/telemetry"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var migrateOnServe bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and websocket hub",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.Get()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		shutdownTracing := telemetry.Setup(serviceName, cfg.OTLPEndpoint, cfg.OTLPInsecure)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracing(shutdownCtx); err != nil {
				log.WithError(err).Warn("tracer shutdown failed")
			}
		}()

		app, err := injector.InitializeApplication(cfg)
		if err != nil {
			return err
		}
		log.Info("connected to PostgreSQL")

		if migrateOnServe {
			if err := database.Migrate(app.DB); err != nil {
				return err
			}
		}

		go app.Hub.Run(ctx)

		srv := &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           otelhttp.NewHandler(app.Router, serviceName),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.WithField("port", cfg.Port).Info("server listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&migrateOnServe, "migrate", false, "run database migrations before serving")
	rootCmd.AddCommand(serveCmd)
}
