package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shahzaib-autos/shahzaib-autos-api/config"
	"github.com/shahzaib-autos/shahzaib-autos-api/middleware"
	"github.com/shahzaib-autos/shahzaib-autos-api/routes"
	"github.com/shahzaib-autos/shahzaib-autos-api/services"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd() *cobra.Command {
	var migrate, sweep bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the stale-order scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.GetConfig()
			ctx := cmd.Context()
			logger := zap.L()

			logger.Info("Starting Shahzaib Autos API", zap.String("version", Version), zap.String("env", cfg.GoEnv))

			db, err := openDatabase(cfg, migrate)
			if err != nil {
				return err
			}
			defer closeDatabase(db)

			infra, err := startInfrastructure(ctx, cfg, db)
			if err != nil {
				return err
			}
			defer infra.close(ctx)

			if sweep {
				scheduler := &services.Scheduler{
					Orders:   func() *services.OrderService { return services.NewOrderService(config.GetDB(), config.GetConfig()) },
					Interval: cfg.SweepInterval,
				}
				go func() {
					if err := scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
						zap.L().Error("stale order scheduler stopped", zap.Error(err))
					}
				}()
			}

			if !cfg.IsDevelopment() {
				gin.SetMode(gin.ReleaseMode)
			}
			router := routes.SetupRouter(cfg, logger, middleware.NewAdminSessions(cfg), middleware.EnsureValidToken(cfg))

			return listen(ctx, ":"+cfg.Port, router)
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", true, "run database migrations on startup")
	cmd.Flags().BoolVar(&sweep, "sweep", true, "run the stale-order sweep every SWEEP_INTERVAL")
	return cmd
}

// listen serves until ctx is cancelled, then drains in-flight requests
func listen(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		zap.L().Info("Server is running", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	zap.L().Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
