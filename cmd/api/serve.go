package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	httpadp "contentops-workflow/internal/adapter/http"
	mw "contentops-workflow/internal/adapter/middleware"
	"contentops-workflow/internal/infrastructure/cache"
	"contentops-workflow/internal/logging"
	"contentops-workflow/internal/usecase/approval"
	"contentops-workflow/internal/usecase/distribution"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(ctx *commandContext) *cobra.Command {
	var noWorker bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API with an in-process outbox worker",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.load()
			if err != nil {
				return err
			}
			a, err := openApp(cfg)
			if err != nil {
				return err
			}
			defer a.close()

			log := logging.Component("api")
			routes := httpadp.Routes{
				Health:        httpadp.NewHandler(),
				Approvals:     httpadp.NewApprovalHandler(approval.NewUsecase(a.tx, a.dispatcher, cfg.AppBaseURL)),
				Notifications: httpadp.NewNotificationHandler(a.dispatcher),
				Distribution:  httpadp.NewDistributionHandler(distribution.NewUsecase(a.tx)),
				Tenant:        mw.Tenant(a.tx),
			}
			if cfg.RedisAddr != "" {
				rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
				if err != nil {
					return err
				}
				defer rdb.Close()
				routes.Idempotency = mw.Idempotency(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second)
			} else {
				log.Warn().Msg("REDIS_ADDR empty; idempotency disabled")
			}

			e := echo.New()
			e.HideBanner = true
			e.HidePort = true
			e.Use(middleware.RequestID(), middleware.Recover())
			e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
				LogURI:       true,
				LogStatus:    true,
				LogMethod:    true,
				LogLatency:   true,
				LogRequestID: true,
				LogError:     true,
				LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
					ev := log.Info()
					if v.Status >= http.StatusInternalServerError {
						ev = log.Error().Err(v.Error)
					}
					ev.Str("method", v.Method).Str("uri", v.URI).Int("status", v.Status).
						Dur("latency", v.Latency).Str("request_id", v.RequestID).Msg("request")
					return nil
				},
			}))
			httpadp.Register(e, routes)

			g, gctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				addr := ":" + cfg.AppPort
				log.Info().Str("addr", addr).Msg("listening")
				if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return e.Shutdown(sctx)
			})
			if !noWorker {
				g.Go(func() error { return a.worker().Run(gctx) })
			}
			return g.Wait()
		},
	}
	cmd.Flags().BoolVar(&noWorker, "no-worker", false, "Do not run the outbox worker in this process")
	return cmd
}
