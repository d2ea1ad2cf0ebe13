package cli

import (
	"context"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"

	handlers "despesas/internal/http/handler"
	"despesas/internal/http/middleware"
	"despesas/internal/service"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(root *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the operational HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := root.cfg
			if addr != "" {
				cfg.Ops.Addr = addr
			}

			a, err := newApp(ctx, cfg, root.log)
			if err != nil {
				return err
			}
			defer a.Close(context.WithoutCancel(ctx))

			ops := service.NewOperations(cfg.Upstream.MunicipalityID, a.repo, a.reconciler, a.guard)
			app, err := newServer(a, ops)
			if err != nil {
				return err
			}

			go func() {
				<-ctx.Done()
				sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
				defer cancel()
				if err := app.ShutdownWithContext(sctx); err != nil {
					a.log.Error().Err(err).Msg("server shutdown")
				}
			}()

			a.log.Info().Str("addr", cfg.Ops.Addr).Msg("ops api listening")
			return app.Listen(cfg.Ops.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default OPS_ADDR)")
	return cmd
}

func newServer(a *app, ops service.Operations) (*fiber.App, error) {
	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		DisableStartupMessage: true,
	})

	prom, err := middleware.NewPrometheusMiddleware(a.registry)
	if err != nil {
		return nil, err
	}

	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(a.log))
	app.Use(prom.Handler())
	app.Use(otelfiber.Middleware())

	handlers.RegisterRoutes(app, ops, a.registry)
	return app, nil
}
