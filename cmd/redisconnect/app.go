package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/hookdeck/redisconnect/internal/config"
	"github.com/hookdeck/redisconnect/internal/healthserver"
	"github.com/hookdeck/redisconnect/internal/logging"
	"github.com/hookdeck/redisconnect/internal/resolver"
	"github.com/hookdeck/redisconnect/internal/secrets"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

var errFailedToConnect = errors.New("Failed to connect, terminating")

type App struct {
	config   *config.Config
	logger   *logging.Logger
	resolver *resolver.Resolver
}

func newApp(ctx context.Context, c *cli.Command) (*App, error) {
	cfg, err := NewConfigLoader().LoadConfig(c)
	if err != nil {
		return nil, err
	}

	logger, err := logging.NewLogger(
		logging.WithLogLevel(cfg.LogLevel),
		logging.WithLogFormat(c.String("log-format")),
	)
	if err != nil {
		return nil, err
	}
	logger.Debug("configuration loaded", cfg.LogConfigurationSummary()...)

	provider, err := secrets.New(ctx, cfg.SecretsProviderConfig())
	if err != nil {
		logger.Error("failed to initialize secret provider", zap.Error(err))
		return nil, err
	}

	return &App{
		config:   cfg,
		logger:   logger,
		resolver: resolver.New(cfg.ToEnvironment(), provider, logger),
	}, nil
}

func withApp(ctx context.Context, c *cli.Command, fn func(app *App) error) error {
	app, err := newApp(ctx, c)
	if err != nil {
		return err
	}
	defer app.logger.Sync()
	return fn(app)
}

func connectError(err error) error {
	if errors.Is(err, resolver.ErrConnectionFailed) {
		return errFailedToConnect
	}
	return err
}

func checkAction(ctx context.Context, c *cli.Command) error {
	return withApp(ctx, c, func(app *App) error {
		client, redisConfig, err := app.resolver.Connect(ctx)
		if err != nil {
			return connectError(err)
		}
		defer client.Close()

		fmt.Fprintf(c.Root().Writer, "connected: source=%s mode=%s\n", redisConfig.Source, redisConfig.Mode())
		return nil
	})
}

func resolveAction(ctx context.Context, c *cli.Command) error {
	return withApp(ctx, c, func(app *App) error {
		redisConfig, err := app.resolver.Resolve(ctx)
		if err != nil {
			return err
		}

		w := c.Root().Writer
		fmt.Fprintf(w, "source:            %s\n", redisConfig.Source)
		fmt.Fprintf(w, "mode:              %s\n", redisConfig.Mode())
		fmt.Fprintf(w, "connection string: %s\n", setOrNot(redisConfig.ConnectionString))
		fmt.Fprintf(w, "addr:              %s\n", redisConfig.DisplayAddr())
		fmt.Fprintf(w, "password:          %s\n", setOrNot(redisConfig.Password))
		fmt.Fprintf(w, "database:          %d\n", redisConfig.Database)
		fmt.Fprintf(w, "tls enabled:       %t\n", redisConfig.UsesTLS())
		return nil
	})
}

func serveAction(ctx context.Context, c *cli.Command) error {
	return withApp(ctx, c, func(app *App) error {
		ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		client, redisConfig, err := app.resolver.Connect(ctx)
		if err != nil {
			return connectError(err)
		}
		defer client.Close()

		router := healthserver.NewRouter(client, redisConfig, app.config.Health.GinMode)
		addr := ":" + strconv.Itoa(app.config.Health.Port)
		return healthserver.New(addr, router, app.logger).Run(ctx)
	})
}

func setOrNot(value string) string {
	if value == "" {
		return "(not set)"
	}
	return "(set)"
}
