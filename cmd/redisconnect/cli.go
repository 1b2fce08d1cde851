package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// NewCommand creates and configures the CLI command
func NewCommand() *cli.Command {
	return &cli.Command{
		Name:    "redisconnect",
		Usage:   "Resolve, connect and verify the cart Redis connection",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (.env or yaml)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error); overrides LOG_LEVEL",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Log format (text, json)",
				Value: "json",
			},
			&cli.StringFlag{
				Name:  "redis-connection-string",
				Usage: "Redis connection URI (overrides config)",
			},
			&cli.StringFlag{
				Name:  "redis-host",
				Usage: "Redis server hostname (overrides config)",
			},
			&cli.StringFlag{
				Name:  "redis-port",
				Usage: "Redis server port (overrides config)",
			},
			&cli.StringFlag{
				Name:  "redis-password",
				Usage: "Redis password (overrides config)",
			},
			&cli.StringFlag{
				Name:  "redis-tls",
				Usage: "Enable TLS for password connections, e.g. true/false/yes/no (overrides config)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "check",
				Usage:  "Connect to Redis and verify the connection with PING",
				Action: checkAction,
			},
			{
				Name:   "resolve",
				Usage:  "Show which source the connection parameters come from, without connecting",
				Action: resolveAction,
			},
			{
				Name:  "serve",
				Usage: "Connect to Redis and serve /healthz",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "port",
						Usage: "Health server port (overrides HEALTH_PORT)",
					},
				},
				Action: serveAction,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			// Default action: show help
			return cli.ShowAppHelp(c)
		},
	}
}
