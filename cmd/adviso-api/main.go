package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/adviso/adviso/pkg/cmd"
	"github.com/adviso/adviso/pkg/eventbus"
	"github.com/adviso/adviso/pkg/events"
	"github.com/adviso/adviso/pkg/log"
	"github.com/adviso/adviso/pkg/otelhelper"
	"github.com/adviso/adviso/pkg/readmodel"
	"github.com/adviso/adviso/pkg/readmodel/rediscache"
	cli "github.com/urfave/cli/v3"
)

const defaultPort = 9081

func main() {
	command := &cli.Command{
		Name:                  "adviso-api",
		Usage:                 "AI action orchestration API",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "ai-endpoint",
				Usage:   "AI completion endpoint URL (offline responses when empty)",
				Sources: cli.EnvVars("AI_ENDPOINT"),
			},
			&cli.StringFlag{
				Name:    "redis-addr",
				Usage:   "Redis address for the read-model cache (cache disabled when empty)",
				Sources: cli.EnvVars("REDIS_ADDR"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger := log.WithModule("api")
			logger.InfoContext(ctx, "Initializing Adviso API")

			tracerProvider, err := otelhelper.InitTracer(ctx, "adviso-api")
			if err != nil {
				return fmt.Errorf("failed to initialize tracer: %w", err)
			}
			defer func() {
				if err := tracerProvider.Shutdown(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to shutdown tracer provider", "error", err)
				}
			}()

			persistence := cmd.NewPersistence(command.String("database-url"))
			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus := cmd.NewEventBus(command.String("event-bus"), logger)
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			source, err := newSource(ctx, command.String("redis-addr"), eventBus, logger)
			if err != nil {
				return err
			}

			client := cmd.NewAIClient(command.String("ai-endpoint"), logger)

			api := NewAPI(logger, persistence, eventBus, client, source)

			return api.Start(command.Int("port"))
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}

// newSource wires the read-model source, with the redis cache layered on
// when an address is configured. The cache subscribes to invalidation
// events so successful runs flush stale snapshots.
func newSource(ctx context.Context, redisAddr string, eventBus eventbus.EventBus, logger *slog.Logger) (readmodel.Source, error) {
	base := readmodel.NewDemoSource()

	if redisAddr == "" {
		return base, nil
	}

	cache, err := rediscache.NewCache(ctx, base, redisAddr, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create read-model cache: %w", err)
	}

	if err := eventBus.Handle(events.ReadModelInvalidatedEvent, cache.InvalidationHandler()); err != nil {
		return nil, fmt.Errorf("failed to register invalidation handler: %w", err)
	}

	go func() {
		if err := eventBus.Subscribe(ctx); err != nil {
			logger.ErrorContext(ctx, "Event bus subscription stopped", "error", err)
		}
	}()

	return cache, nil
}
