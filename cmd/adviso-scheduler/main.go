package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/adviso/adviso/pkg/cmd"
	"github.com/adviso/adviso/pkg/log"
	"github.com/adviso/adviso/pkg/otelhelper"
	"github.com/adviso/adviso/pkg/readmodel"
	"github.com/adviso/adviso/pkg/workflow"
	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"
)

const defaultInterval = 30 * time.Second

func main() {
	command := &cli.Command{
		Name:                  "adviso-scheduler",
		Usage:                 "Fire workflow triggers against the clock and business events",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "scheduler-id",
				Aliases: []string{"id"},
				Usage:   "Custom scheduler ID (auto-generated if not provided)",
				Sources: cli.EnvVars("SCHEDULER_ID"),
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
			&cli.DurationFlag{
				Name:    "interval",
				Usage:   "Polling interval for trigger evaluation",
				Value:   defaultInterval,
				Sources: cli.EnvVars("POLL_INTERVAL"),
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

			schedulerID := command.String("scheduler-id")
			if schedulerID == "" {
				schedulerID = "scheduler-" + uuid.New().String()[:8]
			}

			logger := log.WithModule("scheduler").With("scheduler_id", schedulerID)
			logger.InfoContext(ctx, "Initializing Adviso scheduler")

			tracerProvider, err := otelhelper.InitTracer(ctx, "adviso-scheduler")
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

			client := cmd.NewAIClient(command.String("ai-endpoint"), logger)

			engine := workflow.NewEngine(
				persistence.WorkflowRepository(),
				persistence.WorkflowLogRepository(),
				client,
				eventBus,
				logger,
			)

			scheduler := NewScheduler(
				persistence.WorkflowRepository(),
				engine,
				readmodel.NewDemoSource(),
				logger,
				command.Duration("interval"),
			)

			scheduler.Start(ctx)

			return nil
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
