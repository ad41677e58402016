package auditlog

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/schoolfleet/schoolfleet/pkg/consumer"
	"github.com/schoolfleet/schoolfleet/pkg/database"
	"github.com/schoolfleet/schoolfleet/pkg/redis_client"
	"github.com/schoolfleet/schoolfleet/pkg/store/mongostore"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "audit-log",
		Usage: "Provides the simulation audit trail consumer",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run the audit trail queue consumer",
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}
					if err := redis_client.Connect(); err != nil {
						return err
					}

					mongoStore := mongostore.NewMongoStore()

					redisConsumer := consumer.RedisConsumer{
						QueueName:       QueueName,
						NumberConsumers: 2,
						BatchSize:       20,
						Timeout:         2 * time.Second,
						Consumer:        NewBatchConsumer(mongoStore.RouteLogs()),
					}
					redisConsumer.Setup()

					signals := make(chan os.Signal, 1)
					signal.Notify(signals, syscall.SIGINT)
					defer signal.Stop(signals)

					<-signals // wait for signal
					go func() {
						<-signals // hard exit on second signal (in case shutdown gets stuck)
						os.Exit(1)
					}()

					<-redis_client.QueueConnection.StopAllConsuming() // wait for all Consume() calls to finish

					return nil
				},
			},
		},
	}
}
