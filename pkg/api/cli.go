package api

import (
	"github.com/rs/zerolog/log"
	"github.com/schoolfleet/schoolfleet/pkg/api/routes"
	"github.com/schoolfleet/schoolfleet/pkg/assignment"
	"github.com/schoolfleet/schoolfleet/pkg/auditlog"
	"github.com/schoolfleet/schoolfleet/pkg/database"
	"github.com/schoolfleet/schoolfleet/pkg/redis_client"
	"github.com/schoolfleet/schoolfleet/pkg/scoring"
	"github.com/schoolfleet/schoolfleet/pkg/simulation"
	"github.com/schoolfleet/schoolfleet/pkg/store/mongostore"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "web-api",
		Usage: "Provides the core web API",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run web api server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Value: ":8080",
						Usage: "listen target for the web server",
					},
				},
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}

					mongoStore := mongostore.NewMongoStore()

					directSink := &auditlog.StoreSink{RouteLogs: mongoStore.RouteLogs()}
					aggregator := scoring.NewAggregator(mongoStore)

					// Redis is optional: without it simulations log directly
					// and every score request recomputes.
					var auditSink simulation.AuditSink = directSink
					if err := redis_client.Connect(); err != nil {
						log.Warn().Err(err).Msg("Redis unavailable, running without queue and cache")
					} else {
						publisher, err := auditlog.NewQueuePublisher(directSink)
						if err != nil {
							log.Warn().Err(err).Msg("Failed to open audit queue, writing directly")
						} else {
							auditSink = publisher
						}

						scoreCache := &scoring.ScoreCache{}
						scoreCache.Setup()
						aggregator.WithCache(scoreCache)
					}

					dependencies := &routes.Dependencies{
						Store:       mongoStore,
						Coordinator: assignment.NewCoordinator(mongoStore),
						Simulator:   simulation.NewSimulator(auditSink),
						Aggregator:  aggregator,
					}

					return SetupServer(c.String("listen"), dependencies)
				},
			},
		},
	}
}
