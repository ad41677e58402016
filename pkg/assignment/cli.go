package assignment

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/schoolfleet/schoolfleet/pkg/database"
	"github.com/schoolfleet/schoolfleet/pkg/store/mongostore"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "assignment",
		Usage: "Triad maintenance commands",
		Subcommands: []*cli.Command{
			{
				Name:  "reconcile",
				Usage: "scan the fleet for violated triad invariants",
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}

					coordinator := NewCoordinator(mongostore.NewMongoStore())

					findings, err := coordinator.Reconcile(context.Background())
					if err != nil {
						return err
					}

					if len(findings) == 0 {
						log.Info().Msg("No integrity violations found")
						return nil
					}

					for _, finding := range findings {
						log.Warn().Str("invariant", finding.Invariant).Msg(finding.Detail)
					}
					log.Warn().Int("violations", len(findings)).Msg("Integrity scan complete")

					return nil
				},
			},
			{
				Name:  "recover-sagas",
				Usage: "mark sagas interrupted by a crash as failed",
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}

					mongoStore := mongostore.NewMongoStore()

					recovered, err := Recover(context.Background(), mongoStore.SagaLogs())
					if err != nil {
						return err
					}

					log.Info().Int("recovered", len(recovered)).Msg("Saga recovery complete")
					return nil
				},
			},
		},
	}
}
