package scoring

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/schoolfleet/schoolfleet/pkg/database"
	"github.com/schoolfleet/schoolfleet/pkg/store/mongostore"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "scoring",
		Usage: "Safety and performance rollups",
		Subcommands: []*cli.Command{
			{
				Name:  "safety-score",
				Usage: "compute the composite safety score",
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}

					aggregator := NewAggregator(mongostore.NewMongoStore())

					score, err := aggregator.Compute(context.Background())
					if err != nil {
						return err
					}

					log.Info().
						Int("total", score.Total).
						Float64("incidents", score.Breakdown.Incidents).
						Float64("maintenance", score.Breakdown.Maintenance).
						Float64("driverCompliance", score.Breakdown.DriverCompliance).
						Float64("routeSafety", score.Breakdown.RouteSafety).
						Msg("Composite safety score")

					return nil
				},
			},
		},
	}
}
