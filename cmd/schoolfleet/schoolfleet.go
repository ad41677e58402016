package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/schoolfleet/schoolfleet/pkg/api"
	"github.com/schoolfleet/schoolfleet/pkg/assignment"
	"github.com/schoolfleet/schoolfleet/pkg/auditlog"
	"github.com/schoolfleet/schoolfleet/pkg/scoring"
	"github.com/urfave/cli/v2"

	_ "time/tzdata"
)

func main() {
	if os.Getenv("SCHOOLFLEET_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	if os.Getenv("SCHOOLFLEET_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	app := &cli.App{
		Name:        "schoolfleet",
		Description: "School transport scheduling & assignment engine - runs all the services",

		Commands: []*cli.Command{
			api.RegisterCLI(),
			assignment.RegisterCLI(),
			scoring.RegisterCLI(),
			auditlog.RegisterCLI(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
