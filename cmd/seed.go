package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/davral/homebid/internal/adapters/repository"
	"github.com/davral/homebid/internal/devdata"
	"github.com/davral/homebid/pkg/logger"
)

var seedCmd = &cli.Command{ //nolint:gochecknoglobals // CLI command definition
	Name:  "seed",
	Usage: "Populate the database with a synthetic applicant and unit pool",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "db",
			Usage: "SQLite database path (defaults to config db_path)",
		},
		&cli.IntFlag{
			Name:  "applicants",
			Value: 24,
			Usage: "number of applicants to generate",
		},
		&cli.IntFlag{
			Name:  "units",
			Value: 8,
			Usage: "number of units to generate",
		},
		&cli.Int64Flag{
			Name:  "seed",
			Value: 1,
			Usage: "random seed (same seed, same pool)",
		},
	},
	Action: func(c *cli.Context) error {
		path := c.String("db")
		if path == "" {
			path = cfg.DBPath
		}

		store, err := repository.OpenSQLite(path, repository.WithLogger(logger.Named("seed")))
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer store.Close()

		gen := devdata.New(c.Int64("seed"))
		applicants := gen.Applicants(c.Int("applicants"))
		units := gen.Units(c.Int("units"))

		if err := store.UpsertApplicants(c.Context, applicants); err != nil {
			return fmt.Errorf("seed applicants: %w", err)
		}
		if err := store.UpsertUnits(c.Context, units); err != nil {
			return fmt.Errorf("seed units: %w", err)
		}

		fmt.Printf("seeded %d applicants and %d units into %s\n", len(applicants), len(units), path)
		return nil
	},
}
