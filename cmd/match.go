package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/davral/homebid/internal/adapters/dataset"
	"github.com/davral/homebid/internal/adapters/repository"
	"github.com/davral/homebid/internal/app"
	"github.com/davral/homebid/internal/domain/valuation"
	"github.com/davral/homebid/pkg/logger"
)

var matchCmd = &cli.Command{ //nolint:gochecknoglobals // CLI command definition
	Name:  "match",
	Usage: "Run one matching round-robin over the current pool",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "applicants",
			Usage: "input applicants.json (file mode; requires --units)",
		},
		&cli.StringFlag{
			Name:  "units",
			Usage: "input units.json (file mode)",
		},
		&cli.StringFlag{
			Name:  "out",
			Value: "assignments.json",
			Usage: "output assignments.json (file mode)",
		},
		&cli.StringFlag{
			Name:  "db",
			Usage: "SQLite database path (db mode; defaults to config db_path)",
		},
	},
	Action: func(c *cli.Context) error {
		log := logger.Named("match")

		var store repository.Store
		switch {
		case c.String("applicants") != "" && c.String("units") != "":
			store = dataset.New(c.String("applicants"), c.String("units"), c.String("out"),
				dataset.WithLogger(log))
		case c.String("applicants") != "" || c.String("units") != "":
			return fmt.Errorf("file mode needs both --applicants and --units")
		default:
			path := c.String("db")
			if path == "" {
				path = cfg.DBPath
			}
			var err error
			store, err = repository.OpenSQLite(path, repository.WithLogger(log))
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
		}
		defer store.Close()

		rule, err := valuation.ParseDirectionRule(cfg.DirectionRule)
		if err != nil {
			return err
		}

		svc := app.New(
			app.WithStore(store),
			app.WithLogger(log),
			app.WithCompatibilityThreshold(cfg.CompatibilityThreshold),
			app.WithMaxGroupSize(cfg.MaxGroupSize),
			app.WithIterationCap(cfg.IterationCap),
			app.WithDirectionRule(rule),
		)

		summary, err := svc.RunMatching(c.Context)
		if err != nil {
			return err
		}

		fmt.Printf("rounds: %d  assignments: %d  duration: %s\n",
			summary.Rounds, len(summary.Assignments), summary.Duration)
		if summary.CapReached {
			fmt.Println("warning: iteration cap reached; results may be partial")
		}
		if len(summary.ExcludedApplicants) > 0 {
			fmt.Printf("excluded applicants (invalid profiles): %v\n", summary.ExcludedApplicants)
		}
		for _, a := range summary.Assignments {
			fmt.Printf("round %d: %s (%s) occupancy %d/%d  winning %.2f  paid %.2f\n",
				a.Round, a.UnitName, a.UnitID, a.Occupancy, a.Capacity, a.WinningBid, a.PaymentTotal)
			for _, m := range a.Members {
				fmt.Printf("  - %s (%s) pays %.2f\n", m.Name, m.ApplicantID, m.Payment)
			}
		}
		return nil
	},
}
