package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/davral/homebid/internal/adapters/repository"
	"github.com/davral/homebid/pkg/logger"
)

var reportCmd = &cli.Command{ //nolint:gochecknoglobals // CLI command definition
	Name:  "report",
	Usage: "Print the stored assignments",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "db",
			Usage: "SQLite database path (defaults to config db_path)",
		},
	},
	Action: func(c *cli.Context) error {
		path := c.String("db")
		if path == "" {
			path = cfg.DBPath
		}

		store, err := repository.OpenSQLite(path, repository.WithLogger(logger.Named("report")))
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer store.Close()

		assignments, err := store.ListAssignments(c.Context)
		if err != nil {
			return fmt.Errorf("list assignments: %w", err)
		}
		if len(assignments) == 0 {
			fmt.Println("no assignments recorded")
			return nil
		}

		for _, a := range assignments {
			fmt.Printf("round %d: %s (%s) occupancy %d/%d  winning %.2f  second %.2f  paid %.2f\n",
				a.Round, a.UnitName, a.UnitID, a.Occupancy, a.Capacity, a.WinningBid, a.SecondBid, a.PaymentTotal)
			for _, m := range a.Members {
				fmt.Printf("  - %s (%s) pays %.2f (adjusted bid %.2f)\n",
					m.Name, m.ApplicantID, m.Payment, m.AdjustedBid)
			}
		}
		return nil
	},
}
