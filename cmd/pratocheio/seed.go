package main

import (
	"context"
	"fmt"

	"pratocheio/internal/db"
	"pratocheio/internal/seed"
	"pratocheio/internal/store"

	"github.com/k0kubun/pp"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the database with sample users and donations",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Dump seeded records",
		},
	},
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := context.Background()

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		logrus.Info("Connected to database")

		userRepo := store.NewUserRepository(pool)
		donationRepo := store.NewDonationRepository(pool)

		logrus.Info("Seeding users...")
		users, err := seed.Users(ctx, userRepo)
		if err != nil {
			return fmt.Errorf("failed to seed users: %w", err)
		}

		logrus.Info("Seeding donations...")
		donations, err := seed.Donations(ctx, donationRepo, users)
		if err != nil {
			return fmt.Errorf("failed to seed donations: %w", err)
		}

		if c.Bool("verbose") {
			pp.Println(users)
			pp.Println(donations)
		}

		logrus.WithFields(logrus.Fields{
			"users":     len(users),
			"donations": len(donations),
		}).Info("Seed complete")

		return nil
	},
}
