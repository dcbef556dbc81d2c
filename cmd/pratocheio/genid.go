package main

import (
	"fmt"

	"pratocheio/internal/utils"

	"github.com/urfave/cli/v2"
)

var genidCommand = &cli.Command{
	Name:  "genid",
	Usage: "Generate 6-digit IDs for use in seed files",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    "count",
			Aliases: []string{"c"},
			Usage:   "Number of IDs to generate",
			Value:   1,
		},
	},
	Action: func(c *cli.Context) error {
		count := c.Int("count")
		for i := 0; i < count; i++ {
			fmt.Println(utils.NumericID())
		}
		return nil
	},
}
