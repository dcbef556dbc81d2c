package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "pratocheio",
		Usage: "Food donation marketplace API",
		Commands: []*cli.Command{
			serveCommand,
			seedCommand,
			genidCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("application failed")
	}
}
