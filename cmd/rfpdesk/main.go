package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "rfpdesk",
		Usage: "RFP document intake and analysis web app",
		Commands: []*cli.Command{
			serveCommand,
			migrateCommand,
			processCommand,
			nanoidCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("application failed")
	}
}
