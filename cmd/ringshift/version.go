package main

import (
	"github.com/ringshift/ringshift/pkg/version"
	"github.com/urfave/cli/v2"
)

const fullFlagName = "full"

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:      "version",
		Usage:     "Get the ringshift version",
		UsageText: `ringshift version [options]`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  fullFlagName,
				Usage: "Print full version information",
			},
		},
		Action: func(c *cli.Context) error {
			if c.Bool(fullFlagName) {
				version.PrintFull(c.App.Writer)
				return nil
			}
			version.Print(c.App.Writer)
			return nil
		},
	}
}
