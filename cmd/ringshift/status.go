package main

import (
	"github.com/urfave/cli/v2"
)

// statusCommand is the read-only companion of promote: it evaluates the
// policy and writes the report but never mutates assignments, whatever
// the metrics say. The exit code follows the same readiness rule, which
// makes it usable as a gate in pipelines.
func statusCommand() *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "Evaluate a policy's ring deployment without changing anything",
		UsageText: `ringshift status [options]`,
		Flags: append([]cli.Flag{
			policyIDFlag(),
			stageFlag(),
			thresholdFlag(),
			outputFlag(),
			verbosityFlag(),
			debugFlag(),
			jsonFlag(),
			yamlFlag(),
			devGroupFlag(),
			testGroupFlag(),
			prodGroupFlag(),
		}, authFlags()...),
		Action: func(c *cli.Context) error {
			return runEvaluation(c, false)
		},
	}
}
