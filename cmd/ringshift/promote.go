package main

import (
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/ringshift/ringshift/promote"
	"github.com/urfave/cli/v2"
)

func promoteCommand() *cli.Command {
	return &cli.Command{
		Name:      "promote",
		Usage:     "Evaluate a policy's ring deployment and promote it when ready",
		UsageText: `ringshift promote [options]`,
		Flags: append([]cli.Flag{
			policyIDFlag(),
			stageFlag(),
			thresholdFlag(),
			autoPromoteFlag(),
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
			return runEvaluation(c, getAutoPromote(c))
		},
	}
}

func configFromCLI(c *cli.Context, autoPromote bool) (promote.Config, error) {
	stage, err := getStage(c)
	if err != nil {
		return promote.Config{}, err
	}
	cfg := promote.Config{
		PolicyID:    getPolicyID(c),
		Stage:       stage,
		Threshold:   getThreshold(c),
		AutoPromote: autoPromote,
		RingGroups:  getRingGroups(c),
	}
	if err := cfg.Validate(); err != nil {
		return promote.Config{}, err
	}
	return cfg, nil
}

// runEvaluation is the shared body of promote and status: validate the
// configuration, authenticate, evaluate (and possibly mutate), persist
// the report and map readiness onto the exit code. Validation failures
// return before any network activity.
func runEvaluation(c *cli.Context, autoPromote bool) error {
	cfg, err := configFromCLI(c, autoPromote)
	if err != nil {
		return err
	}
	if err := setupLogsFromCLI(c); err != nil {
		return err
	}

	client, err := clientFromCLI(c.Context, c)
	if err != nil {
		return err
	}
	engine := promote.NewEngine(client)

	machineOutput := c.Bool(jsonFlagName) || c.Bool(yamlFlagName)
	var s *spinner.Spinner
	if !machineOutput {
		// See charsets at
		// https://godoc.org/github.com/briandowns/spinner#pkg-variables
		s = spinner.New(spinner.CharSets[24], 200*time.Millisecond)
		s.Writer = os.Stderr
		s.Start()
	}
	outcome, err := engine.Run(c.Context, cfg)
	if s != nil {
		s.Stop()
	}
	if err != nil {
		return err
	}

	report := engine.Report(outcome)
	path, err := promote.WriteReport(getOutput(c), report)
	if err != nil {
		return err
	}

	switch {
	case c.Bool(jsonFlagName):
		err = printJSON(report, c.App.Writer)
	case c.Bool(yamlFlagName):
		err = printYaml(report, c.App.Writer)
	default:
		printOutcome(c.App.Writer, outcome)
		fmt.Fprintf(c.App.Writer, "\nReport written to %s\n", path)
	}
	if err != nil {
		return err
	}

	if !outcome.ReadyForPromotion {
		return errNotReady
	}
	return nil
}
