package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/ghodss/yaml"
	"github.com/olekukonko/tablewriter"
	"github.com/ringshift/ringshift/ring"
)

func defaultTable(writer io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(writer)
	table.SetRowLine(true)
	return table
}

func printJSON(v interface{}, writer io.Writer) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Fprintf(writer, "%s\n", b)
	return nil
}

func printYaml(v interface{}, writer io.Writer) error {
	b, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Fprintf(writer, "---\n%s", string(b))
	return nil
}

func printMetricsTable(writer io.Writer, m ring.DeploymentMetrics) {
	table := defaultTable(writer)
	table.SetHeader([]string{"Total", "Succeeded", "Errors", "Conflicts", "Not Applicable", "Pending", "Success Rate"})
	table.Append([]string{
		strconv.Itoa(m.TotalDevices),
		strconv.Itoa(m.Succeeded),
		strconv.Itoa(m.Errors),
		strconv.Itoa(m.Conflicts),
		strconv.Itoa(m.NotApplicable),
		strconv.Itoa(m.Pending),
		fmt.Sprintf("%.2f%%", m.SuccessRate),
	})
	table.Render()
}

func printAssignmentsTable(writer io.Writer, assignments []ring.GroupAssignment) {
	data := make([][]string, 0, len(assignments))
	for _, a := range assignments {
		mode := "include"
		if a.Exclude {
			mode = "exclude"
		}
		filter := ""
		if a.FilterID != "" {
			filter = fmt.Sprintf("%s (%s)", a.FilterID, a.FilterType)
		}
		data = append(data, []string{a.GroupName, a.GroupID, mode, filter})
	}

	table := defaultTable(writer)
	table.SetHeader([]string{"Group", "Group ID", "Mode", "Filter"})
	table.AppendBulk(data)
	table.Render()
}

// printOutcome renders the human readable summary of a completed
// evaluation. Machine consumers use --json or --yaml instead.
func printOutcome(writer io.Writer, outcome *ring.PromotionOutcome) {
	fmt.Fprintf(writer, "Policy %q (%s, category %s)\n", outcome.Policy.DisplayName, outcome.Policy.ID, outcome.Policy.Category)
	fmt.Fprintf(writer, "Current stage: %s\n\n", outcome.CurrentStage)

	printMetricsTable(writer, outcome.Metrics)

	if len(outcome.Assignments) > 0 {
		fmt.Fprintln(writer, "\nAssigned groups:")
		printAssignmentsTable(writer, outcome.Assignments)
	}
	for _, skipped := range outcome.SkippedGroups {
		color.New(color.FgYellow).Fprintf(writer, "WARNING: assignment to group %s could not be resolved: %s\n", skipped.GroupID, skipped.Reason)
	}
	fmt.Fprintln(writer)

	switch outcome.Status {
	case ring.OutcomeAlreadyComplete:
		fmt.Fprintln(writer, "This policy has finished the rollout, prod is the last ring.")

	case ring.OutcomeNotReady:
		if outcome.Metrics.TotalDevices == 0 {
			color.New(color.FgYellow).Fprintln(writer, "NOT READY: no devices have reported status for this policy yet.")
			break
		}
		color.New(color.FgYellow).Fprintf(writer, "NOT READY: success rate %.2f%% is %.2f points below the %d%% threshold.\n",
			outcome.Metrics.SuccessRate, outcome.Shortfall, outcome.Threshold)

	case ring.OutcomeReadyManual:
		color.New(color.FgGreen).Fprintf(writer, "READY: success rate %.2f%% meets the %d%% threshold.\n",
			outcome.Metrics.SuccessRate, outcome.Threshold)
		fmt.Fprintln(writer, "To promote now, run:")
		fmt.Fprintf(writer, "  %s\n", outcome.Guidance)

	case ring.OutcomeAlreadyAssigned:
		color.New(color.FgYellow).Fprintf(writer, "WARNING: the policy is already assigned to %s, nothing to do.\n",
			outcome.TargetGroup.DisplayName)

	case ring.OutcomeDeployed:
		color.New(color.FgGreen).Fprintf(writer, "Deployed the policy to the %s ring (%s).\n",
			outcome.NextStage, outcome.TargetGroup.DisplayName)

	case ring.OutcomePromoted:
		color.New(color.FgGreen).Fprintf(writer, "Promoted the policy to the %s ring (%s).\n",
			outcome.NextStage, outcome.TargetGroup.DisplayName)
	}

	if len(outcome.FinalAssignments) > 0 {
		fmt.Fprintln(writer, "\nAssignments after the change:")
		printAssignmentsTable(writer, outcome.FinalAssignments)
	}
}
