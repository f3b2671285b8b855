package main

import (
	"github.com/ringshift/ringshift/ring"
	"github.com/urfave/cli/v2"
)

const (
	policyIDFlagName     = "policy-id"
	thresholdFlagName    = "threshold"
	stageFlagName        = "stage"
	autoPromoteFlagName  = "auto-promote"
	outputFlagName       = "output"
	verbosityFlagName    = "verbosity"
	debugFlagName        = "debug"
	jsonFlagName         = "json"
	yamlFlagName         = "yaml"
	devGroupFlagName     = "dev-group"
	testGroupFlagName    = "test-group"
	prodGroupFlagName    = "prod-group"
	accessTokenFlagName  = "access-token"
	tenantIDFlagName     = "tenant-id"
	clientIDFlagName     = "client-id"
	clientSecretFlagName = "client-secret"
	graphURLFlagName     = "graph-url"
)

func policyIDFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    policyIDFlagName,
		EnvVars: []string{"RINGSHIFT_POLICY_ID"},
		Usage:   "Identifier of the Intune policy to evaluate (required)",
	}
}

func getPolicyID(c *cli.Context) string {
	return c.String(policyIDFlagName)
}

func thresholdFlag() cli.Flag {
	return &cli.IntFlag{
		Name:    thresholdFlagName,
		Value:   80,
		EnvVars: []string{"RINGSHIFT_THRESHOLD"},
		Usage:   "Success percentage (1-100) the current ring must reach",
	}
}

func getThreshold(c *cli.Context) int {
	return c.Int(thresholdFlagName)
}

func stageFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    stageFlagName,
		Value:   string(ring.StageDev),
		EnvVars: []string{"RINGSHIFT_STAGE"},
		Usage:   "Deployment stage the policy is currently in (dev, test or prod)",
	}
}

func getStage(c *cli.Context) (ring.Stage, error) {
	return ring.ParseStage(c.String(stageFlagName))
}

func autoPromoteFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    autoPromoteFlagName,
		EnvVars: []string{"RINGSHIFT_AUTO_PROMOTE"},
		Usage:   "Assign the next ring automatically once the threshold is met",
	}
}

func getAutoPromote(c *cli.Context) bool {
	return c.Bool(autoPromoteFlagName)
}

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    outputFlagName,
		Value:   "./reports",
		EnvVars: []string{"RINGSHIFT_OUTPUT"},
		Usage:   "Directory for the promotion report and log",
	}
}

func getOutput(c *cli.Context) string {
	return c.String(outputFlagName)
}

func verbosityFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    verbosityFlagName,
		Value:   "Normal",
		EnvVars: []string{"RINGSHIFT_VERBOSITY"},
		Usage:   "Logging verbosity (Minimal, Normal or Detailed)",
	}
}

func getVerbosity(c *cli.Context) string {
	return c.String(verbosityFlagName)
}

func debugFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    debugFlagName,
		EnvVars: []string{"RINGSHIFT_DEBUG"},
		Usage:   "Enable debug logging regardless of verbosity",
	}
}

func getDebug(c *cli.Context) bool {
	return c.Bool(debugFlagName)
}

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  jsonFlagName,
		Usage: "Output in JSON format",
	}
}

func yamlFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  yamlFlagName,
		Usage: "Output in yaml format",
	}
}

func devGroupFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    devGroupFlagName,
		Value:   "Intune-Dev-Users",
		EnvVars: []string{"RINGSHIFT_DEV_GROUP"},
		Usage:   "Display name of the dev ring's Entra ID group",
	}
}

func testGroupFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    testGroupFlagName,
		Value:   "Intune-Test-Users",
		EnvVars: []string{"RINGSHIFT_TEST_GROUP"},
		Usage:   "Display name of the test ring's Entra ID group",
	}
}

func prodGroupFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    prodGroupFlagName,
		Value:   "Intune-Prod-Users",
		EnvVars: []string{"RINGSHIFT_PROD_GROUP"},
		Usage:   "Display name of the prod ring's Entra ID group",
	}
}

func getRingGroups(c *cli.Context) ring.RingGroups {
	return ring.RingGroups{
		Dev:  c.String(devGroupFlagName),
		Test: c.String(testGroupFlagName),
		Prod: c.String(prodGroupFlagName),
	}
}

func accessTokenFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    accessTokenFlagName,
		EnvVars: []string{"RINGSHIFT_ACCESS_TOKEN"},
		Usage:   "Pre-issued Microsoft Graph bearer token",
	}
}

func tenantIDFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    tenantIDFlagName,
		EnvVars: []string{"AZURE_TENANT_ID"},
		Usage:   "Entra ID tenant for client credential authentication",
	}
}

func clientIDFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    clientIDFlagName,
		EnvVars: []string{"AZURE_CLIENT_ID"},
		Usage:   "Application (client) id for client credential authentication",
	}
}

func clientSecretFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    clientSecretFlagName,
		EnvVars: []string{"AZURE_CLIENT_SECRET"},
		Usage:   "Client secret for client credential authentication",
	}
}

func graphURLFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    graphURLFlagName,
		EnvVars: []string{"RINGSHIFT_GRAPH_URL"},
		Usage:   "Override the Microsoft Graph base URL",
	}
}

// authFlags are shared by every command that talks to Microsoft Graph.
func authFlags() []cli.Flag {
	return []cli.Flag{
		accessTokenFlag(),
		tenantIDFlag(),
		clientIDFlag(),
		clientSecretFlag(),
		graphURLFlag(),
	}
}
