package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/ringshift/ringshift/graph"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"golang.org/x/oauth2"
)

// clientFromCLI authenticates against Microsoft Graph using the flag and
// environment configuration. A pre-issued access token wins over client
// credentials. The first token is acquired eagerly so credential
// problems abort the run before any Graph work starts.
func clientFromCLI(ctx context.Context, c *cli.Context) (*graph.Client, error) {
	var ts oauth2.TokenSource
	switch {
	case c.String(accessTokenFlagName) != "":
		var err error
		ts, err = graph.StaticTokenSource(c.String(accessTokenFlagName))
		if err != nil {
			return nil, err
		}
	case c.String(tenantIDFlagName) != "" && c.String(clientIDFlagName) != "" && c.String(clientSecretFlagName) != "":
		ts = graph.ClientCredentialsTokenSource(
			ctx,
			c.String(tenantIDFlagName),
			c.String(clientIDFlagName),
			c.String(clientSecretFlagName),
		)
	default:
		return nil, errors.New("missing credentials: provide --access-token or the tenant-id, client-id and client-secret trio")
	}

	tok, err := graph.AcquireToken(ts)
	if err != nil {
		return nil, err
	}
	log.Info().Msg("authenticated against Microsoft Graph")

	var opts []graph.ClientOption
	if u := c.String(graphURLFlagName); u != "" {
		opts = append(opts, graph.WithBaseURL(u))
	}
	return graph.NewClient(oauth2.ReuseTokenSource(tok, ts), opts...), nil
}
