package graph

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/golang-jwt/jwt/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	loginBaseURL = "https://login.microsoftonline.com"
	graphScope   = "https://graph.microsoft.com/.default"
)

// StaticTokenSource wraps a caller-supplied bearer token. The token's
// claims are inspected without signature verification, verifying
// signatures is the service's job, to fail fast on an already expired
// token and to surface its tenant in debug logs. Tokens that do not
// parse as JWTs pass through untouched and are left for the service to
// judge.
func StaticTokenSource(raw string) (oauth2.TokenSource, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		log.Debug().Err(err).Msg("access token is not a parseable JWT, passing it through")
	} else {
		if exp, ok := claims["exp"].(float64); ok {
			expiry := time.Unix(int64(exp), 0)
			if time.Now().After(expiry) {
				return nil, fmt.Errorf("access token expired at %s", expiry.UTC().Format(time.RFC3339))
			}
			log.Debug().Time("expiry", expiry.UTC()).Msg("using provided access token")
		}
		if tid, ok := claims["tid"].(string); ok {
			log.Debug().Str("tenant", tid).Msg("access token tenant")
		}
	}
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: raw, TokenType: "Bearer"}), nil
}

// ClientCredentialsTokenSource authenticates app-only against the
// tenant's token endpoint with the Graph default scope. The returned
// source caches and refreshes tokens on its own.
func ClientCredentialsTokenSource(ctx context.Context, tenantID, clientID, clientSecret string) oauth2.TokenSource {
	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     fmt.Sprintf("%s/%s/oauth2/v2.0/token", loginBaseURL, tenantID),
		Scopes:       []string{graphScope},
	}
	return cfg.TokenSource(ctx)
}

// AcquireToken eagerly fetches a token so authentication problems
// surface before any Graph work starts. Transient failures are retried
// with exponential backoff; a rejection from the token endpoint is
// permanent, bad credentials do not heal by waiting.
func AcquireToken(ts oauth2.TokenSource) (*oauth2.Token, error) {
	retryStrategy := backoff.NewExponentialBackOff()
	retryStrategy.InitialInterval = 1 * time.Second
	retryStrategy.MaxElapsedTime = 30 * time.Second

	var tok *oauth2.Token
	err := backoff.Retry(
		func() error {
			var err error
			tok, err = ts.Token()
			if err == nil {
				return nil
			}
			var rerr *oauth2.RetrieveError
			if errors.As(err, &rerr) && rerr.Response != nil && rerr.Response.StatusCode < http.StatusInternalServerError {
				return backoff.Permanent(err)
			}
			return err
		},
		retryStrategy,
	)
	if err != nil {
		return nil, fmt.Errorf("acquiring access token: %w", err)
	}
	return tok, nil
}
