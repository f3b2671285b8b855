// Package ringhttp provides uniform creation and configuration of the HTTP
// clients used to talk to remote management endpoints.
package ringhttp

import (
	"crypto/tls"
	"net/http"
	"time"
)

type clientOpts struct {
	timeout   time.Duration
	tlsConf   *tls.Config
	userAgent string
}

// ClientOpt is the type for the client-specific options.
type ClientOpt func(o *clientOpts)

// WithTimeout sets the overall request timeout of the HTTP client.
func WithTimeout(t time.Duration) ClientOpt {
	return func(o *clientOpts) {
		o.timeout = t
	}
}

// WithTLSClientConfig provides the TLS configuration to use for the HTTP
// client's transport.
func WithTLSClientConfig(conf *tls.Config) ClientOpt {
	return func(o *clientOpts) {
		o.tlsConf = conf.Clone()
	}
}

// WithUserAgent sets a User-Agent header on every request issued by the
// client, so callers don't have to remember to set it per request.
func WithUserAgent(ua string) ClientOpt {
	return func(o *clientOpts) {
		o.userAgent = ua
	}
}

// NewClient returns an HTTP client configured according to the provided
// options.
func NewClient(opts ...ClientOpt) *http.Client {
	var co clientOpts
	for _, opt := range opts {
		opt(&co)
	}

	cli := &http.Client{
		Timeout: co.timeout,
	}
	if co.tlsConf != nil || co.userAgent != "" {
		tr := NewTransport(WithTLSConfig(co.tlsConf))
		if co.userAgent != "" {
			cli.Transport = &userAgentTransport{base: tr, userAgent: co.userAgent}
		} else {
			cli.Transport = tr
		}
	}
	return cli
}

type transportOpts struct {
	tlsConf *tls.Config
}

// TransportOpt is the type for transport-specific options.
type TransportOpt func(o *transportOpts)

// WithTLSConfig sets the TLS configuration of the transport.
func WithTLSConfig(conf *tls.Config) TransportOpt {
	return func(o *transportOpts) {
		if conf != nil {
			o.tlsConf = conf.Clone()
		}
	}
}

// NewTransport creates an http transport (a type that implements
// http.RoundTripper) with the provided optional options. The transport is
// derived from Go's http.DefaultTransport and only overrides the specific
// parts it needs to, so that it keeps its sane defaults for the rest.
func NewTransport(opts ...TransportOpt) *http.Transport {
	var to transportOpts
	for _, opt := range opts {
		opt(&to)
	}

	// make sure to start from DefaultTransport to inherit its sane defaults
	tr := http.DefaultTransport.(*http.Transport).Clone()
	if to.tlsConf != nil {
		tr.TLSClientConfig = to.tlsConf
	}
	return tr
}

// userAgentTransport stamps the configured User-Agent on outgoing requests
// that don't already carry one.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		// Per RoundTripper contract the request must not be mutated.
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.base.RoundTrip(req)
}
