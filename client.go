// Package dataapi is a client for document/table databases speaking the
// extended-JSON-over-HTTP Data API. A Client is scoped to one endpoint;
// Database, Collection and Table handles narrow it down, each contributing
// one configuration layer. All methods are safe for concurrent use.
package dataapi

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/docker/go-connections/tlsconfig"
	"github.com/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"
)

const (
	apiBasePath       = "/api/json"
	defaultAPIVersion = "v1"
	defaultKeyspace   = "default_keyspace"

	defaultChunkSize   = 50
	defaultConcurrency = 8
)

// Client is the top-level handle on one Data API endpoint. It owns the
// shared HTTP connection pool; per-call HTTP behavior is resolved from the
// configuration layers at call time.
type Client struct {
	client    *http.Client
	h1Client  *http.Client
	transport *http.Transport
	base      *url.URL
	userAgent *string
	opts      CommandOptions

	tp        trace.TracerProvider
	traceOpts []otelhttp.Option
}

// Opt configures the client during New.
type Opt func(*Client) error

// New constructs a Client. WithEndpoint (or FromEnv with the endpoint
// variable set) is required.
func New(ops ...Opt) (*Client, error) {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConnsPerHost: 16,
		ForceAttemptHTTP2:   true,
	}
	transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		if d := connectTimeoutFrom(ctx); d > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeoutCause(ctx, d, errConnectTimeout)
			defer cancel()
		}
		var dialer net.Dialer
		return dialer.DialContext(ctx, network, addr)
	}

	cli := &Client{transport: transport}
	for _, op := range ops {
		if err := op(cli); err != nil {
			return nil, err
		}
	}
	if cli.base == nil {
		return nil, invalidParameterf("no endpoint configured")
	}

	if cli.client == nil {
		var rt http.RoundTripper = cli.transport
		if cli.tp != nil {
			rt = otelhttp.NewTransport(rt, append([]otelhttp.Option{otelhttp.WithTracerProvider(cli.tp)}, cli.traceOpts...)...)
		}
		cli.client = &http.Client{Transport: rt}

		h1 := cli.transport.Clone()
		h1.ForceAttemptHTTP2 = false
		h1.TLSNextProto = map[string]func(string, *tls.Conn) http.RoundTripper{}
		var h1rt http.RoundTripper = h1
		if cli.tp != nil {
			h1rt = otelhttp.NewTransport(h1rt, append([]otelhttp.Option{otelhttp.WithTracerProvider(cli.tp)}, cli.traceOpts...)...)
		}
		cli.h1Client = &http.Client{Transport: h1rt}
	}
	return cli, nil
}

// resolve merges the client layer with the given more specific layers.
func (cli *Client) resolve(layers ...*CommandOptions) CommandOptions {
	all := make([]*CommandOptions, 0, len(layers)+1)
	all = append(all, &cli.opts)
	all = append(all, layers...)
	return mergeOptions(all...)
}

// Database returns a handle on one keyspace.
func (cli *Client) Database(keyspace string) *Database {
	return &Database{cli: cli, opts: &CommandOptions{Keyspace: keyspace}}
}

// Ping verifies connectivity and authentication with a cheap no-op command
// against the default keyspace.
func (cli *Client) Ping(ctx context.Context) error {
	_, err := cli.runCommand(ctx, &commandRequest{
		name:    "findCollections",
		payload: map[string]any{},
	})
	return err
}

// Close releases idle connections held by the pool.
func (cli *Client) Close() error {
	cli.transport.CloseIdleConnections()
	return nil
}

// WithEndpoint sets the base URL of the Data API, e.g.
// "https://db-region.apps.example.com".
func WithEndpoint(endpoint string) Opt {
	return func(cli *Client) error {
		u, err := url.Parse(strings.TrimRight(endpoint, "/"))
		if err != nil {
			return errors.Wrap(err, "invalid endpoint")
		}
		if u.Scheme == "" || u.Host == "" {
			return invalidParameterf("invalid endpoint %q: expected an absolute http(s) URL", endpoint)
		}
		cli.base = u
		return nil
	}
}

// WithToken sets the bearer credential used by every request unless a more
// specific layer overrides it.
func WithToken(token string) Opt {
	return func(cli *Client) error {
		cli.opts.Token = token
		return nil
	}
}

// WithKeyspace overrides the default keyspace at client level.
func WithKeyspace(keyspace string) Opt {
	return func(cli *Client) error {
		cli.opts.Keyspace = keyspace
		return nil
	}
}

// WithAPIVersion overrides the version path segment.
func WithAPIVersion(version string) Opt {
	return func(cli *Client) error {
		cli.opts.APIVersion = version
		return nil
	}
}

// WithTimeout sets the per-request budget at client level.
func WithTimeout(d time.Duration) Opt {
	return func(cli *Client) error {
		cli.opts.RequestTimeout = d
		return nil
	}
}

// WithConnectTimeout bounds connection establishment.
func WithConnectTimeout(d time.Duration) Opt {
	return func(cli *Client) error {
		cli.opts.ConnectTimeout = d
		return nil
	}
}

// WithBulkTimeout bounds whole bulk operations at client level.
func WithBulkTimeout(d time.Duration) Opt {
	return func(cli *Client) error {
		cli.opts.BulkTimeout = d
		return nil
	}
}

// WithHTTPHeaders adds headers to every request.
func WithHTTPHeaders(headers map[string]string) Opt {
	return func(cli *Client) error {
		if cli.opts.Headers == nil {
			cli.opts.Headers = http.Header{}
		}
		for k, v := range headers {
			cli.opts.Headers.Set(k, v)
		}
		return nil
	}
}

// WithUserAgent overrides the default User-Agent. An empty value removes the
// header entirely.
func WithUserAgent(ua string) Opt {
	return func(cli *Client) error {
		cli.userAgent = &ua
		return nil
	}
}

// WithHTTPClient replaces the HTTP client wholesale. Mostly useful for
// tests; the per-call redirect policy still applies on a shallow copy.
func WithHTTPClient(client *http.Client) Opt {
	return func(cli *Client) error {
		if client != nil {
			cli.client = client
			cli.h1Client = client
		}
		return nil
	}
}

// WithTLSClientConfig loads the CA, certificate and key from the given
// paths and applies them to the shared transport.
func WithTLSClientConfig(cacertPath, certPath, keyPath string) Opt {
	return func(cli *Client) error {
		config, err := tlsconfig.Client(tlsconfig.Options{
			CAFile:   cacertPath,
			CertFile: certPath,
			KeyFile:  keyPath,
		})
		if err != nil {
			return errors.Wrap(err, "failed to create tls config")
		}
		cli.transport.TLSClientConfig = config
		return nil
	}
}

// WithTraceProvider wires OpenTelemetry tracing around the transport.
func WithTraceProvider(provider trace.TracerProvider, opts ...otelhttp.Option) Opt {
	return func(cli *Client) error {
		cli.tp = provider
		cli.traceOpts = opts
		return nil
	}
}
