package dataapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/containerd/log"

	"github.com/dataapi-go/dataapi/internal/ejson"
)

// runCommand executes one logical operation as a single HTTP exchange:
// resolve the effective configuration, encode the payload, compose the
// cancellation sources, send, classify, decode the envelope. No retries
// happen here; resumption of paginated operations belongs to the caller.
func (cli *Client) runCommand(ctx context.Context, cmd *commandRequest) (*commandResponse, error) {
	opts := cli.resolve(cmd.layers...)

	body, err := encodeCommandBody(cmd, opts.encodeHooks())
	if err != nil {
		return nil, err
	}

	target := cli.commandURL(&opts, cmd.segments)

	ctx, cancel := requestContext(ctx, opts.RequestTimeout)
	defer cancel()
	ctx = withConnectTimeout(ctx, opts.ConnectTimeout)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	cli.addHeaders(req, &opts)

	log.G(ctx).WithFields(log.Fields{
		"command": cmd.name,
		"url":     target,
	}).Debug("sending command")

	resp, err := cli.doRequest(req, &opts)
	if err != nil {
		return nil, classifyTransportError(ctx, cli.base.Host, err)
	}
	defer ensureReaderClosed(resp)

	respBody, err := readLimitedBody(resp)
	if err != nil {
		// The budgets keep running while the body streams; attribute a
		// mid-read expiry to whichever source fired.
		if cerr := contextError(ctx); cerr != nil {
			return nil, cerr
		}
		return nil, err
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, httpError(resp.StatusCode, respBody)
	}

	env := &commandResponse{}
	if len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, env); err != nil {
			return nil, ejson.FormatErrorf("malformed response envelope: %v", err)
		}
	}
	if len(env.Errors) > 0 {
		return nil, &APIError{Errors: env.Errors}
	}
	return env, nil
}

// encodeCommandBody builds {"<name>": payload}, or the bare payload for
// unnamed raw commands.
func encodeCommandBody(cmd *commandRequest, h ejson.Hooks) ([]byte, error) {
	wire, err := ejson.EncodeValue(cmd.payload, h)
	if err != nil {
		return nil, err
	}
	if cmd.name == "" {
		return json.Marshal(wire)
	}
	return json.Marshal(map[string]any{cmd.name: wire})
}

// commandURL joins endpoint, fixed API segments and the operation's own
// segments, trimming redundant separators on every piece.
func (cli *Client) commandURL(opts *CommandOptions, segments []string) string {
	version := opts.APIVersion
	if version == "" {
		version = defaultAPIVersion
	}
	keyspace := opts.Keyspace
	if keyspace == "" {
		keyspace = defaultKeyspace
	}
	parts := append([]string{apiBasePath, version, keyspace}, segments...)
	var b strings.Builder
	b.WriteString(strings.TrimRight(cli.base.String(), "/"))
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p == "" {
			continue
		}
		b.WriteString("/")
		b.WriteString(p)
	}
	return b.String()
}

func (cli *Client) addHeaders(req *http.Request, opts *CommandOptions) {
	for k, vals := range opts.Headers {
		req.Header[http.CanonicalHeaderKey(k)] = vals
	}
	if opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.Token)
		req.Header.Set("Token", opts.Token)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if cli.userAgent != nil {
		if *cli.userAgent == "" {
			req.Header.Del("User-Agent")
		} else {
			req.Header.Set("User-Agent", *cli.userAgent)
		}
	}
}

// doRequest performs the round trip with the per-call HTTP behavior from the
// effective configuration. The redirect policy and protocol version are read
// here, at call time, never cached earlier; the underlying connection pool
// is shared either way.
func (cli *Client) doRequest(req *http.Request, opts *CommandOptions) (*http.Response, error) {
	httpClient := *cli.client
	if opts.HTTPVersion == 1 && cli.h1Client != nil {
		httpClient = *cli.h1Client
	}
	if !opts.followRedirects() {
		httpClient.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return httpClient.Do(req)
}

func readLimitedBody(resp *http.Response) ([]byte, error) {
	if resp.Body == nil {
		return nil, nil
	}
	// Cap how much of a response we are willing to buffer.
	const bodyMax = 8 * 1024 * 1024
	body, err := io.ReadAll(io.LimitReader(resp.Body, bodyMax))
	if err != nil {
		return nil, err
	}
	return body, nil
}

func ensureReaderClosed(resp *http.Response) {
	if resp != nil && resp.Body != nil {
		// Drain a little so the transport can reuse the connection.
		_, _ = io.CopyN(io.Discard, resp.Body, 512)
		_ = resp.Body.Close()
	}
}
