package dataapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// transportFunc allows tests to substitute the transport with a function.
type transportFunc func(*http.Request) (*http.Response, error)

func (tf transportFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return tf(req)
}

func newMockClient(doer transportFunc, ops ...Opt) (*Client, error) {
	base := []Opt{
		WithEndpoint("https://db.test"),
		WithHTTPClient(&http.Client{Transport: doer}),
	}
	return New(append(base, ops...)...)
}

func mockResponse(statusCode int, body string) transportFunc {
	return func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: statusCode,
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Body:       io.NopCloser(strings.NewReader(body)),
		}, nil
	}
}

func errorMock(statusCode int, message string) transportFunc {
	return mockResponse(statusCode, message)
}

func assertRequest(req *http.Request, method, path string) error {
	if req.Method != method {
		return fmt.Errorf("expected method %s, got %s", method, req.Method)
	}
	if req.URL.Path != path {
		return fmt.Errorf("expected path %s, got %s", path, req.URL.Path)
	}
	return nil
}

// decodeBody reads the request body as generic JSON for payload assertions.
func decodeBody(req *http.Request) (map[string]any, error) {
	raw, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("malformed request body %q: %w", raw, err)
	}
	return body, nil
}
