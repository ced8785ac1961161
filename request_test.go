package dataapi

import (
	"errors"
	"net/http"
	"testing"

	cerrdefs "github.com/containerd/errdefs"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func TestCommandURL(t *testing.T) {
	testCases := []struct {
		doc      string
		endpoint string
		opts     CommandOptions
		segments []string
		want     string
	}{
		{
			doc:      "defaults",
			endpoint: "https://db.test",
			want:     "https://db.test/api/json/v1/default_keyspace",
		},
		{
			doc:      "collection path",
			endpoint: "https://db.test",
			opts:     CommandOptions{Keyspace: "ks"},
			segments: []string{"people"},
			want:     "https://db.test/api/json/v1/ks/people",
		},
		{
			doc:      "redundant separators trimmed",
			endpoint: "https://db.test/",
			opts:     CommandOptions{Keyspace: "/ks/", APIVersion: "/v2/"},
			segments: []string{"/people/"},
			want:     "https://db.test/api/json/v2/ks/people",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.doc, func(t *testing.T) {
			cli, err := New(WithEndpoint(tc.endpoint))
			assert.NilError(t, err)
			got := cli.commandURL(&tc.opts, tc.segments)
			assert.Check(t, is.Equal(got, tc.want))
		})
	}
}

func TestRunCommandHeaders(t *testing.T) {
	cli, err := newMockClient(func(req *http.Request) (*http.Response, error) {
		if req.Header.Get("Authorization") != "Bearer secret" {
			return nil, errors.New("missing Authorization header")
		}
		if req.Header.Get("Token") != "secret" {
			return nil, errors.New("missing Token header")
		}
		if req.Header.Get("Accept") != "application/json" {
			return nil, errors.New("missing Accept header")
		}
		if req.Header.Get("X-Custom") != "yes" {
			return nil, errors.New("missing custom header")
		}
		return mockResponse(http.StatusOK, `{}`)(req)
	}, WithToken("secret"), WithHTTPHeaders(map[string]string{"X-Custom": "yes"}))
	assert.NilError(t, err)

	_, err = cli.runCommand(t.Context(), &commandRequest{name: "findCollections", payload: map[string]any{}})
	assert.NilError(t, err)
}

func TestRunCommandStatusClassification(t *testing.T) {
	t.Run("unauthorized", func(t *testing.T) {
		cli, err := newMockClient(errorMock(http.StatusUnauthorized, "bad token"))
		assert.NilError(t, err)
		_, err = cli.runCommand(t.Context(), &commandRequest{name: "find", payload: map[string]any{}})
		assert.Check(t, is.ErrorIs(err, cerrdefs.ErrUnauthenticated))
		assert.Check(t, is.ErrorContains(err, "bad token"))
	})

	t.Run("gateway timeout", func(t *testing.T) {
		cli, err := newMockClient(errorMock(http.StatusGatewayTimeout, ""))
		assert.NilError(t, err)
		_, err = cli.runCommand(t.Context(), &commandRequest{name: "find", payload: map[string]any{}})
		assert.Check(t, is.Equal(TimeoutKindOf(err), TimeoutRequest))
	})

	t.Run("generic transport error keeps status and body", func(t *testing.T) {
		cli, err := newMockClient(errorMock(http.StatusServiceUnavailable, "try later"))
		assert.NilError(t, err)
		_, err = cli.runCommand(t.Context(), &commandRequest{name: "find", payload: map[string]any{}})
		assert.Check(t, is.ErrorContains(err, "status 503"))
		assert.Check(t, is.ErrorContains(err, "try later"))
	})

	t.Run("connection failure", func(t *testing.T) {
		cli, err := newMockClient(func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		})
		assert.NilError(t, err)
		_, err = cli.runCommand(t.Context(), &commandRequest{name: "find", payload: map[string]any{}})
		assert.Check(t, IsErrConnectionFailed(err), "got %v", err)
		assert.Check(t, is.ErrorIs(err, cerrdefs.ErrUnavailable))
	})
}

func TestRunCommandEnvelopeErrors(t *testing.T) {
	body := `{"errors":[
		{"message":"collection does not exist","errorCode":"COLLECTION_NOT_EXIST","family":"REQUEST","scope":"DATA","title":"Collection not found"},
		{"message":"second failure","errorCode":"SERVER_ERROR"}
	]}`
	cli, err := newMockClient(mockResponse(http.StatusOK, body))
	assert.NilError(t, err)

	_, err = cli.runCommand(t.Context(), &commandRequest{name: "find", payload: map[string]any{}})
	var apiErr *APIError
	assert.Assert(t, errors.As(err, &apiErr))
	assert.Check(t, is.Len(apiErr.Errors, 2))
	assert.Check(t, is.Equal(apiErr.Errors[0].ErrorCode, "COLLECTION_NOT_EXIST"))
	assert.Check(t, is.Equal(apiErr.Errors[0].Family, "REQUEST"))
	assert.Check(t, is.ErrorContains(err, "2 errors"))
}

func TestRunCommandEmptyBodyIsNoContent(t *testing.T) {
	cli, err := newMockClient(mockResponse(http.StatusOK, ""))
	assert.NilError(t, err)

	resp, err := cli.runCommand(t.Context(), &commandRequest{name: "find", payload: map[string]any{}})
	assert.NilError(t, err)
	assert.Check(t, resp != nil)
	assert.Check(t, is.Len(resp.Errors, 0))
}

func TestRunCommandBody(t *testing.T) {
	cli, err := newMockClient(func(req *http.Request) (*http.Response, error) {
		body, err := decodeBody(req)
		if err != nil {
			return nil, err
		}
		if _, ok := body["findOne"]; !ok {
			return nil, errors.New("payload not wrapped under command name")
		}
		return mockResponse(http.StatusOK, `{}`)(req)
	})
	assert.NilError(t, err)
	_, err = cli.runCommand(t.Context(), &commandRequest{name: "findOne", payload: map[string]any{"filter": map[string]any{}}})
	assert.NilError(t, err)
}

func TestNewRequiresEndpoint(t *testing.T) {
	_, err := New()
	assert.Check(t, is.ErrorIs(err, cerrdefs.ErrInvalidArgument))

	_, err = New(WithEndpoint("not-a-url"))
	assert.Check(t, is.ErrorIs(err, cerrdefs.ErrInvalidArgument))
}
