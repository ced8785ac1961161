package dataapi

import (
	"fmt"
	"net/http"
	"testing"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/google/uuid"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func TestInsertOne(t *testing.T) {
	cli, err := newMockClient(func(req *http.Request) (*http.Response, error) {
		if err := assertRequest(req, http.MethodPost, "/api/json/v1/ks/people"); err != nil {
			return nil, err
		}
		body, err := decodeBody(req)
		if err != nil {
			return nil, err
		}
		doc := body["insertOne"].(map[string]any)["document"].(map[string]any)
		id, ok := doc["_id"].(map[string]any)
		if !ok || id["$uuid"] == nil {
			return nil, fmt.Errorf("generated _id not sent as $uuid: %v", doc["_id"])
		}
		return mockResponse(http.StatusOK, fmt.Sprintf(`{"status":{"insertedIds":[{"$uuid":%q}]}}`, id["$uuid"]))(req)
	})
	assert.NilError(t, err)

	result, err := cli.Database("ks").Collection("people").InsertOne(t.Context(), Document{"name": "ada"}, InsertOneOptions{})
	assert.NilError(t, err)
	_, ok := result.InsertedID.(uuid.UUID)
	assert.Check(t, ok, "inserted id decoded as %T", result.InsertedID)
}

func TestInsertOneKeepsExplicitID(t *testing.T) {
	cli, err := newMockClient(func(req *http.Request) (*http.Response, error) {
		body, err := decodeBody(req)
		if err != nil {
			return nil, err
		}
		doc := body["insertOne"].(map[string]any)["document"].(map[string]any)
		if doc["_id"] != "user-7" {
			return nil, fmt.Errorf("explicit _id rewritten: %v", doc["_id"])
		}
		return mockResponse(http.StatusOK, `{"status":{"insertedIds":["user-7"]}}`)(req)
	})
	assert.NilError(t, err)

	result, err := cli.Database("ks").Collection("people").InsertOne(t.Context(), Document{"_id": "user-7"}, InsertOneOptions{})
	assert.NilError(t, err)
	assert.Check(t, is.Equal(result.InsertedID, "user-7"))
}

func TestInsertOneEmptyIDRejected(t *testing.T) {
	cli, err := newMockClient(mockResponse(http.StatusOK, `{}`))
	assert.NilError(t, err)

	_, err = cli.Database("ks").Collection("people").InsertOne(t.Context(), Document{"_id": ""}, InsertOneOptions{})
	assert.Check(t, is.ErrorIs(err, cerrdefs.ErrInvalidArgument))
}

func TestInsertOneDoesNotMutateCallerDocument(t *testing.T) {
	cli, err := newMockClient(mockResponse(http.StatusOK, `{"status":{"insertedIds":["x"]}}`))
	assert.NilError(t, err)

	doc := Document{"name": "ada"}
	_, err = cli.Database("ks").Collection("people").InsertOne(t.Context(), doc, InsertOneOptions{})
	assert.NilError(t, err)
	_, present := doc["_id"]
	assert.Check(t, !present, "caller document must not gain a generated _id")
}
