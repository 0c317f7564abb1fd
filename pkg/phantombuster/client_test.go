package phantombuster

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLaunch_ContainerID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/agent/agent-1/launch", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Phantombuster-Key-1"))
		_, _ = w.Write([]byte(`{"containerId":"c-123","status":"running"}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.Launch(context.Background(), "agent-1", LaunchRequest{})
	require.NoError(t, err)
	assert.Equal(t, "c-123", resp.ContainerID)
	assert.Nil(t, resp.InlineRows())
}

func TestLaunch_InlineResultObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"resultObject":[{"fullName":"Jane Doe"},{"fullName":"John Roe"}]}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.Launch(context.Background(), "agent-1", LaunchRequest{})
	require.NoError(t, err)

	rows := resp.InlineRows()
	require.Len(t, rows, 2)
	assert.Equal(t, "Jane Doe", rows[0]["fullName"])
}

func TestLaunch_InlineNestedOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"output":{"resultObject":[{"fullName":"Jane Doe"}]}}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.Launch(context.Background(), "agent-1", LaunchRequest{})
	require.NoError(t, err)
	require.Len(t, resp.InlineRows(), 1)
}

func TestLaunch_InlineOutputArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"output":[{"fullName":"Jane Doe"}]}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.Launch(context.Background(), "agent-1", LaunchRequest{})
	require.NoError(t, err)
	require.Len(t, resp.InlineRows(), 1)
}

func TestLaunch_SendsArgument(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"containerId":"c-1"}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.Launch(context.Background(), "agent-1", LaunchRequest{
		Argument: map[string]any{"search": "food NY"},
	})
	require.NoError(t, err)

	arg, ok := got["argument"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "food NY", arg["search"])
}

func TestLaunch_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid key"}`))
	}))
	defer srv.Close()

	client := NewClient("bad-key", WithBaseURL(srv.URL))
	_, err := client.Launch(context.Background(), "agent-1", LaunchRequest{})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "invalid key")
}

func TestGetContainerStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/container/c-9", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":"c-9","status":"finished","exitCode":0}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.GetContainerStatus(context.Background(), "c-9")
	require.NoError(t, err)
	assert.Equal(t, "finished", resp.Status)
	require.NotNil(t, resp.ExitCode)
	assert.Equal(t, 0, *resp.ExitCode)
}

func TestFetchResult_JSONEncodedString(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/container/c-9/result-object", r.URL.Path)
		_, _ = w.Write([]byte(`{"resultObject":"[{\"fullName\":\"Jane Doe\"}]"}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.FetchResult(context.Background(), "c-9")
	require.NoError(t, err)

	rows, err := resp.Rows()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Jane Doe", rows[0]["fullName"])
}

func TestFetchAgentOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/agent/agent-1/output", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"finished","resultObject":[{"fullName":"Jane Doe"}]}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.FetchAgentOutput(context.Background(), "agent-1")
	require.NoError(t, err)

	rows, err := resp.Rows()
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestDecodeRows(t *testing.T) {
	t.Run("array", func(t *testing.T) {
		rows, err := DecodeRows(json.RawMessage(`[{"a":"b"}]`))
		require.NoError(t, err)
		require.Len(t, rows, 1)
	})

	t.Run("encoded string", func(t *testing.T) {
		rows, err := DecodeRows(json.RawMessage(`"[{\"a\":\"b\"}]"`))
		require.NoError(t, err)
		require.Len(t, rows, 1)
	})

	t.Run("missing", func(t *testing.T) {
		rows, err := DecodeRows(nil)
		require.NoError(t, err)
		assert.Nil(t, rows)
	})

	t.Run("null", func(t *testing.T) {
		rows, err := DecodeRows(json.RawMessage(`null`))
		require.NoError(t, err)
		assert.Nil(t, rows)
	})

	t.Run("empty string", func(t *testing.T) {
		rows, err := DecodeRows(json.RawMessage(`""`))
		require.NoError(t, err)
		assert.Nil(t, rows)
	})

	t.Run("not an array", func(t *testing.T) {
		_, err := DecodeRows(json.RawMessage(`{"a":"b"}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not an array")
	})

	t.Run("empty array", func(t *testing.T) {
		rows, err := DecodeRows(json.RawMessage(`[]`))
		require.NoError(t, err)
		assert.Empty(t, rows)
	})
}
