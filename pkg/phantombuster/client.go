package phantombuster

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

// Default base URL for the Phantombuster v2 API.
const defaultBaseURL = "https://api.phantombuster.com/api/v2"

// Client defines the Phantombuster API operations this service uses.
type Client interface {
	Launch(ctx context.Context, agentID string, req LaunchRequest) (*LaunchResponse, error)
	GetContainerStatus(ctx context.Context, id string) (*ContainerStatusResponse, error)
	FetchResult(ctx context.Context, containerID string) (*ResultResponse, error)
	FetchAgentOutput(ctx context.Context, agentID string) (*ResultResponse, error)
}

// LaunchRequest is the body for POST /agent/{id}/launch. The argument is
// merged into the agent's saved configuration for this run.
type LaunchRequest struct {
	Argument map[string]any `json:"argument,omitempty"`
}

// LaunchResponse is the response from POST /agent/{id}/launch. Depending on
// the agent and API version the result rows may be returned inline, or only
// a container id for asynchronous completion.
type LaunchResponse struct {
	ContainerID  string          `json:"containerId"`
	Status       string          `json:"status"`
	ResultObject json.RawMessage `json:"resultObject,omitempty"`
	Output       json.RawMessage `json:"output,omitempty"`
}

// InlineRows returns the result rows embedded in the launch response, if
// any. Agents that finish synchronously return rows under resultObject,
// output.resultObject, or output itself; shapes that hold no usable rows
// yield nil.
func (r *LaunchResponse) InlineRows() []map[string]any {
	if rows, err := DecodeRows(r.ResultObject); err == nil && rows != nil {
		return rows
	}
	if len(r.Output) > 0 {
		var nested struct {
			ResultObject json.RawMessage `json:"resultObject"`
		}
		if err := json.Unmarshal(r.Output, &nested); err == nil {
			if rows, err := DecodeRows(nested.ResultObject); err == nil && rows != nil {
				return rows
			}
		}
		if rows, err := DecodeRows(r.Output); err == nil && rows != nil {
			return rows
		}
	}
	return nil
}

// ContainerStatusResponse is the response from GET /container/{id}.
type ContainerStatusResponse struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	ExitCode *int   `json:"exitCode,omitempty"`
}

// ResultResponse is the response from GET /container/{id}/result-object and
// GET /agent/{id}/output. ResultObject may be a JSON array or a JSON-encoded
// string holding one.
type ResultResponse struct {
	Status       string          `json:"status"`
	ResultObject json.RawMessage `json:"resultObject"`
}

// Rows decodes the result object into raw profile rows.
func (r *ResultResponse) Rows() ([]map[string]any, error) {
	return DecodeRows(r.ResultObject)
}

// DecodeRows decodes a result object into row maps. Phantombuster returns
// either a JSON array or a JSON string containing one; both are accepted.
// A missing or null value decodes to nil rows without error.
func DecodeRows(raw json.RawMessage) ([]map[string]any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] == '"' {
		var encoded string
		if err := json.Unmarshal(trimmed, &encoded); err != nil {
			return nil, eris.Wrap(err, "phantombuster: decode result string")
		}
		if encoded == "" {
			return nil, nil
		}
		trimmed = bytes.TrimSpace([]byte(encoded))
	}
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, eris.New("phantombuster: result object is not an array")
	}
	var rows []map[string]any
	if err := json.Unmarshal(trimmed, &rows); err != nil {
		return nil, eris.Wrap(err, "phantombuster: decode result rows")
	}
	return rows, nil
}

// APIError is returned when Phantombuster responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("phantombuster: HTTP %d: %s", e.StatusCode, e.Body)
}

// Option configures the httpClient.
type Option func(*httpClient)

// WithBaseURL overrides the default base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// httpClient implements Client using net/http.
type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a new Phantombuster client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Launch(ctx context.Context, agentID string, req LaunchRequest) (*LaunchResponse, error) {
	var resp LaunchResponse
	if err := c.post(ctx, fmt.Sprintf("/agent/%s/launch", agentID), req, &resp); err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("phantombuster: launch agent %s", agentID))
	}
	return &resp, nil
}

func (c *httpClient) GetContainerStatus(ctx context.Context, id string) (*ContainerStatusResponse, error) {
	var resp ContainerStatusResponse
	if err := c.get(ctx, fmt.Sprintf("/container/%s", id), &resp); err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("phantombuster: get container status %s", id))
	}
	return &resp, nil
}

func (c *httpClient) FetchResult(ctx context.Context, containerID string) (*ResultResponse, error) {
	var resp ResultResponse
	if err := c.get(ctx, fmt.Sprintf("/container/%s/result-object", containerID), &resp); err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("phantombuster: fetch result %s", containerID))
	}
	return &resp, nil
}

func (c *httpClient) FetchAgentOutput(ctx context.Context, agentID string) (*ResultResponse, error) {
	var resp ResultResponse
	if err := c.get(ctx, fmt.Sprintf("/agent/%s/output", agentID), &resp); err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("phantombuster: fetch agent output %s", agentID))
	}
	return &resp, nil
}

func (c *httpClient) post(ctx context.Context, path string, body any, out any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return eris.Wrap(err, "marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Phantombuster-Key-1", c.apiKey)

	return c.do(req, out)
}

func (c *httpClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	req.Header.Set("X-Phantombuster-Key-1", c.apiKey)

	return c.do(req, out)
}

func (c *httpClient) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "execute request")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Body:       string(data),
		}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return eris.Wrap(err, "decode response")
	}

	return nil
}
