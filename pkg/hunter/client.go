package hunter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

// Default base URL for the Hunter v2 API.
const defaultBaseURL = "https://api.hunter.io/v2"

// Client defines the Hunter email-finder operations.
type Client interface {
	FindEmail(ctx context.Context, req FindRequest) (*FindResult, error)
}

// FindRequest identifies the person to look up. Hunter requires all three
// fields; callers enforce that before issuing the request.
type FindRequest struct {
	Domain    string
	FirstName string
	LastName  string
}

// FindResult is a successful email match.
type FindResult struct {
	Email string
	Score int
}

// findEnvelope is the wire shape of GET /email-finder.
type findEnvelope struct {
	Data struct {
		Email string `json:"email"`
		Score int    `json:"score"`
	} `json:"data"`
	Errors []struct {
		ID      string `json:"id"`
		Details string `json:"details"`
	} `json:"errors"`
}

// APIError is returned when Hunter responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("hunter: HTTP %d: %s", e.StatusCode, e.Body)
}

// ErrNoMatch is returned when Hunter finds no email for the person.
var ErrNoMatch = eris.New("hunter: no email match")

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

// NewClient creates a new Hunter client.
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

func (c *httpClient) FindEmail(ctx context.Context, fr FindRequest) (*FindResult, error) {
	q := url.Values{}
	q.Set("domain", fr.Domain)
	q.Set("first_name", fr.FirstName)
	q.Set("last_name", fr.LastName)
	q.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/email-finder?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "hunter: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "hunter: execute request")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "hunter: read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Body:       string(data),
		}
	}

	var envelope findEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, eris.Wrap(err, "hunter: decode response")
	}

	if envelope.Data.Email == "" {
		return nil, ErrNoMatch
	}

	return &FindResult{
		Email: envelope.Data.Email,
		Score: envelope.Data.Score,
	}, nil
}
