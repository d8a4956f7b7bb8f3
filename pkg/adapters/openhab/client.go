// Package openhab connects cuevox to the openHAB REST API: items become
// entities and commands are posted back to them.
package openhab

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/JanMattner/cuevox/pkg/domain"
)

// Client talks to one openHAB instance.
type Client struct {
	baseURL    string
	token      string
	namespaces []string
	http       *http.Client
}

// Option configures the Client.
type Option func(*Client)

// WithToken authenticates requests with an API token.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http = &http.Client{Timeout: d}
	}
}

// WithMetadata requests additional metadata namespaces besides synonyms.
func WithMetadata(namespaces ...string) Option {
	return func(c *Client) {
		c.namespaces = append(c.namespaces, namespaces...)
	}
}

// New creates a client for the instance at baseURL (e.g. http://openhab:8080).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		namespaces: []string{domain.AliasNamespace},
		http:       &http.Client{Timeout: 5 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type restItem struct {
	Name       string   `json:"name"`
	Label      string   `json:"label"`
	Type       string   `json:"type"`
	Tags       []string `json:"tags"`
	GroupNames []string `json:"groupNames"`
	Metadata   map[string]struct {
		Value string `json:"value"`
	} `json:"metadata"`
}

// LoadItems implements ports.ItemSource.
func (c *Client) LoadItems(ctx context.Context) ([]domain.ItemSpec, error) {
	q := url.Values{}
	q.Set("metadata", strings.Join(c.namespaces, ","))
	q.Set("recursive", "false")

	resp, err := c.do(ctx, http.MethodGet, "/rest/items?"+q.Encode(), "", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var items []restItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode items: %w", err)
	}

	specs := make([]domain.ItemSpec, 0, len(items))
	for _, it := range items {
		spec := domain.ItemSpec{
			Name:   it.Name,
			Label:  it.Label,
			Kind:   it.Type,
			Tags:   it.Tags,
			Groups: it.GroupNames,
		}
		if len(it.Metadata) > 0 {
			spec.Metadata = make(map[string]string, len(it.Metadata))
			for ns, md := range it.Metadata {
				spec.Metadata[ns] = md.Value
			}
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// Send implements domain.CommandSink by posting the payload as plain text.
func (c *Client) Send(ctx context.Context, cmd domain.Command) error {
	body := fmt.Sprint(cmd.Payload)
	resp, err := c.do(ctx, http.MethodPost, "/rest/items/"+url.PathEscape(cmd.Target), "text/plain", strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("command %s to %s: %w", body, cmd.Target, err)
	}
	resp.Body.Close()
	return nil
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openhab request failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	return resp, nil
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("openhab %s %s: %d %s", e.Method, e.Path, e.Code, e.Body)
}
