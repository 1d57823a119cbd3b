// Package client provides a Go client for the CV API.
//
// The client wraps the REST endpoints serving CV nodes: the full graph,
// single nodes, children listings, search, and the editing commands. It
// handles response caching, automatic retries for transient failures, and
// bearer token authentication for edit operations.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fschmidt/virtualcv/pkg/cv"
	cverrors "github.com/fschmidt/virtualcv/pkg/errors"
	"github.com/fschmidt/virtualcv/pkg/httputil"
	"github.com/fschmidt/virtualcv/pkg/observability"
)

const httpTimeout = 10 * time.Second

var (
	// ErrNotFound is returned when a node doesn't exist on the server.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")

	// ErrUnauthorized is returned when an edit operation lacks a valid session.
	ErrUnauthorized = errors.New("unauthorized")
)

// Client provides access to the CV API.
// It handles HTTP requests with caching, automatic retries, and optional
// bearer token authentication for edit operations.
type Client struct {
	http    *http.Client
	cache   *httputil.Cache
	baseURL string
	token   string

	// cacheStale forces the next GetData past the cache after an edit.
	cacheStale bool
}

// New creates a CV API client for the given base URL.
// Pass an empty token for read-only access; edit operations require a
// session token obtained from the login flow.
func New(baseURL, token string, cacheTTL time.Duration) (*Client, error) {
	if err := cverrors.ValidateURL(baseURL); err != nil {
		return nil, err
	}
	cache, err := httputil.NewCache("", cacheTTL)
	if err != nil {
		return nil, err
	}
	return &Client{
		http:    &http.Client{Timeout: httpTimeout},
		cache:   cache.Namespace("cvapi:"),
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
	}, nil
}

// =============================================================================
// Queries
// =============================================================================

// GetData fetches the full CV graph. Responses are cached; pass refresh to
// bypass the cache after edits.
func (c *Client) GetData(ctx context.Context, refresh bool) (cv.Data, error) {
	var envelope DataDTO
	key := "cv"
	if !refresh && !c.cacheStale {
		if ok, _ := c.cache.Get(key, &envelope); ok {
			return ToData(envelope.Nodes), nil
		}
	}

	err := httputil.RetryWithBackoff(ctx, func() error {
		return c.get(ctx, "/cv", &envelope)
	})
	if err != nil {
		return cv.Data{}, err
	}
	_ = c.cache.Set(key, envelope)
	c.cacheStale = false
	return ToData(envelope.Nodes), nil
}

// GetNode fetches a single node by id.
func (c *Client) GetNode(ctx context.Context, id string) (cv.Node, error) {
	var dto NodeDTO
	err := httputil.RetryWithBackoff(ctx, func() error {
		return c.get(ctx, "/cv/nodes/"+url.PathEscape(id), &dto)
	})
	if err != nil {
		return cv.Node{}, err
	}
	return ToNode(dto), nil
}

// Children fetches the children of a node.
func (c *Client) Children(ctx context.Context, id string) ([]cv.Node, error) {
	var dtos []NodeDTO
	err := httputil.RetryWithBackoff(ctx, func() error {
		return c.get(ctx, "/cv/nodes/"+url.PathEscape(id)+"/children", &dtos)
	})
	if err != nil {
		return nil, err
	}
	nodes := make([]cv.Node, 0, len(dtos))
	for _, dto := range dtos {
		nodes = append(nodes, ToNode(dto))
	}
	return nodes, nil
}

// Search finds nodes matching the query.
func (c *Client) Search(ctx context.Context, query string) ([]cv.Node, error) {
	var dtos []NodeDTO
	path := "/cv/search?q=" + url.QueryEscape(query)
	err := httputil.RetryWithBackoff(ctx, func() error {
		return c.get(ctx, path, &dtos)
	})
	if err != nil {
		return nil, err
	}
	nodes := make([]cv.Node, 0, len(dtos))
	for _, dto := range dtos {
		nodes = append(nodes, ToNode(dto))
	}
	return nodes, nil
}

// =============================================================================
// Commands
// =============================================================================

// createPaths routes node types to their type-specific create endpoints.
var createPaths = map[cv.NodeType]string{
	cv.TypeProfile:    "/cv/nodes/profile",
	cv.TypeCategory:   "/cv/nodes/category",
	cv.TypeItem:       "/cv/nodes/item",
	cv.TypeSkillGroup: "/cv/nodes/skill-group",
	cv.TypeSkill:      "/cv/nodes/skill",
}

// CreateNode creates a node through its type-specific endpoint and
// invalidates the cached graph.
func (c *Client) CreateNode(ctx context.Context, node cv.Node) (cv.Node, error) {
	path, ok := createPaths[node.Type]
	if !ok {
		return cv.Node{}, fmt.Errorf("unknown node type: %q", node.Type)
	}

	var created NodeDTO
	if err := c.do(ctx, http.MethodPost, path, FromNode(node), &created); err != nil {
		return cv.Node{}, err
	}
	c.ClearCache()
	return ToNode(created), nil
}

// UpdateNode applies an update command. The command's ID must match the
// node being updated; the server rejects mismatches.
func (c *Client) UpdateNode(ctx context.Context, cmd UpdateCommand) (cv.Node, error) {
	var updated NodeDTO
	path := "/cv/nodes/" + url.PathEscape(cmd.ID)
	if err := c.do(ctx, http.MethodPut, path, cmd, &updated); err != nil {
		return cv.Node{}, err
	}
	c.ClearCache()
	return ToNode(updated), nil
}

// DeleteNode deletes a node and its subtree.
func (c *Client) DeleteNode(ctx context.Context, id string) error {
	path := "/cv/nodes/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return err
	}
	c.ClearCache()
	return nil
}

// SavePositions persists dragged node coordinates, one update per node.
func (c *Client) SavePositions(ctx context.Context, positions []cv.Position) error {
	for _, pos := range positions {
		x, y := pos.X, pos.Y
		cmd := UpdateCommand{ID: pos.NodeID, PositionX: &x, PositionY: &y}
		if _, err := c.UpdateNode(ctx, cmd); err != nil {
			return fmt.Errorf("save position for %s: %w", pos.NodeID, err)
		}
	}
	return nil
}

// ClearCache marks the cached graph stale, forcing the next GetData to
// refetch.
func (c *Client) ClearCache() {
	c.cacheStale = true
}

// =============================================================================
// Transport
// =============================================================================

// get performs a GET request and decodes the JSON response into v.
func (c *Client) get(ctx context.Context, path string, v any) error {
	return c.roundTrip(ctx, http.MethodGet, path, nil, v)
}

// do performs a mutating request with retry semantics.
func (c *Client) do(ctx context.Context, method, path string, body, v any) error {
	return httputil.RetryWithBackoff(ctx, func() error {
		return c.roundTrip(ctx, method, path, body, v)
	})
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body, v any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	observability.HTTP().OnRequest(ctx, method, req.URL.Host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, method, req.URL.Host, path, err)
		return &httputil.RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	defer resp.Body.Close()

	observability.HTTP().OnResponse(ctx, method, req.URL.Host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func checkStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return ErrUnauthorized
	case code >= 500:
		return &httputil.RetryableError{Err: fmt.Errorf("%w: status %d", ErrNetwork, code)}
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
