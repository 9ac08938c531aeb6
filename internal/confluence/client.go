// Package confluence is a minimal Confluence Cloud REST v2 client covering
// the page and space operations the CLI needs. Page bodies travel as raw
// atlas_doc_format JSON so unknown document fields survive a round trip.
package confluence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const v2 = "/wiki/api/v2"

// APIError is a non-2xx response from the Confluence API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200]
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, body)
}

// Version is the version stanza attached to pages.
type Version struct {
	Number    int    `json:"number"`
	CreatedAt string `json:"createdAt"`
	Message   string `json:"message,omitempty"`
}

// Page is a single page with its decoded ADF body.
type Page struct {
	ID       string
	Title    string
	SpaceID  string
	ParentID string
	Version  Version
	Body     json.RawMessage
}

// PageSummary is a page as returned by space listings, without a body.
type PageSummary struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	ParentID string  `json:"parentId"`
	Version  Version `json:"version"`
}

// Space identifies a Confluence space.
type Space struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

// Client talks to one Confluence Cloud site using basic auth.
// It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	base       string
	email      string
	token      string

	mu     sync.Mutex
	spaces map[string]Space
}

// NewClient returns a client for the site at baseURL.
func NewClient(baseURL, email, token string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		base:       strings.TrimRight(baseURL, "/"),
		email:      email,
		token:      token,
		spaces:     make(map[string]Space),
	}
}

// GetPage fetches a single page with its ADF body. The API ships the body
// as a JSON string inside the response, so it is decoded a second time.
func (c *Client) GetPage(ctx context.Context, pageID string) (*Page, error) {
	var wire struct {
		ID       string  `json:"id"`
		Title    string  `json:"title"`
		SpaceID  string  `json:"spaceId"`
		ParentID string  `json:"parentId"`
		Version  Version `json:"version"`
		Body     struct {
			AtlasDocFormat struct {
				Value string `json:"value"`
			} `json:"atlas_doc_format"`
		} `json:"body"`
	}
	path := v2 + "/pages/" + pageID + "?" + url.Values{"body-format": {"atlas_doc_format"}}.Encode()
	if err := c.do(ctx, http.MethodGet, c.base+path, nil, &wire); err != nil {
		return nil, err
	}

	page := &Page{
		ID:       wire.ID,
		Title:    wire.Title,
		SpaceID:  wire.SpaceID,
		ParentID: wire.ParentID,
		Version:  wire.Version,
	}
	if value := wire.Body.AtlasDocFormat.Value; value != "" {
		if json.Valid([]byte(value)) {
			page.Body = json.RawMessage(value)
		} else {
			page.Body, _ = json.Marshal(value)
		}
	}
	return page, nil
}

// GetSpace looks up a space by key. Results are cached.
func (c *Client) GetSpace(ctx context.Context, key string) (Space, error) {
	if space, ok := c.cachedSpace(key); ok {
		return space, nil
	}

	var wire struct {
		Results []Space `json:"results"`
	}
	path := v2 + "/spaces?" + url.Values{"keys": {key}}.Encode()
	if err := c.do(ctx, http.MethodGet, c.base+path, nil, &wire); err != nil {
		return Space{}, err
	}
	if len(wire.Results) == 0 {
		return Space{}, &APIError{Status: 404, Body: "Space not found: " + key}
	}

	space := wire.Results[0]
	c.cacheSpace(space)
	return space, nil
}

// GetSpaceByID looks up a space by ID. Results are cached.
func (c *Client) GetSpaceByID(ctx context.Context, spaceID string) (Space, error) {
	if space, ok := c.cachedSpace(spaceID); ok {
		return space, nil
	}

	var space Space
	if err := c.do(ctx, http.MethodGet, c.base+v2+"/spaces/"+spaceID, nil, &space); err != nil {
		return Space{}, err
	}

	c.cacheSpace(space)
	return space, nil
}

func (c *Client) cachedSpace(keyOrID string) (Space, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	space, ok := c.spaces[keyOrID]
	return space, ok
}

func (c *Client) cacheSpace(space Space) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if space.Key != "" {
		c.spaces[space.Key] = space
	}
	c.spaces[space.ID] = space
}

// ListPages returns every page in a space, following cursor pagination.
func (c *Client) ListPages(ctx context.Context, spaceID string) ([]PageSummary, error) {
	var pages []PageSummary
	next := c.base + v2 + "/spaces/" + spaceID + "/pages?limit=250&sort=id"
	for next != "" {
		var wire struct {
			Results []PageSummary `json:"results"`
			Links   struct {
				Next string `json:"next"`
			} `json:"_links"`
		}
		if err := c.do(ctx, http.MethodGet, next, nil, &wire); err != nil {
			return nil, err
		}
		pages = append(pages, wire.Results...)

		switch link := wire.Links.Next; {
		case link == "":
			next = ""
		case strings.HasPrefix(link, "/"):
			next = c.base + link
		default:
			next = link
		}
	}
	return pages, nil
}

type updateRequest struct {
	ID      string        `json:"id"`
	Status  string        `json:"status"`
	Title   string        `json:"title"`
	Body    updateBody    `json:"body"`
	Version updateVersion `json:"version"`
}

type updateBody struct {
	Representation string `json:"representation"`
	Value          string `json:"value"`
}

type updateVersion struct {
	Number  int    `json:"number"`
	Message string `json:"message"`
}

// UpdatePage replaces a page body and title at the given new version
// number. An empty message gets the standard one.
func (c *Client) UpdatePage(ctx context.Context, pageID, title string, body json.RawMessage, newVersion int, message string) (*Page, error) {
	if message == "" {
		message = "Updated via confluence CLI"
	}
	payload := updateRequest{
		ID:     pageID,
		Status: "current",
		Title:  title,
		Body: updateBody{
			Representation: "atlas_doc_format",
			Value:          string(body),
		},
		Version: updateVersion{
			Number:  newVersion,
			Message: message,
		},
	}

	var wire struct {
		ID      string  `json:"id"`
		Title   string  `json:"title"`
		SpaceID string  `json:"spaceId"`
		Version Version `json:"version"`
	}
	if err := c.do(ctx, http.MethodPut, c.base+v2+"/pages/"+pageID, payload, &wire); err != nil {
		return nil, err
	}

	return &Page{
		ID:      wire.ID,
		Title:   wire.Title,
		SpaceID: wire.SpaceID,
		Version: wire.Version,
	}, nil
}

func (c *Client) do(ctx context.Context, method, rawURL string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.email, c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Body: string(data)}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}
