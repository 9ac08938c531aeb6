package confluence

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const sampleADF = `{"type":"doc","version":1,"content":[{"type":"paragraph","content":[{"type":"text","text":"Hello"}]}]}`

func TestGetPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wiki/api/v2/pages/123" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("body-format"); got != "atlas_doc_format" {
			t.Errorf("expected body-format atlas_doc_format, got %q", got)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "me@example.com" || pass != "secret" {
			t.Errorf("expected basic auth credentials, got %q %q", user, pass)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":       "123",
			"title":    "Runbook",
			"spaceId":  "55",
			"parentId": "9",
			"version":  map[string]any{"number": 3, "createdAt": "2024-01-02T03:04:05Z"},
			"body": map[string]any{
				"atlas_doc_format": map[string]any{
					"representation": "atlas_doc_format",
					"value":          sampleADF,
				},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "me@example.com", "secret")
	page, err := client.GetPage(context.Background(), "123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if page.ID != "123" || page.Title != "Runbook" || page.SpaceID != "55" || page.ParentID != "9" {
		t.Errorf("unexpected page fields: %+v", page)
	}
	if page.Version.Number != 3 {
		t.Errorf("expected version 3, got %d", page.Version.Number)
	}
	if string(page.Body) != sampleADF {
		t.Errorf("expected decoded ADF body, got %s", page.Body)
	}
}

func TestGetPageAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"errors":[{"title":"page not found"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "me@example.com", "secret")
	_, err := client.GetPage(context.Background(), "999")
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Status != 404 {
		t.Errorf("expected status 404, got %d", apiErr.Status)
	}
	if !strings.HasPrefix(err.Error(), "HTTP 404: ") {
		t.Errorf("unexpected error string %q", err.Error())
	}
}

func TestAPIErrorTruncatesBody(t *testing.T) {
	err := &APIError{Status: 500, Body: strings.Repeat("x", 300)}
	want := "HTTP 500: " + strings.Repeat("x", 200)
	if err.Error() != want {
		t.Errorf("expected body truncated to 200 chars, got %d chars", len(err.Error()))
	}
}

func TestGetSpaceCaches(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if got := r.URL.Query().Get("keys"); got != "POL" {
			t.Errorf("expected keys=POL, got %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{{"id": "55", "key": "POL", "name": "Policies"}},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "me@example.com", "secret")

	space, err := client.GetSpace(context.Background(), "POL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if space.ID != "55" || space.Key != "POL" {
		t.Errorf("unexpected space %+v", space)
	}

	if _, err := client.GetSpace(context.Background(), "POL"); err != nil {
		t.Fatalf("unexpected error on cached lookup: %v", err)
	}
	if _, err := client.GetSpaceByID(context.Background(), "55"); err != nil {
		t.Fatalf("unexpected error on cached ID lookup: %v", err)
	}
	if requests != 1 {
		t.Errorf("expected 1 request, got %d", requests)
	}
}

func TestGetSpaceNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"results": []any{}})
	}))
	defer server.Close()

	client := NewClient(server.URL, "me@example.com", "secret")
	_, err := client.GetSpace(context.Background(), "NOPE")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Status != 404 || apiErr.Body != "Space not found: NOPE" {
		t.Errorf("unexpected error %v", apiErr)
	}
}

func TestListPagesPagination(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("cursor") == "" {
			if r.URL.Query().Get("limit") != "250" || r.URL.Query().Get("sort") != "id" {
				t.Errorf("expected limit=250&sort=id, got %q", r.URL.RawQuery)
			}
			json.NewEncoder(w).Encode(map[string]any{
				"results": []map[string]any{
					{"id": "1", "title": "First", "version": map[string]any{"number": 1}},
					{"id": "2", "title": "Second", "version": map[string]any{"number": 5}},
				},
				"_links": map[string]any{
					"next": "/wiki/api/v2/spaces/55/pages?cursor=abc&limit=250&sort=id",
				},
			})
			return
		}
		if got := r.URL.Query().Get("cursor"); got != "abc" {
			t.Errorf("expected cursor abc, got %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"id": "3", "title": "Third", "version": map[string]any{"number": 2}},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "me@example.com", "secret")
	pages, err := client.ListPages(context.Background(), "55")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}
	if pages[2].ID != "3" || pages[2].Version.Number != 2 {
		t.Errorf("unexpected last page %+v", pages[2])
	}
}

func TestUpdatePage(t *testing.T) {
	var got updateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		if r.URL.Path != "/wiki/api/v2/pages/123" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decoding payload: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "123",
			"title":   "Runbook",
			"version": map[string]any{"number": 4, "createdAt": "2024-02-02T00:00:00Z"},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "me@example.com", "secret")
	page, err := client.UpdatePage(context.Background(), "123", "Runbook", json.RawMessage(sampleADF), 4, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.ID != "123" || got.Status != "current" || got.Title != "Runbook" {
		t.Errorf("unexpected payload %+v", got)
	}
	if got.Body.Representation != "atlas_doc_format" {
		t.Errorf("expected atlas_doc_format representation, got %q", got.Body.Representation)
	}
	if got.Body.Value != sampleADF {
		t.Errorf("expected ADF string value, got %q", got.Body.Value)
	}
	if got.Version.Number != 4 || got.Version.Message != "Updated via confluence CLI" {
		t.Errorf("unexpected version stanza %+v", got.Version)
	}

	if page.Version.Number != 4 {
		t.Errorf("expected version 4 back, got %d", page.Version.Number)
	}
	if page.Version.CreatedAt != "2024-02-02T00:00:00Z" {
		t.Errorf("expected createdAt passthrough, got %q", page.Version.CreatedAt)
	}
}

func TestUpdatePageCustomMessage(t *testing.T) {
	var got updateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decoding payload: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "123",
			"title":   "Runbook",
			"version": map[string]any{"number": 5},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "me@example.com", "secret")
	if _, err := client.UpdatePage(context.Background(), "123", "Runbook", json.RawMessage(sampleADF), 5, "rotate keys"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Version.Message != "rotate keys" {
		t.Errorf("expected custom message, got %q", got.Version.Message)
	}
}
