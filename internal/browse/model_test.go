package browse

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/conflu-dev/conflu/internal/confluence"
	"github.com/conflu-dev/conflu/internal/store"
)

func testEntries() []store.IndexEntry {
	return []store.IndexEntry{
		{ID: "101", SpaceKey: "POL", Title: "Access Policy", Version: 2},
		{ID: "102", SpaceKey: "POL", Title: "Incident Response", Version: 1},
		{ID: "201", SpaceKey: "COMPLY", Title: "SOC2 Checklist", Version: 4},
	}
}

func TestMatchesQuery(t *testing.T) {
	tests := []struct {
		name     string
		entry    store.IndexEntry
		words    []string
		expected bool
	}{
		{
			name:     "single word on title",
			entry:    store.IndexEntry{ID: "101", SpaceKey: "POL", Title: "Access Policy"},
			words:    []string{"access"},
			expected: true,
		},
		{
			name:     "all words must match",
			entry:    store.IndexEntry{ID: "101", SpaceKey: "POL", Title: "Access Policy"},
			words:    []string{"pol", "access"},
			expected: true,
		},
		{
			name:     "one miss rejects",
			entry:    store.IndexEntry{ID: "101", SpaceKey: "POL", Title: "Access Policy"},
			words:    []string{"pol", "soc2"},
			expected: false,
		},
		{
			name:     "id substring",
			entry:    store.IndexEntry{ID: "20155", SpaceKey: "COMPLY", Title: "SOC2 Checklist"},
			words:    []string{"015"},
			expected: true,
		},
		{
			name:     "title match is case-insensitive",
			entry:    store.IndexEntry{ID: "101", SpaceKey: "POL", Title: "Access Policy"},
			words:    []string{"policy"},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := pageItem{entry: tt.entry}
			if got := item.matchesQuery(tt.words); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestFilterPages(t *testing.T) {
	m := newModel(testEntries(), t.TempDir())

	m.textInput.SetValue("incident")
	m.filterPages()
	if len(m.filtered) != 1 || m.filtered[0].entry.ID != "102" {
		t.Fatalf("expected only page 102, got %+v", m.filtered)
	}

	m.textInput.SetValue("")
	m.filterPages()
	if len(m.filtered) != 3 {
		t.Errorf("expected all pages on empty query, got %d", len(m.filtered))
	}
}

func TestFilterClampsCursor(t *testing.T) {
	m := newModel(testEntries(), t.TempDir())
	m.cursor = 2

	m.textInput.SetValue("soc2")
	m.filterPages()

	if len(m.filtered) != 1 {
		t.Fatalf("expected one match, got %d", len(m.filtered))
	}
	if m.cursor != 0 {
		t.Errorf("expected cursor clamped to 0, got %d", m.cursor)
	}
}

func TestHandleKeyNavigation(t *testing.T) {
	m := newModel(testEntries(), t.TempDir())

	m.handleKey(tea.KeyMsg{Type: tea.KeyDown})
	if m.cursor != 1 {
		t.Errorf("expected cursor 1 after down, got %d", m.cursor)
	}

	m.handleKey(tea.KeyMsg{Type: tea.KeyEnd})
	if m.cursor != 2 {
		t.Errorf("expected cursor at end, got %d", m.cursor)
	}

	m.handleKey(tea.KeyMsg{Type: tea.KeyPgDown})
	if m.cursor != 2 {
		t.Errorf("expected cursor clamped at last item, got %d", m.cursor)
	}

	m.handleKey(tea.KeyMsg{Type: tea.KeyHome})
	if m.cursor != 0 {
		t.Errorf("expected cursor 0 after home, got %d", m.cursor)
	}

	m.handleKey(tea.KeyMsg{Type: tea.KeyUp})
	if m.cursor != 0 {
		t.Errorf("expected cursor to stay at 0, got %d", m.cursor)
	}
}

func TestEnterSelectsPage(t *testing.T) {
	m := newModel(testEntries(), t.TempDir())
	m.handleKey(tea.KeyMsg{Type: tea.KeyDown})

	cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected quit command on enter")
	}
	if m.selected == nil || m.selected.ID != "102" {
		t.Errorf("expected page 102 selected, got %+v", m.selected)
	}
	if !m.quitting {
		t.Error("expected quitting after selection")
	}
}

func TestEscQuitsWithoutSelection(t *testing.T) {
	m := newModel(testEntries(), t.TempDir())

	cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("expected quit command on esc")
	}
	if m.selected != nil {
		t.Errorf("expected no selection, got %+v", m.selected)
	}
}

func TestScrollWindow(t *testing.T) {
	tests := []struct {
		name       string
		cursor     int
		total      int
		height     int
		offset     int
		wantStart  int
		wantEnd    int
		wantOffset int
	}{
		{"top of list", 0, 10, 5, 0, 0, 5, 0},
		{"cursor below viewport scrolls down", 7, 10, 5, 0, 3, 8, 3},
		{"cursor above viewport scrolls up", 2, 10, 5, 4, 2, 7, 2},
		{"short list", 1, 3, 5, 0, 0, 3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offset := tt.offset
			start, end := scrollWindow(tt.cursor, tt.total, tt.height, &offset)
			if start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("expected window [%d,%d), got [%d,%d)", tt.wantStart, tt.wantEnd, start, end)
			}
			if offset != tt.wantOffset {
				t.Errorf("expected offset %d, got %d", tt.wantOffset, offset)
			}
		})
	}
}

func TestPreviewLoadsAndCaches(t *testing.T) {
	dir := t.TempDir()
	page := &confluence.Page{
		ID:      "101",
		Title:   "Access Policy",
		Version: confluence.Version{Number: 2},
		Body:    json.RawMessage(`{"type":"doc","version":1,"content":[{"type":"paragraph","content":[{"type":"text","text":"Badge readers everywhere."}]}]}`),
	}
	if _, _, err := store.SavePage(page, "POL", dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m := newModel(testEntries(), dir)
	got := m.preview("101")
	if !strings.Contains(got, "Badge readers everywhere.") {
		t.Errorf("expected rendered body, got %q", got)
	}

	// Cached preview survives the file going away.
	if err := os.Remove(filepath.Join(dir, "POL", "101.json")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again := m.preview("101"); again != got {
		t.Errorf("expected cached preview, got %q", again)
	}
}

func TestPreviewMissingPage(t *testing.T) {
	m := newModel(testEntries(), t.TempDir())

	got := m.preview("999")
	if !strings.Contains(got, "conflu get 999") {
		t.Errorf("expected hint to fetch the page, got %q", got)
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		maxLen   int
		expected string
	}{
		{"short stays", "abc", 10, "abc"},
		{"long gets ellipsis", "abcdefgh", 5, "ab..."},
		{"tiny max keeps input", "abcdefgh", 3, "abcdefgh"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncateString(tt.in, tt.maxLen); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}
