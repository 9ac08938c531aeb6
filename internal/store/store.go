// Package store manages the local page mirror: one ADF body file plus one
// metadata sidecar per page, grouped in per-space directories, and a single
// page index file used for offline search.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/conflu-dev/conflu/internal/confluence"
)

// ErrNotFound reports that no local file exists for a page.
var ErrNotFound = errors.New("page not in local store")

// Meta is the metadata sidecar stored next to each page body.
type Meta struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	SpaceID   string `json:"spaceId"`
	SpaceKey  string `json:"spaceKey"`
	Version   int    `json:"version"`
	ParentID  string `json:"parentId"`
	UpdatedAt string `json:"updatedAt"`
}

// SavePage writes a page body and its metadata sidecar under
// pagesDir/spaceKey/, creating the directory as needed. It returns
// the paths of the two files written.
func SavePage(page *confluence.Page, spaceKey, pagesDir string) (adfPath, metaPath string, err error) {
	spaceDir := filepath.Join(pagesDir, spaceKey)
	if err := os.MkdirAll(spaceDir, 0o755); err != nil {
		return "", "", err
	}

	body := page.Body
	if body == nil {
		body = json.RawMessage("{}")
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		return "", "", fmt.Errorf("page %s body: %w", page.ID, err)
	}
	pretty.WriteByte('\n')

	adfPath = filepath.Join(spaceDir, page.ID+".json")
	if err := os.WriteFile(adfPath, pretty.Bytes(), 0o644); err != nil {
		return "", "", err
	}

	meta := &Meta{
		ID:        page.ID,
		Title:     page.Title,
		SpaceID:   page.SpaceID,
		SpaceKey:  spaceKey,
		Version:   page.Version.Number,
		ParentID:  page.ParentID,
		UpdatedAt: page.Version.CreatedAt,
	}
	metaPath = filepath.Join(spaceDir, page.ID+".meta.json")
	if err := writeJSON(metaPath, meta); err != nil {
		return "", "", err
	}
	return adfPath, metaPath, nil
}

// SaveMeta rewrites the metadata sidecar for a page already in the store.
func SaveMeta(meta *Meta, pagesDir string) error {
	spaceDir := filepath.Join(pagesDir, meta.SpaceKey)
	if err := os.MkdirAll(spaceDir, 0o755); err != nil {
		return err
	}
	return writeJSON(filepath.Join(spaceDir, meta.ID+".meta.json"), meta)
}

// LoadDocument returns the stored ADF body of a page, searching every
// space directory under pagesDir.
func LoadDocument(pageID, pagesDir string) (json.RawMessage, error) {
	path := findPageFile(pageID, pagesDir, ".json")
	if path == "" {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, pageID)
	}
	return os.ReadFile(path)
}

// SaveDocument overwrites the stored ADF body of a page already in the
// store, keeping the indented on-disk format.
func SaveDocument(pageID, pagesDir string, body json.RawMessage) error {
	path := findPageFile(pageID, pagesDir, ".json")
	if path == "" {
		return fmt.Errorf("%w: %s", ErrNotFound, pageID)
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		return fmt.Errorf("page %s body: %w", pageID, err)
	}
	pretty.WriteByte('\n')
	return os.WriteFile(path, pretty.Bytes(), 0o644)
}

// LoadMeta returns the stored metadata of a page, searching every
// space directory under pagesDir.
func LoadMeta(pageID, pagesDir string) (*Meta, error) {
	path := findPageFile(pageID, pagesDir, ".meta.json")
	if path == "" {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, pageID)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var meta Meta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("meta for page %s: %w", pageID, err)
	}
	return &meta, nil
}

// findPageFile scans the space directories for pageID+suffix.
func findPageFile(pageID, pagesDir, suffix string) string {
	entries, err := os.ReadDir(pagesDir)
	if err != nil {
		return ""
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		candidate := filepath.Join(pagesDir, entry.Name(), pageID+suffix)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

// IndexEntry is one page in the index file. SpaceKey is left empty on
// disk (the enclosing map key carries it) and filled in by Search.
type IndexEntry struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	ParentID  string `json:"parentId"`
	Version   int    `json:"version"`
	UpdatedAt string `json:"updatedAt"`
	SpaceKey  string `json:"spaceKey,omitempty"`
}

// Index maps space keys to their page entries.
type Index map[string][]IndexEntry

// WriteIndex writes the index file as indented JSON.
func WriteIndex(index Index, path string) error {
	return writeJSON(path, index)
}

// ReadIndex loads an index file.
func ReadIndex(path string) (Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var index Index
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("index %s: %w", path, err)
	}
	return index, nil
}

// Search returns the entries whose title contains the query
// (case-insensitive) or whose ID contains it, ordered by space key.
func Search(index Index, query string) []IndexEntry {
	query = strings.ToLower(query)

	keys := make([]string, 0, len(index))
	for key := range index {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var results []IndexEntry
	for _, key := range keys {
		for _, entry := range index[key] {
			if entry.SpaceKey == "" {
				entry.SpaceKey = key
			}
			if strings.Contains(strings.ToLower(entry.Title), query) ||
				strings.Contains(entry.ID, query) {
				results = append(results, entry)
			}
		}
	}
	return results
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
