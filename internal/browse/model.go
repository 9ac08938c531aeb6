// Package browse is an interactive terminal browser over the local page
// index: type-to-filter, arrow-key navigation, and a markdown preview of
// whichever page is under the cursor. Selecting a page prints its ID to
// stdout, so the command composes with shell substitution.
package browse

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/conflu-dev/conflu/internal/adf"
	"github.com/conflu-dev/conflu/internal/render"
	"github.com/conflu-dev/conflu/internal/store"
)

// ============================================================================
// String Builder Pool - reduces GC pressure from rendering
// ============================================================================

var builderPool = sync.Pool{
	New: func() interface{} {
		return &strings.Builder{}
	},
}

func getBuilder() *strings.Builder {
	b := builderPool.Get().(*strings.Builder)
	b.Reset()
	return b
}

func putBuilder(b *strings.Builder) {
	if b.Cap() < 64*1024 {
		builderPool.Put(b)
	}
}

// ============================================================================
// Page Item
// ============================================================================

// pageItem wraps an index entry for display
type pageItem struct {
	entry store.IndexEntry
}

// matchesQuery checks if the page matches all search words
// Uses case-insensitive substring matching
func (item *pageItem) matchesQuery(words []string) bool {
	for _, word := range words {
		if !item.containsWord(word) {
			return false
		}
	}
	return true
}

// containsWord checks if any field contains the word (case-insensitive)
func (item *pageItem) containsWord(word string) bool {
	if containsIgnoreCase(item.entry.SpaceKey, word) {
		return true
	}
	if containsIgnoreCase(item.entry.ID, word) {
		return true
	}
	return containsIgnoreCase(item.entry.Title, word)
}

func containsIgnoreCase(s, substr string) bool {
	if len(substr) > len(s) {
		return false
	}
	return strings.Contains(strings.ToLower(s), substr)
}

// ============================================================================
// Debounce
// ============================================================================

// filterMsg triggers filtering after debounce
type filterMsg struct{}

// debounceFilter returns a command that triggers filtering after a delay
func debounceFilter() tea.Cmd {
	return tea.Tick(50*time.Millisecond, func(t time.Time) tea.Msg {
		return filterMsg{}
	})
}

// ============================================================================
// Main Model - Page Browser
// ============================================================================

// model is the Bubble Tea model for the page browser
type model struct {
	width     int
	height    int
	textInput textinput.Model
	quitting  bool

	pages    []pageItem
	filtered []pageItem
	cursor   int
	offset   int // viewport scroll offset
	selected *store.IndexEntry

	pagesDir string
	previews map[string]string // page ID -> rendered markdown
}

func newModel(entries []store.IndexEntry, pagesDir string) model {
	ti := textinput.New()
	ti.Placeholder = "Type to search..."
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 50

	items := make([]pageItem, len(entries))
	for i, entry := range entries {
		items[i] = pageItem{entry: entry}
	}

	return model{
		pages:     items,
		filtered:  items,
		textInput: ti,
		pagesDir:  pagesDir,
		previews:  make(map[string]string),
	}
}

// Init implements tea.Model
func (m model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsMsg, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = wsMsg.Width
		m.height = wsMsg.Height
		m.textInput.Width = wsMsg.Width - 4
	}

	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if cmd := m.handleKey(msg); cmd != nil {
			return m, cmd
		}
	case filterMsg:
		m.filterPages()
		return m, nil
	}

	prevQuery := m.textInput.Value()
	var tiCmd tea.Cmd
	m.textInput, tiCmd = m.textInput.Update(msg)
	cmds = append(cmds, tiCmd)

	// Only trigger debounced filter if query changed
	if m.textInput.Value() != prevQuery {
		cmds = append(cmds, debounceFilter())
	}

	return m, tea.Batch(cmds...)
}

// handleKey processes keyboard input
func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		return tea.Quit
	case "enter":
		if m.cursor < len(m.filtered) {
			entry := m.filtered[m.cursor].entry
			m.selected = &entry
			m.quitting = true
			return tea.Quit
		}
	case "up", "ctrl+p":
		m.moveCursor(-1)
	case "down", "ctrl+n":
		m.moveCursor(1)
	case "pgup":
		m.moveCursor(-10)
	case "pgdown":
		m.moveCursor(10)
	case "home", "ctrl+a":
		m.cursor = 0
	case "end", "ctrl+e":
		m.cursor = max(0, len(m.filtered)-1)
	}
	return nil
}

// moveCursor moves the cursor by delta, clamping to valid range
func (m *model) moveCursor(delta int) {
	m.cursor = clamp(m.cursor+delta, 0, max(0, len(m.filtered)-1))
}

// filterPages filters the page list based on the search query
func (m *model) filterPages() {
	query := strings.TrimSpace(m.textInput.Value())

	if query == "" {
		m.filtered = m.pages
	} else {
		words := strings.Fields(strings.ToLower(query))
		m.filtered = make([]pageItem, 0, len(m.pages))
		for i := range m.pages {
			if m.pages[i].matchesQuery(words) {
				m.filtered = append(m.filtered, m.pages[i])
			}
		}
	}

	if m.cursor >= len(m.filtered) {
		m.cursor = max(0, len(m.filtered)-1)
	}
	m.offset = 0
}

// View implements tea.Model
func (m model) View() string {
	if m.quitting {
		return ""
	}

	width := max(m.width, 80)
	height := max(m.height, 24)

	preview := m.renderPreview(width)
	previewLines := countLines(preview)

	inputLines := 3 // divider + info + input
	listHeight := max(height-previewLines-inputLines, 3)
	list := m.renderList(listHeight)
	listLines := countLines(list)

	padding := max(height-previewLines-listLines-inputLines, 0)

	b := getBuilder()
	defer putBuilder(b)
	b.WriteString(preview)
	b.WriteString(list)
	b.WriteString(strings.Repeat("\n", padding))
	b.WriteString(m.renderInput(width))

	return b.String()
}

// renderPreview renders the markdown preview of the page under the cursor
func (m model) renderPreview(width int) string {
	b := getBuilder()
	defer putBuilder(b)
	lines := 0
	const maxLines = 9

	if m.cursor < len(m.filtered) {
		entry := m.filtered[m.cursor].entry

		b.WriteString(styles.PreviewTitle.Render(entry.Title))
		b.WriteString("\n")
		lines++

		meta := fmt.Sprintf("%s • %s • v%d", entry.ID, entry.SpaceKey, entry.Version)
		if entry.UpdatedAt != "" {
			meta += " • " + entry.UpdatedAt
		}
		b.WriteString(styles.PreviewMeta.Render(meta))
		b.WriteString("\n\n")
		lines += 2

		body := truncateLines(m.preview(entry.ID), maxLines-lines-1, 200)
		bodyLines := strings.Count(body, "\n") + 1
		b.WriteString(body)
		b.WriteString("\n")
		lines += bodyLines
	}

	// Pad to fixed height
	for lines < maxLines {
		b.WriteString("\n")
		lines++
	}

	b.WriteString(styles.Divider.Render(strings.Repeat("─", width)))
	b.WriteString("\n")

	return b.String()
}

// preview returns the rendered markdown of a page, loading it from the
// local store on first use
func (m model) preview(pageID string) string {
	if cached, ok := m.previews[pageID]; ok {
		return cached
	}

	text := fmt.Sprintf("(no local copy, run: conflu get %s)", pageID)
	if data, err := store.LoadDocument(pageID, m.pagesDir); err == nil {
		if doc, err := adf.ParseDocument(data); err == nil {
			text = strings.TrimSpace(render.Markdown(doc))
		}
	}

	m.previews[pageID] = text
	return text
}

// renderList renders the scrollable list of pages
func (m *model) renderList(maxHeight int) string {
	if len(m.filtered) == 0 {
		return ""
	}

	start, end := scrollWindow(m.cursor, len(m.filtered), maxHeight, &m.offset)

	b := getBuilder()
	defer putBuilder(b)
	for i := start; i < end; i++ {
		b.WriteString(m.renderListItem(m.filtered[i], i == m.cursor))
		b.WriteString("\n")
	}

	return b.String()
}

// renderListItem renders a single list row: id, space key, title
func (m model) renderListItem(item pageItem, selected bool) string {
	idStyle, spaceStyle, titleStyle := styles.ID, styles.Space, styles.Title
	if selected {
		idStyle = styles.WithSelection(idStyle)
		spaceStyle = styles.WithSelection(spaceStyle)
		titleStyle = styles.WithSelection(titleStyle)
	}

	id := fmt.Sprintf("%-12s", truncateString(item.entry.ID, 12))
	space := fmt.Sprintf("%-8s", truncateString(item.entry.SpaceKey, 8))
	title := truncateString(item.entry.Title, m.titleWidth())

	line := idStyle.Render(id) + " " + spaceStyle.Render(space) + " " + titleStyle.Render(title)
	if selected {
		return styles.Cursor.Render("▶ ") + line
	}
	return "  " + line
}

// titleWidth returns the available width for the title column
func (m model) titleWidth() int {
	width := max(m.width, 80)
	return max(width-26, 20)
}

// renderInput renders the input section at the bottom
func (m model) renderInput(width int) string {
	b := getBuilder()
	defer putBuilder(b)
	b.WriteString(styles.Divider.Render(strings.Repeat("─", width)))
	b.WriteString("\n")
	b.WriteString(styles.Dim.Render(fmt.Sprintf("  %d/%d", len(m.filtered), len(m.pages))))
	b.WriteString(" • ")
	b.WriteString(styles.Dim.Render("ENTER select"))
	b.WriteString(" • ")
	b.WriteString(styles.Dim.Render("ESC exit"))
	b.WriteString("\n")
	b.WriteString(m.textInput.View())
	return b.String()
}

// ============================================================================
// Run TUI
// ============================================================================

// getTTY returns file handles for TUI input/output
// Uses /dev/tty to bypass shell pipes and command substitution
func getTTY() (in *os.File, out *os.File, cleanup func()) {
	var closers []func()

	if fileInfo, _ := os.Stdout.Stat(); (fileInfo.Mode() & os.ModeCharDevice) == 0 {
		// stdout is NOT a terminal - we're being captured
		out, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
		if err != nil {
			out = os.Stderr
		} else {
			closers = append(closers, func() { out.Close() })
		}

		in, err := os.OpenFile("/dev/tty", os.O_RDONLY, 0)
		if err != nil {
			in = os.Stdin
		} else {
			closers = append(closers, func() { in.Close() })
		}

		// Tell lipgloss to use the TTY for color detection
		lipgloss.SetDefaultRenderer(lipgloss.NewRenderer(out))

		return in, out, func() {
			for _, c := range closers {
				c()
			}
		}
	}

	return os.Stdin, os.Stdout, func() {}
}

// Run launches the page browser over the given index. The selected
// page ID is printed to stdout.
func Run(index store.Index, pagesDir, initialQuery string) error {
	entries := store.Search(index, "")
	if len(entries) == 0 {
		return fmt.Errorf("page index is empty")
	}

	m := newModel(entries, pagesDir)
	if initialQuery != "" {
		m.textInput.SetValue(initialQuery)
		m.filterPages()
	}

	ttyIn, ttyOut, cleanup := getTTY()
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithOutput(ttyOut), tea.WithInput(ttyIn))
	finalModel, err := p.Run()
	cleanup()

	if err != nil {
		return err
	}

	result := finalModel.(model)
	if result.selected == nil {
		return nil
	}

	fmt.Println(result.selected.ID)
	return nil
}

// ============================================================================
// Helpers
// ============================================================================

// clamp restricts v to the range [minV, maxV]
func clamp(v, minV, maxV int) int {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// countLines counts the number of lines in a string
func countLines(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}

// scrollWindow calculates the visible range for a scrollable list
func scrollWindow(cursor, total, height int, offset *int) (start, end int) {
	if cursor < *offset {
		*offset = cursor
	}
	if cursor >= *offset+height {
		*offset = cursor - height + 1
	}
	maxOffset := max(0, total-height)
	*offset = clamp(*offset, 0, maxOffset)

	start = *offset
	end = min(start+height, total)
	return
}

// truncateString truncates a string to maxLen with ellipsis
func truncateString(s string, maxLen int) string {
	if maxLen <= 3 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// truncateLines truncates text to maxLines with optional maxLen total
func truncateLines(text string, maxLines int, maxLen int) string {
	lines := strings.Split(text, "\n")
	if len(lines) > maxLines {
		text = strings.Join(lines[:maxLines], "\n") + "..."
	}
	if maxLen > 0 && len(text) > maxLen {
		text = text[:maxLen-3] + "..."
	}
	return text
}
