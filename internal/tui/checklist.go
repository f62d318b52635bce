// Package tui implements dstart's one interactive surface: a single-screen
// multi-select checklist of compose services whose selection stays closed
// under the services' dependency relationships.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	xansi "github.com/charmbracelet/x/ansi"
)

// Resolver restores the selection closure after a toggle. It is the only
// dependency knowledge the checklist has; the graph itself stays outside.
type Resolver interface {
	// CheckDependencies marks everything name transitively requires.
	CheckDependencies(name string, checked map[string]bool)
	// UncheckDependants clears everything that transitively requires name.
	UncheckDependants(name string, checked map[string]bool)
}

// Checklist is the Bubble Tea model for one selection session. Zero value is
// not usable; construct with NewChecklist.
type Checklist struct {
	names    []string
	resolver Resolver
	checked  map[string]bool

	cursor int
	offset int
	width  int
	height int

	keys keyMap
	help help.Model

	confirmed bool
	aborted   bool
}

// NewChecklist builds a checklist session over names in display order. All
// flags start unset; use Preseed to start from an earlier selection.
func NewChecklist(names []string, resolver Resolver) Checklist {
	return Checklist{
		names:    append([]string(nil), names...),
		resolver: resolver,
		checked:  make(map[string]bool, len(names)),
		height:   24,
		keys:     defaultKeyMap(),
		help:     help.New(),
	}
}

// Preseed checks the given names and re-closes each through the resolver,
// so the closure invariant holds even when the seed no longer matches the
// current dependency graph. Unknown names are dropped.
func (m *Checklist) Preseed(names []string) {
	known := make(map[string]bool, len(m.names))
	for _, n := range m.names {
		known[n] = true
	}
	for _, n := range names {
		if !known[n] {
			continue
		}
		m.checked[n] = true
		m.resolver.CheckDependencies(n, m.checked)
	}
}

// Selected returns the checked names in display order.
func (m Checklist) Selected() []string {
	var out []string
	for _, n := range m.names {
		if m.checked[n] {
			out = append(out, n)
		}
	}
	return out
}

// Aborted reports whether the session ended without a confirmation.
func (m Checklist) Aborted() bool { return m.aborted }

// Confirmed reports whether the session ended with enter.
func (m Checklist) Confirmed() bool { return m.confirmed }

func (m Checklist) done() bool { return m.confirmed || m.aborted }

// Init implements tea.Model.
func (m Checklist) Init() tea.Cmd { return nil }

// Update implements tea.Model. Each key event is handled to completion,
// closure cascade included, before the next one is read; Bubble Tea's
// single-goroutine update loop gives us that for free.
func (m Checklist) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.done() {
		// Terminal state: the program is already quitting.
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.InterruptMsg:
		// SIGINT delivered while blocked on input: same as ctrl+c.
		m.aborted = true
		return m, tea.Quit

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.clampScroll()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Abort):
			m.aborted = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Confirm):
			m.confirmed = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Up):
			m.moveCursor(-1)
			return m, nil

		case key.Matches(msg, m.keys.Down):
			m.moveCursor(+1)
			return m, nil

		case key.Matches(msg, m.keys.Toggle):
			m.toggleCurrent()
			return m, nil
		}
	}
	return m, nil
}

// moveCursor advances the cursor, wrapping at both ends.
func (m *Checklist) moveCursor(dir int) {
	if len(m.names) == 0 {
		return
	}
	m.cursor = (m.cursor + dir + len(m.names)) % len(m.names)
	m.clampScroll()
}

// toggleCurrent flips the flag under the cursor and restores the closure:
// checking pulls dependencies in, unchecking cascades dependants out.
func (m *Checklist) toggleCurrent() {
	if m.cursor < 0 || m.cursor >= len(m.names) {
		return
	}
	name := m.names[m.cursor]
	if m.checked[name] {
		delete(m.checked, name)
		m.resolver.UncheckDependants(name, m.checked)
	} else {
		m.checked[name] = true
		m.resolver.CheckDependencies(name, m.checked)
	}
}

// View implements tea.Model. Rendering is pure: Bubble Tea's renderer diffs
// consecutive frames, so only rows that changed actually repaint.
func (m Checklist) View() string {
	if m.done() {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Select services to start"))
	b.WriteString("\n\n")

	visible := m.visibleRows()
	start := m.offset
	end := start + visible
	if end > len(m.names) {
		end = len(m.names)
	}

	if start > 0 {
		b.WriteString(mutedStyle.Render("  ↑ more"))
		b.WriteString("\n")
	}
	for i := start; i < end; i++ {
		b.WriteString(m.renderRow(i))
		b.WriteString("\n")
	}
	if end < len(m.names) {
		b.WriteString(mutedStyle.Render("  ↓ more"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Checklist) renderRow(i int) string {
	name := m.names[i]

	marker := "  "
	if i == m.cursor {
		marker = "> "
	}
	box := "[ ]"
	if m.checked[name] {
		box = checkedStyle.Render("[x]")
	}

	line := marker + box + " " + name
	if m.width > 0 && xansi.StringWidth(line) > m.width {
		line = xansi.Cut(line, 0, m.width)
	}
	if i == m.cursor {
		return cursorStyle.Render(line)
	}
	return line
}

// visibleRows is the number of service rows that fit between the title and
// the help footer, with up to two lines reserved for scroll indicators.
func (m Checklist) visibleRows() int {
	rows := m.height - 5 // title + blank + blank + help + margin
	if rows < 1 {
		rows = 1
	}
	if len(m.names) <= rows {
		return rows
	}
	rows -= 2 // scroll indicators
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m *Checklist) clampScroll() {
	visible := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
	maxOffset := len(m.names) - visible
	if maxOffset < 0 {
		maxOffset = 0
	}
	if m.offset > maxOffset {
		m.offset = maxOffset
	}
	if m.offset < 0 {
		m.offset = 0
	}
}
