package tui

import (
	"reflect"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nano-labs/dstart/internal/depgraph"
)

func testGraph(t *testing.T, services []depgraph.Service) *depgraph.Graph {
	t.Helper()
	g, err := depgraph.New(services)
	if err != nil {
		t.Fatalf("depgraph.New: %v", err)
	}
	return g
}

func apply(m Checklist, msgs ...tea.Msg) Checklist {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Checklist)
	}
	return m
}

func keyUp() tea.Msg    { return tea.KeyMsg{Type: tea.KeyUp} }
func keyDown() tea.Msg  { return tea.KeyMsg{Type: tea.KeyDown} }
func keySpace() tea.Msg { return tea.KeyMsg{Type: tea.KeySpace} }
func keyEnter() tea.Msg { return tea.KeyMsg{Type: tea.KeyEnter} }
func keyCtrlC() tea.Msg { return tea.KeyMsg{Type: tea.KeyCtrlC} }

func TestChecklist_ToggleClosesOverDependencies(t *testing.T) {
	g := testGraph(t, []depgraph.Service{
		{Name: "a"},
		{Name: "b", DependsOn: []string{"a"}},
	})
	m := NewChecklist(g.Names(), g)

	// Cursor starts on "a"; move to "b" and toggle.
	m = apply(m, keyDown(), keySpace())
	if want := []string{"a", "b"}; !reflect.DeepEqual(m.Selected(), want) {
		t.Fatalf("Selected()=%v want %v", m.Selected(), want)
	}

	// Untoggling "a" must cascade "b" off.
	m = apply(m, keyUp(), keySpace())
	if got := m.Selected(); len(got) != 0 {
		t.Fatalf("Selected()=%v want empty", got)
	}
}

func TestChecklist_SelectedKeepsDisplayOrder(t *testing.T) {
	g := testGraph(t, []depgraph.Service{
		{Name: "web", DependsOn: []string{"db"}},
		{Name: "worker"},
		{Name: "db"},
	})
	m := NewChecklist(g.Names(), g)

	m = apply(m, keySpace()) // toggles "web", pulls in "db"
	if want := []string{"web", "db"}; !reflect.DeepEqual(m.Selected(), want) {
		t.Fatalf("Selected()=%v want %v", m.Selected(), want)
	}
}

func TestChecklist_CursorWrapsAtBothEnds(t *testing.T) {
	g := testGraph(t, []depgraph.Service{{Name: "a"}, {Name: "b"}, {Name: "c"}})
	m := NewChecklist(g.Names(), g)

	m = apply(m, keyUp()) // wrap from first to last
	if m.cursor != 2 {
		t.Fatalf("cursor=%d want 2 after wrapping up", m.cursor)
	}
	m = apply(m, keyDown()) // wrap from last to first
	if m.cursor != 0 {
		t.Fatalf("cursor=%d want 0 after wrapping down", m.cursor)
	}
}

func TestChecklist_EnterConfirms(t *testing.T) {
	g := testGraph(t, []depgraph.Service{{Name: "a"}})
	m := NewChecklist(g.Names(), g)

	m = apply(m, keySpace(), keyEnter())
	if !m.Confirmed() || m.Aborted() {
		t.Fatalf("confirmed=%v aborted=%v, want confirmed", m.Confirmed(), m.Aborted())
	}
	if want := []string{"a"}; !reflect.DeepEqual(m.Selected(), want) {
		t.Fatalf("Selected()=%v want %v", m.Selected(), want)
	}
}

func TestChecklist_CtrlCAborts(t *testing.T) {
	g := testGraph(t, []depgraph.Service{{Name: "a"}})
	m := NewChecklist(g.Names(), g)

	m = apply(m, keyCtrlC())
	if !m.Aborted() {
		t.Fatal("expected aborted state")
	}
}

func TestChecklist_InterruptSignalAborts(t *testing.T) {
	g := testGraph(t, []depgraph.Service{{Name: "a"}})
	m := NewChecklist(g.Names(), g)

	m = apply(m, tea.InterruptMsg{})
	if !m.Aborted() {
		t.Fatal("expected aborted state after interrupt")
	}
}

func TestChecklist_InputIgnoredAfterTerminalState(t *testing.T) {
	g := testGraph(t, []depgraph.Service{{Name: "a"}, {Name: "b"}})
	m := NewChecklist(g.Names(), g)

	m = apply(m, keyEnter())
	before := m.Selected()
	m = apply(m, keySpace(), keyDown(), keySpace())
	if !reflect.DeepEqual(m.Selected(), before) {
		t.Fatalf("selection changed after confirm: %v -> %v", before, m.Selected())
	}
}

func TestChecklist_ViewShowsCheckboxAndCursor(t *testing.T) {
	g := testGraph(t, []depgraph.Service{
		{Name: "web", DependsOn: []string{"db"}},
		{Name: "db"},
	})
	m := NewChecklist(g.Names(), g)
	m = apply(m, tea.WindowSizeMsg{Width: 60, Height: 20}, keySpace())

	out := m.View()
	if !strings.Contains(out, "[x] web") {
		t.Fatalf("expected checked web row, got:\n%s", out)
	}
	if !strings.Contains(out, "[x] db") {
		t.Fatalf("expected cascade-checked db row, got:\n%s", out)
	}
	if !strings.Contains(out, "> ") {
		t.Fatalf("expected cursor marker, got:\n%s", out)
	}
	if !strings.Contains(out, "space") {
		t.Fatalf("expected help footer, got:\n%s", out)
	}
}

func TestChecklist_ViewScrollsLongLists(t *testing.T) {
	var services []depgraph.Service
	for _, n := range []string{"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7", "s8", "s9"} {
		services = append(services, depgraph.Service{Name: n})
	}
	g := testGraph(t, services)
	m := NewChecklist(g.Names(), g)
	m = apply(m, tea.WindowSizeMsg{Width: 40, Height: 8})

	out := m.View()
	if !strings.Contains(out, "↓ more") {
		t.Fatalf("expected bottom scroll indicator, got:\n%s", out)
	}
	if strings.Contains(out, "s9") {
		t.Fatalf("expected last row off-screen, got:\n%s", out)
	}

	// Wrap up to the last row; the window must follow.
	m = apply(m, keyUp())
	out = m.View()
	if !strings.Contains(out, "s9") {
		t.Fatalf("expected last row visible after wrap, got:\n%s", out)
	}
	if !strings.Contains(out, "↑ more") {
		t.Fatalf("expected top scroll indicator, got:\n%s", out)
	}
}

func TestChecklist_PreseedReclosesSelection(t *testing.T) {
	g := testGraph(t, []depgraph.Service{
		{Name: "web", DependsOn: []string{"db"}},
		{Name: "db"},
	})
	m := NewChecklist(g.Names(), g)
	// "web" alone is not closed; Preseed must pull "db" in. The removed
	// service name must be dropped silently.
	m.Preseed([]string{"web", "removed-service"})

	if want := []string{"web", "db"}; !reflect.DeepEqual(m.Selected(), want) {
		t.Fatalf("Selected()=%v want %v", m.Selected(), want)
	}
}
