package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Run executes one checklist session to completion on the controlling
// terminal. It returns the confirmed selection in display order, or
// aborted=true when the user cancelled (ctrl+c / esc / q).
func Run(names []string, resolver Resolver, preseed []string) (selected []string, aborted bool, err error) {
	applyColorProfilePreference()

	m := NewChecklist(names, resolver)
	if len(preseed) > 0 {
		m.Preseed(preseed)
	}

	out, err := tea.NewProgram(m).Run()
	if err != nil {
		return nil, false, err
	}
	final, ok := out.(Checklist)
	if !ok || final.Aborted() {
		return nil, true, nil
	}
	return final.Selected(), false, nil
}
