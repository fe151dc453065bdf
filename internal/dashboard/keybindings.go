package dashboard

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/examdeck/examdeck/internal/snapshot"
)

// handleKey routes keyboard input. While a confirm prompt is up it captures
// every key; everything else falls through to the global bindings.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirmPending {
		return m.handleConfirmKey(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		m.Close()
		return m, tea.Quit

	case "r":
		m.activity.add(ActivityInfo, "manual refresh requested")
		return m, m.requestUpdate()

	case "f":
		if m.filter == snapshot.FilterAll {
			m.filter = snapshot.FilterAI
		} else {
			m.filter = snapshot.FilterAll
		}
		return m, nil

	case "s":
		switch m.sortField {
		case snapshot.SortByMemory:
			m.sortField = snapshot.SortByCPU
		case snapshot.SortByCPU:
			m.sortField = snapshot.SortByName
		default:
			m.sortField = snapshot.SortByMemory
		}
		return m, nil

	case "K":
		return m.requestConfirm(commandKillAll)

	case "A":
		return m.requestConfirm(commandKillAI)

	case "T":
		return m.requestConfirm(commandCloseTabs)

	case "x":
		m.alert = ""
		return m, nil

	case "?":
		m.showHelp = !m.showHelp
		return m, nil
	}

	return m, nil
}

// requestConfirm arms the confirm prompt for a destructive command. Only one
// command runs at a time.
func (m *Model) requestConfirm(kind commandKind) (tea.Model, tea.Cmd) {
	if m.commandInFlight {
		m.activity.add(ActivityWarning, "a command is already running")
		return m, nil
	}
	m.confirmPending = true
	m.confirmKind = kind
	return m, nil
}

// handleConfirmKey resolves a pending confirm prompt.
func (m *Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		m.confirmPending = false
		m.commandInFlight = true
		m.activity.add(ActivityInfo, "confirmed: "+m.confirmKind.label())
		return m, m.execCommandCmd(m.confirmKind)

	case "n", "N", "esc", "q":
		m.confirmPending = false
		m.activity.add(ActivityInfo, "cancelled: "+m.confirmKind.label())
		return m, nil
	}
	return m, nil
}
