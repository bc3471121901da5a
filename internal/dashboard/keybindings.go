package dashboard

import tea "github.com/charmbracelet/bubbletea"

// ViewMode defines the current display mode of the dashboard.
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
)

// Key bindings as constants for consistency.
const (
	KeyQuit        = "q"
	KeyQuitAlt     = "ctrl+c"
	KeySelectPrev  = "up"
	KeySelectPrevK = "k"
	KeySelectNext  = "down"
	KeySelectNextJ = "j"
	KeySelectFirst = "home"
	KeySelectLast  = "end"
	KeyExpand      = "enter"
	KeyCollapse    = "esc"
	KeyToggleHelp  = "?"
)

// HandleKeyMsg processes keyboard input and returns updated model state and command.
// Returns true if the key was handled, false otherwise.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	key := msg.String()

	if key == KeyToggleHelp {
		m.showHelp = !m.showHelp
		return true, nil
	}

	if m.showHelp && key == KeyCollapse {
		m.showHelp = false
		return true, nil
	}

	if m.viewMode == ViewDetail && key == KeyCollapse {
		m.viewMode = ViewList
		return true, nil
	}

	switch key {
	case KeyQuit, KeyQuitAlt:
		m.quitting = true
		if m.stop != nil {
			m.stop()
			m.stop = nil
		}
		return true, tea.Quit

	case KeySelectPrev, KeySelectPrevK:
		if m.selected > 0 {
			m.selected--
		}
		m.refreshDetail()
		return true, nil

	case KeySelectNext, KeySelectNextJ:
		if m.selected < len(m.servers)-1 {
			m.selected++
		}
		m.refreshDetail()
		return true, nil

	case KeySelectFirst:
		m.selected = 0
		m.refreshDetail()
		return true, nil

	case KeySelectLast:
		if len(m.servers) > 0 {
			m.selected = len(m.servers) - 1
		}
		m.refreshDetail()
		return true, nil

	case KeyExpand:
		if m.viewMode == ViewList && len(m.servers) > 0 {
			m.viewMode = ViewDetail
			m.updateDetailViewportContent()
		}
		return true, nil
	}

	if m.viewMode == ViewDetail && m.viewportReady {
		var cmd tea.Cmd
		m.detailViewport, cmd = m.detailViewport.Update(msg)
		return true, cmd
	}

	return false, nil
}

func (m *Model) refreshDetail() {
	if m.viewMode == ViewDetail {
		m.updateDetailViewportContent()
	}
}
