package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/kroget/internal/core/styles"
)

const modalHelp = "y/n answer  ←/→ select  enter confirm  esc cancel"

// Modal is the yes/no dialog shown before a proposal is sent to the cart.
// The zero value is hidden.
type Modal struct {
	title   string
	message string
	shown   bool
	onNo    bool
}

// NewModal returns a visible modal with "Yes" selected.
func NewModal(title, message string) Modal {
	return Modal{title: title, message: message, shown: true}
}

func (m *Modal) ToggleSelection() { m.onNo = !m.onNo }

func (m Modal) ConfirmSelected() bool { return !m.onNo }

func (m Modal) Visible() bool { return m.shown }

var (
	choiceStyle       = lipgloss.NewStyle().Padding(0, 2)
	activeChoiceStyle = choiceStyle.Bold(true).Reverse(true)
)

func renderChoice(label string, active bool) string {
	if active {
		return activeChoiceStyle.Render(label)
	}
	return choiceStyle.Render(label)
}

// Overlay draws the dialog centered in a width x height area. A hidden
// modal returns background unchanged.
func (m Modal) Overlay(background string, width, height int) string {
	if !m.shown {
		return background
	}

	choices := lipgloss.JoinHorizontal(lipgloss.Center,
		renderChoice("Yes", !m.onNo), "  ", renderChoice("No", m.onNo))

	body := lipgloss.JoinVertical(lipgloss.Left,
		styles.ModalTitleStyle.Render(m.title),
		"",
		m.message,
		lipgloss.NewStyle().MarginTop(1).Render(choices),
		styles.ModalHelpStyle.Render(modalHelp),
	)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, styles.ModalStyle.Render(body))
}
