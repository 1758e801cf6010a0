package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/kroget/internal/core/styles"
	"github.com/hay-kot/kroget/internal/kroget"
)

const (
	defaultWidth  = 120
	defaultHeight = 30

	// chrome is the number of rows taken by the header, status, help and
	// pane borders.
	chrome = 8
)

func newTable(cols []table.Column) table.Model {
	t := table.New(
		table.WithColumns(cols),
		table.WithHeight(defaultHeight-chrome),
	)

	s := table.DefaultStyles()
	s.Header = styles.TableHeaderStyle
	s.Selected = styles.TableSelectedStyle
	t.SetStyles(s)
	return t
}

// paneWidths splits the screen width between the three panes. The proposal
// pane gets the largest share.
func paneWidths(total int) (staples, prop, alts int) {
	inner := max(total-6, 30)
	staples = inner * 3 / 10
	alts = inner * 3 / 10
	prop = inner - staples - alts
	return staples, prop, alts
}

func staplesColumns(total int) []table.Column {
	w, _, _ := paneWidths(total)
	return []table.Column{
		{Title: "Name", Width: w * 3 / 10},
		{Title: "Term", Width: w * 3 / 10},
		{Title: "Qty", Width: 3},
		{Title: "UPC", Width: max(w*4/10-14, 6)},
		{Title: "Mode", Width: 8},
	}
}

func proposalColumns(total int) []table.Column {
	_, w, _ := paneWidths(total)
	return []table.Column{
		{Title: "Name", Width: max(w-40, 8)},
		{Title: "Qty", Width: 3},
		{Title: "UPC", Width: 14},
		{Title: "Mode", Width: 8},
		{Title: "Status", Width: 8},
	}
}

func alternativeColumns(total int) []table.Column {
	_, _, w := paneWidths(total)
	return []table.Column{
		{Title: "UPC", Width: 14},
		{Title: "Description", Width: max(w-18, 8)},
	}
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	h := max(height-chrome, 3)
	m.staplesTable.SetColumns(staplesColumns(width))
	m.proposalTable.SetColumns(proposalColumns(width))
	m.altTable.SetColumns(alternativeColumns(width))
	for _, t := range []*table.Model{&m.staplesTable, &m.proposalTable, &m.altTable} {
		t.SetHeight(h)
	}
	m.help.Width = width
}

func (m *Model) applyFocus() {
	m.staplesTable.Blur()
	m.proposalTable.Blur()
	m.altTable.Blur()

	switch m.focus {
	case paneStaples:
		m.staplesTable.Focus()
	case paneProposal:
		m.proposalTable.Focus()
	case paneAlternatives:
		m.altTable.Focus()
	}
}

func (m *Model) refreshStaples() {
	rows := make([]table.Row, 0, len(m.items))
	for _, s := range m.items {
		rows = append(rows, table.Row{
			s.Name,
			s.Term,
			strconv.Itoa(s.Quantity),
			s.PreferredUPC,
			string(s.Modality),
		})
	}
	setRows(&m.staplesTable, rows)
}

func (m *Model) refreshProposal() {
	var rows []table.Row
	if m.proposal != nil {
		rows = make([]table.Row, 0, len(m.proposal.Items))
		for _, it := range m.proposal.Items {
			rows = append(rows, table.Row{
				it.Name,
				strconv.Itoa(it.Quantity),
				it.UPC,
				string(it.Modality),
				string(m.pinned.Status(it)),
			})
		}
	}
	setRows(&m.proposalTable, rows)
	m.refreshAlternatives()
}

func (m *Model) refreshAlternatives() {
	var rows []table.Row
	if idx, ok := m.selectedItem(); ok {
		for _, alt := range m.proposal.Items[idx].Alternatives {
			rows = append(rows, table.Row{alt.UPC, alt.Description})
		}
	}
	setRows(&m.altTable, rows)
}

// setRows replaces the rows of t, keeping the cursor in range.
func setRows(t *table.Model, rows []table.Row) {
	t.SetRows(rows)
	if c := t.Cursor(); c >= len(rows) {
		t.SetCursor(max(len(rows)-1, 0))
	}
}

// View renders the screen.
func (m Model) View() string {
	width, height := m.width, m.height
	if width == 0 {
		width, height = defaultWidth, defaultHeight
	}

	if m.state == stateConfirming {
		return m.modal.Overlay("", width, height)
	}

	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")
	b.WriteString(m.statusView())
	b.WriteString("\n")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		m.paneView("Staples", paneStaples, m.staplesTable),
		m.paneView("Proposal", paneProposal, m.proposalTable),
		m.paneView("Alternatives", paneAlternatives, m.altTable),
	))
	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp())))

	return b.String()
}

func (m Model) headerView() string {
	location := m.opts.LocationID
	if location == "" {
		location = "none"
	}
	authStatus := "not logged in"
	if m.opts.LoggedIn {
		authStatus = "logged in"
	}
	list := m.list
	if list == "" {
		list = "-"
	}

	title := styles.TitleStyle.Render(styles.IconCart + " Kroget")
	meta := styles.MutedStyle.Render(fmt.Sprintf("List: %s | Location: %s | Auth: %s", list, location, authStatus))
	return title + "  " + meta
}

func (m Model) statusView() string {
	text := m.status
	if m.state == stateBusy {
		text = m.spinner.View() + " " + text
	}
	if m.proposal != nil && !m.statusErr {
		counts := m.statusCounts()
		text += "  " + styles.PinnedStyle.Render(fmt.Sprintf("%d pinned", counts[kroget.PinStatusPinned])) +
			" " + styles.AutoStyle.Render(fmt.Sprintf("%d auto", counts[kroget.PinStatusAuto])) +
			" " + styles.MissingStyle.Render(fmt.Sprintf("%d missing", counts[kroget.PinStatusMissing]))
	}
	if m.statusErr {
		return styles.StatusBarStyle.Render(styles.ErrorStyle.Render(text))
	}
	return styles.StatusBarStyle.Render(text)
}

func (m Model) paneView(title string, p pane, t table.Model) string {
	style := styles.PaneStyle
	if m.focus == p {
		style = styles.PaneFocusedStyle
	}
	return style.Render(styles.TitleStyle.Render(title) + "\n" + t.View())
}

// statusCounts tallies the pin status of each proposal item.
func (m Model) statusCounts() map[kroget.PinStatus]int {
	counts := map[kroget.PinStatus]int{}
	if m.proposal == nil {
		return counts
	}
	for _, it := range m.proposal.Items {
		counts[m.pinned.Status(it)]++
	}
	return counts
}
