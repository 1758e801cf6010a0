// Package tui implements the interactive proposal review screen.
package tui

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/hay-kot/kroget/internal/core/proposal"
	"github.com/hay-kot/kroget/internal/core/staple"
	"github.com/hay-kot/kroget/internal/kroget"
	"github.com/hay-kot/kroget/internal/store/jsonfile"
)

// UIState represents the current state of the TUI.
type UIState int

const (
	stateNormal UIState = iota
	stateBusy
	stateConfirming
)

type pane int

const (
	paneStaples pane = iota
	paneProposal
	paneAlternatives
	paneCount
)

var (
	errNoStaples  = errors.New("no staples configured")
	errNoLocation = errors.New("default location is not set")
)

const dryRunStatus = "Mode: Dry-run (press 'a' to apply)"

// Options configures a Model.
type Options struct {
	// List is the staple list to propose from. Empty uses the active list.
	List string

	// LocationID is the store proposals are priced against.
	LocationID string

	// LoggedIn reports whether a user token is saved.
	LoggedIn bool

	// ProposalPath is where regenerated proposals are written. Empty skips
	// saving.
	ProposalPath string

	// Changes delivers lists file change events. Nil disables reloads.
	Changes <-chan jsonfile.FileEvent

	Logger zerolog.Logger
}

// Model is the bubbletea model for the proposal review screen.
type Model struct {
	ctx     context.Context
	svc     Proposer
	staples StapleLister
	pinner  kroget.Pinner
	opts    Options
	log     zerolog.Logger

	keys    keyMap
	help    help.Model
	spinner spinner.Model

	state UIState
	focus pane
	modal Modal

	staplesTable  table.Model
	proposalTable table.Model
	altTable      table.Model

	list      string
	items     []staple.Staple
	proposal  *proposal.Proposal
	pinned    kroget.Pinned
	status    string
	statusErr bool

	width  int
	height int
}

type proposalBuiltMsg struct {
	list    string
	staples []staple.Staple
	result  kroget.ProposeResult
	err     error
}

type staplesLoadedMsg struct {
	list    string
	staples []staple.Staple
	err     error
}

type applyDoneMsg struct {
	result kroget.ApplyResult
	err    error
}

type pinDoneMsg struct {
	proposal proposal.Proposal
	name     string
	upc      string
	err      error
}

type listsChangedMsg struct{}

// New creates a Model. ctx bounds all network and store work started by the
// model.
func New(ctx context.Context, svc Proposer, staples StapleLister, pinner kroget.Pinner, opts Options) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctx:           ctx,
		svc:           svc,
		staples:       staples,
		pinner:        pinner,
		opts:          opts,
		log:           opts.Logger,
		keys:          defaultKeyMap(),
		help:          help.New(),
		spinner:       sp,
		state:         stateBusy,
		focus:         paneProposal,
		list:          opts.List,
		pinned:        kroget.Pinned{},
		status:        "Loading...",
		staplesTable:  newTable(staplesColumns(defaultWidth)),
		proposalTable: newTable(proposalColumns(defaultWidth)),
		altTable:      newTable(alternativeColumns(defaultWidth)),
	}
	m.applyFocus()
	return m
}

// Init starts the first proposal build and the lists file listener.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.regenerate(), m.spinner.Tick}
	if m.opts.Changes != nil {
		cmds = append(cmds, listenForChanges(m.opts.Changes))
	}
	return tea.Batch(cmds...)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case proposalBuiltMsg:
		return m.handleProposalBuilt(msg), nil
	case staplesLoadedMsg:
		if msg.err != nil {
			m.setError(fmt.Sprintf("Error loading staples: %v", msg.err))
			return m, nil
		}
		m.list = msg.list
		m.items = msg.staples
		m.refreshStaples()
		return m, nil
	case applyDoneMsg:
		return m.handleApplyDone(msg), nil
	case pinDoneMsg:
		return m.handlePinDone(msg), nil
	case listsChangedMsg:
		return m, tea.Batch(m.loadStaples(), listenForChanges(m.opts.Changes))
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.state == stateConfirming {
		return m.handleConfirmModalKey(msg.String())
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.NextPane):
		m.focus = (m.focus + 1) % paneCount
		m.applyFocus()
		return m, nil
	case key.Matches(msg, m.keys.PrevPane):
		m.focus = (m.focus + paneCount - 1) % paneCount
		m.applyFocus()
		return m, nil
	}

	if m.state == stateBusy {
		if key.Matches(msg, m.keys.Regenerate, m.keys.Pin, m.keys.Remove, m.keys.Apply) {
			return m, nil
		}
		return m.delegateToTable(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Regenerate):
		m.state = stateBusy
		m.setStatus("Generating proposal...")
		return m, tea.Batch(m.regenerate(), m.spinner.Tick)
	case key.Matches(msg, m.keys.Remove):
		return m.removeSelected(), nil
	case key.Matches(msg, m.keys.Pin):
		return m.pinSelected()
	case key.Matches(msg, m.keys.Apply):
		return m.confirmApply(), nil
	}

	return m.delegateToTable(msg)
}

func (m Model) handleConfirmModalKey(keyStr string) (tea.Model, tea.Cmd) {
	switch keyStr {
	case "left", "right", "h", "l", "tab":
		m.modal.ToggleSelection()
		return m, nil
	case "y":
		return m.startApply()
	case "n", "esc":
		return m.cancelApply(), nil
	case "enter":
		if m.modal.ConfirmSelected() {
			return m.startApply()
		}
		return m.cancelApply(), nil
	}
	return m, nil
}

func (m Model) delegateToTable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case paneStaples:
		m.staplesTable, cmd = m.staplesTable.Update(msg)
	case paneProposal:
		before := m.proposalTable.Cursor()
		m.proposalTable, cmd = m.proposalTable.Update(msg)
		if m.proposalTable.Cursor() != before {
			m.refreshAlternatives()
		}
	case paneAlternatives:
		m.altTable, cmd = m.altTable.Update(msg)
	}
	return m, cmd
}

func (m Model) handleProposalBuilt(msg proposalBuiltMsg) Model {
	m.state = stateNormal
	if msg.list != "" {
		m.list = msg.list
	}
	if msg.staples != nil || errors.Is(msg.err, errNoStaples) {
		m.items = msg.staples
	}

	switch {
	case errors.Is(msg.err, errNoStaples):
		m.proposal = nil
		m.setError("No staples configured.")
	case errors.Is(msg.err, errNoLocation):
		m.proposal = nil
		m.setError("Default location is not set. Run 'kroget locations set-default'.")
	case msg.err != nil:
		m.log.Error().Err(msg.err).Str("list", m.list).Msg("proposal build failed")
		m.proposal = nil
		m.setError(fmt.Sprintf("Error generating proposal: %v", msg.err))
	default:
		p := msg.result.Proposal
		m.proposal = &p
		m.pinned = msg.result.Pinned
		if m.pinned == nil {
			m.pinned = kroget.Pinned{}
		}
		m.setStatus(dryRunStatus)
	}

	m.refreshStaples()
	m.refreshProposal()
	return m
}

func (m Model) removeSelected() Model {
	idx, ok := m.selectedItem()
	if !ok {
		m.setError("Select a proposal item to remove.")
		return m
	}

	p := cloneProposal(*m.proposal)
	if err := p.RemoveItem(idx); err != nil {
		m.setError(err.Error())
		return m
	}
	m.proposal = &p
	m.refreshProposal()
	m.setStatus("Removed item from proposal.")
	return m
}

func (m Model) pinSelected() (tea.Model, tea.Cmd) {
	idx, ok := m.selectedItem()
	if !ok {
		m.setError("Select a proposal item.")
		return m, nil
	}

	item := m.proposal.Items[idx]
	if len(item.Alternatives) == 0 {
		m.setError("Select an alternative UPC to pin.")
		return m, nil
	}

	alt := m.altTable.Cursor()
	if alt < 0 || alt >= len(item.Alternatives) {
		m.setError("Invalid alternative selection.")
		return m, nil
	}

	s, found := findStaple(m.items, item.Name)
	if !found {
		m.setError(fmt.Sprintf("Staple %q is not in list %q.", item.Name, m.list))
		return m, nil
	}

	m.state = stateBusy
	m.setStatus(fmt.Sprintf("Pinning %s...", item.Name))
	return m, tea.Batch(m.pin(*m.proposal, idx, alt, s), m.spinner.Tick)
}

func (m Model) handlePinDone(msg pinDoneMsg) Model {
	m.state = stateNormal
	if msg.err != nil {
		m.setError(msg.err.Error())
		return m
	}

	m.proposal = &msg.proposal
	m.pinned = maps.Clone(m.pinned)
	m.pinned[msg.name] = true
	m.items = slices.Clone(m.items)
	for i := range m.items {
		if m.items[i].Name == msg.name {
			m.items[i].PreferredUPC = msg.upc
			break
		}
	}

	m.refreshStaples()
	m.refreshProposal()
	m.setStatus(fmt.Sprintf("Pinned UPC %s for %s.", msg.upc, msg.name))
	return m
}

func (m Model) confirmApply() Model {
	if m.proposal == nil || len(m.proposal.Items) == 0 {
		m.setError("No proposal to apply.")
		return m
	}

	message := fmt.Sprintf("%d item(s) will be added to your cart.", len(m.proposal.Items))
	if missing := len(m.proposal.Unresolved()); missing > 0 {
		message += fmt.Sprintf("\n%d item(s) have no UPC and will fail.", missing)
	}
	if !m.opts.LoggedIn {
		message += "\nYou are not logged in; run 'kroget auth login' first."
	}

	m.modal = NewModal("Apply proposal to cart?", message)
	m.state = stateConfirming
	return m
}

func (m Model) startApply() (tea.Model, tea.Cmd) {
	m.modal = Modal{}
	m.state = stateBusy
	m.setStatus("Applying proposal...")
	return m, tea.Batch(m.apply(*m.proposal), m.spinner.Tick)
}

func (m Model) cancelApply() Model {
	m.modal = Modal{}
	m.state = stateNormal
	m.setStatus("Apply canceled.")
	return m
}

func (m Model) handleApplyDone(msg applyDoneMsg) Model {
	m.state = stateNormal
	if msg.err != nil {
		m.log.Error().Err(msg.err).Msg("apply failed")
	}
	if msg.err != nil && len(msg.result.Outcome.Results) == 0 {
		m.setError(msg.err.Error())
		return m
	}

	out := msg.result.Outcome
	summary := fmt.Sprintf("Applied: %d succeeded, %d failed", out.Success, out.Failed)
	if len(out.Errors) > 0 {
		summary += " (" + out.Errors[0] + ")"
	}
	if msg.err != nil {
		summary += fmt.Sprintf("; history not saved: %v", msg.err)
	}

	if out.Failed > 0 || msg.err != nil {
		m.setError(summary)
	} else {
		m.setStatus(summary)
	}
	return m
}

// regenerate reloads the staples of the list and builds a fresh proposal.
func (m Model) regenerate() tea.Cmd {
	ctx, svc, lister := m.ctx, m.svc, m.staples
	list, loc, out := m.list, m.opts.LocationID, m.opts.ProposalPath

	return func() tea.Msg {
		name, items, err := loadList(ctx, lister, list)
		if err != nil {
			return proposalBuiltMsg{err: err}
		}

		msg := proposalBuiltMsg{list: name, staples: items}
		switch {
		case len(items) == 0:
			msg.err = errNoStaples
			return msg
		case loc == "":
			msg.err = errNoLocation
			return msg
		}

		msg.result, msg.err = svc.Propose(ctx, kroget.ProposeOptions{
			Lists:      []string{name},
			LocationID: loc,
			Out:        out,
		})
		return msg
	}
}

func (m Model) loadStaples() tea.Cmd {
	ctx, lister, list := m.ctx, m.staples, m.list
	return func() tea.Msg {
		name, items, err := loadList(ctx, lister, list)
		return staplesLoadedMsg{list: name, staples: items, err: err}
	}
}

func (m Model) apply(p proposal.Proposal) tea.Cmd {
	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		res, err := svc.ApplyAndRecord(ctx, p, false)
		return applyDoneMsg{result: res, err: err}
	}
}

func (m Model) pin(p proposal.Proposal, idx, alt int, s staple.Staple) tea.Cmd {
	ctx, pinner, list := m.ctx, m.pinner, m.list
	p = cloneProposal(p)

	return func() tea.Msg {
		item, err := p.Repin(idx, alt)
		if err != nil {
			return pinDoneMsg{err: err}
		}
		if err := pinner.Pin(ctx, list, s, item.UPC); err != nil {
			return pinDoneMsg{err: fmt.Errorf("pin %s: %w", item.Name, err)}
		}
		return pinDoneMsg{proposal: p, name: item.Name, upc: item.UPC}
	}
}

// listenForChanges waits for the next lists file event.
func listenForChanges(ch <-chan jsonfile.FileEvent) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return listsChangedMsg{}
	}
}

func loadList(ctx context.Context, lister StapleLister, list string) (string, []staple.Staple, error) {
	if list == "" {
		active, err := lister.Active(ctx)
		if err != nil {
			return "", nil, err
		}
		list = active
	}

	items, err := lister.Staples(ctx, list)
	if err != nil {
		return list, nil, err
	}
	return list, items, nil
}

func (m Model) selectedItem() (int, bool) {
	if m.proposal == nil || len(m.proposal.Items) == 0 {
		return 0, false
	}
	idx := m.proposalTable.Cursor()
	if idx < 0 || idx >= len(m.proposal.Items) {
		return 0, false
	}
	return idx, true
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(s string) {
	m.status = s
	m.statusErr = true
}

func findStaple(items []staple.Staple, name string) (staple.Staple, bool) {
	for _, s := range items {
		if s.Name == name {
			return s, true
		}
	}
	return staple.Staple{}, false
}

func cloneProposal(p proposal.Proposal) proposal.Proposal {
	p.Items = slices.Clone(p.Items)
	p.Sources = slices.Clone(p.Sources)
	return p
}
