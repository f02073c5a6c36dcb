package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/crate/internal/formatter"
	"github.com/desertthunder/crate/internal/models"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ListView ViewState = iota
	DetailView
	ConfirmView
)

// Catalog is the subset of the catalog client the browser needs.
type Catalog interface {
	List(ctx context.Context) ([]models.Item, error)
	Delete(ctx context.Context, id string) error
}

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	view     ViewState
	previous ViewState
	catalog  Catalog
	width    int
	height   int
	list     list.Model
	selected *models.Item
	status   string
	err      error
	help     help.Model
	keys     keyMap
}

// NewModel creates a new TUI model reading from catalog.
func NewModel(ctx context.Context, catalog Catalog) *Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Catalog"

	return &Model{
		ctx:     ctx,
		view:    ListView,
		catalog: catalog,
		list:    l,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init initializes the TUI by fetching every entry.
func (m *Model) Init() tea.Cmd {
	return m.fetchItems()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(max(msg.Width-4, 0), max(msg.Height-6, 0))
		return m, nil

	case tea.KeyMsg:
		if m.err != nil {
			return m.handleErrorKeys(msg)
		}
		switch m.view {
		case ListView:
			return m.handleListKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgItemsFetched:
		data := msg.data.(itemsFetched)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.err = nil
		m.list.Title = fmt.Sprintf("Catalog (%d)", len(data.items))
		return m, m.list.SetItems(toListItems(formatter.Sorted(data.items)))

	case MsgItemDeleted:
		data := msg.data.(itemDeleted)
		m.view = ListView
		m.selected = nil
		if data.err != nil {
			m.status = styles.err.Render(fmt.Sprintf("✗ Failed to delete %s: %v", data.item.Title, data.err))
			return m, nil
		}
		m.status = styles.ok.Render(fmt.Sprintf("✓ Deleted %s", data.item))
		return m, m.fetchItems()
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n" +
			m.help.ShortHelpView([]key.Binding{m.keys.refresh, m.keys.quit})
	}

	switch m.view {
	case ListView:
		return m.renderList()
	case DetailView:
		return m.renderDetail()
	case ConfirmView:
		return m.renderConfirm()
	default:
		return ""
	}
}

func (m *Model) handleErrorKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.refresh):
		m.err = nil
		return m, m.fetchItems()
	}
	return m, nil
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.refresh):
		m.status = ""
		return m, m.fetchItems()
	case key.Matches(msg, m.keys.enter):
		if m.selectCurrent() {
			m.view = DetailView
		}
		return m, nil
	case key.Matches(msg, m.keys.remove):
		if m.selectCurrent() {
			m.previous = ListView
			m.view = ConfirmView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = ListView
		m.selected = nil
	case key.Matches(msg, m.keys.remove):
		m.previous = DetailView
		m.view = ConfirmView
	}
	return m, nil
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		return m, m.deleteItem(*m.selected)
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.quit):
		m.view = m.previous
		if m.view == ListView {
			m.selected = nil
		}
	}
	return m, nil
}

// selectCurrent stores the highlighted entry and reports whether one exists.
func (m *Model) selectCurrent() bool {
	entry, ok := m.list.SelectedItem().(entryItem)
	if !ok {
		return false
	}
	item := entry.item
	m.selected = &item
	return true
}

func (m *Model) fetchItems() tea.Cmd {
	return func() tea.Msg {
		items, err := m.catalog.List(m.ctx)
		return itemsFetchedMsg(items, err)
	}
}

func (m *Model) deleteItem(item models.Item) tea.Cmd {
	return func() tea.Msg {
		return itemDeletedMsg(item, m.catalog.Delete(m.ctx, item.ID))
	}
}

func (m *Model) renderList() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.remove, m.keys.refresh, m.keys.quit})
	if m.status == "" {
		return fmt.Sprintf("%s\n\n%s", m.list.View(), helpView)
	}
	return fmt.Sprintf("%s\n%s\n\n%s", m.list.View(), m.status, helpView)
}

func (m *Model) renderDetail() string {
	item := m.selected
	var b strings.Builder

	b.WriteString(styles.title.Render(item.Title))
	b.WriteString("\n")
	for _, field := range [][2]string{
		{"ID", item.ID},
		{"Creator", item.Creator},
		{"Format", item.Format},
		{"Year", fmt.Sprintf("%d", item.Year)},
	} {
		b.WriteString(fmt.Sprintf("%s %s\n", styles.label.Render(field[0]), field[1]))
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.remove, m.keys.quit})
	return fmt.Sprintf("%s\n%s", b.String(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.warn.Render(fmt.Sprintf("Delete '%s'?", m.selected.Title))
	info := fmt.Sprintf("\n%s\n%s\n", m.selected, styles.help.Render("This cannot be undone."))
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no})

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}
