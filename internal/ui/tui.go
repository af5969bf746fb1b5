package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	blist "github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/todosync/internal/core"
	"github.com/idilsaglam/todosync/internal/model"
)

// listItem adapts a synced record to bubbles/list.Item.
type listItem struct {
	id   string
	text string
	done bool
}

func (i listItem) titleText() string {
	box := boxUnchecked
	if i.done {
		box = boxChecked
	}
	return fmt.Sprintf("%s %s", box, i.text)
}

// Implement list.Item interface
func (i listItem) Title() string       { return i.titleText() }
func (i listItem) Description() string { return "" }
func (i listItem) FilterValue() string { return i.text }

// Custom delegate to control how items render (single line)
type itemDelegate struct{}

func (d itemDelegate) Height() int                                { return 1 }
func (d itemDelegate) Spacing() int                               { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *blist.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m blist.Model, index int, item blist.Item) {
	it, _ := item.(listItem)

	boxStyled := mutedStyle.Render(boxUnchecked)
	textStyled := it.text
	if it.done {
		boxStyled = successStyle.Render(boxChecked)
		textStyled = doneStyle.Render(it.text)
	}

	line := fmt.Sprintf("%s %s", boxStyled, textStyled)
	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprintln(w, prefix+line)
}

// Messages emitted by controller commands. The controller already holds
// the reconciled state when one of these lands; the TUI just re-reads it.
type syncedMsg struct{}
type addedMsg struct{ accepted bool }

type tuiModel struct {
	ctrl *core.Controller
	list blist.Model
	spin spinner.Model

	// Inline add
	adding bool
	ti     textinput.Model
	addErr string

	width, height int
}

// RunTUI drives the interactive list against the reconciliation
// controller until the user quits. Every mutation is pushed to the
// server; there is no local persistence of records.
func RunTUI(ctrl *core.Controller) error {
	l := blist.New(nil, itemDelegate{}, 0, 0)
	l.Title = headerTitle(nil)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("item", "items")

	// Extend help with Add / Delete / Refresh bindings
	addBind := key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	delBind := key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
	refreshBind := key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh"))
	toggleBind := key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle"))
	extra := func() []key.Binding { return []key.Binding{toggleBind, addBind, delBind, refreshBind} }
	l.AdditionalShortHelpKeys = extra
	l.AdditionalFullHelpKeys = extra

	m := tuiModel{
		ctrl: ctrl,
		list: l,
		spin: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(accentStyle)),
	}
	m.ti = textinput.New()
	m.ti.Prompt = "> "
	m.ti.Placeholder = "New item title..."
	m.ti.CharLimit = 200

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m tuiModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.refreshCmd())
}

// ---- commands: each runs one controller method on its own goroutine ----

func (m tuiModel) refreshCmd() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		ctrl.Refresh(context.Background())
		return syncedMsg{}
	}
}

func (m tuiModel) toggleCmd(id string) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		ctrl.ToggleDone(context.Background(), id)
		return syncedMsg{}
	}
}

func (m tuiModel) removeCmd(id string) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		ctrl.Remove(context.Background(), id)
		return syncedMsg{}
	}
}

func (m tuiModel) addCmd(title string) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		return addedMsg{accepted: ctrl.Add(context.Background(), title)}
	}
}

// syncItems rebuilds the visible list from the controller's state. Called
// after every completed command; it is what makes rollbacks visible.
func (m *tuiModel) syncItems() {
	recs := m.ctrl.Records()
	items := make([]blist.Item, 0, len(recs))
	for _, t := range recs {
		items = append(items, listItem{id: t.ID, text: t.Title, done: t.Done})
	}
	m.list.SetItems(items)
	m.list.Title = headerTitle(recs)
}

func (m tuiModel) selected() (listItem, bool) {
	i := m.list.Index()
	if i < 0 || i >= len(m.list.Items()) {
		return listItem{}, false
	}
	it, ok := m.list.Items()[i].(listItem)
	return it, ok
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case syncedMsg:
		m.syncItems()
		return m, nil
	case addedMsg:
		if msg.accepted {
			m.ti.SetValue("")
			m.ti.Blur()
			m.adding = false
			m.addErr = ""
			m.syncItems()
		} else {
			// keep the typed text so the user can retry
			m.addErr = m.ctrl.LastError()
		}
		return m, nil
	}

	// add mode
	if m.adding {
		var cmd tea.Cmd
		switch x := msg.(type) {
		case tea.KeyMsg:
			switch x.String() {
			case "enter":
				title := strings.TrimSpace(m.ti.Value())
				if title == "" {
					m.addErr = "Title cannot be empty"
					return m, nil
				}
				m.addErr = ""
				return m, m.addCmd(title)
			case "esc":
				m.adding = false
				m.addErr = ""
				m.ti.SetValue("")
				m.ti.Blur()
				return m, nil
			}
		}
		m.ti, cmd = m.ti.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc":
			return m, tea.Quit
		case " ":
			// optimistic: flip the visible item before the server answers
			if it, ok := m.selected(); ok && it.id != "" {
				flipped := it
				flipped.done = !it.done
				m.list.SetItem(m.list.Index(), flipped)
				return m, m.toggleCmd(it.id)
			}
			return m, nil
		case "d":
			// optimistic: drop the visible item before the server answers
			if it, ok := m.selected(); ok && it.id != "" {
				m.list.RemoveItem(m.list.Index())
				return m, m.removeCmd(it.id)
			}
			return m, nil
		case "a":
			m.adding = true
			m.ti.SetValue("")
			m.ti.Focus()
			return m, nil
		case "r":
			return m, m.refreshCmd()
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m tuiModel) View() string {
	w, h := m.width, m.height
	if w == 0 {
		w, h = 80, 24
	}
	listHeight := h - 5
	if m.adding {
		listHeight = h - 7
	}
	m.list.SetSize(w-2, listHeight)

	content := m.list.View()

	status := ""
	if m.ctrl.Loading() {
		status = m.spin.View() + mutedStyle.Render(" syncing...")
	} else if e := m.ctrl.LastError(); e != "" {
		status = errorStyle.Render("✖ " + e)
	}
	content += "\n" + status

	if m.adding {
		bar := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8")).Padding(0, 1)
		title := "Add new item"
		if m.addErr != "" {
			title += " — " + errorStyle.Render(m.addErr)
		}
		content += "\n" + bar.Render(title+"\n"+m.ti.View())
	}
	return panelString(content)
}

// helpers for View
func panelString(inner string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(0, 1)
	return border.Render(inner)
}

func headerTitle(recs []model.Todo) string {
	done, pending := 0, 0
	for _, t := range recs {
		if t.Done {
			done++
		} else {
			pending++
		}
	}
	return fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		titleStyle.Render("Todos"),
		successStyle.Render("✔"), done,
		pendingStyle.Render("•"), pending,
		accentStyle.Render("Total"), len(recs),
	)
}
