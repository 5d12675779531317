package app

import (
	"context"
	"fmt"
	"os"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/levelup/internal/progression"
	"github.com/abhisek/levelup/internal/router"
	"github.com/abhisek/levelup/internal/screen"
	"github.com/abhisek/levelup/internal/screens/dashboard"
	"github.com/abhisek/levelup/internal/store"
	"github.com/abhisek/levelup/internal/ui/layout"
)

// Options holds the dependencies the dashboard needs.
type Options struct {
	Service   *progression.Service
	EventRepo store.EventRepo
	Learner   string
}

var (
	quitKey = key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit"))
	backKey = key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back"))
)

type statusMsg struct {
	status layout.Status
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	help   help.Model
	svc    *progression.Service
	status layout.Status
	width  int
	height int
}

func newAppModel(opts Options) AppModel {
	return AppModel{
		router: router.New(dashboard.New(opts.Service, opts.EventRepo, opts.Learner)),
		help:   help.New(),
		svc:    opts.Service,
		status: layout.Status{Learner: opts.Learner, Level: 1},
	}
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(m.router.Active().Init(), m.loadStatus)
}

func (m AppModel) loadStatus() tea.Msg {
	st, err := m.svc.State(context.Background(), m.status.Learner)
	if err != nil {
		return nil
	}
	return statusMsg{status: layout.Status{
		Learner: st.Learner,
		Level:   st.Level.Level,
		TotalXP: st.Level.TotalXP,
		Streak:  st.Streak,
	}}
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case statusMsg:
		m.status = msg.status
		return m, nil

	case screen.RefreshMsg:
		return m, tea.Batch(m.router.Update(msg), m.loadStatus)

	case tea.KeyMsg:
		if key.Matches(msg, quitKey) {
			return m, tea.Quit
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.status, m.width)

	var bindings []key.Binding
	if kb, ok := active.(screen.KeyBinder); ok {
		bindings = kb.KeyBindings()
	} else if m.router.Depth() > 1 {
		bindings = []key.Binding{backKey}
	}
	bindings = append(bindings, quitKey)
	footer := layout.RenderFooter(m.help, bindings, m.width)

	contentHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	v.SetContent(layout.RenderFrame(header, content, footer, m.width, m.height))
	return v
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
