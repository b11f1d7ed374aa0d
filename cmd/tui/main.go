package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"tally/cmd/tui/internal/view"
	"tally/internal/api"
	"tally/internal/config"
	"tally/internal/notify"
	"tally/internal/verify"
)

type View int

const (
	ViewMenu     View = 0
	ViewGenerate View = 1
	ViewVerify   View = 2
	ViewSuccess  View = 3
)

type model struct {
	client *api.Client
	queue  *notify.Queue
	orch   *verify.Orchestrator
	origin string

	currentView View
	ticking     bool

	generateView view.GenerateModel
	verifyView   view.VerifyModel
	successView  view.SuccessModel
}

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	client := api.New(cfg.API.BaseURL, cfg.API.Timeout)
	queue := notify.New(cfg.Notify.TTL)
	orch := verify.NewOrchestrator(client, queue)

	return model{
		client:       client,
		queue:        queue,
		orch:         orch,
		origin:       cfg.API.BaseURL,
		currentView:  ViewMenu,
		generateView: view.NewGenerateModel(client, queue, cfg.API.BaseURL),
		verifyView:   view.NewVerifyModel(orch, queue),
		successView:  view.NewSuccessModel(nil, queue),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				m.queue.Close()
				return m, tea.Quit
			case "1":
				m.currentView = ViewGenerate
				m.generateView = view.NewGenerateModel(m.client, m.queue, m.origin)

				return m.arm(m.generateView.Init())
			case "2":
				m.currentView = ViewVerify
				m.verifyView = view.NewVerifyModel(m.orch, m.queue)

				return m.arm(m.verifyView.Init())
			}

			return m, nil
		}

	case view.BackMsg:
		m.currentView = ViewMenu
		return m.arm(nil)

	case view.GeneratedMsg:
		receipt := msg.Receipt
		m.currentView = ViewSuccess
		m.successView = view.NewSuccessModel(&receipt, m.queue)

		return m.arm(m.successView.Init())

	case view.ToastTickMsg:
		m.ticking = false
		return m.arm(nil)
	}

	switch m.currentView {
	case ViewGenerate:
		var newModel tea.Model
		newModel, cmd = m.generateView.Update(msg)
		m.generateView = newModel.(view.GenerateModel)
	case ViewVerify:
		var newModel tea.Model
		newModel, cmd = m.verifyView.Update(msg)
		m.verifyView = newModel.(view.VerifyModel)
	case ViewSuccess:
		var newModel tea.Model
		newModel, cmd = m.successView.Update(msg)
		m.successView = newModel.(view.SuccessModel)
	}

	return m.arm(cmd)
}

// arm keeps a toast refresh tick alive while any toast is on screen, so
// expiry is visible without further input.
func (m model) arm(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	if !m.ticking && len(m.queue.Active()) > 0 {
		m.ticking = true
		return m, tea.Batch(cmd, view.ToastTick())
	}

	return m, cmd
}

var helpStyle = lipgloss.NewStyle().Faint(true).Padding(0, 1)

func (m model) View() string {
	var body string

	switch m.currentView {
	case ViewMenu:
		body = lipgloss.NewStyle().Padding(2).Render(
			"Tally — receipt generation & verification\n\n" +
				"1. Generate Receipt\n" +
				"2. Verify Receipt\n\n" +
				"q. Quit",
		)
	case ViewGenerate:
		body = m.generateView.View() + "\n" + helpStyle.Render(m.generateView.ShortHelp())
	case ViewVerify:
		body = m.verifyView.View() + "\n" + helpStyle.Render(m.verifyView.ShortHelp())
	case ViewSuccess:
		body = m.successView.View() + "\n" + helpStyle.Render(m.successView.ShortHelp())
	}

	if toasts := view.RenderToasts(m.queue); toasts != "" {
		body += "\n" + toasts
	}

	return body
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
