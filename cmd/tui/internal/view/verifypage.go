package view

import (
	"encoding/json"
	"errors"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tally/internal/notify"
	"tally/internal/scan"
	"tally/internal/verify"
)

type verState int

const (
	verStateInput verState = iota
	verStatePickImage
	verStatePending
)

type verifyDoneMsg struct{}

type scanResultMsg struct {
	decoded scan.Decoded
	err     error
}

// VerifyModel is the re-verification screen: an identifier typed by hand
// or pulled out of an uploaded QR image, checked against the service.
type VerifyModel struct {
	CommonModel
	orch  *verify.Orchestrator
	queue *notify.Queue

	state      verState
	input      textinput.Model
	filePicker filepicker.Model
	spin       spinner.Model
}

func NewVerifyModel(orch *verify.Orchestrator, queue *notify.Queue) VerifyModel {
	input := textinput.New()
	input.Placeholder = "Enter Receipt ID"
	input.CharLimit = 128
	input.Width = 40
	input.Focus()

	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".png", ".jpg", ".jpeg", ".gif"}
	fp.Height = 15

	return VerifyModel{
		orch:       orch,
		queue:      queue,
		input:      input,
		filePicker: fp,
		spin:       spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

func (m VerifyModel) Title() string { return "Verify Receipt" }

func (m VerifyModel) ShortHelp() string {
	switch m.state {
	case verStatePickImage:
		return "Enter: select image | Esc: cancel"
	case verStatePending:
		return "Verifying..."
	}

	return "Enter: verify | Ctrl+U: upload QR image | Esc: back"
}

func (m VerifyModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m VerifyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		return m, nil

	case verifyDoneMsg:
		m.state = verStateInput
		return m, nil

	case scanResultMsg:
		m.state = verStateInput

		if msg.err != nil {
			// The typed identifier, if any, stays as it was.
			switch {
			case errors.Is(msg.err, scan.ErrNoCodeFound):
				m.queue.Post("No QR code detected", notify.SeverityError)
			case errors.Is(msg.err, scan.ErrUnreadableFile):
				m.queue.Post("Could not read that file as an image", notify.SeverityError)
			default:
				m.queue.Post("QR scan failed", notify.SeverityError)
			}

			return m, nil
		}

		m.input.SetValue(msg.decoded.Identifier)
		m.queue.Post("QR code scanned successfully!", notify.SeveritySuccess)

		return m, nil

	case spinner.TickMsg:
		if m.state == verStatePending {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)

			return m, cmd
		}

		return m, nil
	}

	switch m.state {
	case verStateInput:
		return m.updateInput(msg)
	case verStatePickImage:
		return m.updatePickImage(msg)
	case verStatePending:
		// The verify control is disabled while a request is in flight;
		// keystrokes are dropped until the attempt settles.
		return m, nil
	}

	return m, nil
}

func (m VerifyModel) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEsc:
			return m, Back

		case tea.KeyEnter:
			return m.startVerify()

		case tea.KeyCtrlU:
			m.state = verStatePickImage
			return m, m.filePicker.Init()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m VerifyModel) startVerify() (tea.Model, tea.Cmd) {
	receiptID := strings.TrimSpace(m.input.Value())
	if receiptID == "" {
		return m, nil
	}

	m.state = verStatePending

	orch := m.orch

	return m, tea.Batch(m.spin.Tick, func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()

		// Outcome and notification are the orchestrator's business; the
		// view only needs to know the attempt settled.
		_ = orch.Verify(ctx, receiptID)

		return verifyDoneMsg{}
	})
}

func (m VerifyModel) updatePickImage(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = verStateInput
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if ok, path := m.filePicker.DidSelectFile(msg); ok {
		m.state = verStateInput

		return m, func() tea.Msg {
			decoded, err := scan.ScanFile(path)
			return scanResultMsg{decoded: decoded, err: err}
		}
	}

	return m, cmd
}

var (
	verTitleStyle = lipgloss.NewStyle().Bold(true)
	verFaintStyle = lipgloss.NewStyle().Faint(true)
	verOKStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	verBadStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func (m VerifyModel) View() string {
	switch m.state {
	case verStatePickImage:
		return lipgloss.NewStyle().Padding(1).Render(
			verTitleStyle.Render("Upload a QR code image") + "\n\n" + m.filePicker.View(),
		)

	case verStatePending:
		return lipgloss.NewStyle().Padding(2).Render(m.spin.View() + " Verifying...")
	}

	body := verTitleStyle.Render("Verify Receipt") + "\n\n" + m.input.View() + "\n"

	if result := m.orch.Result(); result != nil {
		body += "\n" + m.resultView(result)
	}

	return lipgloss.NewStyle().Padding(1).Render(body)
}

func (m VerifyModel) resultView(result *verify.Result) string {
	var sb strings.Builder

	if result.IsValid {
		sb.WriteString(verOKStyle.Render("✓ " + result.Message))
	} else {
		sb.WriteString(verBadStyle.Render("✗ " + result.Message))
	}

	sb.WriteString("\n")

	names := make([]string, 0, len(result.Checks))
	for name := range result.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		mark := verOKStyle.Render("ok")
		if !result.Checks[name] {
			mark = verBadStyle.Render("failed")
		}

		sb.WriteString(verFaintStyle.Render("  "+name+": ") + mark + "\n")
	}

	if result.Receipt != nil {
		if pretty, err := json.MarshalIndent(result.Receipt, "", "  "); err == nil {
			sb.WriteString("\n" + verFaintStyle.Render(string(pretty)))
		}
	}

	return sb.String()
}
