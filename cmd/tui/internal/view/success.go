package view

import (
	"fmt"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tally/internal/notify"
	"tally/internal/qr"
)

// SuccessModel shows a freshly signed receipt with its scannable code.
// Reaching it without generation state is a dead end that points the user
// back at the generate flow, not an error.
type SuccessModel struct {
	CommonModel
	queue *notify.Queue

	receipt *GeneratedReceipt
	qrBlock string
}

func NewSuccessModel(receipt *GeneratedReceipt, queue *notify.Queue) SuccessModel {
	m := SuccessModel{
		queue:   queue,
		receipt: receipt,
	}

	if receipt != nil {
		block, err := qr.Render(receipt.VerifyURL)
		if err == nil {
			m.qrBlock = block
		}
	}

	return m
}

func (m SuccessModel) Title() string { return "Receipt Generated" }

func (m SuccessModel) ShortHelp() string {
	if m.receipt == nil {
		return "Esc: back"
	}

	return "d: save QR png | c: copy hash | g: copy signature | u: copy verify URL | Esc: back"
}

func (m SuccessModel) Init() tea.Cmd {
	if m.receipt != nil {
		m.queue.Post("Receipt generated and secured!", notify.SeveritySuccess)
	}

	return nil
}

func (m SuccessModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	if m.receipt == nil {
		return m, nil
	}

	switch keyMsg.String() {
	case "d":
		path := fmt.Sprintf("%s_qr.png", m.receipt.ReceiptID)
		if err := qr.WritePNG(m.receipt.VerifyURL, path); err != nil {
			m.queue.Post("Could not save QR image", notify.SeverityError)
			return m, nil
		}

		m.queue.Post(fmt.Sprintf("QR saved to %s", path), notify.SeveritySuccess)

	case "c":
		m.copyToClipboard(m.receipt.Hash)

	case "g":
		m.copyToClipboard(m.receipt.Signature)

	case "u":
		m.copyToClipboard(m.receipt.VerifyURL)
	}

	return m, nil
}

func (m SuccessModel) copyToClipboard(text string) {
	if err := clipboard.WriteAll(text); err != nil {
		m.queue.Post("Clipboard unavailable", notify.SeverityError)
		return
	}

	m.queue.Post("Copied to clipboard!", notify.SeveritySuccess)
}

var (
	successLabelStyle = lipgloss.NewStyle().Faint(true).Width(12)
	successValueStyle = lipgloss.NewStyle()
	successHeadStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
)

func (m SuccessModel) View() string {
	if m.receipt == nil {
		return lipgloss.NewStyle().Padding(2).Render(
			"No receipt data found. Please generate a receipt first.\n\n" +
				lipgloss.NewStyle().Faint(true).Render("Press Esc to go back to the menu."),
		)
	}

	row := func(label, value string) string {
		return successLabelStyle.Render(label) + successValueStyle.Render(value) + "\n"
	}

	details := successHeadStyle.Render("Receipt secured") + "\n\n" +
		row("Receipt ID", m.receipt.ReceiptID) +
		row("Store ID", m.receipt.StoreID) +
		row("Timestamp", FormatTimestamp(m.receipt.Timestamp)) +
		row("Total", m.receipt.TotalAmount) +
		row("Hash", m.receipt.Hash) +
		row("Signature", m.receipt.Signature) +
		row("Verify URL", m.receipt.VerifyURL)

	body := details
	if m.qrBlock != "" {
		body += "\n" + m.qrBlock
	}

	return lipgloss.NewStyle().Padding(1).Render(body)
}
