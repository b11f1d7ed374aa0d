package view

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// View is the interface that all TUI screens implement.
type View interface {
	tea.Model
	Title() string
	ShortHelp() string
}

// CommonModel is embedded by all views.
type CommonModel struct {
	Width  int
	Height int
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// GeneratedReceipt is the state handed from the generate screen to the
// success screen after the service has signed a receipt.
type GeneratedReceipt struct {
	ReceiptID   string
	StoreID     string
	Timestamp   time.Time
	TotalAmount string
	Hash        string
	Signature   string
	VerifyURL   string
}

// GeneratedMsg switches the app to the success screen.
type GeneratedMsg struct {
	Receipt GeneratedReceipt
}

const requestTimeout = 15 * time.Second

// reqCtx returns a context with the standard timeout for service calls.
func reqCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}
