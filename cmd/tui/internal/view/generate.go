package view

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"tally/internal/api"
	"tally/internal/itemsimport"
	"tally/internal/notify"
	"tally/internal/qr"
	"tally/internal/receipt"
)

const timestampLayout = "2006-01-02 15:04"

type genState int

const (
	genStateDetails genState = iota
	genStateItems
	genStateItemEdit
	genStateImportPick
	genStateSubmitting
)

type generateResultMsg struct {
	resp *api.GenerateResponse
	err  error
}

type importResultMsg struct {
	result *itemsimport.Result
	err    error
}

type GenerateModel struct {
	CommonModel
	client *api.Client
	queue  *notify.Queue
	origin string

	state      genState
	draft      *receipt.Draft
	form       *huh.Form
	filePicker filepicker.Model
	spin       spinner.Model
	cursor     int
	editIndex  int

	// Form field bindings
	formReceiptID string
	formStoreID   string
	formTimestamp string
	formTotal     string
	formItemName  string
	formItemQty   string
	formItemPrice string
}

func NewGenerateModel(client *api.Client, queue *notify.Queue, origin string) GenerateModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv"}
	fp.Height = 15

	draft := receipt.NewDraft()

	m := GenerateModel{
		client:        client,
		queue:         queue,
		origin:        origin,
		draft:         draft,
		filePicker:    fp,
		spin:          spinner.New(spinner.WithSpinner(spinner.Dot)),
		formTimestamp: draft.Timestamp.Format(timestampLayout),
	}
	m.form = m.detailsForm()

	return m
}

func (m GenerateModel) Title() string { return "Generate Receipt" }

func (m GenerateModel) ShortHelp() string {
	switch m.state {
	case genStateItems:
		return "a: add | x: remove | Enter: edit | i: import CSV | s: submit | Esc: back"
	case genStateImportPick:
		return "Enter: select file | Esc: cancel"
	case genStateSubmitting:
		return "Submitting..."
	}

	return "Esc: back | Enter/Tab: navigate form"
}

func (m GenerateModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m *GenerateModel) detailsForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("receipt_id").
				Title("Receipt ID").
				Placeholder("Enter receipt ID").
				Value(&m.formReceiptID).
				Validate(nonEmpty("receipt ID")),

			huh.NewInput().
				Key("store_id").
				Title("Store ID").
				Placeholder("Enter store ID").
				Value(&m.formStoreID).
				Validate(nonEmpty("store ID")),

			huh.NewInput().
				Key("timestamp").
				Title("Timestamp").
				Placeholder(timestampLayout).
				Value(&m.formTimestamp).
				Validate(func(s string) error {
					if _, err := time.Parse(timestampLayout, strings.TrimSpace(s)); err != nil {
						return fmt.Errorf("use the format %s", timestampLayout)
					}
					return nil
				}),

			huh.NewInput().
				Key("total_amount").
				Title("Total Amount").
				Placeholder("0.00").
				Value(&m.formTotal).
				Validate(validMoney),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m *GenerateModel) itemForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("name").
				Title("Item Name").
				Placeholder("Enter item name").
				Value(&m.formItemName).
				Validate(nonEmpty("item name")),

			huh.NewInput().
				Key("quantity").
				Title("Quantity").
				Value(&m.formItemQty).
				Validate(func(s string) error {
					n, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || n <= 0 {
						return fmt.Errorf("quantity must be a positive whole number")
					}
					return nil
				}),

			huh.NewInput().
				Key("price").
				Title("Unit Price").
				Placeholder("0.00").
				Value(&m.formItemPrice).
				Validate(validMoney),
		),
	).WithWidth(50).WithShowHelp(false)
}

func nonEmpty(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", field)
		}
		return nil
	}
}

func validMoney(s string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("enter an amount like 12.50")
	}

	if d.IsNegative() {
		return fmt.Errorf("amount must not be negative")
	}

	return nil
}

func (m GenerateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		return m, nil

	case generateResultMsg:
		return m.handleGenerateResult(msg)

	case importResultMsg:
		m.state = genStateItems

		if msg.err != nil {
			m.queue.Post(fmt.Sprintf("Import failed: %v", msg.err), notify.SeverityError)
			return m, nil
		}

		m.draft.Items = msg.result.Items
		m.cursor = 0
		m.queue.Post(fmt.Sprintf("Imported %d items (%s)", len(msg.result.Items), msg.result.Charset), notify.SeveritySuccess)

		return m, nil

	case spinner.TickMsg:
		if m.state == genStateSubmitting {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)

			return m, cmd
		}

		return m, nil
	}

	switch m.state {
	case genStateDetails:
		return m.updateDetails(msg)
	case genStateItems:
		return m.updateItems(msg)
	case genStateItemEdit:
		return m.updateItemEdit(msg)
	case genStateImportPick:
		return m.updateImportPick(msg)
	}

	return m, nil
}

func (m GenerateModel) updateDetails(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.draft.ReceiptID = strings.TrimSpace(m.form.GetString("receipt_id"))
	m.draft.StoreID = strings.TrimSpace(m.form.GetString("store_id"))
	m.draft.Timestamp, _ = time.Parse(timestampLayout, strings.TrimSpace(m.form.GetString("timestamp")))
	m.draft.DeclaredTotal, _ = decimal.NewFromString(strings.TrimSpace(m.form.GetString("total_amount")))
	m.state = genStateItems

	return m, nil
}

func (m GenerateModel) updateItems(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		return m, Back

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.draft.Items)-1 {
			m.cursor++
		}

	case "a":
		m.draft.AddItem()
		m.cursor = len(m.draft.Items) - 1

		return m.startItemEdit(m.cursor)

	case "x":
		if err := m.draft.RemoveItem(m.cursor); err != nil {
			if errors.Is(err, receipt.ErrLastItem) {
				m.queue.Post("A receipt needs at least one item", notify.SeverityWarning)
			}

			return m, nil
		}

		if m.cursor >= len(m.draft.Items) {
			m.cursor = len(m.draft.Items) - 1
		}

	case "enter":
		return m.startItemEdit(m.cursor)

	case "i":
		m.state = genStateImportPick
		return m, m.filePicker.Init()

	case "s":
		return m.submit()
	}

	return m, nil
}

func (m GenerateModel) startItemEdit(index int) (tea.Model, tea.Cmd) {
	item := m.draft.Items[index]

	m.editIndex = index
	m.formItemName = item.Name
	m.formItemQty = strconv.Itoa(item.Quantity)
	m.formItemPrice = FormatMoney(item.UnitPrice)
	m.form = m.itemForm()
	m.state = genStateItemEdit

	return m, m.form.Init()
}

func (m GenerateModel) updateItemEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = genStateItems
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	quantity, _ := strconv.Atoi(strings.TrimSpace(m.form.GetString("quantity")))
	price, _ := decimal.NewFromString(strings.TrimSpace(m.form.GetString("price")))

	m.draft.UpdateItem(m.editIndex, receipt.LineItem{
		Name:      strings.TrimSpace(m.form.GetString("name")),
		Quantity:  quantity,
		UnitPrice: price,
	})
	m.state = genStateItems

	return m, nil
}

func (m GenerateModel) updateImportPick(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = genStateItems
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if ok, path := m.filePicker.DidSelectFile(msg); ok {
		return m, func() tea.Msg {
			result, err := itemsimport.ParseFile(path)
			return importResultMsg{result: result, err: err}
		}
	}

	return m, cmd
}

// submit gates the draft on reconciliation before anything leaves the
// machine. A mismatch is a recoverable warning, not a dead end.
func (m GenerateModel) submit() (tea.Model, tea.Cmd) {
	for i, item := range m.draft.Items {
		if strings.TrimSpace(item.Name) == "" {
			m.queue.Post(fmt.Sprintf("Item %d has no name", i+1), notify.SeverityWarning)
			return m, nil
		}
	}

	result := receipt.Reconcile(m.draft.Items, m.draft.DeclaredTotal)
	if !result.OK {
		m.queue.Post(
			fmt.Sprintf("Total mismatch: declared %s, items sum to %s. Please check again.",
				FormatMoney(m.draft.DeclaredTotal), FormatMoney(result.ComputedTotal)),
			notify.SeverityWarning,
		)

		return m, nil
	}

	m.state = genStateSubmitting

	draft := m.draft

	return m, tea.Batch(m.spin.Tick, func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()

		resp, err := m.client.Generate(ctx, api.RequestFromDraft(draft))

		return generateResultMsg{resp: resp, err: err}
	})
}

func (m GenerateModel) handleGenerateResult(msg generateResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.state = genStateItems

		message := "Server error."

		var apiErr *api.Error
		if errors.As(msg.err, &apiErr) {
			message = apiErr.Message
		}

		m.queue.Post(message, notify.SeverityError)

		return m, nil
	}

	generated := GeneratedReceipt{
		ReceiptID:   m.draft.ReceiptID,
		StoreID:     m.draft.StoreID,
		Timestamp:   m.draft.Timestamp,
		TotalAmount: FormatMoney(m.draft.DeclaredTotal),
		Hash:        msg.resp.Hash,
		Signature:   msg.resp.Signature,
		VerifyURL:   qr.VerificationURL(m.origin, m.draft.ReceiptID),
	}

	return m, func() tea.Msg {
		return GeneratedMsg{Receipt: generated}
	}
}

var (
	genTitleStyle  = lipgloss.NewStyle().Bold(true)
	genCursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	genFaintStyle  = lipgloss.NewStyle().Faint(true)
)

func (m GenerateModel) View() string {
	switch m.state {
	case genStateDetails, genStateItemEdit:
		if m.form == nil {
			return ""
		}

		return lipgloss.NewStyle().Padding(1).Render(m.form.View())

	case genStateItems:
		return lipgloss.NewStyle().Padding(1).Render(m.itemsView())

	case genStateImportPick:
		return lipgloss.NewStyle().Padding(1).Render(
			genTitleStyle.Render("Import items from CSV (name,quantity,price)") + "\n\n" + m.filePicker.View(),
		)

	case genStateSubmitting:
		return lipgloss.NewStyle().Padding(2).Render(m.spin.View() + " Generating receipt...")
	}

	return ""
}

func (m GenerateModel) itemsView() string {
	var sb strings.Builder

	sb.WriteString(genTitleStyle.Render(fmt.Sprintf("Receipt %s — %s", m.draft.ReceiptID, m.draft.StoreID)))
	sb.WriteString("\n")
	sb.WriteString(genFaintStyle.Render(fmt.Sprintf("%s | declared total %s",
		FormatTimestamp(m.draft.Timestamp), FormatMoney(m.draft.DeclaredTotal))))
	sb.WriteString("\n\n")

	for i, item := range m.draft.Items {
		prefix := "  "
		if i == m.cursor {
			prefix = genCursorStyle.Render("> ")
		}

		name := item.Name
		if name == "" {
			name = genFaintStyle.Render("(unnamed item)")
		}

		sb.WriteString(fmt.Sprintf("%s%s  x%d  @ %s\n", prefix, name, item.Quantity, FormatMoney(item.UnitPrice)))
	}

	computed := receipt.Reconcile(m.draft.Items, m.draft.DeclaredTotal)
	sb.WriteString("\n")
	sb.WriteString(genFaintStyle.Render(fmt.Sprintf("items sum: %s", FormatMoney(computed.ComputedTotal))))

	return sb.String()
}
