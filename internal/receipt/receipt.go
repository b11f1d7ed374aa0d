package receipt

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is a single row of a receipt being composed.
type LineItem struct {
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Draft is a receipt under composition, before it is submitted to the
// signing service. It always contains at least one item row.
type Draft struct {
	ReceiptID     string
	StoreID       string
	Timestamp     time.Time
	DeclaredTotal decimal.Decimal
	Items         []LineItem
}

var ErrLastItem = errors.New("a draft must keep at least one item row")

// NewDraft returns an empty draft with one blank item row and the
// timestamp set to now.
func NewDraft() *Draft {
	return &Draft{
		Timestamp: time.Now(),
		Items:     []LineItem{{Quantity: 1}},
	}
}

// AddItem appends a blank row.
func (d *Draft) AddItem() {
	d.Items = append(d.Items, LineItem{Quantity: 1})
}

// RemoveItem deletes the row at index. Removing the last remaining row is
// refused.
func (d *Draft) RemoveItem(index int) error {
	if len(d.Items) <= 1 {
		return ErrLastItem
	}

	if index < 0 || index >= len(d.Items) {
		return nil
	}

	d.Items = append(d.Items[:index], d.Items[index+1:]...)

	return nil
}

// UpdateItem replaces the row at index. Out-of-range indexes are ignored.
func (d *Draft) UpdateItem(index int, item LineItem) {
	if index < 0 || index >= len(d.Items) {
		return
	}

	d.Items[index] = item
}
