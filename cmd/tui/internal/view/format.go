package view

import (
	"time"

	"github.com/shopspring/decimal"
)

// FormatMoney renders an amount at currency precision.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatTimestamp renders a receipt timestamp at minute precision.
func FormatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}
