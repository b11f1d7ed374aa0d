// Package itemsimport fills a receipt draft's item rows from a CSV file,
// so a long receipt doesn't have to be typed row by row.
package itemsimport

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"tally/internal/encoding"
	"tally/internal/receipt"
)

// Result carries the parsed items plus the charset the file turned out to
// be in, for an informational notification.
type Result struct {
	Items   []receipt.LineItem
	Charset string
}

// Parse reads rows of "name,quantity,price". A header row is skipped when
// its quantity column is not numeric. Errors name the offending line.
func Parse(r io.Reader) (*Result, error) {
	utf8r, charset, err := encoding.Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	cr := csv.NewReader(utf8r)
	cr.FieldsPerRecord = 3
	cr.TrimLeadingSpace = true

	var items []receipt.LineItem

	line := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		line++

		quantity, err := strconv.Atoi(strings.TrimSpace(record[1]))
		if err != nil {
			if line == 1 {
				// Header row.
				continue
			}

			return nil, fmt.Errorf("line %d: quantity %q is not a whole number", line, record[1])
		}

		if quantity <= 0 {
			return nil, fmt.Errorf("line %d: quantity must be positive", line)
		}

		price, err := decimal.NewFromString(strings.TrimSpace(record[2]))
		if err != nil {
			return nil, fmt.Errorf("line %d: price %q is not a number", line, record[2])
		}

		if price.IsNegative() {
			return nil, fmt.Errorf("line %d: price must not be negative", line)
		}

		name := strings.TrimSpace(record[0])
		if name == "" {
			return nil, fmt.Errorf("line %d: item name is empty", line)
		}

		items = append(items, receipt.LineItem{
			Name:      name,
			Quantity:  quantity,
			UnitPrice: price,
		})
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("no items found")
	}

	return &Result{Items: items, Charset: charset}, nil
}

// ParseFile is Parse over a file on disk.
func ParseFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return Parse(f)
}
