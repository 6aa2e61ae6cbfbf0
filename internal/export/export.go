// Package export projects transactions into the CSV and JSON download formats.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"incometracker/internal/core"
	"incometracker/internal/period"
)

type Format string

const (
	CSV  Format = "csv"
	JSON Format = "json"
)

// ParseFormat accepts csv or json; an empty value means csv.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return CSV, nil
	case CSV, JSON:
		return f, nil
	default:
		return "", core.Invalid("analytics.format_invalid")
	}
}

// Labels holds the localized header row and type labels of a CSV export.
type Labels struct {
	Header  [7]string
	Income  string
	Expense string
}

func (l Labels) typeLabel(t core.TxType) string {
	if t == core.Income {
		return l.Income
	}
	return l.Expense
}

// WriteCSV writes the header and one row per transaction, in input order.
func WriteCSV(w io.Writer, txs []core.Transaction, labels Labels) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(labels.Header[:]); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, tx := range txs {
		category := ""
		if tx.Category != nil {
			category = tx.Category.Name
		}
		row := []string{
			strconv.FormatInt(tx.ID, 10),
			tx.Date.String(),
			labels.typeLabel(tx.Type),
			category,
			tx.Amount.Decimal().String(),
			tx.Description,
			FormatTimestamp(tx.CreatedAt),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", tx.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// RenderCSV is WriteCSV into a string.
func RenderCSV(txs []core.Transaction, labels Labels) (string, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, txs, labels); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Filename is the suggested download name for an export of iv.
func Filename(iv period.Interval) string {
	return fmt.Sprintf("transactions_%s_%s.csv", iv.Start, iv.End)
}

// FormatTimestamp renders t in UTC without a zone suffix, with microseconds
// only when present.
func FormatTimestamp(t time.Time) string {
	t = t.UTC()
	if t.Nanosecond()/1000 == 0 {
		return t.Format("2006-01-02T15:04:05")
	}
	return t.Format("2006-01-02T15:04:05.000000")
}
