package google

import (
	"fmt"
	"strconv"
	"strings"

	"incometracker/internal/sheets"
)

// findRow returns the 1-based sheet row whose first cell is id, or 0.
func findRow(values [][]any, id int64) int {
	want := strconv.FormatInt(id, 10)
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == want {
			return i + 1
		}
	}
	return 0
}

func rowRange(sheet string, n int) string {
	return fmt.Sprintf("%s!A%d:H%d", sheet, n, n)
}

func headerValues() []any {
	out := make([]any, len(sheets.Header))
	for i, h := range sheets.Header {
		out[i] = h
	}
	return out
}
