package google

import (
	"fmt"
	"strconv"
	"strings"
)

// a1 builds an A1 range on sheet, quoting the name when needed.
func a1(sheet, cells string) string {
	if strings.ContainsAny(sheet, " '!") {
		sheet = "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
	}
	return sheet + "!" + cells
}

// rowRange is the A:H span of one 1-based row.
func rowRange(sheet string, row int) string {
	return a1(sheet, fmt.Sprintf("A%d:H%d", row, row))
}

// parseID reads a transaction id from a cell. The API returns formatted
// strings, but tests and unformatted reads may yield numbers.
func parseID(cell any) (int64, bool) {
	switch v := cell.(type) {
	case float64:
		return int64(v), v > 0
	case int64:
		return v, v > 0
	case int:
		return int64(v), v > 0
	case string:
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return id, err == nil && id > 0
	}
	return 0, false
}

// findRow returns the 1-based row whose first cell holds id.
func findRow(values [][]any, id int64) (int, bool) {
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		if got, ok := parseID(row[0]); ok && got == id {
			return i + 1, true
		}
	}
	return 0, false
}

// hasHeader reports whether the first row starts with the ID column title.
func hasHeader(values [][]any) bool {
	if len(values) == 0 || len(values[0]) == 0 {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(fmt.Sprint(values[0][0])), "ID")
}
