package ai

import (
	"strconv"
	"strings"
)

// table renders rows in a token-oriented notation: a header naming the
// array, its length and fields, then one comma-separated line per row.
//
//	transactions[2]{date,amount}:
//	  2025-06-01,5000
//	  2025-06-02,-120
func table(name string, fields []string, rows [][]string) string {
	var b strings.Builder
	b.WriteString(name)
	b.WriteString("[")
	b.WriteString(strconv.Itoa(len(rows)))
	b.WriteString("]{")
	b.WriteString(strings.Join(fields, ","))
	b.WriteString("}:")
	for _, row := range rows {
		b.WriteString("\n  ")
		for i, v := range row {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(scalar(v))
		}
	}
	return b.String()
}

// field renders a single "key: value" line.
func field(key, value string) string {
	return key + ": " + scalar(value)
}

// scalar quotes a value only when it would be ambiguous unquoted.
func scalar(v string) string {
	if v == "" || v != strings.TrimSpace(v) || strings.ContainsAny(v, ",:\"\\\n\r\t[]{}") {
		return strconv.Quote(v)
	}
	return v
}
