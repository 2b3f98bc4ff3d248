// Package parser turns OCR-extracted receipt tables into structured line
// items. It is a pure function over text: no I/O, no side effects, and an
// all-or-nothing contract: any bad row aborts the whole parse so ingestion
// never sees partial results.
//
// Accepted input is a pipe-delimited markdown table or a tab-separated
// equivalent, with or without a header row:
//
//	| Item Name | Qty | Price | Total Price |
//	|-----------|-----|-------|-------------|
//	| Burger    | 2   | 12.50 | 25.00       |
//
// The fourth "total" column is ignored when present; totals are always
// recomputed downstream, never trusted from input.
package parser

import (
	"strconv"
	"strings"

	"github.com/tabsplit/tabsplit/internal/errs"
)

// ParsedItem is one data row of a receipt table.
type ParsedItem struct {
	// Description is the item name, never empty.
	Description string

	// Quantity is the parsed count, or zero when the column was absent or
	// not a positive integer. Callers treat zero as 1.
	Quantity int64

	// AmountMinor is the unit price in minor currency units, strictly
	// positive.
	AmountMinor int64
}

// ParseTable parses a pipe- or tab-delimited receipt table. It returns a
// FormatError on unrecognized delimiters, column count mismatches, empty
// descriptions, unparsable or non-positive prices, or an input with no data
// rows.
func ParseTable(text string) ([]ParsedItem, error) {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return nil, errs.Formatf(0, "no data rows")
	}

	pipe, err := detectDelimiter(lines)
	if err != nil {
		return nil, err
	}

	dataLines := lines[:0:0]
	for _, line := range lines {
		if !isSeparatorLine(line) {
			dataLines = append(dataLines, line)
		}
	}
	if len(dataLines) == 0 {
		return nil, errs.Formatf(0, "no data rows")
	}

	// A first line without any digit is a header; a line with a digit is data.
	if !strings.ContainsAny(dataLines[0], "0123456789") {
		dataLines = dataLines[1:]
	}
	if len(dataLines) == 0 {
		return nil, errs.Formatf(0, "no data rows")
	}

	items := make([]ParsedItem, 0, len(dataLines))
	for i, line := range dataLines {
		item, err := parseRow(line, pipe, i+1)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// detectDelimiter picks pipe if any line contains one, then falls back to tab.
func detectDelimiter(lines []string) (pipe bool, err error) {
	for _, line := range lines {
		if strings.Contains(line, "|") {
			return true, nil
		}
	}
	for _, line := range lines {
		if strings.Contains(line, "\t") {
			return false, nil
		}
	}
	return false, errs.Formatf(0, "unrecognized delimiter")
}

// isSeparatorLine reports markdown separator rows: dashes, pipes and
// whitespace only.
func isSeparatorLine(line string) bool {
	return strings.Trim(line, "-| \t") == "" && strings.ContainsAny(line, "-|")
}

func parseRow(line string, pipe bool, row int) (ParsedItem, error) {
	parts := splitColumns(line, pipe)

	// Description, quantity, price; an optional trailing total column is
	// discarded.
	if len(parts) < 3 || len(parts) > 4 {
		return ParsedItem{}, errs.Formatf(row, "column count mismatch: got %d, want 3", len(parts))
	}

	desc := parts[0]
	if desc == "" {
		return ParsedItem{}, errs.Formatf(row, "description cannot be empty")
	}

	amount, err := parsePriceMinor(parts[2], row)
	if err != nil {
		return ParsedItem{}, err
	}

	return ParsedItem{
		Description: desc,
		Quantity:    parseQuantity(parts[1]),
		AmountMinor: amount,
	}, nil
}

// splitColumns splits a row into trimmed cells, dropping the empty edge cells
// produced by leading/trailing pipes.
func splitColumns(line string, pipe bool) []string {
	delim := "\t"
	if pipe {
		delim = "|"
	}
	parts := strings.Split(line, delim)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if pipe {
		if len(parts) > 0 && parts[0] == "" {
			parts = parts[1:]
		}
		if len(parts) > 0 && parts[len(parts)-1] == "" {
			parts = parts[:len(parts)-1]
		}
	}
	return parts
}

// parseQuantity normalizes anything that is not a positive integer to zero
// (absent). A garbled quantity is not worth failing the row over; downstream
// defaults it to 1.
func parseQuantity(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

// parsePriceMinor converts a price cell into minor currency units. Currency
// symbols and thousands separators are stripped; a value without a decimal
// point is whole units; fractional parts are truncated or right-padded to
// exactly two digits.
func parsePriceMinor(s string, row int) (int64, error) {
	var clean strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			clean.WriteRune(r)
		}
	}
	cleaned := clean.String()
	if cleaned == "" || cleaned == "." {
		return 0, errs.Formatf(row, "invalid price %q", s)
	}

	var amount int64
	if strings.Contains(cleaned, ".") {
		segs := strings.Split(cleaned, ".")
		whole := int64(0)
		if segs[0] != "" {
			n, err := strconv.ParseInt(segs[0], 10, 64)
			if err != nil {
				return 0, errs.Formatf(row, "invalid price %q", s)
			}
			whole = n
		}
		frac := segs[1]
		if len(frac) > 2 {
			frac = frac[:2]
		}
		for len(frac) < 2 {
			frac += "0"
		}
		cents, err := strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, errs.Formatf(row, "invalid price %q", s)
		}
		amount = whole*100 + cents
	} else {
		n, err := strconv.ParseInt(cleaned, 10, 64)
		if err != nil {
			return 0, errs.Formatf(row, "invalid price %q", s)
		}
		amount = n * 100
	}

	if amount <= 0 {
		return 0, errs.Formatf(row, "price must be greater than 0")
	}
	return amount, nil
}
