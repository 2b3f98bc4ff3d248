package parser

import (
	"testing"

	"github.com/tabsplit/tabsplit/internal/errs"
)

func TestParseTable(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []ParsedItem
		wantErr bool
	}{
		{
			name:  "pipe table round trip",
			input: "| Burger | 2 | 12.50 |\n| Fries | 1 | 4.00 |",
			want: []ParsedItem{
				{Description: "Burger", Quantity: 2, AmountMinor: 1250},
				{Description: "Fries", Quantity: 1, AmountMinor: 400},
			},
		},
		{
			name:  "header and separator rows dropped",
			input: "| Item Name | Qty | Price | Total Price |\n|-----------|-----|-------|-------------|\n| Burger | 2 | 12.50 | 25.00 |",
			want: []ParsedItem{
				{Description: "Burger", Quantity: 2, AmountMinor: 1250},
			},
		},
		{
			name:  "first line with digit treated as data",
			input: "| Burger 2000 | 1 | 9.99 |",
			want: []ParsedItem{
				{Description: "Burger 2000", Quantity: 1, AmountMinor: 999},
			},
		},
		{
			name:  "tab separated",
			input: "Description\tQty\tPrice\nBurger\t2\t12.50\nFries\t1\t4.00",
			want: []ParsedItem{
				{Description: "Burger", Quantity: 2, AmountMinor: 1250},
				{Description: "Fries", Quantity: 1, AmountMinor: 400},
			},
		},
		{
			name:  "currency symbols stripped",
			input: "| Coffee | 1 | $4.50 |",
			want: []ParsedItem{
				{Description: "Coffee", Quantity: 1, AmountMinor: 450},
			},
		},
		{
			name:  "price without decimal point is whole units",
			input: "| Pizza | 1 | 12 |",
			want: []ParsedItem{
				{Description: "Pizza", Quantity: 1, AmountMinor: 1200},
			},
		},
		{
			name:  "long fraction truncated to two digits",
			input: "| Tea | 1 | 3.999 |",
			want: []ParsedItem{
				{Description: "Tea", Quantity: 1, AmountMinor: 399},
			},
		},
		{
			name:  "short fraction padded to two digits",
			input: "| Tea | 1 | 3.5 |",
			want: []ParsedItem{
				{Description: "Tea", Quantity: 1, AmountMinor: 350},
			},
		},
		{
			name:  "garbled quantity normalized to absent",
			input: "| Burger | x | 12.50 |",
			want: []ParsedItem{
				{Description: "Burger", Quantity: 0, AmountMinor: 1250},
			},
		},
		{
			name:  "zero quantity normalized to absent",
			input: "| Burger | 0 | 12.50 |",
			want: []ParsedItem{
				{Description: "Burger", Quantity: 0, AmountMinor: 1250},
			},
		},
		{
			name:  "fourth total column ignored",
			input: "| Burger | 2 | 12.50 | 25.00 |",
			want: []ParsedItem{
				{Description: "Burger", Quantity: 2, AmountMinor: 1250},
			},
		},
		{
			name:    "no delimiter",
			input:   "Burger 2 12.50",
			wantErr: true,
		},
		{
			name:    "empty input",
			input:   "   \n  \n",
			wantErr: true,
		},
		{
			name:    "header only",
			input:   "| Item | Qty | Price |\n|------|-----|-------|",
			wantErr: true,
		},
		{
			name:    "too few columns",
			input:   "| Burger | 12.50 |",
			wantErr: true,
		},
		{
			name:    "too many columns",
			input:   "| Burger | 2 | 12.50 | 25.00 | extra |",
			wantErr: true,
		},
		{
			name:    "empty description",
			input:   "|  | 2 | 12.50 |",
			wantErr: true,
		},
		{
			name:    "zero price",
			input:   "| Burger | 2 | 0.00 |",
			wantErr: true,
		},
		{
			name:    "unparsable price",
			input:   "| Burger | 2 | free |",
			wantErr: true,
		},
		{
			name:    "bad row aborts whole parse",
			input:   "| Burger | 2 | 12.50 |\n| Fries | 1 | free |",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTable(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseTable() = %v, want error", got)
				}
				if !errs.IsFormat(err) {
					t.Errorf("ParseTable() error = %v, want FormatError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTable() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ParseTable() returned %d items, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("item %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseTableHeaderDetection(t *testing.T) {
	// A first line containing any digit must be treated as data, even if it
	// looks header-ish.
	items, err := ParseTable("| Area 51 Burger | 1 | 5.00 |\n| Fries | 1 | 2.00 |")
	if err != nil {
		t.Fatalf("ParseTable() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2 (digit-bearing first line is data)", len(items))
	}

	// A digit-free first line is a header and is dropped.
	items, err = ParseTable("| Item | Qty | Price |\n| Fries | 1 | 2.00 |")
	if err != nil {
		t.Fatalf("ParseTable() error = %v", err)
	}
	if len(items) != 1 || items[0].Description != "Fries" {
		t.Fatalf("got %+v, want single Fries row", items)
	}
}
