package main

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"TechScreener/internal/domain/models"
)

func TestPrintTableHeader(t *testing.T) {
	p := models.Presentation{
		Profile: "technical",
		Columns: []string{"ticker", "close", "ADX"},
		Rows: []models.Row{
			{"ticker": "NSE:A", "close": 101.5, "ADX": 31.0},
			{"ticker": "NSE:B", "close": 55.0},
		},
	}
	var buf bytes.Buffer
	printTable(&buf, p)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("want header, column row and 2 rows, got %q", buf.String())
	}
	if lines[0] != "Results (2 stocks)" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "ticker") {
		t.Fatalf("column row must follow the header, got %q", lines[1])
	}
	if !strings.Contains(lines[3], "-") {
		t.Fatalf("missing cell must print as -, got %q", lines[3])
	}
}

func TestPrintTableTruncates(t *testing.T) {
	p := models.Presentation{Columns: []string{"ticker"}}
	for i := 0; i < previewRows+5; i++ {
		p.Rows = append(p.Rows, models.Row{"ticker": fmt.Sprintf("NSE:%d", i)})
	}
	var buf bytes.Buffer
	printTable(&buf, p)

	out := buf.String()
	if !strings.HasPrefix(out, fmt.Sprintf("Results (%d stocks)\n", previewRows+5)) {
		t.Fatalf("header must count every row: %q", out)
	}
	if !strings.HasSuffix(out, "... 5 more rows\n") {
		t.Fatalf("missing truncation line: %q", out)
	}
}
