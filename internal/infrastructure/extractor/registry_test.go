package extractor

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestRegistryFlattensCSV(t *testing.T) {
	r := NewRegistry(0)

	got, err := r.Extract(context.Background(), "ledger.CSV", strings.NewReader("name,amount\nGST,1800\n"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got != "name | amount\nGST | 1800" {
		t.Fatalf("unexpected csv text %q", got)
	}
}

func TestRegistryTruncatesLongText(t *testing.T) {
	r := NewRegistry(5)

	got, err := r.Extract(context.Background(), "notes.txt", strings.NewReader("नमस्ते दुनिया"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len([]rune(got)) != 5 {
		t.Fatalf("expected 5 runes, got %q", got)
	}
}

func TestRegistryRejectsUnknownAndBinary(t *testing.T) {
	r := NewRegistry(0)

	if _, err := r.Extract(context.Background(), "photo.png", strings.NewReader("x")); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected unsupported, got %v", err)
	}
	if r.Supports("photo.png") || !r.Supports("scan.PDF") {
		t.Fatalf("unexpected Supports result")
	}
	if _, err := r.Extract(context.Background(), "bad.txt", bytes.NewReader([]byte{0xff, 0xfe, 0x00})); err == nil {
		t.Fatalf("expected error for invalid utf-8")
	}
}

func TestRegistryReadsWorkbook(t *testing.T) {
	book := excelize.NewFile()
	if err := book.SetCellValue("Sheet1", "A1", "Return"); err != nil {
		t.Fatalf("SetCellValue() error = %v", err)
	}
	if err := book.SetCellValue("Sheet1", "B1", "Due"); err != nil {
		t.Fatalf("SetCellValue() error = %v", err)
	}
	if err := book.SetCellValue("Sheet1", "A2", "GSTR-3B"); err != nil {
		t.Fatalf("SetCellValue() error = %v", err)
	}
	var buf bytes.Buffer
	if err := book.Write(&buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := NewRegistry(0).Extract(context.Background(), "returns.xlsx", &buf)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !strings.Contains(got, "## Sheet1") || !strings.Contains(got, "Return | Due") || !strings.Contains(got, "GSTR-3B") {
		t.Fatalf("unexpected workbook text %q", got)
	}
}
