package plaintext

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Extractor reads UTF-8 text files. CSV files are flattened to one
// " | "-joined line per record so tabular data stays readable in a prompt.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(_ context.Context, filename string, body io.Reader) (string, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read source document: %w", err)
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("unsupported binary content: %s", filename)
	}
	if strings.EqualFold(filepath.Ext(filename), ".csv") {
		return flattenCSV(raw)
	}
	return strings.TrimSpace(string(raw)), nil
}

func flattenCSV(raw []byte) (string, error) {
	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parse csv: %w", err)
	}
	var sb strings.Builder
	for _, record := range records {
		sb.WriteString(strings.Join(record, " | "))
		sb.WriteByte('\n')
	}
	return strings.TrimSpace(sb.String()), nil
}
