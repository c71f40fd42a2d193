package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/kirillkom/doc-compliance/internal/core/ports"
	"github.com/kirillkom/doc-compliance/internal/infrastructure/extractor/pdf"
	"github.com/kirillkom/doc-compliance/internal/infrastructure/extractor/plaintext"
	"github.com/kirillkom/doc-compliance/internal/infrastructure/extractor/xlsx"
)

// ErrUnsupported is returned for file types no extractor handles.
var ErrUnsupported = errors.New("unsupported file type")

const defaultMaxChars = 20000

// Registry picks a text extractor by file extension and caps the result size.
type Registry struct {
	byExt    map[string]ports.TextExtractor
	maxChars int
}

func NewRegistry(maxChars int) *Registry {
	if maxChars <= 0 {
		maxChars = defaultMaxChars
	}
	text := plaintext.NewExtractor()
	r := &Registry{byExt: map[string]ports.TextExtractor{}, maxChars: maxChars}
	for _, ext := range []string{".txt", ".md", ".csv", ".json", ".xml", ".html"} {
		r.byExt[ext] = text
	}
	r.byExt[".pdf"] = pdf.NewExtractor()
	r.byExt[".xlsx"] = xlsx.NewExtractor()
	return r
}

func (r *Registry) Supports(filename string) bool {
	_, ok := r.byExt[strings.ToLower(filepath.Ext(filename))]
	return ok
}

func (r *Registry) Extract(ctx context.Context, filename string, body io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	extractor, ok := r.byExt[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
	text, err := extractor.Extract(ctx, filename, body)
	if err != nil {
		return "", err
	}
	if runes := []rune(text); len(runes) > r.maxChars {
		text = string(runes[:r.maxChars])
	}
	return text, nil
}
