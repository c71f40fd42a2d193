package ollama

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/kirillkom/doc-compliance/internal/core/ports"
)

const maxAttachmentBytes = 20 << 20

var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".webp": true, ".gif": true, ".bmp": true,
}

type textSource interface {
	ports.TextExtractor
	Supports(filename string) bool
}

// FileAttachments reads stored files: images are passed through as base64,
// documents are turned into text for the prompt.
type FileAttachments struct {
	storage ports.FileStorage
	text    textSource
}

func NewFileAttachments(storage ports.FileStorage, text textSource) *FileAttachments {
	return &FileAttachments{storage: storage, text: text}
}

func (a *FileAttachments) Resolve(ctx context.Context, fileURLs []string) (string, []string, error) {
	var (
		sb     strings.Builder
		images []string
	)
	for _, fileURL := range fileURLs {
		name := fileName(fileURL)
		raw, err := a.read(ctx, fileURL)
		if err != nil {
			return "", nil, err
		}

		ext := strings.ToLower(path.Ext(name))
		switch {
		case imageExtensions[ext]:
			images = append(images, base64.StdEncoding.EncodeToString(raw))
		case a.text != nil && a.text.Supports(name):
			text, err := a.text.Extract(ctx, name, bytes.NewReader(raw))
			if err != nil {
				return "", nil, fmt.Errorf("extract %s: %w", name, err)
			}
			fmt.Fprintf(&sb, "Attached file %s:\n%s\n\n", name, text)
		default:
			fmt.Fprintf(&sb, "Attached file %s: content cannot be read as text.\n\n", name)
		}
	}
	return strings.TrimSpace(sb.String()), images, nil
}

func (a *FileAttachments) read(ctx context.Context, fileURL string) ([]byte, error) {
	rc, err := a.storage.Open(ctx, fileURL)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fileURL, err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(io.LimitReader(rc, maxAttachmentBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fileURL, err)
	}
	if len(raw) > maxAttachmentBytes {
		return nil, fmt.Errorf("attachment %s exceeds %d bytes", fileURL, maxAttachmentBytes)
	}
	return raw, nil
}

func appendAttachmentText(prompt, text string) string {
	if text == "" {
		return prompt
	}
	return prompt + "\n\n" + text
}

func fileName(fileURL string) string {
	if u, err := url.Parse(fileURL); err == nil && u.Path != "" {
		return path.Base(u.Path)
	}
	return path.Base(fileURL)
}
