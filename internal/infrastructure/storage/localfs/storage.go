package localfs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/kirillkom/doc-compliance/internal/core/domain"
	"github.com/kirillkom/doc-compliance/internal/infrastructure/storage"
)

// Storage keeps uploads on local disk and serves them under publicBaseURL.
type Storage struct {
	basePath      string
	publicBaseURL string
}

func New(basePath, publicBaseURL string) (*Storage, error) {
	if basePath == "" {
		basePath = "./data/storage"
	}
	if publicBaseURL == "" {
		return nil, fmt.Errorf("public base url is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Storage{basePath: basePath, publicBaseURL: publicBaseURL}, nil
}

func (s *Storage) Upload(_ context.Context, filename, _ string, body io.Reader) (domain.StoredFile, error) {
	key := storage.NewKey(filename)
	path := filepath.Join(s.basePath, key)

	f, err := os.Create(path)
	if err != nil {
		return domain.StoredFile{}, fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(f, body); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return domain.StoredFile{}, fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return domain.StoredFile{}, fmt.Errorf("close file: %w", err)
	}
	return domain.StoredFile{URL: storage.URLFor(s.publicBaseURL, key), Key: key}, nil
}

func (s *Storage) Open(_ context.Context, fileURL string) (io.ReadCloser, error) {
	key, err := storage.KeyFromURL(s.publicBaseURL, fileURL)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.basePath, key))
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

// Handler serves single stored files; mount it at the path of publicBaseURL
// with the prefix stripped. Directory listings and unknown key shapes are 404.
func (s *Storage) Handler() http.Handler {
	files := http.FileServer(http.Dir(s.basePath))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(r.URL.Path, "/")
		if !storage.ValidKey(key) {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}
