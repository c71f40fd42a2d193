package storage

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// NewKey returns a unique object key that keeps a readable form of the original name.
func NewKey(filename string) string {
	return fmt.Sprintf("%s_%s", uuid.NewString(), SanitizeFilename(filename))
}

func SanitizeFilename(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." || base == ".." {
		return "document.bin"
	}
	return base
}

// KeyFromURL recovers the object key from a URL issued under baseURL.
func KeyFromURL(baseURL, fileURL string) (string, error) {
	prefix := strings.TrimRight(baseURL, "/") + "/"
	if !strings.HasPrefix(fileURL, prefix) {
		return "", fmt.Errorf("file url %q is not served by this storage", fileURL)
	}
	key := strings.TrimPrefix(fileURL, prefix)
	if !ValidKey(key) {
		return "", fmt.Errorf("invalid object key in %q", fileURL)
	}
	return key, nil
}

// ValidKey reports whether key has the shape NewKey produces: a uuid, an
// underscore and a sanitized file name, with no path separators.
func ValidKey(key string) bool {
	if len(key) < 38 || strings.Contains(key, "/") || strings.Contains(key, "..") {
		return false
	}
	if key[36] != '_' {
		return false
	}
	_, err := uuid.Parse(key[:36])
	return err == nil
}

func URLFor(baseURL, key string) string {
	return strings.TrimRight(baseURL, "/") + "/" + key
}
