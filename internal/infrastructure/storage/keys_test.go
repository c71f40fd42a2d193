package storage

import (
	"strings"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"report 1.txt":          "report_1.txt",
		"../../etc/passwd":      "passwd",
		`C:\scans\PAN card.jpg`: "PAN_card.jpg",
		"":                      "document.bin",
		"invoice#42(final).pdf": "invoice_42_final_.pdf",
	}
	for in, want := range cases {
		if got := SanitizeFilename(in); got != want {
			t.Fatalf("SanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestKeyRoundTripsThroughURL(t *testing.T) {
	key := NewKey("GST certificate.pdf")
	if !strings.HasSuffix(key, "_GST_certificate.pdf") {
		t.Fatalf("unexpected key %q", key)
	}
	url := URLFor("http://localhost:8080/files/", key)
	got, err := KeyFromURL("http://localhost:8080/files", url)
	if err != nil {
		t.Fatalf("KeyFromURL() error = %v", err)
	}
	if got != key {
		t.Fatalf("expected %q, got %q", key, got)
	}
}

func TestKeyFromURLRejectsForeignAndTraversal(t *testing.T) {
	if _, err := KeyFromURL("http://localhost/files", "http://evil.test/files/x"); err == nil {
		t.Fatalf("expected foreign url rejected")
	}
	if _, err := KeyFromURL("http://localhost/files", "http://localhost/files/../secret"); err == nil {
		t.Fatalf("expected traversal rejected")
	}
}

func TestValidKey(t *testing.T) {
	if key := NewKey("lease.pdf"); !ValidKey(key) {
		t.Fatalf("expected generated key %q to be valid", key)
	}
	for _, key := range []string{
		"",
		"/",
		"index.html",
		"not-a-uuid-at-all-not-a-uuid-at-all_x.pdf",
		"3dbbe76e-1111-4222-8333-444455556666_",
		"3dbbe76e-1111-4222-8333-444455556666_../x",
		"3dbbe76e-1111-4222-8333-444455556666/x.pdf",
	} {
		if ValidKey(key) {
			t.Fatalf("expected %q to be rejected", key)
		}
	}
}
