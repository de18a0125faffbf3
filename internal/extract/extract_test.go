package extract

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFromUploadPlainText(t *testing.T) {
	text, kind, err := FromUpload("notes.txt", []byte("  The cat sat on the mat.  "))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kind != "text" {
		t.Errorf("kind = %q, want text", kind)
	}
	if text != "The cat sat on the mat." {
		t.Errorf("text = %q", text)
	}
}

func TestFromUploadEmpty(t *testing.T) {
	if _, _, err := FromUpload("notes.txt", []byte("   \n  ")); err == nil {
		t.Error("expected error for empty document")
	}
}

func TestFromUploadInvalidUTF8(t *testing.T) {
	if _, _, err := FromUpload("blob.bin", []byte{0xff, 0xfe, 0x00, 0x81}); err == nil {
		t.Error("expected error for non-UTF-8 upload")
	}
}

func TestFromUploadDetectsPDFBySniff(t *testing.T) {
	// A bare header is not a parseable PDF, but it must route to the PDF
	// path and fail there rather than being treated as text.
	_, kind, err := FromUpload("document", []byte("%PDF-1.7 garbage"))
	if kind != "pdf" {
		t.Errorf("kind = %q, want pdf", kind)
	}
	if err == nil {
		t.Error("expected error for truncated pdf")
	}
}

func TestFromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("expected a User-Agent header")
		}
		w.Write([]byte(`<html><head><style>p{color:red}</style></head>
			<body><nav>Menu</nav><p>The cat sat on the mat.</p>
			<script>alert(1)</script></body></html>`))
	}))
	defer srv.Close()

	text, err := FromURL(t.Context(), srv.Client(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text, "The cat sat on the mat.") {
		t.Errorf("body text missing: %q", text)
	}
	for _, junk := range []string{"alert", "color:red", "Menu"} {
		if strings.Contains(text, junk) {
			t.Errorf("non-content %q leaked into text: %q", junk, text)
		}
	}
}

func TestFromURLNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	if _, err := FromURL(t.Context(), srv.Client(), srv.URL); err == nil {
		t.Error("expected error for 404 response")
	}
}
