package pdf

import (
	"errors"
	"testing"
)

func TestTextEmptyInput(t *testing.T) {
	r := NewReader(nil)
	if _, err := r.Text(nil); !errors.Is(err, ErrInvalidPDF) {
		t.Fatalf("expected ErrInvalidPDF, got %v", err)
	}
}

func TestTextNotAPDF(t *testing.T) {
	r := NewReader(nil)
	if _, err := r.Text([]byte("plain text pretending to be a PDF")); !errors.Is(err, ErrInvalidPDF) {
		t.Fatalf("expected ErrInvalidPDF, got %v", err)
	}
}

func TestTextTruncatedPDF(t *testing.T) {
	r := NewReader(nil)
	// A valid header with a mangled body should still be rejected.
	if _, err := r.Text([]byte("%PDF-1.7\nnot actually a document")); !errors.Is(err, ErrInvalidPDF) {
		t.Fatalf("expected ErrInvalidPDF, got %v", err)
	}
}
