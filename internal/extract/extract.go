// Package extract turns uploaded documents into plain text for generation.
// Paragraphs are separated by blank lines so the segmenter sees natural
// sentence boundaries.
package extract

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// MaxDocumentSize caps how many bytes are read from one document.
const MaxDocumentSize = 20 << 20

// Common errors returned by Text.
var (
	// ErrUnsupportedFormat is returned for a file extension with no extractor.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrDocumentTooLarge is returned when a document exceeds MaxDocumentSize.
	ErrDocumentTooLarge = errors.New("document too large")

	// ErrNoText is returned when a document parses but contains no text.
	ErrNoText = errors.New("document contains no text")
)

// extractor converts the raw bytes of one format into text.
type extractor func(data []byte) (string, error)

var extractors = map[string]extractor{
	".txt":      plainText,
	".text":     plainText,
	".md":       markdownText,
	".markdown": markdownText,
	".html":     htmlText,
	".htm":      htmlText,
	".pdf":      pdfText,
	".docx":     docxText,
}

// Supported reports whether filename has an extension Text can handle.
func Supported(filename string) bool {
	_, ok := extractors[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// Extensions lists the supported file extensions.
func Extensions() []string {
	return []string{".txt", ".md", ".markdown", ".html", ".htm", ".pdf", ".docx"}
}

// Text reads a document and returns its text, choosing the format from
// filename's extension.
func Text(filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	extract, ok := extractors[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxDocumentSize+1))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", filename, err)
	}
	if len(data) > MaxDocumentSize {
		return "", fmt.Errorf("%w: limit is %d bytes", ErrDocumentTooLarge, MaxDocumentSize)
	}

	text, err := extract(data)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", filename, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: %s", ErrNoText, filename)
	}
	return text, nil
}

// joinParagraphs trims each paragraph, drops empty ones and separates the
// rest with a blank line.
func joinParagraphs(paragraphs []string) string {
	kept := paragraphs[:0]
	for _, p := range paragraphs {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}
