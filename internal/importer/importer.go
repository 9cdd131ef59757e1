// Package importer converts foreign document formats into markdown-ish
// plain text that can be loaded into the editor. Headings found in the
// source become ATX headings so the structure survives the trip.
package importer

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Importer extracts editable text from an uploaded document.
type Importer interface {
	Extract(r io.Reader, filename string) (string, error)
}

// SupportedExtensions lists the formats the import endpoint accepts.
// Markdown and plain text go through the regular upload path instead.
var SupportedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".html": true,
	".htm":  true,
	".csv":  true,
}

// ForFile returns the importer for a filename.
func ForFile(filename string) (Importer, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return &PDFImporter{}, nil
	case ".docx":
		return &DOCXImporter{}, nil
	case ".html", ".htm":
		return &HTMLImporter{}, nil
	case ".csv":
		return &CSVImporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported import format: %s", ext)
	}
}

// IsSupportedExtension checks whether a filename can be imported.
func IsSupportedExtension(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// heading renders an ATX heading line for the given level (clamped 1-6).
func heading(level int, text string) string {
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	return strings.Repeat("#", level) + " " + text
}
