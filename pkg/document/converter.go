// Package document turns source files into plain text for indexing.
package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	MethodPDFText   = "pdf-text"
	MethodPlainText = "plain-text"
)

// Extracted is the text of a converted document and how it was obtained.
type Extracted struct {
	Text             string
	ExtractionMethod string
	Pages            int
}

// Convert picks a converter by file extension. Unknown extensions are read
// as plain text.
func Convert(path string) (*Extracted, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("source document %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return convertPDF(path)
	default:
		return convertText(path)
	}
}

func convertText(path string) (*Extracted, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return &Extracted{Text: string(data), ExtractionMethod: MethodPlainText, Pages: 1}, nil
}

func convertPDF(path string) (*Extracted, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	var sb strings.Builder
	fonts := make(map[string]*pdf.Font)
	pages := r.NumPage()
	for i := 1; i <= pages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		for _, name := range page.Fonts() {
			if _, ok := fonts[name]; !ok {
				font := page.Font(name)
				fonts[name] = &font
			}
		}
		text, err := page.GetPlainText(fonts)
		if err != nil {
			return nil, fmt.Errorf("extract page %d of %s: %w", i, path, err)
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(text)
	}

	return &Extracted{Text: sb.String(), ExtractionMethod: MethodPDFText, Pages: pages}, nil
}
