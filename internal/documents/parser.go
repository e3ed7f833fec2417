package documents

import (
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// Page is the extracted text of one document page (1-based)
type Page struct {
	Number int
	Text   string
}

// Parser loads raw page text from a document
type Parser interface {
	Parse(filePath string) ([]Page, error)
}

// PDFParser parses PDF files
type PDFParser struct{}

// NewPDFParser creates a new PDF parser
func NewPDFParser() *PDFParser {
	return &PDFParser{}
}

// Parse extracts text from each page, skipping pages without text
func (p *PDFParser) Parse(filePath string) ([]Page, error) {
	doc, err := fitz.New(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	var pages []Page
	for i := 0; i < doc.NumPage(); i++ {
		text, err := doc.Text(i)
		if err != nil {
			return nil, fmt.Errorf("failed to extract text from page %d: %w", i+1, err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, Page{Number: i + 1, Text: text})
	}

	return pages, nil
}
