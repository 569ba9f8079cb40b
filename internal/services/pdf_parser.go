package services

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// RFPParser extracts the description text of an uploaded RFP document.
type RFPParser interface {
	ExtractText(filePath string) (*RFPContent, error)
}

type RFPContent struct {
	Text      string
	PageCount int
	FilePath  string
}

type pdfRFPParser struct{}

func NewPDFRFPParser() RFPParser {
	return &pdfRFPParser{}
}

func (p *pdfRFPParser) ExtractText(filePath string) (*RFPContent, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", filePath)
	}

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var pages []string
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// unreadable pages are skipped
			continue
		}

		if cleaned := CleanText(text); cleaned != "" {
			pages = append(pages, cleaned)
		}
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("no text content found in PDF: %w", ErrInvalidArgument)
	}

	return &RFPContent{
		Text:      strings.Join(pages, "\n\n"),
		PageCount: totalPage,
		FilePath:  filePath,
	}, nil
}

// CleanText trims every line and drops blank ones.
func CleanText(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	cleaned := lines[:0]

	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			cleaned = append(cleaned, line)
		}
	}

	return strings.Join(cleaned, "\n")
}
