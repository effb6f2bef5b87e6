package resume

import (
	"bytes"
	"fmt"
	"strings"

	"growthos/internal/errors"
	"growthos/internal/utils"

	"github.com/ledongthuc/pdf"
)

// ContentTypePDF is the only accepted upload type
const ContentTypePDF = "application/pdf"

// TextExtractor turns document bytes into plain text
type TextExtractor interface {
	ExtractText(data []byte) (string, error)
}

// PDFExtractor extracts plain text from PDF documents
type PDFExtractor struct{}

// ExtractText reads every page's plain text. Malformed documents that make the
// parser panic are reported as errors.
func (PDFExtractor) ExtractText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("pdf parser panicked: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to read page %d: %w", i, err)
		}
		b.WriteString(pageText)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// Parser extracts resume text and applies the character cap
type Parser struct {
	extractor TextExtractor
	limit     int
}

// NewParser creates a resume parser keeping at most limit characters
func NewParser(extractor TextExtractor, limit int) *Parser {
	if extractor == nil {
		extractor = PDFExtractor{}
	}
	return &Parser{extractor: extractor, limit: limit}
}

// Parse extracts, trims and truncates the resume text
func (p *Parser) Parse(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.NewValidationError(errors.ErrCodeInvalidRequest, "uploaded file is empty", nil)
	}
	raw, err := p.extractor.ExtractText(data)
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodePDFParseFailed, "failed to extract text from PDF", err)
	}
	return Excerpt(raw, p.limit), nil
}

// Excerpt trims surrounding whitespace and keeps the first limit characters
func Excerpt(text string, limit int) string {
	return utils.TruncateRunes(strings.TrimSpace(text), limit)
}
