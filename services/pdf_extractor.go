package services

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor turns uploaded PDF bytes into plain text for the answering
// pipeline. The pipeline itself never parses document bytes.
type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// ExtractionResult contains the result of PDF text extraction
type ExtractionResult struct {
	Text           string
	Pages          int
	Method         string
	QualityScore   float64
	ProcessingTime time.Duration
}

// ExtractText extracts text from PDF bytes, preferring the native Go
// reader and falling back to pdftotext when the result looks corrupted.
func (e *PDFExtractor) ExtractText(ctx context.Context, content []byte) (*ExtractionResult, error) {
	start := time.Now()

	methods := []struct {
		name    string
		extract func(context.Context, []byte) (*ExtractionResult, error)
	}{
		{"go-pdf", e.extractWithGoPDF},
		{"poppler", e.extractWithPoppler},
	}

	var lastErr error
	var best *ExtractionResult

	for _, method := range methods {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		result, err := method.extract(ctx, content)
		if err != nil {
			lastErr = err
			continue
		}

		result.Method = method.name
		result.ProcessingTime = time.Since(start)
		result.QualityScore = evaluateTextQuality(result.Text)

		if result.QualityScore >= 0.7 {
			return result, nil
		}
		if best == nil || result.QualityScore > best.QualityScore {
			best = result
		}
	}

	if best != nil && best.QualityScore >= 0.3 {
		return best, nil
	}
	if lastErr != nil {
		return nil, fmt.Errorf("all extraction methods failed: %w", lastErr)
	}
	return nil, fmt.Errorf("no usable text extracted")
}

// extractWithGoPDF uses the Go PDF library for extraction
func (e *PDFExtractor) extractWithGoPDF(ctx context.Context, content []byte) (*ExtractionResult, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF reader: %w", err)
	}

	var textBuilder strings.Builder
	pages := reader.NumPage()

	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		fonts := make(map[string]*pdf.Font)
		text, err := page.GetPlainText(fonts)
		if err != nil {
			continue
		}

		if textBuilder.Len() > 0 {
			textBuilder.WriteString("\n\n")
		}
		textBuilder.WriteString(text)
	}

	extractedText := textBuilder.String()
	if len(strings.TrimSpace(extractedText)) == 0 {
		return nil, fmt.Errorf("no text extracted by go-pdf")
	}

	return &ExtractionResult{Text: extractedText, Pages: pages}, nil
}

// extractWithPoppler uses poppler-utils (pdftotext) for extraction
func (e *PDFExtractor) extractWithPoppler(ctx context.Context, content []byte) (*ExtractionResult, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return nil, fmt.Errorf("pdftotext not available")
	}

	extractCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(extractCtx, "pdftotext", "-layout", "-", "-")
	cmd.Stdin = bytes.NewReader(content)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("pdftotext failed: %v, stderr: %s", err, stderr.String())
	}

	extractedText := stdout.String()
	if len(strings.TrimSpace(extractedText)) == 0 {
		return nil, fmt.Errorf("no text extracted by pdftotext")
	}

	pages := strings.Count(extractedText, "\f")
	if pages == 0 {
		pages = 1
	}
	return &ExtractionResult{Text: extractedText, Pages: pages}, nil
}

// evaluateTextQuality scores extracted text between 0 and 1 based on the
// ratio of readable characters to replacement/control garbage.
func evaluateTextQuality(text string) float64 {
	text = strings.TrimSpace(text)
	if len(text) < 10 {
		return 0.1
	}

	var alphanumeric, printable, corrupted int
	for _, r := range text {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			alphanumeric++
			printable++
		case r == ' ' || r == '\n' || r == '\t':
			printable++
		case r == '�':
			corrupted++
		case r >= 32:
			printable++
		default:
			corrupted++
		}
	}

	total := len([]rune(text))
	score := float64(printable)/float64(total)*0.5 +
		minF(float64(alphanumeric)/float64(total)/0.3, 1)*0.4 -
		float64(corrupted)/float64(total)*2.0
	if len(text) > 100 {
		score += 0.1
	}

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
