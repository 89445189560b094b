// Package pdfproc extracts abstracts and metadata from academic PDFs.
package pdfproc

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/crestline-labs/paperdesk/internal/domain"
	"github.com/crestline-labs/paperdesk/internal/metrics"
)

// frontMatterPages is how many leading pages are searched for an abstract.
const frontMatterPages = 3

// fallbackAbstract is returned when every heuristic comes up empty.
const fallbackAbstract = "Unable to extract abstract from this PDF. The document may not contain a clear abstract section or may be in an unsupported format."

// Processor extracts text and abstracts from PDF bytes.
type Processor struct {
	logger *zap.Logger
	now    func() time.Time
}

// New creates a Processor.
func New(logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{logger: logger, now: time.Now}
}

// Abstract extracts the abstract from PDF bytes, trying section patterns,
// then structural line scanning, then the first substantial paragraph.
// When nothing matches, a fixed fallback message is returned rather than
// an error.
func (p *Processor) Abstract(data []byte) (string, error) {
	text, err := p.frontMatter(data)
	if err != nil {
		metrics.PDFExtractionsTotal.WithLabelValues("error").Inc()
		return "", err
	}

	if abstract := abstractByPatterns(text); abstract != "" {
		metrics.PDFExtractionsTotal.WithLabelValues("pattern").Inc()
		p.logger.Info("abstract extracted", zap.String("method", "pattern"))
		return abstract, nil
	}
	if abstract := abstractByStructure(text); abstract != "" {
		metrics.PDFExtractionsTotal.WithLabelValues("structure").Inc()
		p.logger.Info("abstract extracted", zap.String("method", "structure"))
		return abstract, nil
	}
	if abstract := firstParagraph(text); abstract != "" {
		metrics.PDFExtractionsTotal.WithLabelValues("paragraph").Inc()
		p.logger.Info("abstract extracted", zap.String("method", "paragraph"))
		return abstract, nil
	}

	metrics.PDFExtractionsTotal.WithLabelValues("none").Inc()
	p.logger.Warn("no abstract could be extracted")
	return fallbackAbstract, nil
}

// Metadata reads file facts from PDF bytes.
func (p *Processor) Metadata(data []byte, filename string) (domain.PDFMetadata, error) {
	r, err := newReader(data)
	if err != nil {
		return domain.PDFMetadata{}, err
	}
	return domain.PDFMetadata{
		Filename:  filename,
		FileSize:  int64(len(data)),
		PageCount: r.NumPage(),
		Processed: p.now().UTC(),
	}, nil
}

// FullText extracts the whole document as plain text. maxPages of zero
// means all pages.
func (p *Processor) FullText(data []byte, maxPages int) (string, error) {
	r, err := newReader(data)
	if err != nil {
		return "", err
	}
	if maxPages <= 0 || maxPages > r.NumPage() {
		maxPages = r.NumPage()
	}
	return pagesText(r, maxPages)
}

// frontMatter returns text of the leading pages, where abstracts live.
func (p *Processor) frontMatter(data []byte) (string, error) {
	r, err := newReader(data)
	if err != nil {
		return "", err
	}
	if r.NumPage() == 0 {
		return "", fmt.Errorf("pdf contains no pages")
	}
	pages := frontMatterPages
	if pages > r.NumPage() {
		pages = r.NumPage()
	}
	return pagesText(r, pages)
}

func newReader(data []byte) (*pdf.Reader, error) {
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		return nil, domain.ErrNotPDF
	}
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	return r, nil
}

func pagesText(r *pdf.Reader, pages int) (string, error) {
	var b strings.Builder
	for i := 1; i <= pages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extract page %d text: %w", i, err)
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	if strings.TrimSpace(b.String()) == "" {
		// Scanned or image-only documents have no text layer.
		return "", domain.ErrNoText
	}
	return b.String(), nil
}
