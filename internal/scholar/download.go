package scholar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/crestline-labs/paperdesk/internal/domain"
	"github.com/crestline-labs/paperdesk/internal/httputil"
)

// maxPDFBytes bounds a single PDF download.
const maxPDFBytes = 50 << 20

// DownloadPDF fetches a PDF by URL. The response must declare a PDF
// content type, otherwise domain.ErrNotPDF is returned.
func (c *Client) DownloadPDF(ctx context.Context, pdfURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pdfURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent())
	req.Header.Set("Accept", "application/pdf,*/*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.maxRetries)
	if err != nil {
		return nil, fmt.Errorf("fetch pdf: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pdf fetch returned status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "pdf") {
		return nil, fmt.Errorf("content type %q: %w", contentType, domain.ErrNotPDF)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPDFBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read pdf body: %w", err)
	}
	if len(data) > maxPDFBytes {
		return nil, fmt.Errorf("pdf exceeds %d bytes: %w", maxPDFBytes, domain.ErrFileTooLarge)
	}
	return data, nil
}
