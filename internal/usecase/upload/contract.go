package upload

import (
	"context"

	"github.com/crestline-labs/paperdesk/internal/domain"
)

// Extractor pulls abstracts and metadata out of PDF bytes.
type Extractor interface {
	Abstract(data []byte) (string, error)
	Metadata(data []byte, filename string) (domain.PDFMetadata, error)
}

// Downloader fetches a PDF by URL.
type Downloader interface {
	DownloadPDF(ctx context.Context, pdfURL string) ([]byte, error)
}

// History persists processed PDFs for statistics.
type History interface {
	RecordUpload(ctx context.Context, rec domain.UploadRecord, filepath string) error
}
