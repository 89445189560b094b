// Package upload processes PDFs arriving by upload or by download URL.
package upload

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crestline-labs/paperdesk/internal/domain"
	"github.com/crestline-labs/paperdesk/internal/textutil"
)

// Service validates, stores and processes PDF files.
type Service struct {
	extractor  Extractor
	downloader Downloader
	history    History
	dir        string
	maxSize    int64
	logger     *zap.Logger

	newID func() string
	now   func() time.Time
}

// New creates an upload service. history can be nil.
func New(extractor Extractor, downloader Downloader, history History, dir string, maxSize int64, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		extractor:  extractor,
		downloader: downloader,
		history:    history,
		dir:        dir,
		maxSize:    maxSize,
		logger:     logger,
		newID:      uuid.NewString,
		now:        time.Now,
	}
}

// Process validates an uploaded PDF, stores it on disk and extracts the
// abstract. The stored file is named by the generated upload id.
func (s *Service) Process(ctx context.Context, filename string, data []byte) (domain.UploadRecord, error) {
	if err := s.validate(data); err != nil {
		return domain.UploadRecord{}, err
	}
	return s.process(ctx, s.newID(), filename, data)
}

// Download fetches a PDF by URL, stores it under the paper id and
// extracts the abstract.
func (s *Service) Download(ctx context.Context, paperID, pdfURL string) (domain.UploadRecord, error) {
	if pdfURL == "" {
		return domain.UploadRecord{}, fmt.Errorf("pdf url is required: %w", domain.ErrEmptyQuery)
	}
	if paperID == "" {
		paperID = s.newID()
	}

	data, err := s.downloader.DownloadPDF(ctx, pdfURL)
	if err != nil {
		return domain.UploadRecord{}, fmt.Errorf("download pdf: %w", err)
	}
	if err := s.validate(data); err != nil {
		return domain.UploadRecord{}, err
	}
	return s.process(ctx, paperID, paperID+".pdf", data)
}

func (s *Service) validate(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty file: %w", domain.ErrNotPDF)
	}
	if s.maxSize > 0 && int64(len(data)) > s.maxSize {
		return fmt.Errorf("file of %d bytes exceeds limit %d: %w", len(data), s.maxSize, domain.ErrFileTooLarge)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		return domain.ErrNotPDF
	}
	return nil
}

func (s *Service) process(ctx context.Context, id, filename string, data []byte) (domain.UploadRecord, error) {
	filename = textutil.SanitizeFilename(filename)

	path, err := s.store(id, data)
	if err != nil {
		return domain.UploadRecord{}, err
	}

	abstract, err := s.extractor.Abstract(data)
	if err != nil {
		return domain.UploadRecord{}, fmt.Errorf("extract abstract: %w", err)
	}

	metadata, err := s.extractor.Metadata(data, filename)
	if err != nil {
		return domain.UploadRecord{}, fmt.Errorf("read pdf metadata: %w", err)
	}

	rec := domain.UploadRecord{
		ID:        id,
		Filename:  filename,
		Abstract:  textutil.Sanitize(abstract),
		Metadata:  metadata,
		CreatedAt: s.now().UTC(),
	}

	if s.history != nil {
		if err := s.history.RecordUpload(ctx, rec, path); err != nil {
			s.logger.Warn("Failed to record pdf upload", zap.String("id", id), zap.Error(err))
		}
	}

	return rec, nil
}

func (s *Service) store(id string, data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	path := filepath.Join(s.dir, id+".pdf")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("store pdf: %w", err)
	}
	return path, nil
}
