package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/crestline-labs/paperdesk/internal/domain"
)

// UploadRepo records processed PDF uploads.
type UploadRepo struct {
	db *DB
}

// NewUploadRepo creates the upload history repo.
func NewUploadRepo(db *DB) *UploadRepo {
	return &UploadRepo{db: db}
}

// RecordUpload logs one processed PDF with its extracted abstract.
func (r *UploadRepo) RecordUpload(ctx context.Context, rec domain.UploadRecord, filepath string) error {
	metadata, err := json.Marshal(rec.Metadata)
	if err != nil {
		return fmt.Errorf("encode pdf metadata: %w", err)
	}
	_, err = r.db.Pool.Exec(ctx, `
INSERT INTO pdf_files (id, filename, filepath, abstract, metadata)
VALUES ($1, $2, $3, NULLIF($4,''), $5)`,
		rec.ID, rec.Filename, filepath, rec.Abstract, metadata,
	)
	if err != nil {
		return fmt.Errorf("record pdf upload: %w", err)
	}
	return nil
}
