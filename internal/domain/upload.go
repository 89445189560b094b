package domain

import "time"

// PDFMetadata describes a processed PDF file.
type PDFMetadata struct {
	Filename  string    `json:"filename"`
	FileSize  int64     `json:"file_size"`
	PageCount int       `json:"page_count"`
	Processed time.Time `json:"processed_at"`
}

// UploadRecord is one processed PDF upload, persisted for statistics.
type UploadRecord struct {
	ID        string      `json:"id"`
	Filename  string      `json:"filename"`
	Abstract  string      `json:"abstract"`
	Metadata  PDFMetadata `json:"metadata"`
	CreatedAt time.Time   `json:"created_at"`
}
