package domain

import (
	"crypto/md5" //nolint:gosec // fingerprint, not security
	"encoding/hex"
	"time"
)

// Paper is a single academic search result. Read-only once created;
// identity is stable within one search session.
type Paper struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Authors   string    `json:"authors"`
	Year      int       `json:"year,omitempty"`
	Snippet   string    `json:"snippet"`
	Abstract  string    `json:"abstract,omitempty"`
	Citations int       `json:"citations"`
	URL       string    `json:"url"`
	PDFURL    string    `json:"pdf_url,omitempty"`
	ScrapedAt time.Time `json:"scraped_at"`
}

// PaperID derives the stable paper identifier from its title.
func PaperID(title string) string {
	sum := md5.Sum([]byte(title)) //nolint:gosec // fingerprint, not security
	return hex.EncodeToString(sum[:])
}

// Text returns the title and snippet joined, the corpus unit fed to
// topic generation. Falls back to the full abstract when present.
func (p Paper) Text() string {
	body := p.Snippet
	if p.Abstract != "" {
		body = p.Abstract
	}
	if p.Title == "" {
		return body
	}
	if body == "" {
		return p.Title
	}
	return p.Title + " " + body
}

// YearRange bounds a search by publication year. Zero values mean unbounded.
type YearRange struct {
	From int `json:"from,omitempty"`
	To   int `json:"to,omitempty"`
}

// IsZero reports whether no year bound is set.
func (r YearRange) IsZero() bool { return r.From == 0 && r.To == 0 }

// SearchRecord is one logged search, used for statistics.
type SearchRecord struct {
	Query       string    `json:"query"`
	MaxResults  int       `json:"max_results"`
	YearRange   YearRange `json:"year_range"`
	ResultCount int       `json:"result_count"`
	CreatedAt   time.Time `json:"created_at"`
}
