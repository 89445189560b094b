package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrEmptyQuery signals a search request without a query.
	ErrEmptyQuery = errors.New("query is required")
	// ErrNoPapers signals a topic-generation request without papers.
	ErrNoPapers = errors.New("papers are required")
	// ErrNoText signals that no selected paper carried usable text.
	ErrNoText = errors.New("no valid text found in papers")
	// ErrNotPDF signals a rejected non-PDF upload or download.
	ErrNotPDF = errors.New("file is not a PDF")
	// ErrFileTooLarge signals an upload over the configured size limit.
	ErrFileTooLarge = errors.New("file exceeds size limit")
	// ErrScrapeBlocked signals a challenge page that survived all retries.
	ErrScrapeBlocked = errors.New("search source is blocking requests")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)
