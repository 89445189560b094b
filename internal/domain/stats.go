package domain

// QueryCount is one entry of the most-searched ranking.
type QueryCount struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

// YearCount is the number of collected papers for one publication year.
type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

// Stats is the application usage summary.
type Stats struct {
	TotalSearches        int          `json:"total_searches"`
	TotalPapers          int          `json:"total_papers"`
	TotalTopicsGenerated int          `json:"total_topics_generated"`
	TotalPDFsProcessed   int          `json:"total_pdfs_processed"`
	RecentSearches       int          `json:"recent_searches"`
	TopQueries           []QueryCount `json:"top_queries"`
	PapersByYear         []YearCount  `json:"papers_by_year"`
}
