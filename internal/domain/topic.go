package domain

// Topic is one thematic group derived from the corpus, either a k-means
// cluster or an LDA component.
type Topic struct {
	ID          int      `json:"id"`
	Terms       []string `json:"terms"`
	Description string   `json:"description"`
}

// TopicSummary is the condensed overview attached to a TopicResult.
type TopicSummary struct {
	TotalPapers int        `json:"total_papers"`
	TextSources int        `json:"text_sources"`
	TopKeywords []string   `json:"top_keywords"`
	MainThemes  [][]string `json:"main_themes"`
}

// TopicResult is the full output of one topic-generation run. It is a pure
// function of the paper set and parameters passed in.
type TopicResult struct {
	Keywords          []string     `json:"keywords"`
	ClusterTopics     []Topic      `json:"cluster_based_topics"`
	ModelTopics       []Topic      `json:"lda_based_topics"`
	ResearchQuestions []string     `json:"research_questions"`
	Summary           TopicSummary `json:"summary"`
}
