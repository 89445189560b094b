// Package topics turns a set of selected papers into suggested research
// topics: TF-IDF keywords, cluster topics, probabilistic model topics, and
// templated research questions.
package topics

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/crestline-labs/paperdesk/internal/domain"
	"github.com/crestline-labs/paperdesk/internal/metrics"
	"github.com/crestline-labs/paperdesk/internal/textutil"
)

const (
	// DefaultTopicCount is used when a request does not specify one.
	DefaultTopicCount = 5

	keywordsComputed = 20
	keywordsReturned = 15
	summaryKeywords  = 5
	summaryThemes    = 3
)

// Generator runs the topic pipeline. Clustering and topic modeling are
// swappable strategies; the TF-IDF vectorizer feeds both by default.
type Generator struct {
	clusterer Clusterer
	modeler   TopicModeler
	vecCfg    VectorizerConfig
	logger    *zap.Logger
}

// New creates a Generator with the default TF-IDF strategies.
func New(logger *zap.Logger) *Generator {
	return &Generator{
		clusterer: TFIDFClusterer{},
		modeler:   GibbsModeler{},
		vecCfg:    DefaultVectorizerConfig(),
		logger:    logger,
	}
}

// WithClusterer replaces the clustering strategy.
func (g *Generator) WithClusterer(c Clusterer) *Generator {
	g.clusterer = c
	return g
}

// WithModeler replaces the topic-modeling strategy.
func (g *Generator) WithModeler(m TopicModeler) *Generator {
	g.modeler = m
	return g
}

// Generate derives topics from the given papers. The result is a pure
// function of the paper set and nTopics. Stage failures degrade to partial
// results: keywords survive a failed clustering, clustering survives a
// failed model fit. Only an entirely text-free paper set is an error.
func (g *Generator) Generate(ctx context.Context, papers []domain.Paper, nTopics int) (domain.TopicResult, error) {
	if len(papers) == 0 {
		return domain.TopicResult{}, domain.ErrNoPapers
	}
	if nTopics <= 0 {
		nTopics = DefaultTopicCount
	}

	start := time.Now()
	defer func() {
		metrics.TopicGenerationDuration.WithLabelValues("total").Observe(time.Since(start).Seconds())
	}()

	texts := make([]string, 0, len(papers))
	for _, p := range papers {
		if t := textutil.NormalizeForVectorizing(p.Text()); t != "" {
			texts = append(texts, t)
		}
	}
	if len(texts) == 0 {
		return domain.TopicResult{}, domain.ErrNoText
	}

	result := domain.TopicResult{
		Keywords:          []string{},
		ClusterTopics:     []domain.Topic{},
		ModelTopics:       []domain.Topic{},
		ResearchQuestions: []string{},
	}

	corpus, err := Vectorize(texts, g.vecCfg)
	if err != nil {
		g.logger.Warn("vectorization failed, returning empty topic result", zap.Error(err))
		result.Summary = summarize(len(papers), len(texts), nil, nil)
		return result, nil
	}

	kwStart := time.Now()
	keywords := corpus.TopKeywords(keywordsComputed)
	metrics.TopicGenerationDuration.WithLabelValues("keywords").Observe(time.Since(kwStart).Seconds())
	if len(keywords) > keywordsReturned {
		result.Keywords = keywords[:keywordsReturned]
	} else {
		result.Keywords = keywords
	}

	// A single document carries no co-occurrence signal worth clustering.
	if len(texts) >= 2 {
		clStart := time.Now()
		clusterTopics, err := g.clusterer.Cluster(ctx, corpus, nTopics)
		metrics.TopicGenerationDuration.WithLabelValues("cluster").Observe(time.Since(clStart).Seconds())
		if err != nil {
			g.logger.Warn("clustering failed, degrading to keywords", zap.Error(err))
		} else {
			result.ClusterTopics = clusterTopics
		}

		ldaStart := time.Now()
		modelTopics, err := g.modeler.Model(ctx, corpus, nTopics)
		metrics.TopicGenerationDuration.WithLabelValues("lda").Observe(time.Since(ldaStart).Seconds())
		if err != nil {
			g.logger.Warn("topic model fit failed, degrading", zap.Error(err))
		} else {
			result.ModelTopics = modelTopics
		}
	}

	if q := synthesizeQuestions(keywords); q != nil {
		result.ResearchQuestions = q
	}
	result.Summary = summarize(len(papers), len(texts), keywords, result.ClusterTopics)

	g.logger.Info("generated topics",
		zap.Int("papers", len(papers)),
		zap.Int("text_sources", len(texts)),
		zap.Int("keywords", len(result.Keywords)),
		zap.Int("cluster_topics", len(result.ClusterTopics)),
		zap.Int("model_topics", len(result.ModelTopics)),
	)
	return result, nil
}

func summarize(papers, texts int, keywords []string, clusters []domain.Topic) domain.TopicSummary {
	top := keywords
	if len(top) > summaryKeywords {
		top = top[:summaryKeywords]
	}
	if top == nil {
		top = []string{}
	}

	themes := make([][]string, 0, summaryThemes)
	for i, c := range clusters {
		if i == summaryThemes {
			break
		}
		t := c.Terms
		if len(t) > 3 {
			t = t[:3]
		}
		themes = append(themes, t)
	}

	return domain.TopicSummary{
		TotalPapers: papers,
		TextSources: texts,
		TopKeywords: top,
		MainThemes:  themes,
	}
}
