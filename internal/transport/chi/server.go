// Package chi exposes the JSON API over the chi router.
package chi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/crestline-labs/paperdesk/internal/domain"
	healthuc "github.com/crestline-labs/paperdesk/internal/usecase/health"
	searchuc "github.com/crestline-labs/paperdesk/internal/usecase/search"
	statsuc "github.com/crestline-labs/paperdesk/internal/usecase/stats"
	topicsuc "github.com/crestline-labs/paperdesk/internal/usecase/topics"
	uploaduc "github.com/crestline-labs/paperdesk/internal/usecase/upload"
)

// multipartOverhead is slack on top of the PDF size limit for the form
// framing around the file part.
const multipartOverhead = 1 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the API handlers.
type Server struct {
	search        *searchuc.Service
	topics        *topicsuc.Service
	upload        *uploaduc.Service
	stats         *statsuc.Service
	health        *healthuc.Service
	uploadLimit   int64
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	topics *topicsuc.Service,
	upload *uploaduc.Service,
	stats *statsuc.Service,
	health *healthuc.Service,
	uploadLimit int64,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:      search,
		topics:      topics,
		upload:      upload,
		stats:       stats,
		health:      health,
		uploadLimit: uploadLimit,
		logger:      logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrEmptyQuery, http.StatusBadRequest),
		sentinelHandler(domain.ErrNoPapers, http.StatusBadRequest),
		sentinelHandler(domain.ErrNotPDF, http.StatusBadRequest),
		sentinelHandler(domain.ErrNoText, http.StatusUnprocessableEntity),
		sentinelHandler(domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound),
		sentinelHandler(domain.ErrScrapeBlocked, http.StatusServiceUnavailable),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway),
	}
	return s
}

// Routes registers all API routes on the router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/api/search", s.handleSearch)
	r.Get("/api/papers/{paperID}", s.handleGetPaper)
	r.Post("/api/generate-topics", s.handleGenerateTopics)
	r.Post("/api/upload-pdf", s.handleUploadPDF)
	r.Post("/api/download-pdf/{paperID}", s.handleDownloadPDF)
	r.Post("/api/extract-abstract", s.handleExtractAbstract)
	r.Get("/api/stats", s.handleStats)
	r.Get("/health", s.handleHealth)
	r.Get("/metrics", s.handleMetrics)
}

type searchRequest struct {
	Query      string           `json:"query"`
	MaxResults int              `json:"max_results"`
	YearRange  domain.YearRange `json:"year_range"`
}

type searchResponse struct {
	Papers    []domain.Paper `json:"papers"`
	FromCache bool           `json:"from_cache"`
	Timestamp time.Time      `json:"timestamp"`
}

// handleSearch handles POST /api/search.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	res, err := s.search.Search(r.Context(), req.Query, req.MaxResults, req.YearRange)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	papers := res.Papers
	if papers == nil {
		papers = []domain.Paper{}
	}
	writeJSON(w, http.StatusOK, searchResponse{
		Papers:    papers,
		FromCache: res.FromCache,
		Timestamp: time.Now().UTC(),
	})
}

// handleGetPaper handles GET /api/papers/{paperID}.
func (s *Server) handleGetPaper(w http.ResponseWriter, r *http.Request) {
	paperID := chi.URLParam(r, "paperID")

	paper, err := s.search.Paper(r.Context(), paperID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, paper)
}

type generateTopicsRequest struct {
	Papers  []domain.Paper `json:"papers"`
	NTopics int            `json:"n_topics"`
}

type generateTopicsResponse struct {
	Topics     domain.TopicResult `json:"topics"`
	PaperCount int                `json:"paper_count"`
	Timestamp  time.Time          `json:"timestamp"`
}

// handleGenerateTopics handles POST /api/generate-topics.
func (s *Server) handleGenerateTopics(w http.ResponseWriter, r *http.Request) {
	var req generateTopicsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Papers) == 0 {
		writeError(w, http.StatusBadRequest, "papers are required")
		return
	}

	result, err := s.topics.Generate(r.Context(), req.Papers, req.NTopics)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, generateTopicsResponse{
		Topics:     result,
		PaperCount: len(req.Papers),
		Timestamp:  time.Now().UTC(),
	})
}

type uploadResponse struct {
	ID        string             `json:"id"`
	Filename  string             `json:"filename"`
	Abstract  string             `json:"abstract"`
	Metadata  domain.PDFMetadata `json:"metadata"`
	Timestamp time.Time          `json:"timestamp"`
}

// handleUploadPDF handles POST /api/upload-pdf (multipart, field "pdf").
func (s *Server) handleUploadPDF(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.uploadLimit+multipartOverhead)

	file, header, err := r.FormFile("pdf")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no PDF file provided")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "no file selected")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	rec, err := s.upload.Process(r.Context(), header.Filename, data)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		ID:        rec.ID,
		Filename:  rec.Filename,
		Abstract:  rec.Abstract,
		Metadata:  rec.Metadata,
		Timestamp: time.Now().UTC(),
	})
}

type downloadRequest struct {
	PDFURL string `json:"pdf_url"`
}

// handleDownloadPDF handles POST /api/download-pdf/{paperID}.
func (s *Server) handleDownloadPDF(w http.ResponseWriter, r *http.Request) {
	paperID := chi.URLParam(r, "paperID")

	var req downloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.PDFURL == "" {
		writeError(w, http.StatusBadRequest, "pdf_url is required")
		return
	}

	rec, err := s.upload.Download(r.Context(), paperID, req.PDFURL)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		ID:        rec.ID,
		Filename:  rec.Filename,
		Abstract:  rec.Abstract,
		Metadata:  rec.Metadata,
		Timestamp: time.Now().UTC(),
	})
}

type extractAbstractRequest struct {
	URL string `json:"url"`
}

type extractAbstractResponse struct {
	Abstract  string    `json:"abstract"`
	Timestamp time.Time `json:"timestamp"`
}

// handleExtractAbstract handles POST /api/extract-abstract.
func (s *Server) handleExtractAbstract(w http.ResponseWriter, r *http.Request) {
	var req extractAbstractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	abstract, err := s.search.ExtractAbstract(r.Context(), req.URL)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, extractAbstractResponse{
		Abstract:  abstract,
		Timestamp: time.Now().UTC(),
	})
}

// handleStats handles GET /api/stats.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	out, err := s.stats.Stats(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// handleMetrics handles GET /metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// safeDomainMessage returns a sentinel error message for the client
// without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrEmptyQuery,
		domain.ErrNoPapers,
		domain.ErrNoText,
		domain.ErrNotPDF,
		domain.ErrFileTooLarge,
		domain.ErrNotFound,
		domain.ErrScrapeBlocked,
		domain.ErrEmbeddingProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}
