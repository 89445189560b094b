package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/crestline-labs/paperdesk/internal/domain"
	healthuc "github.com/crestline-labs/paperdesk/internal/usecase/health"
	searchuc "github.com/crestline-labs/paperdesk/internal/usecase/search"
	statsuc "github.com/crestline-labs/paperdesk/internal/usecase/stats"
	topicsuc "github.com/crestline-labs/paperdesk/internal/usecase/topics"
	uploaduc "github.com/crestline-labs/paperdesk/internal/usecase/upload"
)

type mockScraper struct {
	searchFunc   func(ctx context.Context, query string, maxResults int, years domain.YearRange) ([]domain.Paper, error)
	abstractFunc func(ctx context.Context, pageURL string) (string, error)
}

func (m *mockScraper) Search(ctx context.Context, query string, maxResults int, years domain.YearRange) ([]domain.Paper, error) {
	return m.searchFunc(ctx, query, maxResults, years)
}

func (m *mockScraper) ExtractAbstract(ctx context.Context, pageURL string) (string, error) {
	return m.abstractFunc(ctx, pageURL)
}

type mockCache struct {
	getFunc func(ctx context.Context, query string, maxResults int, years domain.YearRange) ([]domain.Paper, bool)
}

func (m *mockCache) Get(ctx context.Context, query string, maxResults int, years domain.YearRange) ([]domain.Paper, bool) {
	if m.getFunc == nil {
		return nil, false
	}
	return m.getFunc(ctx, query, maxResults, years)
}

func (m *mockCache) Put(ctx context.Context, query string, maxResults int, years domain.YearRange, papers []domain.Paper) {
}

type mockGenerator struct {
	generateFunc func(ctx context.Context, papers []domain.Paper, nTopics int) (domain.TopicResult, error)
}

func (m *mockGenerator) Generate(ctx context.Context, papers []domain.Paper, nTopics int) (domain.TopicResult, error) {
	return m.generateFunc(ctx, papers, nTopics)
}

type mockExtractor struct {
	abstract string
	err      error
}

func (m *mockExtractor) Abstract(data []byte) (string, error) {
	return m.abstract, m.err
}

func (m *mockExtractor) Metadata(data []byte, filename string) (domain.PDFMetadata, error) {
	return domain.PDFMetadata{Filename: filename, FileSize: int64(len(data)), PageCount: 4}, nil
}

type mockDownloader struct {
	data []byte
	err  error
}

func (m *mockDownloader) DownloadPDF(ctx context.Context, pdfURL string) ([]byte, error) {
	return m.data, m.err
}

type mockStatsRepo struct {
	stats domain.Stats
	err   error
}

func (m *mockStatsRepo) Stats(ctx context.Context) (domain.Stats, error) {
	return m.stats, m.err
}

type mockPinger struct{ err error }

func (m *mockPinger) Ping(ctx context.Context) error { return m.err }

type serverMocks struct {
	scraper    *mockScraper
	cache      *mockCache
	generator  *mockGenerator
	extractor  *mockExtractor
	downloader *mockDownloader
	statsRepo  *mockStatsRepo
	cachePing  *mockPinger
}

func newTestServer(t *testing.T, m serverMocks) http.Handler {
	t.Helper()

	if m.scraper == nil {
		m.scraper = &mockScraper{}
	}
	if m.cache == nil {
		m.cache = &mockCache{}
	}
	if m.generator == nil {
		m.generator = &mockGenerator{}
	}
	if m.extractor == nil {
		m.extractor = &mockExtractor{abstract: "An abstract."}
	}
	if m.downloader == nil {
		m.downloader = &mockDownloader{}
	}
	if m.statsRepo == nil {
		m.statsRepo = &mockStatsRepo{}
	}
	if m.cachePing == nil {
		m.cachePing = &mockPinger{}
	}

	logger := zap.NewNop()
	srv := NewServer(
		searchuc.New(m.scraper, m.cache, nil, logger),
		topicsuc.New(m.generator, nil, "tfidf", logger),
		uploaduc.New(m.extractor, m.downloader, nil, t.TempDir(), 1<<20, logger),
		statsuc.New(m.statsRepo),
		healthuc.New(m.cachePing, nil, nil),
		1<<20,
		logger,
	)

	r := chi.NewRouter()
	srv.Routes(r)
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (bool, map[string]any, string) {
	t.Helper()
	var env struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
		Error   string         `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, rec.Body.String())
	}
	return env.Success, env.Data, env.Error
}

func TestHandleSearch(t *testing.T) {
	h := newTestServer(t, serverMocks{
		scraper: &mockScraper{
			searchFunc: func(ctx context.Context, query string, maxResults int, years domain.YearRange) ([]domain.Paper, error) {
				if query != "transformer models" {
					t.Errorf("query = %q", query)
				}
				if maxResults != 5 {
					t.Errorf("maxResults = %d, want 5", maxResults)
				}
				if years.From != 2020 || years.To != 2024 {
					t.Errorf("years = %+v", years)
				}
				return []domain.Paper{{ID: "p1", Title: "Attention Is All You Need"}}, nil
			},
		},
	})

	rec := doJSON(t, h, http.MethodPost, "/api/search",
		`{"query":"transformer models","max_results":5,"year_range":{"from":2020,"to":2024}}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	success, data, _ := decodeEnvelope(t, rec)
	if !success {
		t.Fatal("expected success envelope")
	}
	papers, ok := data["papers"].([]any)
	if !ok || len(papers) != 1 {
		t.Fatalf("papers = %v", data["papers"])
	}
	if data["from_cache"] != false {
		t.Errorf("from_cache = %v, want false", data["from_cache"])
	}
	if data["timestamp"] == nil {
		t.Error("expected a timestamp")
	}
}

func TestHandleSearch_CacheHit(t *testing.T) {
	h := newTestServer(t, serverMocks{
		scraper: &mockScraper{
			searchFunc: func(context.Context, string, int, domain.YearRange) ([]domain.Paper, error) {
				t.Fatal("scraper should not be called on a cache hit")
				return nil, nil
			},
		},
		cache: &mockCache{
			getFunc: func(context.Context, string, int, domain.YearRange) ([]domain.Paper, bool) {
				return []domain.Paper{{ID: "p1"}}, true
			},
		},
	})

	rec := doJSON(t, h, http.MethodPost, "/api/search", `{"query":"cached"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	_, data, _ := decodeEnvelope(t, rec)
	if data["from_cache"] != true {
		t.Errorf("from_cache = %v, want true", data["from_cache"])
	}
}

func TestHandleSearch_EmptyQuery(t *testing.T) {
	h := newTestServer(t, serverMocks{})

	rec := doJSON(t, h, http.MethodPost, "/api/search", `{"query":""}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	success, _, errMsg := decodeEnvelope(t, rec)
	if success {
		t.Fatal("expected failure envelope")
	}
	if errMsg == "" {
		t.Error("expected an error message")
	}
}

func TestHandleSearch_InvalidBody(t *testing.T) {
	h := newTestServer(t, serverMocks{})

	rec := doJSON(t, h, http.MethodPost, "/api/search", `{not json`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleSearch_Blocked(t *testing.T) {
	h := newTestServer(t, serverMocks{
		scraper: &mockScraper{
			searchFunc: func(context.Context, string, int, domain.YearRange) ([]domain.Paper, error) {
				return nil, domain.ErrScrapeBlocked
			},
		},
	})

	rec := doJSON(t, h, http.MethodPost, "/api/search", `{"query":"anything"}`)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	success, _, errMsg := decodeEnvelope(t, rec)
	if success {
		t.Fatal("expected failure envelope")
	}
	if errMsg != domain.ErrScrapeBlocked.Error() {
		t.Errorf("error = %q", errMsg)
	}
}

func TestHandleSearch_InternalErrorIsOpaque(t *testing.T) {
	h := newTestServer(t, serverMocks{
		scraper: &mockScraper{
			searchFunc: func(context.Context, string, int, domain.YearRange) ([]domain.Paper, error) {
				return nil, errors.New("pool exhausted at 10.0.0.3")
			},
		},
	})

	rec := doJSON(t, h, http.MethodPost, "/api/search", `{"query":"anything"}`)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	_, _, errMsg := decodeEnvelope(t, rec)
	if strings.Contains(errMsg, "10.0.0.3") {
		t.Errorf("internal detail leaked: %q", errMsg)
	}
}

func TestHandleGetPaper_NotFound(t *testing.T) {
	h := newTestServer(t, serverMocks{})

	rec := doJSON(t, h, http.MethodGet, "/api/papers/deadbeef", "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	success, _, errMsg := decodeEnvelope(t, rec)
	if success {
		t.Fatal("expected failure envelope")
	}
	if errMsg != domain.ErrNotFound.Error() {
		t.Errorf("error = %q", errMsg)
	}
}

func TestHandleGenerateTopics(t *testing.T) {
	h := newTestServer(t, serverMocks{
		generator: &mockGenerator{
			generateFunc: func(ctx context.Context, papers []domain.Paper, nTopics int) (domain.TopicResult, error) {
				if nTopics != 3 {
					t.Errorf("nTopics = %d, want 3", nTopics)
				}
				return domain.TopicResult{
					Keywords: []string{"neural", "attention"},
					Summary:  domain.TopicSummary{TotalPapers: len(papers)},
				}, nil
			},
		},
	})

	rec := doJSON(t, h, http.MethodPost, "/api/generate-topics",
		`{"papers":[{"title":"A"},{"title":"B"}],"n_topics":3}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	_, data, _ := decodeEnvelope(t, rec)
	if data["paper_count"] != float64(2) {
		t.Errorf("paper_count = %v, want 2", data["paper_count"])
	}
	topics, ok := data["topics"].(map[string]any)
	if !ok {
		t.Fatalf("topics = %v", data["topics"])
	}
	if kw, _ := topics["keywords"].([]any); len(kw) != 2 {
		t.Errorf("keywords = %v", topics["keywords"])
	}
}

func TestHandleGenerateTopics_NoPapers(t *testing.T) {
	h := newTestServer(t, serverMocks{})

	rec := doJSON(t, h, http.MethodPost, "/api/generate-topics", `{"papers":[]}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleUploadPDF(t *testing.T) {
	h := newTestServer(t, serverMocks{
		extractor: &mockExtractor{abstract: "This paper surveys transformers."},
	})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("pdf", "survey.pdf")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte("%PDF-1.5 payload"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload-pdf", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	success, data, _ := decodeEnvelope(t, rec)
	if !success {
		t.Fatal("expected success envelope")
	}
	if data["abstract"] != "This paper surveys transformers." {
		t.Errorf("abstract = %v", data["abstract"])
	}
	if data["filename"] != "survey.pdf" {
		t.Errorf("filename = %v", data["filename"])
	}
	if data["id"] == "" || data["id"] == nil {
		t.Error("expected a generated id")
	}
}

func TestHandleUploadPDF_MissingFile(t *testing.T) {
	h := newTestServer(t, serverMocks{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("other", "value")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload-pdf", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleUploadPDF_NotPDF(t *testing.T) {
	h := newTestServer(t, serverMocks{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("pdf", "notes.txt")
	fw.Write([]byte("plain text"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload-pdf", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	_, _, errMsg := decodeEnvelope(t, rec)
	if errMsg != domain.ErrNotPDF.Error() {
		t.Errorf("error = %q", errMsg)
	}
}

func TestHandleDownloadPDF(t *testing.T) {
	h := newTestServer(t, serverMocks{
		downloader: &mockDownloader{data: []byte("%PDF-1.4 remote")},
		extractor:  &mockExtractor{abstract: "Downloaded abstract."},
	})

	rec := doJSON(t, h, http.MethodPost, "/api/download-pdf/abc123",
		`{"pdf_url":"https://example.org/paper.pdf"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	_, data, _ := decodeEnvelope(t, rec)
	if data["id"] != "abc123" {
		t.Errorf("id = %v, want abc123", data["id"])
	}
	if data["abstract"] != "Downloaded abstract." {
		t.Errorf("abstract = %v", data["abstract"])
	}
}

func TestHandleDownloadPDF_MissingURL(t *testing.T) {
	h := newTestServer(t, serverMocks{})

	rec := doJSON(t, h, http.MethodPost, "/api/download-pdf/abc123", `{}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleExtractAbstract(t *testing.T) {
	h := newTestServer(t, serverMocks{
		scraper: &mockScraper{
			abstractFunc: func(ctx context.Context, pageURL string) (string, error) {
				if pageURL != "https://example.org/landing" {
					t.Errorf("pageURL = %q", pageURL)
				}
				return "Landing page abstract.", nil
			},
		},
	})

	rec := doJSON(t, h, http.MethodPost, "/api/extract-abstract",
		`{"url":"https://example.org/landing"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	_, data, _ := decodeEnvelope(t, rec)
	if data["abstract"] != "Landing page abstract." {
		t.Errorf("abstract = %v", data["abstract"])
	}
}

func TestHandleStats(t *testing.T) {
	h := newTestServer(t, serverMocks{
		statsRepo: &mockStatsRepo{
			stats: domain.Stats{
				TotalSearches: 12,
				TotalPapers:   40,
				TopQueries:    []domain.QueryCount{{Query: "llm", Count: 7}},
			},
		},
	})

	rec := doJSON(t, h, http.MethodGet, "/api/stats", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	_, data, _ := decodeEnvelope(t, rec)
	if data["total_searches"] != float64(12) {
		t.Errorf("total_searches = %v, want 12", data["total_searches"])
	}
}

func TestHandleHealth(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		wantStatus int
		wantBody   string
	}{
		{name: "healthy", wantStatus: http.StatusOK, wantBody: "ok"},
		{name: "degraded", pingErr: errors.New("connection refused"), wantStatus: http.StatusServiceUnavailable, wantBody: "degraded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t, serverMocks{cachePing: &mockPinger{err: tt.pingErr}})

			rec := doJSON(t, h, http.MethodGet, "/health", "")

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			_, data, _ := decodeEnvelope(t, rec)
			if data["status"] != tt.wantBody {
				t.Errorf("status = %v, want %q", data["status"], tt.wantBody)
			}
		})
	}
}
