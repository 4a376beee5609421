package chi

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/casematch/internal/domain"
	"github.com/kailas-cloud/casematch/internal/domain/attribute"
	"github.com/kailas-cloud/casematch/internal/domain/search/query"
	"github.com/kailas-cloud/casematch/internal/domain/space"
	"github.com/kailas-cloud/casematch/internal/logger"
	healthuc "github.com/kailas-cloud/casematch/internal/usecase/health"
	matchuc "github.com/kailas-cloud/casematch/internal/usecase/match"
)

// DefaultMaxBodyBytes bounds request bodies when no limit is configured.
const DefaultMaxBodyBytes = 10 << 20

// Server serves the HTTP API.
type Server struct {
	retriever     Retriever
	matcher       Matcher
	records       RecordStore
	spaces        SpaceCounter
	health        *healthuc.Service
	defaults      matchuc.Options
	maxBodyBytes  int64
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. defaults supply the weights and
// result sizes of POST /v1/search when the request leaves them out.
func NewServer(
	retriever Retriever,
	matcher Matcher,
	records RecordStore,
	spaces SpaceCounter,
	health *healthuc.Service,
	defaults matchuc.Options,
	logger *zap.Logger,
) *Server {
	s := &Server{
		retriever:    retriever,
		matcher:      matcher,
		records:      records,
		spaces:       spaces,
		health:       health,
		defaults:     defaults,
		maxBodyBytes: DefaultMaxBodyBytes,
		logger:       logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, ErrorCodeInvalidQuery),
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorCodeInvalidQuery),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadRequest, ErrorCodeVectorDimMismatch),
		sentinelHandler(domain.ErrRecordNotFound, http.StatusNotFound, ErrorCodeRecordNotFound),
		sentinelHandler(domain.ErrEmbeddingProviderError,
			http.StatusBadGateway, ErrorCodeEmbeddingProviderError),
		sentinelHandler(domain.ErrFaceProviderError,
			http.StatusBadGateway, ErrorCodeEmbeddingProviderError),
	}
	return s
}

// WithMaxBodyBytes overrides the request body limit. Non-positive values are ignored.
func (s *Server) WithMaxBodyBytes(n int64) *Server {
	if n > 0 {
		s.maxBodyBytes = n
	}
	return s
}

// Routes mounts every endpoint on r.
func (s *Server) Routes(r chirouter.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/v1", func(r chirouter.Router) {
		r.Post("/search", s.Search)
		r.Post("/match", s.Match)
		r.Get("/stats", s.Stats)
		r.Get("/records/{pid}", s.GetRecord)
		r.Get("/records/{pid}/compare/{other}", s.CompareRecords)
		r.Get("/records/{pid}/similar", s.SimilarRecords)
	})
}

// Search handles POST /v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !s.decode(w, r, &req) {
		return
	}

	q := query.Query{
		FaceVector:  req.FaceVector,
		TextVector:  req.TextVector,
		Constraints: req.Filters.constraints(),
		WeightFace:  s.defaults.WeightFace,
		WeightText:  s.defaults.WeightText,
		TopN:        s.defaults.TopN,
		PoolLimit:   s.defaults.PoolLimit,
	}
	if req.FaceWeight != nil {
		q.WeightFace = *req.FaceWeight
	}
	if req.TextWeight != nil {
		q.WeightText = *req.TextWeight
	}
	if req.TopN != nil {
		if *req.TopN <= 0 {
			writeError(w, http.StatusBadRequest, ErrorCodeInvalidQuery, "top_n must be positive")
			return
		}
		q.TopN = *req.TopN
	}
	if req.PoolLimit != nil {
		if *req.PoolLimit <= 0 {
			writeError(w, http.StatusBadRequest, ErrorCodeInvalidQuery, "pool_limit must be positive")
			return
		}
		q.PoolLimit = *req.PoolLimit
	}
	if s.defaults.MaxTopN > 0 && q.TopN > s.defaults.MaxTopN {
		writeError(w, http.StatusBadRequest, ErrorCodeInvalidQuery,
			fmt.Sprintf("top_n must not exceed %d", s.defaults.MaxTopN))
		return
	}
	if s.defaults.MaxPoolLimit > 0 && q.PoolLimit > s.defaults.MaxPoolLimit {
		writeError(w, http.StatusBadRequest, ErrorCodeInvalidQuery,
			fmt.Sprintf("pool_limit must not exceed %d", s.defaults.MaxPoolLimit))
		return
	}

	cands, err := s.retriever.SearchAndCombine(r.Context(), q)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	results := make([]CandidateResponse, len(cands))
	for i, c := range cands {
		results[i] = candidateToResponse(c)
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results, Total: len(results)})
}

// Match handles POST /v1/match.
func (s *Server) Match(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if !s.decode(w, r, &req) {
		return
	}

	var photo []byte
	if req.PhotoBase64 != "" {
		var err error
		photo, err = base64.StdEncoding.DecodeString(req.PhotoBase64)
		if err != nil {
			writeError(w, http.StatusBadRequest, ErrorCodeInvalidQuery, "photo_base64 is not valid base64")
			return
		}
	}

	mreq := matchuc.Request{
		Person:      req.Attributes.descriptor(),
		SearchText:  req.SearchText,
		FaceVector:  req.FaceVector,
		Photo:       photo,
		Constraints: req.Filters.constraints(),
		WeightFace:  req.FaceWeight,
		WeightText:  req.TextWeight,
	}
	if req.TopN != nil {
		if *req.TopN <= 0 {
			writeError(w, http.StatusBadRequest, ErrorCodeInvalidQuery, "top_n must be positive")
			return
		}
		mreq.TopN = *req.TopN
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	resp, err := s.matcher.Search(ctx, mreq)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, matchToResponse(resp))
}

// GetRecord handles GET /v1/records/{pid}.
func (s *Server) GetRecord(w http.ResponseWriter, r *http.Request) {
	pid, ok := pathParam(w, r, "pid")
	if !ok {
		return
	}
	r = r.WithContext(logger.With(r.Context(), zap.String("pid", pid)))

	rec, err := s.records.Get(r.Context(), pid)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recordToResponse(&rec))
}

// CompareRecords handles GET /v1/records/{pid}/compare/{other}.
func (s *Server) CompareRecords(w http.ResponseWriter, r *http.Request) {
	pid, ok := pathParam(w, r, "pid")
	if !ok {
		return
	}
	other, ok := pathParam(w, r, "other")
	if !ok {
		return
	}
	r = r.WithContext(logger.With(r.Context(), zap.String("pid", pid), zap.String("other", other)))

	a, err := s.records.Get(r.Context(), pid)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	b, err := s.records.Get(r.Context(), other)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, CompareResponse{
		PID:        pid,
		Other:      other,
		Comparison: comparisonToResponse(attribute.Compare(a.Attributes(), b.Attributes())),
	})
}

// SimilarRecords handles GET /v1/records/{pid}/similar.
// Query parameters: top_n, other_register, gender, age_min, age_max, height_min, height_max.
func (s *Server) SimilarRecords(w http.ResponseWriter, r *http.Request) {
	pid, ok := pathParam(w, r, "pid")
	if !ok {
		return
	}
	r = r.WithContext(logger.With(r.Context(), zap.String("pid", pid)))

	var (
		req     = matchuc.SimilarRequest{PID: pid}
		filters Filters
		topN    *int
		other   *bool
	)
	q := r.URL.Query()
	for _, p := range []struct {
		name string
		dst  any
	}{
		{"top_n", &topN},
		{"other_register", &other},
		{"gender", &filters.Gender},
		{"age_min", &filters.AgeMin},
		{"age_max", &filters.AgeMax},
		{"height_min", &filters.HeightMin},
		{"height_max", &filters.HeightMax},
	} {
		if !queryParam(w, q, p.name, p.dst) {
			return
		}
	}
	if topN != nil {
		if *topN <= 0 {
			writeError(w, http.StatusBadRequest, ErrorCodeInvalidQuery, "top_n must be positive")
			return
		}
		req.TopN = *topN
	}
	req.OtherRegister = other != nil && *other
	req.Constraints = filters.constraints()

	resp, err := s.matcher.Similar(r.Context(), req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, matchToResponse(resp))
}

// Stats handles GET /v1/stats.
func (s *Server) Stats(w http.ResponseWriter, r *http.Request) {
	counts, err := s.records.Count(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := StatsResponse{
		MissingPersons:       counts.MissingPersons,
		UnidentifiedBodies:   counts.UnidentifiedBodies,
		MissingByStatus:      nonNilCounts(counts.MissingByStatus),
		UnidentifiedByStatus: nonNilCounts(counts.UnidentifiedByStatus),
		Embeddings:           make(map[string]int, len(space.All())),
	}
	for _, sp := range space.All() {
		n, err := s.spaces.Count(r.Context(), sp)
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		resp.Embeddings[string(sp)] = n
	}
	writeJSON(w, http.StatusOK, resp)
}

func nonNilCounts(m map[string]int) map[string]int {
	if m == nil {
		return map[string]int{}
	}
	return m
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		logger.FromContext(r.Context()).Debug("Rejecting request body", zap.Error(err))
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func pathParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	var v string
	err := runtime.BindStyledParameterWithOptions("simple", name, chirouter.URLParam(r, name), &v,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest,
			fmt.Sprintf("Invalid format for parameter %s: %s", name, err))
		return "", false
	}
	return v, true
}

func queryParam(w http.ResponseWriter, q url.Values, name string, dst any) bool {
	if err := runtime.BindQueryParameter("form", true, false, name, q, dst); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest,
			fmt.Sprintf("Invalid format for parameter %s: %s", name, err))
		return false
	}
	return true
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if !usage.Used() {
		return
	}
	w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.TotalTokens))
	if usage.FaceCalls > 0 {
		w.Header().Set("X-Face-Embeddings", strconv.Itoa(usage.FaceCalls))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
