// Package chi serves the lectio HTTP API on a chi router.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lectio/internal/domain"
	healthuc "github.com/kailas-cloud/lectio/internal/usecase/health"
	"github.com/kailas-cloud/lectio/internal/version"
)

// APIPrefix is the mount point of the versioned API.
const APIPrefix = "/api/v1"

// ErrorCode is the machine-readable error kind in ErrorResponse.
type ErrorCode string

// Error codes returned by the API.
const (
	CodeBadRequest         ErrorCode = "bad_request"
	CodeNotFound           ErrorCode = "not_found"
	CodeInvalidReference   ErrorCode = "invalid_reference"
	CodeInvalidTranslation ErrorCode = "invalid_translation"
	CodeInvalidBookmark    ErrorCode = "invalid_bookmark"
	CodeQuotaExceeded      ErrorCode = "quota_exceeded"
	CodeAIProviderError    ErrorCode = "ai_provider_error"
	CodeUnauthorized       ErrorCode = "unauthorized"
	CodeInternalError      ErrorCode = "internal_error"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers of the API.
type Server struct {
	bible         BibleService
	explain       ExplainService
	bookmarks     BookmarkService
	health        HealthService
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. explain can be nil when AI is not configured.
func NewServer(
	bible BibleService,
	explain ExplainService,
	bookmarks BookmarkService,
	health HealthService,
	logger *zap.Logger,
) *Server {
	s := &Server{
		bible:     bible,
		explain:   explain,
		bookmarks: bookmarks,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		quotaExceededHandler,
		sentinelHandler(domain.ErrInvalidReference, http.StatusBadRequest, CodeInvalidReference),
		sentinelHandler(domain.ErrInvalidTranslation, http.StatusBadRequest, CodeInvalidTranslation),
		sentinelHandler(domain.ErrInvalidBookmark, http.StatusBadRequest, CodeInvalidBookmark),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeNotFound),
		sentinelHandler(domain.ErrUnauthorized, http.StatusUnauthorized, CodeUnauthorized),
		sentinelHandler(domain.ErrAIProviderError, http.StatusBadGateway, CodeAIProviderError),
	}
	return s
}

// Routes mounts the API on r. Middlewares must be registered on r beforehand.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route(APIPrefix, func(r chi.Router) {
		r.Get("/books", s.ListBooks)
		r.Get("/books/{bookID}", s.GetBook)
		r.Get("/books/{bookID}/chapters/{chapter}", s.GetChapter)
		r.Get("/verses", s.GetVerses)
		r.Get("/search", s.SearchVerses)

		r.Post("/ai/explain", s.Explain)
		r.Get("/ai/limits", s.GetLimits)

		r.Get("/bookmarks", s.ListBookmarks)
		r.Post("/bookmarks", s.CreateBookmark)
		r.Get("/bookmarks/exists", s.BookmarkExists)
		r.Patch("/bookmarks/{id}", s.UpdateBookmark)
		r.Delete("/bookmarks/{id}", s.DeleteBookmark)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})
}

// Handler returns a bare router with the API mounted, mostly for tests.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	s.Routes(r)
	return r
}

// healthResponse is the body of GET /health.
type healthResponse struct {
	Status  healthuc.Status                 `json:"status"`
	Checks  map[string]healthuc.CheckResult `json:"checks"`
	Version string                          `json:"version,omitempty"`
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status:  report.Status,
		Checks:  report.Checks,
		Version: version.Version,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func setAIHeaders(w http.ResponseWriter, usage *domain.AIUsage) {
	if usage == nil || !usage.Used {
		return
	}
	w.Header().Set("X-AI-Tokens", strconv.Itoa(usage.TotalTokens))
	w.Header().Set("X-AI-Cached", strconv.FormatBool(usage.Cached))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns the most specific sentinel message, never the wrapped internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrMalformedReference,
		domain.ErrUnknownBook,
		domain.ErrInvalidReference,
		domain.ErrInvalidTranslation,
		domain.ErrInvalidBookmark,
		domain.ErrNotFound,
		domain.ErrQuotaExceeded,
		domain.ErrAIProviderError,
		domain.ErrUnauthorized,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func quotaExceededHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrQuotaExceeded) {
		return false
	}
	var qe *domain.QuotaExceededError
	if errors.As(err, &qe) {
		writeJSON(w, http.StatusTooManyRequests, map[string]any{
			"code":    CodeQuotaExceeded,
			"message": msg,
			"limit":   qe.Limit,
			"used":    qe.Used,
		})
		return true
	}
	writeError(w, http.StatusTooManyRequests, CodeQuotaExceeded, msg)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			s.logger.Warn("domain error", zap.Error(err))
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
