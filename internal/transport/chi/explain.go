package chi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/kailas-cloud/lectio/internal/domain"
	"github.com/kailas-cloud/lectio/internal/domain/quota"
	domverse "github.com/kailas-cloud/lectio/internal/domain/verse"
)

type explainRequest struct {
	Reference   string `json:"reference"`
	Translation string `json:"translation,omitempty"`
}

type limitsResponse struct {
	Day       string    `json:"day"`
	Limit     int       `json:"limit"`
	Used      int       `json:"used"`
	Remaining int       `json:"remaining"`
	ResetsAt  time.Time `json:"resets_at"`
}

func limitsToResponse(st quota.Status) limitsResponse {
	return limitsResponse{
		Day:       st.Day().String(),
		Limit:     st.Limit(),
		Used:      st.Used(),
		Remaining: st.Remaining(),
		ResetsAt:  st.ResetsAt(),
	}
}

type explainResponse struct {
	Reference   referenceResponse `json:"reference"`
	Verses      []domverse.Verse  `json:"verses"`
	Explanation string            `json:"explanation"`
	Model       string            `json:"model"`
	Cached      bool              `json:"cached"`
	Limits      limitsResponse    `json:"limits"`
}

// Explain handles POST /ai/explain.
func (s *Server) Explain(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if s.explain == nil {
		writeError(w, http.StatusServiceUnavailable, CodeAIProviderError, "ai is not configured")
		return
	}

	var req explainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Reference == "" {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "reference is required")
		return
	}

	ctx, usage := domain.NewContextWithAIUsage(r.Context())
	res, err := s.explain.Explain(ctx, userID, req.Reference, req.Translation)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	setAIHeaders(w, usage)
	writeJSON(w, http.StatusOK, explainResponse{
		Reference:   referenceToResponse(res.Reference),
		Verses:      res.Verses,
		Explanation: res.Text,
		Model:       res.Model,
		Cached:      res.Cached,
		Limits:      limitsToResponse(res.Quota),
	})
}

// GetLimits handles GET /ai/limits.
func (s *Server) GetLimits(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if s.explain == nil {
		writeError(w, http.StatusServiceUnavailable, CodeAIProviderError, "ai is not configured")
		return
	}
	writeJSON(w, http.StatusOK, limitsToResponse(s.explain.Limits(r.Context(), userID)))
}
