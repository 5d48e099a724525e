package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/shelfwise/librarian/internal/index"
	"github.com/shelfwise/librarian/internal/judge"
	"github.com/shelfwise/librarian/internal/recommend"
)

// maxRequestBytes bounds the request body size (queries are short).
const maxRequestBytes = 16 * 1024

type recommendRequest struct {
	Query string `json:"query"`
}

type recommendResponse struct {
	Title   string `json:"title,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Summary string `json:"summary,omitempty"`

	// Refusal and Message are set instead of the fields above when the core
	// declined to recommend.
	Refusal string `json:"refusal,omitempty"`
	Message string `json:"message,omitempty"`
}

// RefusalMessage maps a refusal kind to its user-facing message.
func RefusalMessage(kind recommend.RefusalKind) string {
	switch kind {
	case recommend.RefusalEmptyQuery:
		return "Empty question."
	case recommend.RefusalGibberish:
		return "I couldn't understand that. Try a clearer request (e.g., 'dark fantasy about loyalty')."
	case recommend.RefusalNoCloseMatch:
		return "No close matches. Add topics, mood, or genre."
	case recommend.RefusalAbstain:
		return "I couldn't match that to any themes. Try adding topics, mood, or genre."
	default:
		return "Unable to recommend for that request."
	}
}

type recommendHandler struct {
	core   Core
	logger *slog.Logger
}

func (h *recommendHandler) recommend(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "failed to read request body", h.logger)
		return
	}

	var req recommendRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body", h.logger)
		return
	}

	decision, err := h.core.Recommend(r.Context(), req.Query)
	if err != nil {
		h.writeCoreError(w, r, err)
		return
	}

	if decision.IsRefusal() {
		writeJSON(w, http.StatusOK, recommendResponse{
			Refusal: string(decision.Refusal),
			Message: RefusalMessage(decision.Refusal),
		}, h.logger)
		return
	}

	rec := decision.Recommendation
	writeJSON(w, http.StatusOK, recommendResponse{
		Title:   rec.Title,
		Reason:  rec.Reason,
		Summary: rec.Summary,
	}, h.logger)
}

// writeCoreError translates core errors: provider failures become 502,
// internal consistency faults 500.
func (h *recommendHandler) writeCoreError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := requestIDFromContext(r.Context())

	switch {
	case errors.Is(err, recommend.ErrEmbeddingUnavailable),
		errors.Is(err, index.ErrUnavailable),
		errors.Is(err, index.ErrEmpty),
		errors.Is(err, judge.ErrUnavailable):
		h.logger.Warn("provider failure", "error", err, "request_id", requestID)
		writeError(w, http.StatusBadGateway, "provider_unavailable",
			"a backing service is unavailable, try again later", h.logger)
	default:
		h.logger.Error("recommendation failed", "error", err, "request_id", requestID)
		writeError(w, http.StatusInternalServerError, "internal_error",
			"internal server error", h.logger)
	}
}
