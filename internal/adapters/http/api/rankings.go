package api

import (
	"context"
	"net/http"
	"strconv"
)

// RankingsDependencies lists the top slice of the board.
type RankingsDependencies interface {
	TopN(ctx context.Context, n int) ([]Entry, error)
}

// RankingsHandler serves ordered board pages.
type RankingsHandler struct {
	deps     RankingsDependencies
	maxLimit int
}

// NewRankingsHandler creates a rankings handler. maxLimit caps the page
// size a caller may request.
func NewRankingsHandler(deps RankingsDependencies, maxLimit int) *RankingsHandler {
	return &RankingsHandler{deps: deps, maxLimit: maxLimit}
}

// HandleGetRankings answers GET /rankings?limit=N with the top N entries
// in rank order. The limit is required; values above the configured cap
// are rejected rather than clamped.
func (h *RankingsHandler) HandleGetRankings(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_rankings"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	n, code := h.pageSize(r)
	if code != "" {
		writeError(w, http.StatusBadRequest, code, NewKind(op, ErrBadRequest))
		return
	}
	entries, err := h.deps.TopN(r.Context(), n)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// pageSize validates the limit query parameter. A non-empty code names
// the rejection reason.
func (h *RankingsHandler) pageSize(r *http.Request) (n int, code string) {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	switch {
	case err != nil || n < 1:
		return 0, "bad_request"
	case n > h.maxLimit:
		return 0, "limit_exceeded"
	}
	return n, ""
}
