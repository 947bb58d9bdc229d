package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/pelota/internal/adapters/archive"
	"github.com/okian/pelota/internal/adapters/repository"
	"github.com/okian/pelota/internal/domain/types"
)

// PlayerDependencies backs the per-player routes.
type PlayerDependencies interface {
	// Profile aggregates a player's history and current parameters.
	Profile(ctx context.Context, playerID string) (types.PlayerProfile, error)

	// Tuning returns the parameters the player's next session should use.
	Tuning(ctx context.Context, playerID string) (types.TuningUpdate, error)

	// Export archives the player's stored samples and returns the path.
	Export(ctx context.Context, playerID string) (string, error)
}

// PlayerHandler serves player sub-resources.
type PlayerHandler struct {
	deps PlayerDependencies
}

// NewPlayerHandler creates a player handler.
func NewPlayerHandler(deps PlayerDependencies) *PlayerHandler {
	return &PlayerHandler{deps: deps}
}

// HandlePlayer dispatches GET /players/{id}, GET /players/{id}/tuning,
// and POST /players/{id}/export.
func (h *PlayerHandler) HandlePlayer(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/players/")
	parts := strings.Split(rest, "/")

	switch {
	case len(parts) == 1 && parts[0] != "" && r.Method == http.MethodGet:
		h.handleProfile(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "tuning" && r.Method == http.MethodGet:
		h.handleTuning(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "export" && r.Method == http.MethodPost:
		h.handleExport(w, r, parts[0])
	default:
		http.NotFound(w, r)
	}
}

func (h *PlayerHandler) handleProfile(w http.ResponseWriter, r *http.Request, playerID string) {
	const op = "api.get_profile"
	profile, err := h.deps.Profile(r.Context(), playerID)
	if err != nil {
		writePlayerError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *PlayerHandler) handleTuning(w http.ResponseWriter, r *http.Request, playerID string) {
	const op = "api.get_tuning"
	update, err := h.deps.Tuning(r.Context(), playerID)
	if err != nil {
		writePlayerError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, update)
}

func (h *PlayerHandler) handleExport(w http.ResponseWriter, r *http.Request, playerID string) {
	const op = "api.post_export"
	path, err := h.deps.Export(r.Context(), playerID)
	if err != nil {
		writePlayerError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, exportResponse{Path: path})
}

// writePlayerError translates domain errors on the player routes.
func writePlayerError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, archive.ErrInvalidPlayerID):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}
