package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/pelota/internal/domain/model"
)

// SessionDependencies accepts play session samples for async processing.
type SessionDependencies interface {
	// SeenAndRecord atomically checks and records a sample ID.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord removes a sample ID so a failed submit can be retried.
	Unrecord(ctx context.Context, id string)

	// Enqueue pushes a sample for async processing. Returns false on
	// backpressure.
	Enqueue(ctx context.Context, sample model.Sample) bool
}

// SessionsHandler serves session submissions.
type SessionsHandler struct {
	deps SessionDependencies
}

// NewSessionsHandler creates a sessions handler.
func NewSessionsHandler(deps SessionDependencies) *SessionsHandler {
	return &SessionsHandler{deps: deps}
}

// HandlePostSession answers POST /sessions. A replayed sample ID gets a
// 200 duplicate ack and a fresh one a 202. When the queue is full the
// seen mark is rolled back so the client may retry the same ID.
func (h *SessionsHandler) HandlePostSession(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_session"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if h.deps.SeenAndRecord(r.Context(), req.SampleID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}
	if ok := h.deps.Enqueue(r.Context(), req.sample()); !ok {
		h.deps.Unrecord(r.Context(), req.SampleID)
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false})
}
