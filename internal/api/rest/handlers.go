package rest

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/john-heyer/madness/internal/bracket"
	"github.com/john-heyer/madness/internal/scheduler"
)

// Handler contains dependencies for HTTP handlers.
type Handler struct {
	tree *bracket.Tree
	meta *scheduler.Metadata
	log  *zap.Logger
}

// NewHandler creates a new handler.
func NewHandler(tree *bracket.Tree, meta *scheduler.Metadata, log *zap.Logger) *Handler {
	return &Handler{tree: tree, meta: meta, log: log}
}

// HealthCheck reports service liveness and the refresh health flag.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":                   "healthy",
		"service":                  "madness",
		"is_successfully_updating": h.meta.Healthy(),
	})
}

// GetBracket returns the full bracket snapshot as JSON, events in
// construction order.
func (h *Handler) GetBracket(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.tree.Snapshot())
}

// GetBracketText renders the bracket as plain text, championship first.
func (h *Handler) GetBracketText(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(RenderText(h.tree.Snapshot(), h.meta.Snapshot())))
}

// GetBracketHTML renders the bracket as a minimal colorized HTML page.
func (h *Handler) GetBracketHTML(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(RenderHTML(h.tree.Snapshot(), h.meta.Snapshot())))
}

// GetMetadata returns the refresh bookkeeping record.
func (h *Handler) GetMetadata(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.meta.Snapshot())
}

// GetEvent returns one event by id.
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["eventID"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "event id must be an integer", err)
		return
	}
	for _, view := range h.tree.Snapshot().Events {
		if view.ID == id {
			respondJSON(w, http.StatusOK, view)
			return
		}
	}
	respondError(w, http.StatusNotFound, "no such event", bracket.ErrNoSuchEvent)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	respondJSON(w, status, map[string]string{
		"error":  message,
		"detail": err.Error(),
	})
}
