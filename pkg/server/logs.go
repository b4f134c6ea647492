package server

import (
	"net/http"
	"strconv"
	"time"

	"gatewright-hq/gatewright/pkg/audit"
	"gatewright-hq/gatewright/pkg/gate"
)

// LogHandler serves gate log and trace retrieval endpoints.
type LogHandler struct {
	service *gate.Service
}

// NewLogHandler creates a new log handler.
func NewLogHandler(svc *gate.Service) *LogHandler {
	return &LogHandler{service: svc}
}

// List handles GET /v1/logs. Supported query parameters: decision, since
// (RFC 3339), limit, offset. Results come back newest first.
func (h *LogHandler) List(w http.ResponseWriter, r *http.Request) {
	q := &audit.LogQuery{
		Decision: r.URL.Query().Get("decision"),
	}

	if v := r.URL.Query().Get("since"); v != "" {
		since, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeBadRequest(w, "invalid 'since' parameter, want RFC 3339: "+v)
			return
		}
		q.Since = &since
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			writeBadRequest(w, "invalid 'limit' parameter: "+v)
			return
		}
		q.Limit = limit
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			writeBadRequest(w, "invalid 'offset' parameter: "+v)
			return
		}
		q.Offset = offset
	}

	logs, err := h.service.ListLogs(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"logs": logs, "count": len(logs)})
}

// Get handles GET /v1/logs/{id}.
func (h *LogHandler) Get(w http.ResponseWriter, r *http.Request) {
	log, err := h.service.GetLog(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, log)
}

// GetTrace handles GET /v1/traces/{id}. The trace carries the full anchor
// snapshots and explanations recorded at decision time.
func (h *LogHandler) GetTrace(w http.ResponseWriter, r *http.Request) {
	trace, err := h.service.GetTrace(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, trace)
}
