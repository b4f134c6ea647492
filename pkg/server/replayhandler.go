package server

import (
	"net/http"

	"gatewright-hq/gatewright/pkg/audit/replay"
)

// ReplayHandler serves trace replay endpoints.
type ReplayHandler struct {
	replayer *replay.Replayer
}

// NewReplayHandler creates a new replay handler.
func NewReplayHandler(rep *replay.Replayer) *ReplayHandler {
	return &ReplayHandler{replayer: rep}
}

// Replay handles POST /v1/replay/{traceID}. It re-runs the stored trace
// against the current anchor set and reports decision and anchor drift.
// Replay never writes; the original log and trace are untouched.
func (h *ReplayHandler) Replay(w http.ResponseWriter, r *http.Request) {
	report, err := h.replayer.Replay(r.Context(), r.PathValue("traceID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}
