package server

import (
	"net/http"

	"gatewright-hq/gatewright/pkg/gate"
)

// GateHandler serves gate evaluation and follow-on endpoints.
type GateHandler struct {
	service *gate.Service
}

// NewGateHandler creates a new gate handler.
func NewGateHandler(svc *gate.Service) *GateHandler {
	return &GateHandler{service: svc}
}

// evaluateRequest is the body of POST /v1/gate/evaluate.
type evaluateRequest struct {
	Request   string `json:"request"`
	Arousal   string `json:"arousal"`
	Dominance string `json:"dominance"`
	Profile   string `json:"profile"`
}

// reframeRequest is the body of POST /v1/gate/reframe.
type reframeRequest struct {
	LogID     string `json:"log_id"`
	Request   string `json:"request"`
	Arousal   string `json:"arousal"`
	Dominance string `json:"dominance"`
	Profile   string `json:"profile"`
}

// acknowledgeRequest is the body of POST /v1/gate/acknowledge.
type acknowledgeRequest struct {
	LogID string `json:"log_id"`
	Note  string `json:"note"`
}

// Evaluate handles POST /v1/gate/evaluate.
func (h *GateHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}

	result, err := h.service.Evaluate(r.Context(), &gate.EvaluateInput{
		Request:   req.Request,
		Arousal:   req.Arousal,
		Dominance: req.Dominance,
		Profile:   req.Profile,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Reframe handles POST /v1/gate/reframe.
func (h *GateHandler) Reframe(w http.ResponseWriter, r *http.Request) {
	var req reframeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	if req.LogID == "" {
		writeBadRequest(w, "'log_id' is required")
		return
	}

	result, err := h.service.Reframe(r.Context(), &gate.ReframeInput{
		LogID:     req.LogID,
		Request:   req.Request,
		Arousal:   req.Arousal,
		Dominance: req.Dominance,
		Profile:   req.Profile,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Acknowledge handles POST /v1/gate/acknowledge.
func (h *GateHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	var req acknowledgeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	if req.LogID == "" {
		writeBadRequest(w, "'log_id' is required")
		return
	}

	result, err := h.service.Acknowledge(r.Context(), &gate.AcknowledgeInput{
		LogID: req.LogID,
		Note:  req.Note,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
