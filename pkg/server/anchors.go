package server

import (
	"net/http"
	"strconv"

	"gatewright-hq/gatewright/pkg/anchor"
	"gatewright-hq/gatewright/pkg/store"
)

// AnchorHandler serves anchor management endpoints.
type AnchorHandler struct {
	store store.Store
}

// NewAnchorHandler creates a new anchor handler.
func NewAnchorHandler(st store.Store) *AnchorHandler {
	return &AnchorHandler{store: st}
}

// createAnchorRequest is the body of POST /v1/anchors.
type createAnchorRequest struct {
	Level     int    `json:"level"`
	Statement string `json:"statement"`
	Scope     string `json:"scope"`
}

// updateAnchorRequest is the body of PUT /v1/anchors/{id}. Absent fields
// keep their current values.
type updateAnchorRequest struct {
	Level     *int    `json:"level"`
	Statement *string `json:"statement"`
	Scope     *string `json:"scope"`
}

// Create handles POST /v1/anchors.
func (h *AnchorHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAnchorRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}

	a := &anchor.Anchor{
		Level:     req.Level,
		Statement: req.Statement,
		Scope:     req.Scope,
	}
	if a.Scope == "" {
		a.Scope = anchor.DefaultScope
	}
	if err := a.Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.store.CreateAnchor(r.Context(), a); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, a)
}

// List handles GET /v1/anchors.
func (h *AnchorHandler) List(w http.ResponseWriter, r *http.Request) {
	q := &store.AnchorQuery{
		Scope: r.URL.Query().Get("scope"),
	}
	if v := r.URL.Query().Get("active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			writeBadRequest(w, "invalid 'active' parameter: "+v)
			return
		}
		q.ActiveOnly = active
	}

	anchors, err := h.store.ListAnchors(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"anchors": anchors})
}

// Get handles GET /v1/anchors/{id}.
func (h *AnchorHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	a, err := h.store.GetAnchor(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, a)
}

// Update handles PUT /v1/anchors/{id}.
func (h *AnchorHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req updateAnchorRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}

	a, err := h.store.GetAnchor(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if req.Level != nil {
		a.Level = *req.Level
	}
	if req.Statement != nil {
		a.Statement = *req.Statement
	}
	if req.Scope != nil {
		a.Scope = *req.Scope
	}
	if err := a.Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.store.UpdateAnchor(r.Context(), a); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, a)
}

// Archive handles POST /v1/anchors/{id}/archive. Archival is one-way;
// archived anchors stay resolvable for audit but never match again.
func (h *AnchorHandler) Archive(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.store.ArchiveAnchor(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	a, err := h.store.GetAnchor(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, a)
}

// pathID parses the named path segment as an int64 id, writing a 400 on
// failure.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeBadRequest(w, "invalid '"+name+"' path parameter: "+raw)
		return 0, false
	}
	return id, true
}
