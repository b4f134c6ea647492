package server

import (
	"net/http"

	"gatewright-hq/gatewright/pkg/anchor"
	"gatewright-hq/gatewright/pkg/store"
)

// ProfileHandler serves profile management endpoints.
type ProfileHandler struct {
	store store.Store
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(st store.Store) *ProfileHandler {
	return &ProfileHandler{store: st}
}

// createProfileRequest is the body of POST /v1/profiles.
type createProfileRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Default     bool   `json:"is_default"`
	ParentID    *int64 `json:"parent_id"`
}

// assignAnchorRequest is the body of PUT /v1/profiles/{id}/anchors/{anchorID}.
type assignAnchorRequest struct {
	Priority int  `json:"priority"`
	Enabled  bool `json:"enabled"`
}

// Create handles POST /v1/profiles.
func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}

	p := &anchor.Profile{
		Name:        req.Name,
		Description: req.Description,
		Default:     req.Default,
		ParentID:    req.ParentID,
	}
	if err := p.Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	if p.ParentID != nil {
		if _, err := h.store.GetProfile(r.Context(), *p.ParentID); err != nil {
			writeError(w, r, err)
			return
		}
	}

	if err := h.store.CreateProfile(r.Context(), p); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, p)
}

// List handles GET /v1/profiles.
func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.store.ListProfiles(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"profiles": profiles})
}

// Get handles GET /v1/profiles/{id}.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	p, err := h.store.GetProfile(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// ListAssignments handles GET /v1/profiles/{id}/anchors.
func (h *ProfileHandler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if _, err := h.store.GetProfile(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	assignments, err := h.store.ListAssignments(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"anchors": assignments})
}

// Assign handles PUT /v1/profiles/{id}/anchors/{anchorID}. Re-assigning an
// anchor replaces its priority and enabled flag.
func (h *ProfileHandler) Assign(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	anchorID, ok := pathID(w, r, "anchorID")
	if !ok {
		return
	}

	var req assignAnchorRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}

	if _, err := h.store.GetProfile(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := h.store.GetAnchor(r.Context(), anchorID); err != nil {
		writeError(w, r, err)
		return
	}

	pa := &anchor.ProfileAnchor{
		AnchorID: anchorID,
		Priority: req.Priority,
		Enabled:  req.Enabled,
	}
	if err := h.store.AssignAnchor(r.Context(), id, pa); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, pa)
}

// Unassign handles DELETE /v1/profiles/{id}/anchors/{anchorID}.
func (h *ProfileHandler) Unassign(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	anchorID, ok := pathID(w, r, "anchorID")
	if !ok {
		return
	}

	if err := h.store.UnassignAnchor(r.Context(), id, anchorID); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
