package editorapi

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/mcptoolkit/forge/pkg/profile"
)

// profileListEntry is the §6.5 GET /api/profiles response shape: every
// profile plus whether it is the one the caller names in ?active=. This toolkit
// has no server-side notion of "the active profile" beyond what the
// caller names in the query string, so Active simply echoes it back.
type profileListEntry struct {
	*profile.Profile
	Active bool `json:"active"`
}

// ListProfiles handles GET /api/profiles.
func (a *API) ListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := a.Profiles.List()
	if err != nil {
		writeError(w, err)
		return
	}
	active := r.URL.Query().Get("active")

	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]profileListEntry, 0, len(names))
	for _, name := range names {
		out = append(out, profileListEntry{Profile: profiles[name], Active: name == active})
	}
	writeJSON(w, http.StatusOK, out)
}

type createProfileRequest struct {
	Name      string `json:"name"`
	SourceDir string `json:"source_dir"`
	Host      string `json:"host"`
	Port      int    `json:"port"`
}

// CreateProfile handles POST /api/profiles.
func (a *API) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var req createProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &profile.ValidationError{Message: "malformed request body: " + err.Error()})
		return
	}
	p, err := a.Profiles.Create(req.Name, req.SourceDir, req.Host, req.Port)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

type deriveProfileRequest struct {
	Base string `json:"base"`
	Name string `json:"name"`
	Port int    `json:"port"`
}

// DeriveProfile handles POST /api/profiles/derive.
func (a *API) DeriveProfile(w http.ResponseWriter, r *http.Request) {
	var req deriveProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &profile.ValidationError{Message: "malformed request body: " + err.Error()})
		return
	}
	p, err := a.Profiles.Derive(req.Base, req.Name, req.Port)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

type deleteProfileRequest struct {
	Name    string `json:"name"`
	Confirm string `json:"confirm"`
}

// DeleteProfile handles DELETE /api/delete-mcp-profile.
func (a *API) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	var req deleteProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &profile.ValidationError{Message: "malformed request body: " + err.Error()})
		return
	}
	if err := a.Profiles.Delete(req.Name, req.Confirm); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
