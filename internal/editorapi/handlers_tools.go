package editorapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/mcptoolkit/forge/pkg/catalog"
	"github.com/mcptoolkit/forge/pkg/profile"
)

// loadProfile resolves the ?profile= query parameter against the
// registry, writing a 400 and returning ok=false if it's absent, or
// the registry's own error (typically 404) if it doesn't exist.
func (a *API) loadProfile(w http.ResponseWriter, r *http.Request) (*profile.Profile, bool) {
	name := r.URL.Query().Get("profile")
	if name == "" {
		writeError(w, &profile.ValidationError{Message: "missing required query parameter: profile"})
		return nil, false
	}
	p, err := a.Profiles.Get(name)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return p, true
}

// toolsResponse is the §6.5 GET /api/tools response shape: the tool
// list, the internal-args overlay, and the mtimes the caller must echo
// back unchanged on save for the optimistic-concurrency check to pass.
type toolsResponse struct {
	Tools   []*catalog.ToolDefinition `json:"tools"`
	Overlay catalog.Overlay           `json:"overlay"`
	Mtimes  catalog.FileMtimes        `json:"file_mtimes"`
}

// ListTools handles GET /api/tools?profile=.
func (a *API) ListTools(w http.ResponseWriter, r *http.Request) {
	p, ok := a.loadProfile(w, r)
	if !ok {
		return
	}
	tools, overlay, mtimes, err := a.catalogStore(p).Load()
	if err != nil {
		if _, isNotFound := err.(*catalog.NotFoundError); isNotFound {
			writeJSON(w, http.StatusOK, toolsResponse{Tools: nil, Overlay: catalog.NewOverlay(), Mtimes: catalog.FileMtimes{}})
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toolsResponse{Tools: tools, Overlay: overlay, Mtimes: mtimes})
}

type saveAllRequest struct {
	Tools   []*catalog.ToolDefinition `json:"tools"`
	Overlay catalog.Overlay           `json:"overlay"`
	Mtimes  map[string]time.Time      `json:"file_mtimes"`
}

// SaveAllTools handles POST /api/tools/save-all?profile=.
func (a *API) SaveAllTools(w http.ResponseWriter, r *http.Request) {
	p, ok := a.loadProfile(w, r)
	if !ok {
		return
	}
	var req saveAllRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &catalog.ValidationError{Message: "malformed request body: " + err.Error()})
		return
	}
	newMtimes, err := a.catalogStore(p).SaveAll(req.Tools, req.Overlay, catalog.FileMtimes(req.Mtimes))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"file_mtimes": newMtimes})
}

// DeleteTool handles DELETE /api/tools/{i}?profile=.
func (a *API) DeleteTool(w http.ResponseWriter, r *http.Request) {
	p, ok := a.loadProfile(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(mux.Vars(r)["i"])
	if err != nil {
		writeError(w, &catalog.ValidationError{Message: "tool index must be an integer"})
		return
	}

	var req struct {
		Mtimes map[string]time.Time `json:"file_mtimes"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req) // absent body means no expected mtimes

	backupName, newMtimes, err := a.catalogStore(p).DeleteTool(index, catalog.FileMtimes(req.Mtimes))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"backup": backupName, "file_mtimes": newMtimes})
}
