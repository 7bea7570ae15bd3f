package editorapi

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter builds the full §6.5 route table over api, with every route
// wrapped in a per-request timeout per §5.
func NewRouter(api *API) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/profiles", api.ListProfiles).Methods(http.MethodGet)
	r.HandleFunc("/api/profiles", api.CreateProfile).Methods(http.MethodPost)
	r.HandleFunc("/api/profiles/derive", api.DeriveProfile).Methods(http.MethodPost)
	r.HandleFunc("/api/delete-mcp-profile", api.DeleteProfile).Methods(http.MethodDelete)

	r.HandleFunc("/api/tools", api.ListTools).Methods(http.MethodGet)
	r.HandleFunc("/api/tools/save-all", api.SaveAllTools).Methods(http.MethodPost)
	r.HandleFunc("/api/tools/{i}", api.DeleteTool).Methods(http.MethodDelete)

	r.HandleFunc("/api/server/status", api.ServerStatus).Methods(http.MethodGet)
	r.HandleFunc("/api/server/start", api.ServerStart).Methods(http.MethodPost)
	r.HandleFunc("/api/server/stop", api.ServerStop).Methods(http.MethodPost)
	r.HandleFunc("/api/server/restart", api.ServerRestart).Methods(http.MethodPost)
	r.HandleFunc("/api/server/dashboard", api.ServerDashboard).Methods(http.MethodGet)

	r.HandleFunc("/api/server-generator", api.RunGenerator).Methods(http.MethodPost)

	return withTimeout(r, DefaultRequestTimeout)
}
