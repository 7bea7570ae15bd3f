// Package editorapi implements the Editor Control Plane (C9): the HTTP
// API the authoring UI drives to CRUD a profile's tool catalog, manage
// profile lifecycle, and start/stop/restart generated servers (§4.9,
// §6.5). It is the only component permitted to invoke the Profile
// Registry's destructive operations.
package editorapi

import (
	"log/slog"

	"github.com/mcptoolkit/forge/pkg/catalog"
	"github.com/mcptoolkit/forge/pkg/generator"
	"github.com/mcptoolkit/forge/pkg/profile"
	"github.com/mcptoolkit/forge/pkg/registry"
	"github.com/mcptoolkit/forge/pkg/supervisor"
)

// Protocols lists every transport the generator can render and the
// supervisor can run, in the fixed order §6.4 describes them.
var Protocols = []string{string(generator.ProtocolREST), string(generator.ProtocolStream), string(generator.ProtocolStdio)}

// API holds every dependency the HTTP handlers need. It carries no
// per-request state; one instance is shared across all requests.
type API struct {
	Profiles   *profile.Registry
	Layout     profile.Layout
	Registry   *registry.Store
	Supervisor *supervisor.Supervisor
	Log        *slog.Logger
}

// New constructs an API. log may be nil, in which case slog.Default is used.
func New(profiles *profile.Registry, layout profile.Layout, reg *registry.Store, sup *supervisor.Supervisor, log *slog.Logger) *API {
	if log == nil {
		log = slog.Default()
	}
	return &API{Profiles: profiles, Layout: layout, Registry: reg, Supervisor: sup, Log: log}
}

// catalogStore builds the Tool Definition Store for one profile.
func (a *API) catalogStore(p *profile.Profile) *catalog.Store {
	return catalog.NewStore(p.ToolDefinitionsPath, p.RegistryPath, p.BackupDir)
}
