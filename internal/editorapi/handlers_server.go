package editorapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/mcptoolkit/forge/internal/errs"
	"github.com/mcptoolkit/forge/pkg/generator"
	"github.com/mcptoolkit/forge/pkg/profile"
)

func protocolParam(r *http.Request) string { return r.URL.Query().Get("protocol") }

// ServerStatus handles GET /api/server/status?profile=&protocol=.
func (a *API) ServerStatus(w http.ResponseWriter, r *http.Request) {
	p, ok := a.loadProfile(w, r)
	if !ok {
		return
	}
	protocol := protocolParam(r)
	if protocol == "" {
		writeError(w, &profile.ValidationError{Message: "missing required query parameter: protocol"})
		return
	}
	writeJSON(w, http.StatusOK, a.Supervisor.Status(p.Name, protocol))
}

// ServerStart handles POST /api/server/start?profile=&protocol=.
func (a *API) ServerStart(w http.ResponseWriter, r *http.Request) {
	a.serverOp(w, r, func(ctx context.Context, p *profile.Profile, protocol string) (any, error) {
		return a.Supervisor.Start(ctx, p, protocol, 0)
	})
}

// ServerStop handles POST /api/server/stop?profile=&protocol=.
func (a *API) ServerStop(w http.ResponseWriter, r *http.Request) {
	a.serverOp(w, r, func(ctx context.Context, p *profile.Profile, protocol string) (any, error) {
		return a.Supervisor.Stop(ctx, p.Name, protocol, true)
	})
}

// ServerRestart handles POST /api/server/restart?profile=&protocol=.
func (a *API) ServerRestart(w http.ResponseWriter, r *http.Request) {
	a.serverOp(w, r, func(ctx context.Context, p *profile.Profile, protocol string) (any, error) {
		return a.Supervisor.Restart(ctx, p, protocol, 0)
	})
}

func (a *API) serverOp(w http.ResponseWriter, r *http.Request, op func(context.Context, *profile.Profile, string) (any, error)) {
	p, ok := a.loadProfile(w, r)
	if !ok {
		return
	}
	protocol := protocolParam(r)
	if protocol == "" {
		writeError(w, &profile.ValidationError{Message: "missing required query parameter: protocol"})
		return
	}
	status, err := op(r.Context(), p, protocol)
	if err != nil {
		// Start on an already-running slot reports the existing PID, not
		// a failure (§8 property 11): the slot is in the state the
		// caller asked for, it just didn't have to spawn anything.
		var e *errs.Error
		if errors.As(err, &e) && e.Kind == errs.KindAlreadyRunning {
			writeJSON(w, http.StatusOK, status)
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// ServerDashboard handles GET /api/server/dashboard.
func (a *API) ServerDashboard(w http.ResponseWriter, r *http.Request) {
	profiles, err := a.Profiles.List()
	if err != nil {
		writeError(w, err)
		return
	}
	list := make([]*profile.Profile, 0, len(profiles))
	for _, p := range profiles {
		list = append(list, p)
	}
	writeJSON(w, http.StatusOK, a.Supervisor.Dashboard(list, Protocols))
}

// RunGenerator handles POST /api/server-generator?profile=, rendering
// every transport template for the profile's current catalog and
// handler registry.
func (a *API) RunGenerator(w http.ResponseWriter, r *http.Request) {
	p, ok := a.loadProfile(w, r)
	if !ok {
		return
	}

	tools, _, _, err := a.catalogStore(p).Load()
	if err != nil {
		writeError(w, err)
		return
	}
	handlers, err := a.Registry.AllServices(p.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	written := make([]string, 0, len(Protocols))
	for _, protocol := range Protocols {
		path, err := generator.Generate(p, tools, handlers, generator.Protocol(protocol))
		if err != nil {
			writeError(w, err)
			return
		}
		written = append(written, path)
	}
	writeJSON(w, http.StatusOK, map[string]any{"generated": written})
}
