package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/flexpos/pkg/buildinfo"
	"github.com/matzehuels/flexpos/pkg/errors"
	"github.com/matzehuels/flexpos/pkg/geom"
	"github.com/matzehuels/flexpos/pkg/overlay"
	"github.com/matzehuels/flexpos/pkg/scenario"
	"github.com/matzehuels/flexpos/pkg/store"
)

// =============================================================================
// Request and response types
// =============================================================================

// hostGeometry is what a client measures: the viewport, the origin's
// bounding rectangle and the overlay's natural size.
type hostGeometry struct {
	Viewport scenario.Viewport `json:"viewport"`
	Origin   geom.Rect         `json:"origin"`
	Overlay  geom.Size         `json:"overlay"`
	Hidden   bool              `json:"hidden,omitempty"`
}

func (g hostGeometry) validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"viewport.width", g.Viewport.Width},
		{"viewport.height", g.Viewport.Height},
		{"viewport.keyboard_inset", g.Viewport.KeyboardInset},
		{"origin.width", g.Origin.Width},
		{"origin.height", g.Origin.Height},
		{"overlay.width", g.Overlay.Width},
		{"overlay.height", g.Overlay.Height},
	} {
		if err := errors.ValidateLength(f.name, f.v, false); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s", errors.UserMessage(err))
		}
	}
	return nil
}

// geometryUpdate carries the measurements that changed since the last
// request. Nil fields are kept.
type geometryUpdate struct {
	Viewport *scenario.Viewport `json:"viewport,omitempty"`
	Origin   *geom.Rect         `json:"origin,omitempty"`
	Overlay  *geom.Size         `json:"overlay,omitempty"`
	Hidden   *bool              `json:"hidden,omitempty"`
}

func (u geometryUpdate) applyTo(rec *store.Record) error {
	g := hostGeometry{Viewport: rec.Viewport, Origin: rec.Origin, Overlay: rec.Overlay, Hidden: rec.Hidden}
	if u.Viewport != nil {
		g.Viewport = *u.Viewport
	}
	if u.Origin != nil {
		g.Origin = *u.Origin
	}
	if u.Overlay != nil {
		g.Overlay = *u.Overlay
	}
	if u.Hidden != nil {
		g.Hidden = *u.Hidden
	}
	if err := g.validate(); err != nil {
		return err
	}
	rec.Viewport, rec.Origin, rec.Overlay, rec.Hidden = normalized(g)
	return nil
}

func normalized(g hostGeometry) (scenario.Viewport, geom.Rect, geom.Size, bool) {
	vp := g.Viewport
	if len(vp.Scrollables) > 0 {
		rects := make([]geom.Rect, len(vp.Scrollables))
		for i, r := range vp.Scrollables {
			rects[i] = r.Normalize()
		}
		vp.Scrollables = rects
	}
	return vp, g.Origin.Normalize(), g.Overlay, g.Hidden
}

type placeRequest struct {
	hostGeometry
	Config    *overlay.Config             `json:"config,omitempty"`
	Positions []overlay.ConnectedPosition `json:"positions"`
	State     *overlay.State              `json:"state,omitempty"`
	Action    string                      `json:"action,omitempty"`
}

type createRequest struct {
	hostGeometry
	Config    *overlay.Config             `json:"config,omitempty"`
	Positions []overlay.ConnectedPosition `json:"positions"`
}

type positionsRequest struct {
	Positions []overlay.ConnectedPosition `json:"positions"`
}

// outcome is the result of one recompute.
type outcome struct {
	Placed    bool                    `json:"placed"`
	Placement *overlay.Placement      `json:"placement,omitempty"`
	Change    *overlay.PositionChange `json:"change,omitempty"`
	State     overlay.State           `json:"state"`
}

// overlayResponse describes a session, plus the outcome of the operation
// that produced it when there was one.
type overlayResponse struct {
	*store.Record
	Placed *bool                   `json:"placed,omitempty"`
	Change *overlay.PositionChange `json:"change,omitempty"`
}

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

// recomputeActions are the triggers the API can run.
var recomputeActions = []string{scenario.ActionApply, scenario.ActionReapply, scenario.ActionResize}

// =============================================================================
// Engine glue
// =============================================================================

func (s *Server) positioner(host overlay.Host, cfg overlay.Config, positions []overlay.ConnectedPosition, st *overlay.State, attached bool) (*overlay.Positioner, error) {
	opts := []overlay.Option{overlay.WithConfig(cfg), overlay.WithLogger(s.logger)}
	if st != nil {
		opts = append(opts, overlay.WithState(*st))
	}
	p, err := overlay.New(host, positions, opts...)
	if err != nil {
		return nil, err
	}
	if !attached {
		p.Detach()
	}
	return p, nil
}

func recompute(p *overlay.Positioner, action string) outcome {
	var change *overlay.PositionChange
	unsubscribe := p.OnPositionChange(func(c overlay.PositionChange) { change = &c })
	defer unsubscribe()

	var (
		pl overlay.Placement
		ok bool
	)
	switch action {
	case scenario.ActionReapply:
		pl, ok = p.ReapplyLastPosition()
	case scenario.ActionResize:
		pl, ok = p.Resize()
	default:
		pl, ok = p.Apply()
	}

	out := outcome{Placed: ok, Change: change, State: p.State()}
	if ok {
		out.Placement = &pl
	}
	return out
}

func recordPositioner(s *Server, rec *store.Record) (*overlay.Positioner, error) {
	return s.positioner(rec.Host(), rec.Config, rec.Positions, &rec.State, rec.Attached)
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) health(w http.ResponseWriter, r *http.Request) error {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
	return nil
}

// place runs one stateless recompute.
func (s *Server) place(w http.ResponseWriter, r *http.Request) error {
	cfg := overlay.DefaultConfig()
	req := placeRequest{Config: &cfg}
	if err := decodeJSON(w, r, &req, false); err != nil {
		return err
	}
	if req.Action == "" {
		req.Action = scenario.ActionApply
	}
	if err := errors.ValidateEnum("action", req.Action, recomputeActions...); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s", errors.UserMessage(err))
	}
	if err := req.validate(); err != nil {
		return err
	}
	if req.Config == nil {
		req.Config = &cfg
	}

	vp, origin, size, hidden := normalized(req.hostGeometry)
	host := scenario.NewStaticHost(vp, origin, size)
	host.Hidden = hidden

	p, err := s.positioner(host, *req.Config, req.Positions, req.State, true)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, recompute(p, req.Action))
	return nil
}

func (s *Server) createOverlay(w http.ResponseWriter, r *http.Request) error {
	cfg := overlay.DefaultConfig()
	req := createRequest{Config: &cfg}
	if err := decodeJSON(w, r, &req, false); err != nil {
		return err
	}
	if err := req.validate(); err != nil {
		return err
	}
	if req.Config == nil {
		req.Config = &cfg
	}
	if err := req.Config.Validate(); err != nil {
		return err
	}
	if err := overlay.ValidatePositions(req.Positions); err != nil {
		return err
	}

	rec := store.NewRecord(s.cfg.SessionTTL)
	rec.Viewport, rec.Origin, rec.Overlay, rec.Hidden = normalized(req.hostGeometry)
	rec.Config = *req.Config
	rec.Positions = req.Positions
	if err := s.store.Put(r.Context(), rec); err != nil {
		return err
	}

	s.logger.Debug("created overlay session", "id", rec.ID, "positions", len(rec.Positions), "expires_in", expiresIn(rec))
	w.Header().Set("Location", "/v1/overlays/"+rec.ID)
	writeJSON(w, http.StatusCreated, overlayResponse{Record: rec})
	return nil
}

// withSession loads the session named in the URL, runs fn under the
// session's lock and, when fn changed it, saves it back with a fresh
// expiry.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, fn func(rec *store.Record) (resp overlayResponse, changed bool, err error)) error {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateOverlayID(id); err != nil {
		return err
	}
	unlock := s.locks.Lock(id)
	defer unlock()

	ctx := r.Context()
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	resp, changed, err := fn(rec)
	if err != nil {
		return err
	}
	if changed {
		rec.Touch(s.cfg.SessionTTL)
		if err := s.store.Put(ctx, rec); err != nil {
			return err
		}
	}
	resp.Record = rec
	writeJSON(w, http.StatusOK, resp)
	return nil
}

func (s *Server) getOverlay(w http.ResponseWriter, r *http.Request) error {
	return s.withSession(w, r, func(rec *store.Record) (overlayResponse, bool, error) {
		return overlayResponse{}, false, nil
	})
}

func (s *Server) runOverlay(w http.ResponseWriter, r *http.Request, action string) error {
	var upd geometryUpdate
	if err := decodeJSON(w, r, &upd, true); err != nil {
		return err
	}
	return s.withSession(w, r, func(rec *store.Record) (overlayResponse, bool, error) {
		if err := upd.applyTo(rec); err != nil {
			return overlayResponse{}, false, err
		}
		p, err := recordPositioner(s, rec)
		if err != nil {
			return overlayResponse{}, false, err
		}
		out := recompute(p, action)
		rec.State = out.State
		if out.Placed {
			rec.Placement = out.Placement
		}
		s.logger.Debug("recomputed overlay", "id", rec.ID, "action", action, "placed", out.Placed)
		return overlayResponse{Placed: &out.Placed, Change: out.Change}, true, nil
	})
}

func (s *Server) applyOverlay(w http.ResponseWriter, r *http.Request) error {
	return s.runOverlay(w, r, scenario.ActionApply)
}

func (s *Server) reapplyOverlay(w http.ResponseWriter, r *http.Request) error {
	return s.runOverlay(w, r, scenario.ActionReapply)
}

func (s *Server) resizeOverlay(w http.ResponseWriter, r *http.Request) error {
	return s.runOverlay(w, r, scenario.ActionResize)
}

func (s *Server) attachOverlay(w http.ResponseWriter, r *http.Request) error {
	return s.withSession(w, r, func(rec *store.Record) (overlayResponse, bool, error) {
		if rec.Attached {
			return overlayResponse{}, false, nil
		}
		rec.Attached = true
		rec.State = overlay.NewState()
		rec.Placement = nil
		return overlayResponse{}, true, nil
	})
}

// detachOverlay detaches the session. With ?purge=true the session is
// deleted instead.
func (s *Server) detachOverlay(w http.ResponseWriter, r *http.Request) error {
	if r.URL.Query().Get("purge") == "true" {
		id := chi.URLParam(r, "id")
		if err := errors.ValidateOverlayID(id); err != nil {
			return err
		}
		unlock := s.locks.Lock(id)
		defer unlock()
		if err := s.store.Delete(r.Context(), id); err != nil {
			return err
		}
		w.WriteHeader(http.StatusNoContent)
		return nil
	}
	return s.withSession(w, r, func(rec *store.Record) (overlayResponse, bool, error) {
		if !rec.Attached {
			return overlayResponse{}, false, nil
		}
		rec.Attached = false
		rec.State = overlay.NewState()
		rec.Placement = nil
		return overlayResponse{}, true, nil
	})
}

func (s *Server) setPositions(w http.ResponseWriter, r *http.Request) error {
	var req positionsRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		return err
	}
	return s.withSession(w, r, func(rec *store.Record) (overlayResponse, bool, error) {
		p, err := recordPositioner(s, rec)
		if err != nil {
			return overlayResponse{}, false, err
		}
		if err := p.WithPositions(req.Positions); err != nil {
			return overlayResponse{}, false, err
		}
		rec.Positions = p.Positions()
		rec.State = p.State()
		return overlayResponse{}, true, nil
	})
}

// setConfig merges the body into the session's configuration. Fields the
// body omits keep their current values.
func (s *Server) setConfig(w http.ResponseWriter, r *http.Request) error {
	return s.withSession(w, r, func(rec *store.Record) (overlayResponse, bool, error) {
		cfg := rec.Config
		if err := decodeJSON(w, r, &cfg, false); err != nil {
			return overlayResponse{}, false, err
		}
		p, err := recordPositioner(s, rec)
		if err != nil {
			return overlayResponse{}, false, err
		}
		if err := p.Reconfigure(overlay.WithConfig(cfg)); err != nil {
			return overlayResponse{}, false, err
		}
		rec.Config = p.Config()
		return overlayResponse{}, true, nil
	})
}

func expiresIn(rec *store.Record) time.Duration {
	return time.Until(rec.ExpiresAt).Round(time.Second)
}
