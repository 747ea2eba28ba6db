// Package api provides the HTTP API for observing and steering the settlement.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane) and are rate limited.
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/talgya/hive-economy/internal/buildings"
	"github.com/talgya/hive-economy/internal/economy"
	"github.com/talgya/hive-economy/internal/engine"
	"github.com/talgya/hive-economy/internal/metrics"
	"github.com/talgya/hive-economy/internal/persistence"
	"github.com/talgya/hive-economy/internal/research"
	"github.com/talgya/hive-economy/internal/world"
)

const (
	maxSSEConns    = 8
	commandTimeout = 5 * time.Second
)

// Server serves the settlement state over HTTP.
type Server struct {
	Eng      *engine.Engine
	Research *research.Tracker // Only touched from engine commands
	DB       *persistence.DB   // Optional; history endpoints degrade without it
	HUD      *HUD
	Metrics  *metrics.Collector
	Registry *prometheus.Registry

	Port          int
	AdminKey      string // Bearer token for POST endpoints. Empty = POST disabled.
	RatePerMinute int
	Burst         int

	// Active SSE connection count (atomic).
	sseConns int32
	routes   map[string]bool
}

// Handler builds the routed handler without starting a listener.
func (s *Server) Handler() http.Handler {
	limiter := NewRateLimiter(s.RatePerMinute, s.Burst)
	mux := http.NewServeMux()
	s.routes = make(map[string]bool)

	// Public endpoints (GET, read-only).
	s.handle(mux, "/api/v1/status", s.handleStatus)
	s.handle(mux, "/api/v1/resources", s.handleResources)
	s.handle(mux, "/api/v1/buildings", s.handleBuildings)
	s.handle(mux, "/api/v1/roads", s.handleRoads)
	s.handle(mux, "/api/v1/catalog", s.handleCatalog)
	s.handle(mux, "/api/v1/history", s.handleHistory)
	s.handle(mux, "/api/v1/events", s.handleEvents)
	s.handle(mux, "/api/v1/stream", s.handleStream)

	// Admin endpoints (POST, require bearer token).
	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return s.adminOnly(RateLimitMiddleware(limiter, h))
	}
	s.handle(mux, "/api/v1/place", admin(s.handlePlace))
	s.handle(mux, "/api/v1/remove", admin(s.handleRemove))
	s.handle(mux, "/api/v1/research", admin(s.handleResearch))
	s.handle(mux, "/api/v1/grant", admin(s.handleGrant))
	s.handle(mux, "/api/v1/speed", admin(s.handleSpeed))

	if s.Registry != nil {
		s.routes["/metrics"] = true
		mux.Handle("/metrics", metrics.Handler(s.Registry))
	}

	return s.instrument(mux)
}

func (s *Server) handle(mux *http.ServeMux, path string, h http.HandlerFunc) {
	s.routes[path] = true
	mux.HandleFunc(path, h)
}

// Start serves the API until ctx is done.
func (s *Server) Start(ctx context.Context) {
	addr := fmt.Sprintf(":%d", s.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           corsMiddleware(s.Handler()),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("HTTP shutdown", "error", err)
		}
	}()

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// HIVE_CORS_ORIGINS adds a comma-separated list; localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("HIVE_CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// instrument records request counts and latency. Unrouted paths share one label.
func (s *Server) instrument(next http.Handler) http.Handler {
	if s.Metrics == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		endpoint := r.URL.Path
		if !s.routes[endpoint] {
			endpoint = "other"
		}
		s.Metrics.RecordAPIRequest(r.Method, endpoint, rec.status, time.Since(start))
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || s.AdminKey == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(s.AdminKey)) == 1
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
// GET requests pass through (for endpoints that support both GET and POST).
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no HIVE_API_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

// submit runs cmd on the engine goroutine, bounded by the request context.
func (s *Server) submit(r *http.Request, cmd engine.Command) error {
	ctx, cancel := context.WithTimeout(r.Context(), commandTimeout)
	defer cancel()
	return s.Eng.Submit(ctx, cmd)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.Eng.Snapshot()
	writeJSON(w, map[string]any{
		"run_id":           snap.RunID,
		"cycle":            snap.Cycle,
		"phase":            snap.Phase,
		"speed":            s.Eng.Speed(),
		"running":          s.Eng.Running(),
		"frames":           s.Eng.Frames(),
		"buildings":        len(snap.Buildings),
		"counts":           snap.Counts,
		"roads":            len(snap.Roads),
		"connected_roads":  snap.ConnectedRoads,
		"obelisk":          snap.Obelisk,
		"workers":          snap.Workers,
		"assigned_workers": snap.Assigned,
		"active_producers": snap.LastReport.ActiveProducers,
		"producers":        snap.LastReport.Producers,
		"taken_at":         snap.TakenAt,
	})
}

func (s *Server) handleResources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Eng.Snapshot().Resources)
}

func (s *Server) handleBuildings(w http.ResponseWriter, r *http.Request) {
	snap := s.Eng.Snapshot()
	kind := buildings.Kind(r.URL.Query().Get("kind"))
	if kind == "" {
		writeJSON(w, snap.Buildings)
		return
	}
	filtered := []engine.BuildingView{}
	for _, b := range snap.Buildings {
		if b.Kind == kind {
			filtered = append(filtered, b)
		}
	}
	writeJSON(w, filtered)
}

func (s *Server) handleRoads(w http.ResponseWriter, r *http.Request) {
	snap := s.Eng.Snapshot()
	writeJSON(w, map[string]any{
		"obelisk":   snap.Obelisk,
		"cells":     snap.Roads,
		"connected": snap.ConnectedRoads,
	})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Eng.Sim.Catalog().All())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}
	resource := r.URL.Query().Get("resource")
	if resource == "" {
		http.Error(w, "resource is required", http.StatusBadRequest)
		return
	}
	limit := 100
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 1000 {
			limit = v
		}
	}

	rows, err := s.DB.LoadHistory(s.Eng.Snapshot().RunID, resource, limit)
	if err != nil {
		slog.Error("history query failed", "error", err)
		// Return empty array instead of error; the run may not have a cycle yet.
		writeJSON(w, []persistence.ResourcePoint{})
		return
	}
	if rows == nil {
		rows = []persistence.ResourcePoint{}
	}
	writeJSON(w, rows)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	if s.HUD == nil {
		writeJSON(w, []engine.Change{})
		return
	}
	writeJSON(w, s.HUD.Recent(limit))
}

type placeRequest struct {
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Building string `json:"building"`
}

func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req placeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	pos := world.C(req.X, req.Y)
	var view engine.BuildingView
	err := s.submit(r, func(sim *engine.Simulation) error {
		b, err := sim.Place(pos, req.Building)
		if err != nil {
			return err
		}
		view = engine.BuildingView{
			Pos:             b.Pos,
			Building:        b.Def.ID,
			Name:            b.Def.Name,
			Kind:            b.Def.Kind,
			Level:           b.Level,
			MaxLevel:        b.Def.MaxLevel(),
			RoadAccess:      b.RoadAccess,
			WaterNearby:     b.WaterNearby,
			WorkersRequired: b.Def.WorkersRequired,
		}
		return nil
	})
	if err != nil {
		writeCommandError(w, err)
		return
	}
	slog.Info("building placed via API", "building", req.Building, "pos", pos)
	writeJSONStatus(w, http.StatusCreated, view)
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req placeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	pos := world.C(req.X, req.Y)
	var removed string
	err := s.submit(r, func(sim *engine.Simulation) error {
		b, err := sim.Remove(pos)
		if err != nil {
			return err
		}
		removed = b.Def.ID
		return nil
	})
	if err != nil {
		writeCommandError(w, err)
		return
	}
	slog.Info("building removed via API", "building", removed, "pos", pos)
	writeJSON(w, map[string]any{"removed": removed, "pos": pos})
}

func (s *Server) handleResearch(w http.ResponseWriter, r *http.Request) {
	var id string
	if r.Method == http.MethodPost {
		var req struct {
			ID string `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		id = strings.TrimSpace(req.ID)
		if id == "" {
			http.Error(w, "id is required", http.StatusBadRequest)
			return
		}
	}

	var completed []string
	err := s.submit(r, func(*engine.Simulation) error {
		if id != "" {
			s.Research.Complete(id)
		}
		completed = s.Research.Completed()
		return nil
	})
	if err != nil {
		writeCommandError(w, err)
		return
	}
	if id != "" {
		slog.Info("research completed via API", "id", id)
	}
	writeJSON(w, map[string]any{"completed": completed})
}

func (s *Server) handleGrant(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Resources economy.Bundle `json:"resources"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Resources.IsZero() {
		http.Error(w, "resources are required", http.StatusBadRequest)
		return
	}
	for res, amt := range req.Resources {
		if !economy.Known(res) {
			http.Error(w, fmt.Sprintf("unknown resource %q", res), http.StatusBadRequest)
			return
		}
		if amt < 0 {
			http.Error(w, fmt.Sprintf("negative amount for %s", res), http.StatusBadRequest)
			return
		}
	}

	amounts := make(map[economy.Resource]float64, len(req.Resources))
	err := s.submit(r, func(sim *engine.Simulation) error {
		sim.Ledger().Add(req.Resources)
		for res := range req.Resources {
			amounts[res] = sim.Ledger().Amount(res)
		}
		return nil
	})
	if err != nil {
		writeCommandError(w, err)
		return
	}
	slog.Info("resources granted via API", "bundle", req.Resources.String())
	writeJSON(w, amounts)
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 1000 {
			http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
			return
		}
		s.Eng.SetSpeed(req.Speed)
		slog.Info("speed changed", "speed", req.Speed)
	}

	writeJSON(w, map[string]float64{"speed": s.Eng.Speed()})
}

// writeCommandError maps engine errors onto HTTP status codes.
func writeCommandError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, engine.ErrUnknownType),
		errors.Is(err, engine.ErrOutOfBounds),
		errors.Is(err, engine.ErrWaterCell):
		status = http.StatusBadRequest
	case errors.Is(err, engine.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, engine.ErrOccupied),
		errors.Is(err, engine.ErrObeliskExists):
		status = http.StatusConflict
	case errors.Is(err, engine.ErrInsufficientResources):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		status = http.StatusServiceUnavailable
	}
	http.Error(w, err.Error(), status)
}

// handleStream provides an SSE endpoint for building changes and cycle reports.
// Concurrent connections are capped.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if s.HUD == nil {
		http.Error(w, "streaming disabled", http.StatusServiceUnavailable)
		return
	}

	current := atomic.AddInt32(&s.sseConns, 1)
	if current > maxSSEConns {
		atomic.AddInt32(&s.sseConns, -1)
		http.Error(w, "too many SSE connections", http.StatusServiceUnavailable)
		return
	}
	defer atomic.AddInt32(&s.sseConns, -1)

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	subID, ch := s.HUD.Subscribe()
	defer s.HUD.Unsubscribe(subID)

	// Catch-up: last 50 changes, oldest first.
	recent := s.HUD.Recent(50)
	for i := len(recent) - 1; i >= 0; i-- {
		writeSSEEvent(w, Event{Type: "change", Change: &recent[i]})
	}
	flusher.Flush()

	slog.Info("SSE client connected", "sub_id", subID)

	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return
			}
			writeSSEEvent(w, e)
			flusher.Flush()
		case <-heartbeat.C:
			fmt.Fprintf(w, ": heartbeat\n\n")
			flusher.Flush()
		case <-r.Context().Done():
			slog.Info("SSE client disconnected", "sub_id", subID)
			return
		}
	}
}

// writeSSEEvent writes a single event in SSE format.
func writeSSEEvent(w http.ResponseWriter, e Event) {
	data, err := json.Marshal(e)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Type, data)
}

func writeJSON(w http.ResponseWriter, data any) {
	writeJSONStatus(w, http.StatusOK, data)
}

func writeJSONStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
