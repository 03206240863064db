// Package api provides the HTTP API for observing a running world.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/talgya/mini-economy/internal/agents"
	"github.com/talgya/mini-economy/internal/engine"
	"github.com/talgya/mini-economy/internal/persistence"
	"github.com/talgya/mini-economy/internal/world"
)

// Server serves the world state over HTTP.
type Server struct {
	Eng      *engine.Engine
	DB       *persistence.DB // Optional; history endpoints return 503 without it
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	hub      *Hub
	upgrader websocket.Upgrader
}

// NewServer creates a server for eng and subscribes its stream hub to every step.
func NewServer(eng *engine.Engine, db *persistence.DB, port int, adminKey string) *Server {
	s := &Server{
		Eng:      eng,
		DB:       db,
		Port:     port,
		AdminKey: adminKey,
		hub:      NewHub(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	eng.OnStep(s.hub.Publish)
	return s
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	streamLimiter := NewRateLimiter(30, time.Minute)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/map", s.handleMap)
		r.Get("/tiles/{x}/{y}", s.handleTile)
		r.Get("/agents", s.handleAgents)
		r.Get("/events", s.handleEvents)
		r.Get("/run", s.handleRun)
		r.Get("/stats/history", s.handleStatsHistory)
		r.Get("/stream", RateLimitMiddleware(streamLimiter, s.handleStream))

		r.Get("/speed", s.handleSpeed)
		r.Post("/speed", s.adminOnly(s.handleSpeed))
	})
	return r
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "", "history", s.DB != nil)

	go func() {
		if err := http.ListenAndServe(addr, s.Routes()); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no WORLDSIM_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	type jobEntry struct {
		Job     string `json:"job"`
		Percent int    `json:"percent"`
		Count   int    `json:"count"`
	}

	var status map[string]any
	s.Eng.View(func(sim *engine.Simulation) {
		jobs := make([]jobEntry, 0, sim.JobTable().Len())
		for _, rg := range sim.JobTable().Ranges() {
			jobs = append(jobs, jobEntry{
				Job:     agents.JobName(rg.Category),
				Percent: int(rg.Share() * 100),
				Count:   sim.Stats.JobCounts[rg.Category],
			})
		}
		status = map[string]any{
			"id":              sim.ID.String(),
			"step":            sim.CurrentTick(),
			"width":           sim.Grid.Width(),
			"height":          sim.Grid.Height(),
			"population":      sim.Stats.Population,
			"jobs":            jobs,
			"settlements":     sim.Stats.Settlements,
			"total_births":    sim.Stats.TotalBirths,
			"raw_total":       sim.Stats.RawTotal,
			"processed_total": sim.Stats.ProcessedTotal,
		}
	})
	status["speed"] = s.Eng.Speed()
	status["running"] = s.Eng.Running()
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	var resp map[string]any
	s.Eng.View(func(sim *engine.Simulation) {
		resp = map[string]any{
			"width":  sim.Grid.Width(),
			"height": sim.Grid.Height(),
			"rows":   engine.MapRows(sim.Grid),
		}
	})
	writeJSON(w, http.StatusOK, resp)
}

type tileResponse struct {
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Kind      string `json:"kind"`
	Raw       int    `json:"raw"`
	Processed int    `json:"processed"`
	Occupants int    `json:"occupants"`
}

func (s *Server) handleTile(w http.ResponseWriter, r *http.Request) {
	x, errX := strconv.Atoi(chi.URLParam(r, "x"))
	y, errY := strconv.Atoi(chi.URLParam(r, "y"))
	if errX != nil || errY != nil {
		respondError(w, http.StatusBadRequest, "invalid coordinate")
		return
	}

	var (
		resp  tileResponse
		found bool
	)
	s.Eng.View(func(sim *engine.Simulation) {
		c := world.Coord{X: x, Y: y}
		if !sim.Grid.InBounds(c) {
			return
		}
		found = true
		tile := sim.Grid.At(c)
		resp = tileResponse{
			X:         x,
			Y:         y,
			Kind:      world.TileName(tile.Kind),
			Raw:       tile.Inventory[world.ResourceRaw],
			Processed: tile.Inventory[world.ResourceProcessed],
		}
		for _, a := range sim.Agents {
			if a.Position == c {
				resp.Occupants++
			}
		}
	})
	if !found {
		respondError(w, http.StatusNotFound, fmt.Sprintf("tile (%d, %d) out of bounds", x, y))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type agentResponse struct {
	ID       agents.AgentID `json:"id"`
	Job      string         `json:"job"`
	X        int            `json:"x"`
	Y        int            `json:"y"`
	Carrying string         `json:"carrying,omitempty"`
	BornTick uint64         `json:"born_tick"`
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	var filter *agents.Job
	if name := r.URL.Query().Get("job"); name != "" {
		job, err := agents.ParseJob(name)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter = &job
	}

	limit := 100
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 10000 {
			limit = v
		}
	}

	result := make([]agentResponse, 0)
	s.Eng.View(func(sim *engine.Simulation) {
		for _, a := range sim.Agents {
			if len(result) >= limit {
				break
			}
			if filter != nil && a.Job != *filter {
				continue
			}
			entry := agentResponse{
				ID:       a.ID,
				Job:      agents.JobName(a.Job),
				X:        a.Position.X,
				Y:        a.Position.Y,
				BornTick: a.BornTick,
			}
			if a.Carrying != nil {
				entry.Carrying = world.ResourceName(*a.Carrying)
			}
			result = append(result, entry)
		}
	})
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	events := make([]engine.Event, 0)
	s.Eng.View(func(sim *engine.Simulation) {
		// Newest first.
		for i := len(sim.Events) - 1; i >= 0 && len(events) < 100; i-- {
			if category == "" || sim.Events[i].Category == category {
				events = append(events, sim.Events[i])
			}
		}
	})
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleStatsHistory(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	from := int64(0)
	to := int64(math.MaxInt64)
	limit := 30

	if f := r.URL.Query().Get("from"); f != "" {
		if v, err := strconv.ParseInt(f, 10, 64); err == nil {
			from = v
		}
	}
	if t := r.URL.Query().Get("to"); t != "" {
		if v, err := strconv.ParseInt(t, 10, 64); err == nil {
			to = v
		}
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 1000 {
			limit = v
		}
	}

	runID := s.runID()
	rows, err := s.DB.LoadStatsHistory(runID, from, to, limit)
	if err != nil {
		slog.Error("stats history query failed", "error", err)
		writeJSON(w, http.StatusOK, []persistence.StatsRow{})
		return
	}
	if rows == nil {
		rows = []persistence.StatsRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}
	run, err := s.DB.GetRun(s.runID())
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "run not registered")
		return
	}
	if err != nil {
		slog.Error("run query failed", "error", err)
		respondError(w, http.StatusInternalServerError, "run query failed")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) runID() uuid.UUID {
	var id uuid.UUID
	s.Eng.View(func(sim *engine.Simulation) { id = sim.ID })
	return id
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid json")
			return
		}
		if req.Speed > 1000 {
			respondError(w, http.StatusBadRequest, "speed must be 0-1000")
			return
		}
		if err := s.Eng.SetSpeed(req.Speed); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Info("speed changed", "speed", req.Speed)
	}

	writeJSON(w, http.StatusOK, map[string]float64{"speed": s.Eng.Speed()})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		slog.Debug("encode response failed", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
