package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gorilla/mux"
	"github.com/pixil98/go-rotmg/internal/game"
	"github.com/pixil98/go-rotmg/internal/player"
	"github.com/pixil98/go-rotmg/internal/rotmg"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 500
)

type page struct {
	Total int   `json:"total"`
	Items []any `json:"items"`
}

type categorySummary struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats := s.assets.Categories()
	out := make([]categorySummary, 0, len(cats))
	for _, c := range cats {
		out = append(out, categorySummary{Name: c, Count: s.assets.Len(c)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	category := mux.Vars(r)["category"]
	offset, limit, err := pageParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if s.assets.Len(category) == 0 {
		writeError(w, http.StatusNotFound, fmt.Errorf("category %q not found", category))
		return
	}

	p := page{Items: []any{}}
	for v := range s.assets.GetAll(category) {
		if p.Total >= offset && len(p.Items) < limit {
			p.Items = append(p.Items, v)
		}
		p.Total++
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	v, ok := s.assets.Get(vars["category"], vars["key"])
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("%s %q not found", vars["category"], vars["key"]))
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type equipmentSummary struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Tier     string `json:"tier"`
	SlotType int    `json:"slotType"`
	Texture  string `json:"texture,omitempty"`
}

// handleEquipment lists equipment whose display name contains the filter,
// ignoring case.
func (s *Server) handleEquipment(w http.ResponseWriter, r *http.Request) {
	offset, limit, err := pageParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	filter := strings.ToLower(r.URL.Query().Get("filter"))

	p := page{Items: []any{}}
	for v := range s.assets.GetAll(s.category) {
		e, ok := v.(*rotmg.Equipment)
		if !ok || !strings.Contains(strings.ToLower(e.DisplayName()), filter) {
			continue
		}
		if p.Total >= offset && len(p.Items) < limit {
			tex, _ := e.TextureKey()
			p.Items = append(p.Items, equipmentSummary{
				Key:      e.ID,
				Name:     e.DisplayName(),
				Type:     e.TypeCode(),
				Tier:     e.TierLabel(),
				SlotType: e.SlotType,
				Texture:  tex,
			})
		}
		p.Total++
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleGetClass(w http.ResponseWriter, r *http.Request) {
	class, ok := s.players.Selected()
	if !ok {
		writeError(w, http.StatusNotFound, player.ErrNoClass)
		return
	}
	writeJSON(w, http.StatusOK, class)
}

type keyRequest struct {
	Key string `json:"key"`
}

func (s *Server) handleSelectClass(w http.ResponseWriter, r *http.Request) {
	var req keyRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.players.SelectClass(r.Context(), req.Key); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	class, _ := s.players.Selected()
	writeJSON(w, http.StatusOK, class)
}

func (s *Server) handleGetInventory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.players.Inventory())
}

type givenItem struct {
	Slot int                 `json:"slot"`
	Item *rotmg.ItemInstance `json:"item"`
}

func (s *Server) handleGiveItem(w http.ResponseWriter, r *http.Request) {
	var req keyRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	item, slot, err := s.players.GiveItem(req.Key)
	switch {
	case errors.Is(err, game.ErrInventoryFull):
		writeError(w, http.StatusConflict, err)
		return
	case err != nil:
		writeError(w, http.StatusNotFound, err)
		return
	}

	writeJSON(w, http.StatusCreated, givenItem{Slot: slot, Item: item})
}

type spawnRequest struct {
	Position mgl32.Vec2 `json:"position"`
}

type spawned struct {
	ID string `json:"id"`
}

func (s *Server) handleSpawn(w http.ResponseWriter, r *http.Request) {
	var req spawnRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	c, err := s.players.Spawn(s.world, req.Position)
	if err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	writeJSON(w, http.StatusCreated, spawned{ID: c.ID()})
}

type particleRequest struct {
	// Target is the id of an object to follow. Position is used without one.
	Target     string     `json:"target,omitempty"`
	Position   mgl32.Vec2 `json:"position"`
	LifetimeMS int        `json:"lifetimeMs"`
	Color      mgl32.Vec4 `json:"color"`
	Delta      mgl32.Vec3 `json:"delta"`
	Offset     mgl32.Vec2 `json:"offset"`
	Scale      float32    `json:"scale,omitempty"`
}

func (req *particleRequest) opts() []game.ParticleOpt {
	opts := []game.ParticleOpt{game.WithDelta(req.Delta), game.WithOffset(req.Offset)}
	if req.Scale > 0 {
		opts = append(opts, game.WithParticleScale(req.Scale))
	}
	return opts
}

func (s *Server) handleParticle(w http.ResponseWriter, r *http.Request) {
	var req particleRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.LifetimeMS <= 0 {
		writeError(w, http.StatusBadRequest, fmt.Errorf("lifetimeMs must be positive"))
		return
	}
	lifetime := time.Duration(req.LifetimeMS) * time.Millisecond
	if req.Color == (mgl32.Vec4{}) {
		req.Color = mgl32.Vec4{1, 1, 1, 1}
	}

	if req.Target == "" {
		p := game.NewParticle(game.Point(req.Position), lifetime, req.Color, req.opts()...)
		s.world.Spawn(p)
		writeJSON(w, http.StatusCreated, spawned{ID: p.ID()})
		return
	}

	// Objects are only touched from the world's goroutine, so the target is
	// resolved there.
	s.world.Enqueue(func(world *game.World) {
		o, ok := world.Find(req.Target)
		if !ok {
			slog.Warn("particle target not found", "target", req.Target)
			return
		}
		world.Spawn(game.NewParticle(o, lifetime, req.Color, req.opts()...))
	})
	w.WriteHeader(http.StatusAccepted)
}

func pageParams(r *http.Request) (offset, limit int, err error) {
	q := r.URL.Query()
	limit = DefaultPageSize

	if v := q.Get("offset"); v != "" {
		if offset, err = strconv.Atoi(v); err != nil || offset < 0 {
			return 0, 0, fmt.Errorf("invalid offset %q", v)
		}
	}
	if v := q.Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit < 1 {
			return 0, 0, fmt.Errorf("invalid limit %q", v)
		}
	}
	return offset, min(limit, MaxPageSize), nil
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decoding request: %w", err)
	}
	return nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("writing response", "error", err)
	}
}
