package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"isogrid-server/internal/engine"
)

// DebugHandler предоставляет доступ к внутреннему состоянию движка.
// Читает только снимки и журнал событий, которые безопасны из любой горутины.
type DebugHandler struct {
	Service *engine.GameService
}

func NewDebugHandler(s *engine.GameService) *DebugHandler {
	return &DebugHandler{Service: s}
}

// RegisterRoutes регистрирует debug-эндпоинты
func (h *DebugHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/debug/levels", h.handleListLevels)
	mux.HandleFunc("/debug/snapshot", h.handleSnapshot)
	mux.HandleFunc("/debug/events", h.handleEvents)
}

// /debug/levels - список уровней и число акторов в них
func (h *DebugHandler) handleListLevels(w http.ResponseWriter, r *http.Request) {
	type LevelSummary struct {
		LevelID    int    `json:"level_id"`
		Name       string `json:"name"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		Tick       uint64 `json:"tick"`
		ActorCount int    `json:"actor_count"`
	}

	summary := make([]LevelSummary, 0)
	for _, id := range h.Service.LevelIDs() {
		inst, _ := h.Service.Instance(id)
		snap := inst.Snapshot()
		summary = append(summary, LevelSummary{
			LevelID:    id,
			Name:       inst.Level.Name,
			Width:      inst.Level.Width,
			Height:     inst.Level.Height,
			Tick:       snap.Tick,
			ActorCount: len(snap.Actors),
		})
	}

	writeJSON(w, summary)
}

// /debug/snapshot?level=1 - полный снимок уровня (сетка, препятствия, акторы)
func (h *DebugHandler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	inst, ok := h.instanceFor(w, r)
	if !ok {
		return
	}
	writeJSON(w, inst.FullSnapshot())
}

// /debug/events?level=1 - последние события уровня
func (h *DebugHandler) handleEvents(w http.ResponseWriter, r *http.Request) {
	inst, ok := h.instanceFor(w, r)
	if !ok {
		return
	}
	writeJSON(w, inst.EventLog())
}

func (h *DebugHandler) instanceFor(w http.ResponseWriter, r *http.Request) (*engine.Instance, bool) {
	levelID, err := strconv.Atoi(r.URL.Query().Get("level"))
	if err != nil {
		http.Error(w, "level must be an integer", http.StatusBadRequest)
		return nil, false
	}
	inst, ok := h.Service.Instance(levelID)
	if !ok {
		http.Error(w, "Instance not found", http.StatusNotFound)
		return nil, false
	}
	return inst, true
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	// Разрешаем запросы с любого источника (нужно для локального debug-клиента)
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	w.Header().Set("Content-Type", "application/json")

	if data == nil {
		_, _ = w.Write([]byte("[]"))
		return
	}

	_ = json.NewEncoder(w).Encode(data)
}
