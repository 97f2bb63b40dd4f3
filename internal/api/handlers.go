package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"soul-harvest/internal/economy"
	"soul-harvest/internal/game"
)

func (h *routerHandlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Snapshot()
	resp := map[string]interface{}{"status": "ok"}
	if snap != nil {
		resp["step"] = snap.Step
		resp["paused"] = snap.Paused
	}
	writeJSON(w, resp)
}

func (h *routerHandlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Snapshot()
	if snap == nil {
		writeError(w, "no frame yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, snap)
}

func (h *routerHandlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Snapshot()
	if snap == nil {
		writeError(w, "no frame yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, map[string]interface{}{
		"step":      snap.Step,
		"simTimeNs": snap.SimTime,
		"paused":    snap.Paused,
		"walkers":   len(snap.Walkers),
		"zombies":   len(snap.Zombies),
		"particles": len(snap.Particles),
		"economy":   snap.Economy,
		"engine":    snap.Stats,
		"rateLimit": h.limiter.GetStats(),
	})
}

func (h *routerHandlers) handleGetFrame(w http.ResponseWriter, r *http.Request) {
	if h.frames == nil {
		writeError(w, "rendering disabled", http.StatusNotFound)
		return
	}
	data, err := h.frames.EncodePNG()
	if err != nil {
		writeError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(data)
}

func (h *routerHandlers) handlePause(w http.ResponseWriter, r *http.Request) {
	res, ok := h.submit(w, r, game.Command{Kind: game.CmdTogglePause})
	if !ok {
		return
	}
	log.Printf("⏯️ Pause toggled via API (paused=%v)", res.Paused)
	writeJSON(w, map[string]bool{"paused": res.Paused})
}

func (h *routerHandlers) handleSpawnZombie(w http.ResponseWriter, r *http.Request) {
	var req struct {
		X *float64 `json:"x"`
		Y *float64 `json:"y"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.X == nil || req.Y == nil {
		writeError(w, "x and y are required", http.StatusBadRequest)
		return
	}

	res, ok := h.submit(w, r, game.Command{Kind: game.CmdSpawnZombie, Position: game.Vec(*req.X, *req.Y)})
	if !ok {
		return
	}
	status := http.StatusOK
	if !res.OK {
		status = http.StatusConflict
	}
	writeJSONStatus(w, status, map[string]interface{}{
		"spawned": res.OK,
		"zombies": res.Count,
	})
}

func (h *routerHandlers) handleClearZombies(w http.ResponseWriter, r *http.Request) {
	res, ok := h.submit(w, r, game.Command{Kind: game.CmdClearZombies})
	if !ok {
		return
	}
	writeJSON(w, map[string]int{"cleared": res.Count})
}

func (h *routerHandlers) handlePurchaseUpgrade(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	res, ok := h.submit(w, r, game.Command{Kind: game.CmdPurchaseUpgrade, Upgrade: kind})
	if !ok {
		return
	}
	writeJSON(w, map[string]interface{}{
		"upgrade": kind,
		"level":   res.Level,
	})
}

func (h *routerHandlers) handleSelectArea(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID int `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if _, ok := h.submit(w, r, game.Command{Kind: game.CmdSetArea, Area: req.ID}); !ok {
		return
	}
	writeJSON(w, map[string]int{"area": req.ID})
}

// submit sends cmd to the engine and writes the error response on failure.
func (h *routerHandlers) submit(w http.ResponseWriter, r *http.Request, cmd game.Command) (game.CommandResult, bool) {
	cmd.Source = "http:" + GetClientIP(r)
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	res, err := h.engine.Submit(ctx, cmd)
	if err != nil {
		writeError(w, err.Error(), statusFor(err))
		return res, false
	}
	return res, true
}

// statusFor maps command errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrPaused),
		errors.Is(err, economy.ErrInsufficientSouls),
		errors.Is(err, economy.ErrMaxLevel),
		errors.Is(err, economy.ErrAreaLocked):
		return http.StatusConflict
	case errors.Is(err, economy.ErrUnknownUpgrade),
		errors.Is(err, economy.ErrUnknownArea):
		return http.StatusNotFound
	case errors.Is(err, game.ErrQueueFull):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	writeJSONStatus(w, http.StatusOK, data)
}

func writeJSONStatus(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	writeJSONStatus(w, code, map[string]string{"error": message})
}
