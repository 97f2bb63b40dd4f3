// Package command turns text commands from any client (websocket, terminal,
// chat bridge) into engine commands.
package command

import (
	"context"
	"fmt"
	"log"
	"time"

	"soul-harvest/internal/game"
)

// Submitter delivers a command to the simulation goroutine and waits.
// *game.Engine satisfies it.
type Submitter interface {
	Submit(ctx context.Context, cmd game.Command) (game.CommandResult, error)
	Snapshot() *game.GameSnapshot
}

// Handler processes text commands and applies them to the game
type Handler struct {
	engine      Submitter
	rateLimiter *RateLimiter
	timeout     time.Duration
}

// NewHandler creates a new command handler
func NewHandler(engine Submitter, limits RateLimitConfig, timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Handler{
		engine:      engine,
		rateLimiter: NewRateLimiter(limits),
		timeout:     timeout,
	}
}

// Close stops the rate limiter's cleanup goroutine.
func (h *Handler) Close() {
	h.rateLimiter.Stop()
}

// Process parses text from client, runs it and returns a one-line reply.
func (h *Handler) Process(ctx context.Context, client, text string) (string, error) {
	req, err := Parse(text)
	if err != nil {
		return "", err
	}

	if !h.rateLimiter.Allow(client) {
		log.Printf("🚫 Rate limited: %s", client)
		return "", ErrRateLimited
	}

	switch req.Type {
	case CmdHelp:
		return Usage, nil
	case CmdStats:
		return h.stats(), nil
	}

	req.Command.Source = client
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	res, err := h.engine.Submit(ctx, req.Command)
	if err != nil {
		return "", fmt.Errorf("%s: %w", req.Name, err)
	}
	return reply(req, res), nil
}

func reply(req Request, res game.CommandResult) string {
	switch req.Type {
	case CmdPause:
		if res.Paused {
			return "⏸️ paused"
		}
		return "▶️ resumed"
	case CmdSpawn:
		if !res.OK {
			return fmt.Sprintf("🚫 zombie limit reached (%d)", res.Count)
		}
		return fmt.Sprintf("🧟 zombie spawned (%d alive)", res.Count)
	case CmdUpgrade:
		return fmt.Sprintf("⬆️ %s is now level %d", req.Command.Upgrade, res.Level)
	case CmdArea:
		return fmt.Sprintf("🗺️ moved to area %d", res.Level)
	case CmdClear:
		return fmt.Sprintf("🧹 cleared %d zombies", res.Count)
	default:
		return "ok"
	}
}

func (h *Handler) stats() string {
	snap := h.engine.Snapshot()
	if snap == nil {
		return "no frame yet"
	}
	e := snap.Economy
	return fmt.Sprintf("💀 souls %.0f | defeated %d | area %d %s | zombies %d/%d",
		e.Souls, e.WalkersDefeated, e.CurrentArea, e.AreaName, len(snap.Zombies), e.MaxZombies)
}
