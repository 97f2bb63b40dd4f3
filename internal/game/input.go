package game

import (
	"context"
	"errors"
	"log"
	"sync/atomic"
)

var (
	// ErrQueueFull is returned when the engine's command buffer is full.
	ErrQueueFull = errors.New("command queue full")
	// ErrPaused rejects non-pause input while the simulation is paused.
	ErrPaused = errors.New("simulation paused")
	// ErrUnknownCommand is returned for a command kind the engine does not handle.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrNoEconomy is returned for economy commands on an engine without one.
	ErrNoEconomy = errors.New("no economy attached")
)

// CommandKind enumerates input signals.
type CommandKind uint8

const (
	CmdTogglePause CommandKind = iota + 1
	CmdSpawnZombie
	CmdPurchaseUpgrade
	CmdSetArea
	CmdClearZombies
)

func (k CommandKind) String() string {
	switch k {
	case CmdTogglePause:
		return "pause"
	case CmdSpawnZombie:
		return "spawn"
	case CmdPurchaseUpgrade:
		return "upgrade"
	case CmdSetArea:
		return "area"
	case CmdClearZombies:
		return "clear"
	default:
		return "unknown"
	}
}

// Command is one input signal delivered to the simulation goroutine.
type Command struct {
	Kind     CommandKind
	Position Vector2 // CmdSpawnZombie
	Upgrade  string  // CmdPurchaseUpgrade
	Area     int     // CmdSetArea
	Source   string  // Client identifier, for logs

	reply chan CommandResult
}

// CommandResult is the simulation's answer to a Command.
type CommandResult struct {
	OK     bool  `json:"ok"`
	Paused bool  `json:"paused"`
	Level  int   `json:"level,omitempty"`
	Count  int   `json:"count,omitempty"`
	Err    error `json:"-"`
}

// commandQueue is a bounded MPSC buffer drained by the simulation goroutine.
type commandQueue struct {
	commands chan Command

	enqueued atomic.Uint64
	dropped  atomic.Uint64
}

func newCommandQueue(size int) *commandQueue {
	if size <= 0 {
		size = 256
	}
	return &commandQueue{commands: make(chan Command, size)}
}

func (q *commandQueue) enqueue(cmd Command) bool {
	select {
	case q.commands <- cmd:
		q.enqueued.Add(1)
		return true
	default:
		n := q.dropped.Add(1)
		if n%100 == 1 {
			log.Printf("⚠️ Command queue full, dropped %s from %q (total dropped: %d)", cmd.Kind, cmd.Source, n)
		}
		return false
	}
}

// drain hands every currently queued command to fn without blocking.
func (q *commandQueue) drain(fn func(Command)) int {
	n := 0
	for {
		select {
		case cmd := <-q.commands:
			fn(cmd)
			n++
		default:
			return n
		}
	}
}

// Submit queues cmd for the next frame and waits for its result.
// Safe to call from any goroutine while the engine is running.
func (e *Engine) Submit(ctx context.Context, cmd Command) (CommandResult, error) {
	cmd.reply = make(chan CommandResult, 1)
	if !e.queue.enqueue(cmd) {
		return CommandResult{}, ErrQueueFull
	}
	select {
	case res := <-cmd.reply:
		return res, res.Err
	case <-ctx.Done():
		return CommandResult{}, ctx.Err()
	}
}

// Enqueue queues cmd without waiting for the result.
func (e *Engine) Enqueue(cmd Command) bool {
	cmd.reply = nil
	return e.queue.enqueue(cmd)
}

// apply runs cmd on the simulation goroutine.
// The pause toggle is always honoured; everything else is refused while paused.
func (e *Engine) apply(cmd Command) CommandResult {
	if cmd.Kind == CmdTogglePause {
		paused := e.TogglePause()
		return CommandResult{OK: true, Paused: paused}
	}
	if e.paused {
		if cmd.Kind == CmdSpawnZombie {
			e.metrics.SpawnRejected()
		}
		return CommandResult{Paused: true, Err: ErrPaused}
	}

	switch cmd.Kind {
	case CmdSpawnZombie:
		ok := e.spawnZombie(cmd.Position, cmd.Source)
		return CommandResult{OK: ok, Count: e.zombies.Count()}
	case CmdPurchaseUpgrade:
		level, err := e.PurchaseUpgrade(cmd.Upgrade)
		return CommandResult{OK: err == nil, Level: level, Err: err}
	case CmdSetArea:
		err := e.SelectArea(cmd.Area)
		return CommandResult{OK: err == nil, Level: cmd.Area, Err: err}
	case CmdClearZombies:
		n := e.ClearZombies()
		return CommandResult{OK: true, Count: n}
	default:
		return CommandResult{Err: ErrUnknownCommand}
	}
}
