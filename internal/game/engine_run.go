package game

import (
	"context"
	"log"
	"time"
)

// Start drives Frame from a ticker goroutine at cfg.Loop.FrameRate, the
// headless stand-in for an animation-frame callback. While running, Frame
// and the direct control methods belong to that goroutine; use Submit.
func (e *Engine) Start(ctx context.Context) {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	if e.running {
		return
	}

	fps := e.cfg.Loop.FrameRate
	if fps <= 0 {
		fps = 60
	}
	interval := time.Second / time.Duration(fps)

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	e.stop = cancel
	e.done = done
	e.running = true

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		origin := time.Now()
		e.Frame(e.lastTime)
		base := e.lastTime
		for {
			select {
			case <-ctx.Done():
				return
			case t := <-ticker.C:
				e.Frame(base + t.Sub(origin))
			}
		}
	}()

	log.Printf("🎮 Engine started: %d FPS frames, %v fixed step, seed %d", fps, FixedTimeStep, e.rngSeed)
}

// Stop cancels the frame source and waits for the in-flight frame.
// No Frame runs after Stop returns.
func (e *Engine) Stop() {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	if !e.running {
		return
	}
	e.stop()
	<-e.done
	e.running = false
	log.Printf("🛑 Engine stopped after %d steps (%d frames)", e.steps, e.frames)
}

// Running reports whether the frame source is active.
func (e *Engine) Running() bool {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	return e.running
}
