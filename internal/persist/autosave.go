package persist

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"soul-harvest/internal/game"
)

// SnapshotSource is anything publishing game snapshots. *game.Engine
// satisfies it.
type SnapshotSource interface {
	Snapshot() *game.GameSnapshot
}

// Autosaver periodically saves the economy whenever its version changes,
// and once more on shutdown. It only reads published snapshots, so it never
// touches simulation state directly.
type Autosaver struct {
	store    *Store
	source   SnapshotSource
	interval time.Duration

	lastVersion uint64
	hasSaved    bool

	saves    atomic.Uint64
	failures atomic.Uint64

	mu   sync.Mutex
	stop context.CancelFunc
	done chan struct{}
}

// NewAutosaver creates a stopped autosaver.
func NewAutosaver(store *Store, source SnapshotSource, interval time.Duration) *Autosaver {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Autosaver{store: store, source: source, interval: interval}
}

// Start runs the save loop until ctx is cancelled or Stop is called.
func (a *Autosaver) Start(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.done != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	a.stop = cancel
	a.done = make(chan struct{})

	go func(done chan struct{}) {
		defer close(done)
		ticker := time.NewTicker(a.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				a.SaveIfChanged()
				return
			case <-ticker.C:
				a.SaveIfChanged()
			}
		}
	}(a.done)

	mode := "gdata"
	if !a.store.Persistent() {
		mode = "memory"
	}
	log.Printf("💾 Autosave every %v (%s)", a.interval, mode)
}

// Stop performs the final save and waits for the loop to exit.
func (a *Autosaver) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.done == nil {
		return
	}
	a.stop()
	<-a.done
	a.done = nil
	log.Printf("💾 Autosave stopped after %d saves (%d failed)", a.saves.Load(), a.failures.Load())
}

// SaveIfChanged saves when the latest snapshot's economy version differs
// from the last saved one. Returns true when a save was written.
func (a *Autosaver) SaveIfChanged() bool {
	snap := a.source.Snapshot()
	if snap == nil {
		return false
	}
	v := snap.Economy.Version
	if a.hasSaved && v == a.lastVersion {
		return false
	}
	if err := a.store.Save(snap.Economy); err != nil {
		n := a.failures.Add(1)
		if n%10 == 1 {
			log.Printf("⚠️ Autosave failed (%d total): %v", n, err)
		}
		return false
	}
	a.lastVersion = v
	a.hasSaved = true
	a.saves.Add(1)
	return true
}

// Saves returns the number of successful saves.
func (a *Autosaver) Saves() uint64 {
	return a.saves.Load()
}
