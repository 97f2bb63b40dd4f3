package game

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

const (
	EventBufferSize      = 1024                   // Pending events before drops
	MaxEventsPerSec      = 10000                  // Global rate limit
	MaxEventsPerSource   = 100                    // Per-client rate limit per second
	BatchFlushSize       = 64                     // Events per batch write
	BatchFlushInterval   = 100 * time.Millisecond // How often to flush
	SourceLimiterCleanup = 5 * time.Minute        // Idle limiter eviction
)

// EventLog is a bounded, rate-limited JSONL event sink.
// Emit never blocks the simulation: when the buffer is full or a limiter
// refuses, the event is dropped and counted.
type EventLog struct {
	events chan Event

	globalLimiter  *rate.Limiter
	sourceLimiters sync.Map // map[string]*sourceLimiterEntry

	writerWg sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
	running  atomic.Bool

	out    io.Writer
	closer io.Closer

	sequence     atomic.Uint64
	droppedCount atomic.Uint64
	totalCount   atomic.Uint64
	writtenCount atomic.Uint64
}

type sourceLimiterEntry struct {
	limiter  *rate.Limiter
	lastUsed atomic.Int64 // unix nano
}

// NewEventLog creates a stopped event log.
func NewEventLog() *EventLog {
	return &EventLog{
		events:        make(chan Event, EventBufferSize),
		globalLimiter: rate.NewLimiter(MaxEventsPerSec, MaxEventsPerSec/10),
		stopChan:      make(chan struct{}),
	}
}

// Start opens filePath for append and begins the writer goroutine.
func (el *EventLog) Start(filePath string) error {
	if el.running.Load() {
		return nil
	}
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	el.StartWriter(file)
	el.closer = file
	return nil
}

// StartWriter begins writing to w. Useful for tests and stdout.
func (el *EventLog) StartWriter(w io.Writer) {
	if !el.running.CompareAndSwap(false, true) {
		return
	}
	el.out = w
	el.writerWg.Add(2)
	go el.writerLoop()
	go el.cleanupLoop()
}

// Stop flushes pending events and closes the output.
func (el *EventLog) Stop() {
	el.stopOnce.Do(func() {
		if !el.running.Load() {
			return
		}
		el.running.Store(false)
		close(el.stopChan)
		el.writerWg.Wait()
		if el.closer != nil {
			el.closer.Close()
		}
	})
}

// Emit queues event. Returns false if the log is stopped, rate limited or full.
func (el *EventLog) Emit(event Event) bool {
	if !el.running.Load() {
		return false
	}
	if !el.globalLimiter.Allow() {
		el.droppedCount.Add(1)
		return false
	}
	if event.Source != "" && !el.sourceLimiter(event.Source).Allow() {
		el.droppedCount.Add(1)
		return false
	}

	event.Sequence = el.sequence.Add(1)
	select {
	case el.events <- event:
		el.totalCount.Add(1)
		return true
	default:
		el.droppedCount.Add(1)
		return false
	}
}

// EmitSimple builds and emits an event.
func (el *EventLog) EmitSimple(eventType EventType, step uint64, simTime time.Duration, source string, payload interface{}) bool {
	if !el.running.Load() {
		return false
	}
	return el.Emit(NewEvent(eventType, step, simTime, source, payload))
}

func (el *EventLog) sourceLimiter(source string) *rate.Limiter {
	now := time.Now().UnixNano()
	if v, ok := el.sourceLimiters.Load(source); ok {
		e := v.(*sourceLimiterEntry)
		e.lastUsed.Store(now)
		return e.limiter
	}
	entry := &sourceLimiterEntry{limiter: rate.NewLimiter(MaxEventsPerSource, MaxEventsPerSource/10)}
	entry.lastUsed.Store(now)
	actual, _ := el.sourceLimiters.LoadOrStore(source, entry)
	return actual.(*sourceLimiterEntry).limiter
}

func (el *EventLog) writerLoop() {
	defer el.writerWg.Done()

	ticker := time.NewTicker(BatchFlushInterval)
	defer ticker.Stop()

	bw := bufio.NewWriter(el.out)
	enc := json.NewEncoder(bw)
	pending := 0

	flush := func() {
		if pending > 0 {
			bw.Flush()
			pending = 0
		}
	}

	for {
		select {
		case ev := <-el.events:
			if enc.Encode(ev) == nil {
				el.writtenCount.Add(1)
			}
			pending++
			if pending >= BatchFlushSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-el.stopChan:
			for {
				select {
				case ev := <-el.events:
					if enc.Encode(ev) == nil {
						el.writtenCount.Add(1)
					}
					pending++
				default:
					flush()
					return
				}
			}
		}
	}
}

func (el *EventLog) cleanupLoop() {
	defer el.writerWg.Done()

	ticker := time.NewTicker(SourceLimiterCleanup)
	defer ticker.Stop()

	for {
		select {
		case <-el.stopChan:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-SourceLimiterCleanup).UnixNano()
			el.sourceLimiters.Range(func(key, value interface{}) bool {
				if value.(*sourceLimiterEntry).lastUsed.Load() < cutoff {
					el.sourceLimiters.Delete(key)
				}
				return true
			})
		}
	}
}

// EventLogStats are counters for monitoring.
type EventLogStats struct {
	Total   uint64 `json:"total"`
	Written uint64 `json:"written"`
	Dropped uint64 `json:"dropped"`
	Pending int    `json:"pending"`
	Running bool   `json:"running"`
}

// Stats returns the log counters.
func (el *EventLog) Stats() EventLogStats {
	return EventLogStats{
		Total:   el.totalCount.Load(),
		Written: el.writtenCount.Load(),
		Dropped: el.droppedCount.Load(),
		Pending: len(el.events),
		Running: el.running.Load(),
	}
}
