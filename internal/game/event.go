package game

import (
	"encoding/json"
	"time"
)

// EventType enum for event classification
type EventType uint8

const (
	EventTypeUnknown EventType = iota
	EventTypeStep              // Step boundary with RNG seed
	EventTypeZombieSpawn
	EventTypeSpawnRejected
	EventTypeWalkerDefeated
	EventTypePause
	EventTypeUpgrade
	EventTypeAreaChange
	EventTypeLevelChange
)

// EventVersion for backwards compatibility in replay
const EventVersion uint8 = 1

// Event is one line of the event log.
type Event struct {
	Version   uint8           `json:"version"`
	Type      EventType       `json:"type"`
	Name      string          `json:"name"`
	Timestamp int64           `json:"timestamp"` // Unix nano, wall clock
	SimTime   time.Duration   `json:"simTimeNs"` // Simulation clock
	Sequence  uint64          `json:"sequence"`
	Step      uint64          `json:"step"`
	Source    string          `json:"source,omitempty"` // Client that caused it, for rate limiting
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// String returns human-readable event type
func (t EventType) String() string {
	switch t {
	case EventTypeStep:
		return "step"
	case EventTypeZombieSpawn:
		return "zombie_spawn"
	case EventTypeSpawnRejected:
		return "spawn_rejected"
	case EventTypeWalkerDefeated:
		return "walker_defeated"
	case EventTypePause:
		return "pause"
	case EventTypeUpgrade:
		return "upgrade"
	case EventTypeAreaChange:
		return "area_change"
	case EventTypeLevelChange:
		return "level_change"
	default:
		return "unknown"
	}
}

// Typed payloads

// StepPayload marks a step boundary for replay.
type StepPayload struct {
	RNGSeed int64 `json:"rngSeed"`
	Walkers int   `json:"walkers"`
	Zombies int   `json:"zombies"`
}

// SpawnPayload describes an accepted or rejected zombie spawn.
type SpawnPayload struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Count int     `json:"count"`
	Max   int     `json:"max"`
}

// PausePayload records the new pause state.
type PausePayload struct {
	Paused bool `json:"paused"`
}

// UpgradePayload records a purchase.
type UpgradePayload struct {
	Kind  string `json:"kind"`
	Level int    `json:"level"`
}

// AreaPayload records an area switch.
type AreaPayload struct {
	From      int  `json:"from"`
	To        int  `json:"to"`
	Automatic bool `json:"automatic"`
}

// LevelPayload records a performance level transition.
type LevelPayload struct {
	From string  `json:"from"`
	To   string  `json:"to"`
	FPS  float64 `json:"fps"`
}

// EncodePayload marshals a payload to JSON bytes
func EncodePayload(payload interface{}) json.RawMessage {
	if payload == nil {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return data
}

// NewEvent creates a new event stamped with the wall clock.
func NewEvent(eventType EventType, step uint64, simTime time.Duration, source string, payload interface{}) Event {
	return Event{
		Version:   EventVersion,
		Type:      eventType,
		Name:      eventType.String(),
		Timestamp: time.Now().UnixNano(),
		SimTime:   simTime,
		Step:      step,
		Source:    source,
		Payload:   EncodePayload(payload),
	}
}
