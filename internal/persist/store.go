// Package persist saves and restores economy progress.
//
// Storage goes through gdata so the same code works on desktop and mobile
// targets. When no gdata manager is available the store runs in degraded
// mode and keeps the last save in memory only.
package persist

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"

	"soul-harvest/internal/config"
	"soul-harvest/internal/game"
)

const (
	saveObject   = "progress"
	saveProperty = "economy"

	// SaveFormatVersion is bumped when SaveData changes incompatibly.
	SaveFormatVersion = 1
)

// SaveData is the persisted progress record.
type SaveData struct {
	FormatVersion int       `yaml:"formatVersion"`
	SavedAt       time.Time `yaml:"savedAt"`

	game.EconomyState `yaml:",inline"`
}

// Store reads and writes SaveData.
type Store struct {
	manager *gdata.Manager // nil = memory-only

	mu     sync.Mutex
	memory []byte
}

// Open creates the gdata manager for cfg.AppName. Failures are not fatal:
// the returned store falls back to memory-only mode.
func Open(cfg config.PersistenceConfig) *Store {
	if !cfg.Enabled {
		log.Printf("💾 Persistence disabled, progress is kept in memory only")
		return NewStore(nil)
	}
	m, err := gdata.Open(gdata.Config{AppName: cfg.AppName})
	if err != nil {
		log.Printf("⚠️ Save storage unavailable: %v (memory-only mode)", err)
		return NewStore(nil)
	}
	return NewStore(m)
}

// NewStore wraps manager, which may be nil.
func NewStore(manager *gdata.Manager) *Store {
	return &Store{manager: manager}
}

// Persistent reports whether saves survive a restart.
func (s *Store) Persistent() bool {
	return s.manager != nil
}

// Save encodes state as YAML and writes it.
func (s *Store) Save(state game.EconomyState) error {
	data, err := yaml.Marshal(SaveData{
		FormatVersion: SaveFormatVersion,
		SavedAt:       time.Now().UTC(),
		EconomyState:  state,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal save: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.manager == nil {
		s.memory = data
		return nil
	}
	if err := s.manager.SaveObjectProp(saveObject, saveProperty, data); err != nil {
		return fmt.Errorf("failed to write save: %w", err)
	}
	return nil
}

// Load returns the last save. ok is false when nothing was saved yet.
func (s *Store) Load() (save SaveData, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var data []byte
	if s.manager == nil {
		if s.memory == nil {
			return SaveData{}, false, nil
		}
		data = s.memory
	} else {
		if !s.manager.ObjectPropExists(saveObject, saveProperty) {
			return SaveData{}, false, nil
		}
		data, err = s.manager.LoadObjectProp(saveObject, saveProperty)
		if err != nil {
			return SaveData{}, false, fmt.Errorf("failed to read save: %w", err)
		}
	}

	if err := yaml.Unmarshal(data, &save); err != nil {
		return SaveData{}, false, fmt.Errorf("failed to unmarshal save: %w", err)
	}
	if save.FormatVersion > SaveFormatVersion {
		return SaveData{}, false, fmt.Errorf("save format %d is newer than supported %d", save.FormatVersion, SaveFormatVersion)
	}
	return save, true, nil
}

// Restorer accepts a saved economy state. *economy.Economy satisfies it.
type Restorer interface {
	Restore(game.EconomyState) error
}

// RestoreInto loads the last save into r. Returns false when there was none.
func (s *Store) RestoreInto(r Restorer) (bool, error) {
	save, ok, err := s.Load()
	if err != nil || !ok {
		return false, err
	}
	if err := r.Restore(save.EconomyState); err != nil {
		return false, fmt.Errorf("restore save: %w", err)
	}
	log.Printf("💾 Progress restored: %.0f souls, %d defeated, area %d (saved %s)",
		save.Souls, save.WalkersDefeated, save.CurrentArea, save.SavedAt.Format(time.RFC3339))
	return true, nil
}
