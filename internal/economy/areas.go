package economy

import (
	"fmt"
	"sort"

	"soul-harvest/internal/config"
)

// Areas is the ordered area table plus the current selection.
type Areas struct {
	table   []config.AreaConfig // sorted by UnlockAt, then ID
	current int                 // index into table
	highest int                 // highest unlocked index seen so far
	version *uint64
}

// NewAreas validates and sorts the table. The first area is always unlocked.
func NewAreas(table []config.AreaConfig, version *uint64) (*Areas, error) {
	if len(table) == 0 {
		return nil, fmt.Errorf("%w: empty area table", ErrUnknownArea)
	}
	if version == nil {
		version = new(uint64)
	}
	sorted := make([]config.AreaConfig, len(table))
	copy(sorted, table)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].UnlockAt != sorted[j].UnlockAt {
			return sorted[i].UnlockAt < sorted[j].UnlockAt
		}
		return sorted[i].ID < sorted[j].ID
	})
	return &Areas{table: sorted, version: version}, nil
}

// CurrentArea returns the selected area.
func (a *Areas) CurrentArea() config.AreaConfig {
	return a.table[a.current]
}

// All returns the table in unlock order.
func (a *Areas) All() []config.AreaConfig {
	out := make([]config.AreaConfig, len(a.table))
	copy(out, a.table)
	return out
}

// Unlocked reports whether area id is available at the given defeat count.
func (a *Areas) Unlocked(id, defeated int) bool {
	i, ok := a.index(id)
	return ok && a.table[i].UnlockAt <= defeated
}

// Select switches to area id if it exists and is unlocked.
func (a *Areas) Select(id, defeated int) error {
	i, ok := a.index(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownArea, id)
	}
	if a.table[i].UnlockAt > defeated {
		return fmt.Errorf("%w: %s needs %d defeats, have %d", ErrAreaLocked, a.table[i].Name, a.table[i].UnlockAt, defeated)
	}
	if i != a.current {
		a.current = i
		*a.version++
	}
	return nil
}

// CheckProgress moves to the newest area when defeated crosses its unlock
// threshold. Areas unlocked earlier never pull the player back.
func (a *Areas) CheckProgress(defeated int) bool {
	best := a.highest
	for i := a.highest + 1; i < len(a.table); i++ {
		if a.table[i].UnlockAt <= defeated {
			best = i
		}
	}
	if best == a.highest {
		return false
	}
	a.highest = best
	a.current = best
	*a.version++
	return true
}

func (a *Areas) index(id int) (int, bool) {
	for i, area := range a.table {
		if area.ID == id {
			return i, true
		}
	}
	return 0, false
}

func (a *Areas) restore(id, defeated int) {
	a.highest = 0
	for i, area := range a.table {
		if area.UnlockAt <= defeated {
			a.highest = i
		}
	}
	a.current = 0
	if i, ok := a.index(id); ok && a.table[i].UnlockAt <= defeated {
		a.current = i
	}
}
