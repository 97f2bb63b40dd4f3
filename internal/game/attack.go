package game

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidAttackConfig is returned for negative damage, range or cooldown.
var ErrInvalidAttackConfig = errors.New("invalid attack config")

// AttackConfig is the per-class attack profile.
type AttackConfig struct {
	Damage   float64
	Range    float64
	Cooldown time.Duration
}

// NewAttackConfig validates and returns an attack profile.
func NewAttackConfig(damage, rng float64, cooldown time.Duration) (AttackConfig, error) {
	cfg := AttackConfig{Damage: damage, Range: rng, Cooldown: cooldown}
	if err := cfg.Validate(); err != nil {
		return AttackConfig{}, err
	}
	return cfg, nil
}

// Validate rejects negative fields.
func (c AttackConfig) Validate() error {
	if c.Damage < 0 || c.Range < 0 || c.Cooldown < 0 {
		return fmt.Errorf("%w: damage=%v range=%v cooldown=%v", ErrInvalidAttackConfig, c.Damage, c.Range, c.Cooldown)
	}
	return nil
}

// AttackSystem resolves range- and cooldown-gated attacks between any
// Attacker and Damageable, independent of their concrete types.
type AttackSystem struct {
	attempts uint64
	hits     uint64
	defeats  uint64
}

// NewAttackSystem creates an attack system.
func NewAttackSystem() *AttackSystem {
	return &AttackSystem{}
}

// CanAttack reports whether attacker may hit target at simulation time now.
func (s *AttackSystem) CanAttack(attacker Attacker, target HasBody, cfg AttackConfig, now time.Duration) bool {
	a, t := attacker.Body(), target.Body()
	if !a.Active || !t.Active {
		return false
	}
	if last, ok := attacker.LastAttack(); ok && now-last < cfg.Cooldown {
		return false
	}
	reach := cfg.Range + (a.Size+t.Size)/2
	return a.Position.Distance(t.Position) <= reach
}

// PerformAttack applies cfg.Damage when CanAttack allows it.
// The cooldown is stamped before damage lands so defeat handling sees the
// attacker as already on cooldown. Returns whether the attack happened and
// whether it defeated the target.
func (s *AttackSystem) PerformAttack(attacker Attacker, target Damageable, cfg AttackConfig, now time.Duration) (hit, defeated bool) {
	s.attempts++
	if !s.CanAttack(attacker, target, cfg, now) {
		return false, false
	}
	attacker.MarkAttack(now)
	s.hits++
	defeated = target.TakeDamage(cfg.Damage)
	if defeated {
		s.defeats++
	}
	return true, defeated
}

// AttackStats are cumulative counters.
type AttackStats struct {
	Attempts uint64 `json:"attempts"`
	Hits     uint64 `json:"hits"`
	Defeats  uint64 `json:"defeats"`
}

// Stats returns the cumulative counters.
func (s *AttackSystem) Stats() AttackStats {
	return AttackStats{Attempts: s.attempts, Hits: s.hits, Defeats: s.defeats}
}
