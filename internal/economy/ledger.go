package economy

// Ledger holds souls and the defeat counter.
type Ledger struct {
	souls    float64
	defeated int
	version  *uint64
}

// NewLedger creates an empty ledger that bumps version on change.
func NewLedger(version *uint64) *Ledger {
	if version == nil {
		version = new(uint64)
	}
	return &Ledger{version: version}
}

// AwardSouls adds base*multiplier souls.
func (l *Ledger) AwardSouls(base, multiplier float64) {
	amount := base * multiplier
	if amount <= 0 {
		return
	}
	l.souls += amount
	*l.version++
}

func (l *Ledger) IncrementWalkersDefeated() {
	l.defeated++
	*l.version++
}

func (l *Ledger) Souls() float64 {
	return l.souls
}

func (l *Ledger) WalkersDefeated() int {
	return l.defeated
}

// SpendSouls deducts amount if affordable.
func (l *Ledger) SpendSouls(amount float64) bool {
	if amount < 0 || amount > l.souls {
		return false
	}
	l.souls -= amount
	*l.version++
	return true
}

func (l *Ledger) restore(souls float64, defeated int) {
	l.souls = souls
	l.defeated = defeated
}
