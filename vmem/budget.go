package vmem

import "fmt"

// BudgetArena is a BumpArena with an explicit commit ceiling lower
// than the full reservation, plus a diagnostic name — used where a
// subsystem wants to cap its own RAM footprint independently of how
// much address space it reserved, per spec.md §4.B.
type BudgetArena struct {
	*BumpArena
	name        string
	commitLimit uintptr
}

// NewBudgetArena reserves reserveSize bytes but refuses to commit past
// commitLimit bytes, surfacing exhaustion as an error from Alloc rather
// than growing silently.
func NewBudgetArena(name string, reserveSize, commitLimit, pageSize uintptr) (*BudgetArena, error) {
	if commitLimit > reserveSize {
		commitLimit = reserveSize
	}
	base, err := NewBumpArena(reserveSize, pageSize)
	if err != nil {
		return nil, fmt.Errorf("vmem.NewBudgetArena(%s): %w", name, err)
	}
	return &BudgetArena{BumpArena: base, name: name, commitLimit: commitLimit}, nil
}

// Name returns the arena's diagnostic name.
func (b *BudgetArena) Name() string { return b.name }

// Alloc enforces the commit budget before delegating to BumpArena.
func (b *BudgetArena) Alloc(size, align uintptr) ([]byte, error) {
	b.mu.Lock()
	aligned := alignUp(b.offset, align)
	end := aligned + size
	if end > b.commitLimit {
		b.mu.Unlock()
		return nil, fmt.Errorf("vmem.BudgetArena(%s): commit budget exceeded (want %d, budget %d)", b.name, end, b.commitLimit)
	}
	b.mu.Unlock()
	return b.BumpArena.Alloc(size, align)
}

// CommitLimit returns the configured commit ceiling.
func (b *BudgetArena) CommitLimit() uintptr { return b.commitLimit }
