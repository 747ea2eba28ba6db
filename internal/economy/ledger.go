package economy

// epsilon absorbs float drift from scaled (partially staffed) bundles.
const epsilon = 1e-9

// Ledger holds the settlement stockpile and the worker pool counters.
// It is not safe for concurrent use; the simulation core is its single writer.
type Ledger struct {
	stock    Bundle
	workers  int
	assigned int
}

// NewLedger creates a ledger seeded with the given starting stock.
func NewLedger(start Bundle) *Ledger {
	return &Ledger{stock: start.Clone()}
}

// Amount returns the quantity of r currently held.
func (l *Ledger) Amount(r Resource) float64 {
	return l.stock[r]
}

// Covers reports whether the ledger holds at least every quantity in need.
func (l *Ledger) Covers(need Bundle) bool {
	for r, q := range need {
		if q <= 0 {
			continue
		}
		if l.stock[r]+epsilon < q {
			return false
		}
	}
	return true
}

// TryConsume removes the whole bundle if every quantity is available.
// Returns false and leaves the ledger untouched otherwise.
func (l *Ledger) TryConsume(need Bundle) bool {
	if !l.Covers(need) {
		return false
	}
	for r, q := range need {
		if q <= 0 {
			continue
		}
		l.stock[r] -= q
		if l.stock[r] < epsilon {
			l.stock[r] = 0
		}
	}
	return true
}

// Add deposits every positive quantity of b.
func (l *Ledger) Add(b Bundle) {
	for r, q := range b {
		if q <= 0 {
			continue
		}
		l.stock[r] += q
	}
}

// Snapshot returns a copy of the stockpile.
func (l *Ledger) Snapshot() Bundle {
	return l.stock.Clone()
}

// SetWorkers records the size of the worker pool and how many are assigned.
// assigned is clamped to [0, total].
func (l *Ledger) SetWorkers(total, assigned int) {
	if total < 0 {
		total = 0
	}
	if assigned > total {
		assigned = total
	}
	if assigned < 0 {
		assigned = 0
	}
	l.workers = total
	l.assigned = assigned
}

// TotalWorkers returns the size of the worker pool.
func (l *Ledger) TotalWorkers() int { return l.workers }

// AssignedWorkers returns how many workers are staffing producers.
func (l *Ledger) AssignedWorkers() int { return l.assigned }

// FreeWorkers returns the idle part of the worker pool.
func (l *Ledger) FreeWorkers() int { return l.workers - l.assigned }
