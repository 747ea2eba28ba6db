// Resource tick: resolves every producer against the ledger and aggregates
// per-resource rates for observers.
package engine

import (
	"github.com/talgya/hive-economy/internal/buildings"
	"github.com/talgya/hive-economy/internal/economy"
)

// IdleReason explains why a producer did not run.
type IdleReason uint8

const (
	Running      IdleReason = iota
	Unstaffed               // WorkersRequired > 0 but none assigned
	NoRoad                  // RequiresRoad without a connected road neighbor
	NoWater                 // NeedsWater without water nearby
	Unaffordable            // Ledger cannot cover the consumption bundle
)

func (r IdleReason) String() string {
	switch r {
	case Running:
		return "running"
	case Unstaffed:
		return "unstaffed"
	case NoRoad:
		return "no_road"
	case NoWater:
		return "no_water"
	case Unaffordable:
		return "unaffordable"
	}
	return "unknown"
}

// Delta is what one producer did in one resource tick.
type Delta struct {
	Consumed economy.Bundle
	Produced economy.Bundle
	Reason   IdleReason
}

// Active reports whether the producer ran.
func (d Delta) Active() bool {
	return d.Reason == Running
}

// gate checks the static preconditions of a producer, ignoring the ledger.
func gate(b *buildings.Instance) IdleReason {
	if b.Def.WorkersRequired > 0 && b.AssignedWorkers <= 0 {
		return Unstaffed
	}
	if b.Def.RequiresRoad && !b.RoadAccess {
		return NoRoad
	}
	if b.Def.NeedsWater && !b.WaterNearby {
		return NoWater
	}
	return Running
}

// Resolve runs one producer against the ledger. Consumption is
// all-or-nothing: if the ledger cannot cover the whole (staffing-scaled)
// bundle nothing is consumed or produced. Sets b.Active and, for houses,
// b.Supplied.
func Resolve(b *buildings.Instance, ledger Ledger) Delta {
	d := Delta{Reason: gate(b)}
	if d.Reason == Running {
		cons, prod := b.Effective()
		staffing := b.Staffing()
		d.Consumed = cons.Scale(staffing)
		d.Produced = prod.Scale(staffing)

		if ledger.TryConsume(d.Consumed) {
			ledger.Add(d.Produced)
		} else {
			d.Reason = Unaffordable
			d.Consumed, d.Produced = nil, nil
		}
	}

	b.Active = d.Active()
	if b.Def.IsHouse() {
		b.Supplied = d.Reason != Unaffordable
	}
	return d
}

// assignWorkers rebuilds the worker pool from houses whose needs are met and
// hands workers to producers in registry order. Producers failing their
// road or water gate are skipped.
func assignWorkers(houses, producers []*buildings.Instance, ledger Ledger) (total, assigned int) {
	for _, h := range houses {
		if h.NeedsMet {
			total += h.Housing()
		}
	}

	free := total
	for _, b := range producers {
		b.AssignedWorkers = 0
		req := b.Def.WorkersRequired
		if req == 0 || free == 0 {
			continue
		}
		if (b.Def.RequiresRoad && !b.RoadAccess) || (b.Def.NeedsWater && !b.WaterNearby) {
			continue
		}
		n := min(req, free)
		b.AssignedWorkers = n
		free -= n
	}

	assigned = total - free
	ledger.SetWorkers(total, assigned)
	return total, assigned
}

// tally accumulates per-resource flows across one resource tick.
type tally struct {
	produced economy.Bundle
	consumed economy.Bundle
}

func newTally() *tally {
	return &tally{produced: economy.Bundle{}, consumed: economy.Bundle{}}
}

func (t *tally) record(d Delta) {
	t.produced.Add(d.Produced)
	t.consumed.Add(d.Consumed)
}

// rates lists every known resource plus any other held or moved, in stable
// order.
func (t *tally) rates(ledger Ledger) []ResourceRate {
	stock := ledger.Snapshot()
	seen := make(map[economy.Resource]bool)
	var order []economy.Resource
	for _, r := range economy.AllResources() {
		seen[r] = true
		order = append(order, r)
	}
	extra := economy.Bundle{}
	for _, b := range []economy.Bundle{stock, t.produced, t.consumed} {
		for r := range b {
			if !seen[r] {
				extra[r] = 0
			}
		}
	}
	order = append(order, extra.Resources()...)

	out := make([]ResourceRate, 0, len(order))
	for _, r := range order {
		out = append(out, ResourceRate{
			Resource: r,
			Amount:   stock[r],
			Produced: t.produced[r],
			Consumed: t.consumed[r],
		})
	}
	return out
}
