package engine

import (
	"time"

	"github.com/talgya/hive-economy/internal/buildings"
	"github.com/talgya/hive-economy/internal/economy"
	"github.com/talgya/hive-economy/internal/world"
)

// Ledger is the resource stockpile the core reads and writes.
type Ledger interface {
	TryConsume(need economy.Bundle) bool
	Add(b economy.Bundle)
	Covers(need economy.Bundle) bool
	Amount(r economy.Resource) float64
	Snapshot() economy.Bundle
	SetWorkers(total, assigned int)
	TotalWorkers() int
	AssignedWorkers() int
	FreeWorkers() int
}

// Research answers whether a research id has been completed.
type Research interface {
	Has(id string) bool
}

// ResourceRate is one resource's stock and its flows over the last cycle.
type ResourceRate struct {
	Resource economy.Resource `json:"resource"`
	Amount   float64          `json:"amount"`
	Produced float64          `json:"produced"` // + rate per cycle
	Consumed float64          `json:"consumed"` // - rate per cycle
}

// Net returns production minus consumption.
func (r ResourceRate) Net() float64 {
	return r.Produced - r.Consumed
}

// Report summarizes one completed cycle.
type Report struct {
	Cycle           uint64         `json:"cycle"`
	Resources       []ResourceRate `json:"resources"`
	Producers       int            `json:"producers"`
	ActiveProducers int            `json:"active_producers"`
	Upgrades        int            `json:"upgrades"`
	Workers         int            `json:"workers"`
	AssignedWorkers int            `json:"assigned_workers"`
	HousesWithNeeds int            `json:"houses_with_needs"`
	Houses          int            `json:"houses"`
}

// Rate returns the entry for res, or a zero rate.
func (r Report) Rate(res economy.Resource) ResourceRate {
	for _, rr := range r.Resources {
		if rr.Resource == res {
			return rr
		}
	}
	return ResourceRate{Resource: res}
}

// ChangeKind identifies what happened to a building.
type ChangeKind string

const (
	ChangePlaced  ChangeKind = "placed"
	ChangeRemoved ChangeKind = "removed"
	ChangeLevel   ChangeKind = "level"  // Upgraded; renderers swap the sprite
	ChangeActive  ChangeKind = "active" // Active flag flipped in the resource tick
	ChangeAccess  ChangeKind = "access" // Road access re-derived after a recompute
)

// Change describes a per-building notification.
type Change struct {
	Cycle      uint64         `json:"cycle"`
	Kind       ChangeKind     `json:"kind"`
	Pos        world.Coord    `json:"pos"`
	Building   string         `json:"building"`
	Category   buildings.Kind `json:"category"`
	Level      int            `json:"level"`
	Active     bool           `json:"active"`
	RoadAccess bool           `json:"road_access"`
}

// Observer receives the simulation's output. Observers are purely
// observational and must not call back into the simulation.
type Observer interface {
	CycleCompleted(r Report)
	BuildingChanged(c Change)
}

// FrameObserver is optionally implemented by observers that want per-frame
// scheduler timing.
type FrameObserver interface {
	FrameStepped(phase Phase, elapsed time.Duration)
}

type observers []Observer

func (o observers) cycle(r Report) {
	for _, obs := range o {
		obs.CycleCompleted(r)
	}
}

func (o observers) change(c Change) {
	for _, obs := range o {
		obs.BuildingChanged(c)
	}
}

func (o observers) frame(p Phase, d time.Duration) {
	for _, obs := range o {
		if fo, ok := obs.(FrameObserver); ok {
			fo.FrameStepped(p, d)
		}
	}
}
