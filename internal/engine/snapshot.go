package engine

import (
	"time"

	"github.com/talgya/hive-economy/internal/buildings"
	"github.com/talgya/hive-economy/internal/roads"
	"github.com/talgya/hive-economy/internal/world"
)

// BuildingView is the read-only view of one building in a Snapshot.
type BuildingView struct {
	Pos             world.Coord    `json:"pos"`
	Building        string         `json:"building"`
	Name            string         `json:"name"`
	Kind            buildings.Kind `json:"kind"`
	Level           int            `json:"level"`
	MaxLevel        int            `json:"max_level"`
	Active          bool           `json:"active"`
	RoadAccess      bool           `json:"road_access"`
	WaterNearby     bool           `json:"water_nearby"`
	AssignedWorkers int            `json:"assigned_workers"`
	WorkersRequired int            `json:"workers_required"`
	NeedsMet        bool           `json:"needs_met,omitempty"`
	Housing         int            `json:"housing,omitempty"`
}

// Snapshot is an immutable copy of the simulation state for readers on
// other goroutines.
type Snapshot struct {
	RunID          string                 `json:"run_id"`
	Cycle          uint64                 `json:"cycle"`
	Phase          string                 `json:"phase"`
	Buildings      []BuildingView         `json:"buildings"`
	Counts         map[buildings.Kind]int `json:"counts"`
	Roads          []roads.Cell           `json:"roads"`
	ConnectedRoads int                    `json:"connected_roads"`
	Obelisk        *world.Coord           `json:"obelisk,omitempty"`
	Resources      []ResourceRate         `json:"resources"`
	Workers        int                    `json:"workers"`
	Assigned       int                    `json:"assigned_workers"`
	LastReport     Report                 `json:"last_report"`
	TakenAt        time.Time              `json:"taken_at"`
}

// Snapshot copies the current state. Resource amounts are live; flows are
// those of the last completed cycle.
func (s *Simulation) Snapshot() *Snapshot {
	all := s.registry.All()
	views := make([]BuildingView, len(all))
	for i, b := range all {
		views[i] = BuildingView{
			Pos:             b.Pos,
			Building:        b.Def.ID,
			Name:            b.Def.Name,
			Kind:            b.Def.Kind,
			Level:           b.Level,
			MaxLevel:        b.Def.MaxLevel(),
			Active:          b.Active,
			RoadAccess:      b.RoadAccess,
			WaterNearby:     b.WaterNearby,
			AssignedWorkers: b.AssignedWorkers,
			WorkersRequired: b.Def.WorkersRequired,
			NeedsMet:        b.NeedsMet,
			Housing:         b.Housing(),
		}
	}

	tl := newTally()
	for _, rr := range s.last.Resources {
		tl.produced[rr.Resource] = rr.Produced
		tl.consumed[rr.Resource] = rr.Consumed
	}

	snap := &Snapshot{
		RunID:          s.RunID,
		Cycle:          s.sched.Cycle(),
		Phase:          s.sched.Phase().String(),
		Buildings:      views,
		Counts:         s.registry.CountByKind(),
		Roads:          s.graph.Cells(),
		ConnectedRoads: s.graph.ConnectedCount(),
		Resources:      tl.rates(s.ledger),
		Workers:        s.ledger.TotalWorkers(),
		Assigned:       s.ledger.AssignedWorkers(),
		LastReport:     s.last,
		TakenAt:        time.Now(),
	}
	if root, ok := s.graph.Root(); ok {
		snap.Obelisk = &root
	}
	return snap
}

// Building returns the view at pos.
func (snap *Snapshot) Building(pos world.Coord) (BuildingView, bool) {
	for _, v := range snap.Buildings {
		if v.Pos == pos {
			return v, true
		}
	}
	return BuildingView{}, false
}
