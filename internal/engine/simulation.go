// Simulation ties together the registry, road graph, ledger and scheduler.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/talgya/hive-economy/internal/buildings"
	"github.com/talgya/hive-economy/internal/roads"
	"github.com/talgya/hive-economy/internal/world"
)

// Placement errors.
var (
	ErrOutOfBounds           = errors.New("position out of bounds")
	ErrWaterCell             = errors.New("cannot build on water")
	ErrObeliskExists         = errors.New("an obelisk already exists")
	ErrInsufficientResources = errors.New("insufficient resources")

	// Re-exported so callers only need this package.
	ErrOccupied    = buildings.ErrOccupied
	ErrNotFound    = buildings.ErrNotFound
	ErrUnknownType = buildings.ErrUnknownType
)

// Options configures a Simulation.
type Options struct {
	Scheduler   SchedulerConfig
	NoiseRadius int  // Chebyshev radius in which a noisy building disturbs houses
	WaterRadius int  // Chebyshev radius searched for water at placement
	Debug       bool // Run CheckConsistency after every cycle
}

// DefaultOptions returns the stock simulation options.
func DefaultOptions() Options {
	return Options{
		Scheduler:   DefaultSchedulerConfig(),
		NoiseRadius: 2,
		WaterRadius: 2,
	}
}

// Simulation holds the complete settlement state and wires systems together.
// It is not safe for concurrent use; the Engine goroutine is its only caller.
type Simulation struct {
	RunID string // Identifies this session in the history store

	opts     Options
	catalog  *buildings.Catalog
	worldMap *world.Map
	registry *buildings.Registry
	graph    *roads.Graph
	ledger   Ledger
	research Research
	sched    *Scheduler

	observers observers
	last      Report
}

// NewSimulation creates a Simulation over an empty registry and road graph.
func NewSimulation(opts Options, cat *buildings.Catalog, m *world.Map, ledger Ledger, research Research) *Simulation {
	s := &Simulation{
		opts:     opts,
		catalog:  cat,
		worldMap: m,
		registry: buildings.NewRegistry(),
		graph:    roads.NewGraph(),
		ledger:   ledger,
		research: research,
	}
	s.sched = newScheduler(opts.Scheduler, s)
	s.graph.OnChange(s.refreshAccess)
	return s
}

// AddObserver registers o for cycle reports and building changes.
func (s *Simulation) AddObserver(o Observer) {
	s.observers = append(s.observers, o)
}

func (s *Simulation) Catalog() *buildings.Catalog   { return s.catalog }
func (s *Simulation) Map() *world.Map               { return s.worldMap }
func (s *Simulation) Registry() *buildings.Registry { return s.registry }
func (s *Simulation) Graph() *roads.Graph           { return s.graph }
func (s *Simulation) Ledger() Ledger                { return s.ledger }
func (s *Simulation) Scheduler() *Scheduler         { return s.sched }
func (s *Simulation) LastReport() Report            { return s.last }

// Step advances the scheduler by one frame of dt and publishes a completed
// cycle to observers.
func (s *Simulation) Step(dt time.Duration) *Report {
	start := time.Now()
	phase := s.sched.Phase()
	report := s.sched.Step(dt)
	s.observers.frame(phase, time.Since(start))

	if report == nil {
		return nil
	}
	s.last = *report
	if s.opts.Debug {
		s.CheckConsistency()
	}
	slog.Debug("cycle completed",
		"cycle", report.Cycle,
		"active", report.ActiveProducers,
		"producers", report.Producers,
		"upgrades", report.Upgrades,
		"workers", report.Workers,
	)
	s.observers.cycle(*report)
	return report
}

// Place builds typeID at pos, paying its cost. Nothing changes on error.
func (s *Simulation) Place(pos world.Coord, typeID string) (*buildings.Instance, error) {
	def, err := s.catalog.Get(typeID)
	if err != nil {
		return nil, fmt.Errorf("place: %w", err)
	}
	if !s.worldMap.InBounds(pos) {
		return nil, fmt.Errorf("place %s at %s: %w", typeID, pos, ErrOutOfBounds)
	}
	if s.worldMap.IsWater(pos) {
		return nil, fmt.Errorf("place %s at %s: %w", typeID, pos, ErrWaterCell)
	}
	if s.registry.At(pos) != nil {
		return nil, fmt.Errorf("place %s at %s: %w", typeID, pos, ErrOccupied)
	}
	if def.Kind == buildings.KindObelisk {
		if _, ok := s.graph.Root(); ok {
			return nil, fmt.Errorf("place %s at %s: %w", typeID, pos, ErrObeliskExists)
		}
	}
	if !s.ledger.TryConsume(def.Cost) {
		return nil, fmt.Errorf("place %s at %s (cost %s): %w", typeID, pos, def.Cost, ErrInsufficientResources)
	}

	b := buildings.NewInstance(def, pos)
	b.PlacedCycle = s.sched.Cycle()
	b.WaterNearby = s.worldMap.WaterWithin(pos, s.opts.WaterRadius)
	if err := s.registry.Add(b); err != nil {
		s.ledger.Add(def.Cost)
		return nil, fmt.Errorf("place: %w", err)
	}

	switch def.Kind {
	case buildings.KindRoad:
		err = s.graph.RegisterRoad(pos)
	case buildings.KindObelisk:
		err = s.graph.RegisterObelisk(pos)
	default:
		b.RoadAccess = s.graph.HasAccess(pos)
	}
	if err != nil {
		s.registry.Remove(pos)
		s.ledger.Add(def.Cost)
		return nil, fmt.Errorf("place %s at %s: %w", typeID, pos, err)
	}

	s.emit(ChangePlaced, b)
	return b, nil
}

// Remove destroys the building at pos. Costs are not refunded.
func (s *Simulation) Remove(pos world.Coord) (*buildings.Instance, error) {
	b, err := s.registry.Remove(pos)
	if err != nil {
		return nil, fmt.Errorf("remove: %w", err)
	}
	switch b.Def.Kind {
	case buildings.KindRoad:
		s.graph.UnregisterRoad(pos)
	case buildings.KindObelisk:
		s.graph.UnregisterObelisk()
	}
	s.emit(ChangeRemoved, b)
	return b, nil
}

// refreshAccess is the road graph's change listener. A road-bound building
// that loses access goes inactive at once; regained access waits for the
// next resolve.
func (s *Simulation) refreshAccess(affected []world.Coord) {
	for _, b := range s.registry.RefreshAccess(affected, s.graph.HasAccess) {
		s.emit(ChangeAccess, b)
		if b.Def.RequiresRoad && !b.RoadAccess && b.Active {
			b.Active = false
			s.emit(ChangeActive, b)
		}
	}
}

// resolveProducers runs the resource tick over the phase snapshot.
func (s *Simulation) resolveProducers(cycle uint64, producers []*buildings.Instance, upgrades int) Report {
	houses := s.registry.Houses()
	live := producers[:0:0]
	for _, b := range producers {
		if !b.Removed() {
			live = append(live, b)
		}
	}
	total, assigned := assignWorkers(houses, live, s.ledger)

	t := newTally()
	report := Report{
		Cycle:           cycle,
		Upgrades:        upgrades,
		Workers:         total,
		AssignedWorkers: assigned,
		Houses:          len(houses),
	}
	for _, h := range houses {
		if h.NeedsMet {
			report.HousesWithNeeds++
		}
	}

	for _, b := range live {
		was := b.Active
		d := Resolve(b, s.ledger)
		t.record(d)
		if !b.Def.IsHouse() {
			report.Producers++
			if d.Active() {
				report.ActiveProducers++
			}
		}
		if was != b.Active {
			s.emit(ChangeActive, b)
		}
	}
	report.Resources = t.rates(s.ledger)
	return report
}

func (s *Simulation) emit(kind ChangeKind, b *buildings.Instance) {
	if len(s.observers) == 0 {
		return
	}
	s.observers.change(Change{
		Cycle:      s.sched.Cycle(),
		Kind:       kind,
		Pos:        b.Pos,
		Building:   b.Def.ID,
		Category:   b.Def.Kind,
		Level:      b.Level,
		Active:     b.Active,
		RoadAccess: b.RoadAccess,
	})
}
