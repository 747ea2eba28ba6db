package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hive-economy/internal/buildings"
	"github.com/talgya/hive-economy/internal/economy"
	"github.com/talgya/hive-economy/internal/research"
	"github.com/talgya/hive-economy/internal/world"
)

func testCatalog() *buildings.Catalog {
	return buildings.NewCatalog(
		buildings.Definition{ID: buildings.TypeRoad, Kind: buildings.KindRoad},
		buildings.Definition{ID: buildings.TypeObelisk, Kind: buildings.KindObelisk},
		buildings.Definition{
			ID: "beekeeper", Kind: buildings.KindProducer, WorkersRequired: 3, RequiresRoad: true,
			Consumption: economy.Bundle{economy.Tools: 1},
			Production:  economy.Bundle{economy.Wax: 10, economy.Honey: 30},
			Levels: []buildings.LevelDelta{
				{ProductionBonus: economy.Bundle{economy.Honey: 10}, UpgradeCost: economy.Bundle{economy.Wood: 5}, Research: "apiculture"},
				{ProductionBonus: economy.Bundle{economy.Honey: 20}, UpgradeCost: economy.Bundle{economy.Wood: 10}},
			},
		},
		buildings.Definition{
			ID: "hut", Kind: buildings.KindHouse, RequiresRoad: true, Housing: 4,
			Cost:        economy.Bundle{economy.Wood: 1},
			Consumption: economy.Bundle{economy.Honey: 1},
		},
		buildings.Definition{
			ID: "well", Kind: buildings.KindProducer,
			Production: economy.Bundle{economy.Water: 1},
			Levels:     []buildings.LevelDelta{{ProductionBonus: economy.Bundle{economy.Water: 1}, UpgradeCost: economy.Bundle{economy.Stone: 1}}},
		},
		buildings.Definition{
			ID: "sawmill", Kind: buildings.KindProducer, Noisy: true,
			Production: economy.Bundle{economy.Wood: 1},
		},
	)
}

type recorder struct {
	reports []Report
	changes []Change
	frames  map[Phase]int
}

func (r *recorder) CycleCompleted(rep Report) { r.reports = append(r.reports, rep) }
func (r *recorder) BuildingChanged(c Change)  { r.changes = append(r.changes, c) }
func (r *recorder) FrameStepped(p Phase, _ time.Duration) {
	if r.frames == nil {
		r.frames = make(map[Phase]int)
	}
	r.frames[p]++
}

func (r *recorder) changesAt(pos world.Coord, kind ChangeKind) []Change {
	var out []Change
	for _, c := range r.changes {
		if c.Pos == pos && c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

type fixture struct {
	sim      *Simulation
	ledger   *economy.Ledger
	research *research.Tracker
	rec      *recorder
}

func newFixture(t *testing.T, opts Options, start economy.Bundle) *fixture {
	t.Helper()
	ledger := economy.NewLedger(start)
	tracker := research.NewTracker()
	sim := NewSimulation(opts, testCatalog(), world.NewMap(16, 16), ledger, tracker)
	rec := &recorder{}
	sim.AddObserver(rec)
	return &fixture{sim: sim, ledger: ledger, research: tracker, rec: rec}
}

func (f *fixture) place(t *testing.T, typeID string, x, y int) *buildings.Instance {
	t.Helper()
	b, err := f.sim.Place(world.C(x, y), typeID)
	require.NoError(t, err, "place %s at (%d,%d)", typeID, x, y)
	return b
}

// runCycle steps frames until one cycle completes.
func (f *fixture) runCycle(t *testing.T) Report {
	t.Helper()
	dt := f.sim.opts.Scheduler.CheckInterval
	for i := 0; i < 100000; i++ {
		if r := f.sim.Step(dt); r != nil {
			return *r
		}
	}
	t.Fatal("cycle did not complete")
	return Report{}
}

func TestResolve_ToolsWaxHoney(t *testing.T) {
	def, err := testCatalog().Get("beekeeper")
	require.NoError(t, err)

	b := buildings.NewInstance(def, world.C(1, 1))
	b.AssignedWorkers = 3
	b.RoadAccess = true

	ledger := economy.NewLedger(economy.Bundle{economy.Tools: 5})
	d := Resolve(b, ledger)
	assert.True(t, d.Active())
	assert.True(t, b.Active)
	assert.Equal(t, 4.0, ledger.Amount(economy.Tools))
	assert.Equal(t, 10.0, ledger.Amount(economy.Wax))
	assert.Equal(t, 30.0, ledger.Amount(economy.Honey))

	empty := economy.NewLedger(economy.Bundle{economy.Tools: 0})
	d = Resolve(b, empty)
	assert.False(t, d.Active())
	assert.Equal(t, Unaffordable, d.Reason)
	assert.False(t, b.Active)
	assert.Zero(t, empty.Amount(economy.Tools))
	assert.Zero(t, empty.Amount(economy.Wax))
	assert.Zero(t, empty.Amount(economy.Honey))
	assert.True(t, d.Consumed.IsZero())
	assert.True(t, d.Produced.IsZero())
}

func TestResolve_MissingInputLeavesEveryResourceUntouched(t *testing.T) {
	def := &buildings.Definition{
		ID: "chandler", Kind: buildings.KindProducer,
		Consumption: economy.Bundle{economy.Wax: 2, economy.Wood: 1},
		Production:  economy.Bundle{economy.Candles: 3},
	}
	b := buildings.NewInstance(def, world.C(0, 0))
	ledger := economy.NewLedger(economy.Bundle{economy.Wax: 10, economy.Wood: 0.5, economy.Candles: 1})
	before := ledger.Snapshot()

	d := Resolve(b, ledger)
	assert.Equal(t, Unaffordable, d.Reason)
	assert.Equal(t, before, ledger.Snapshot())
}

func TestResolve_GatesAndLinearStaffing(t *testing.T) {
	def, err := testCatalog().Get("beekeeper")
	require.NoError(t, err)
	b := buildings.NewInstance(def, world.C(1, 1))
	b.RoadAccess = true

	ledger := economy.NewLedger(economy.Bundle{economy.Tools: 5})
	assert.Equal(t, Unstaffed, Resolve(b, ledger).Reason)
	assert.Equal(t, 5.0, ledger.Amount(economy.Tools))

	b.AssignedWorkers = 1
	d := Resolve(b, ledger)
	require.True(t, d.Active())
	assert.InDelta(t, 5-1.0/3.0, ledger.Amount(economy.Tools), 1e-9)
	assert.InDelta(t, 10.0/3.0, ledger.Amount(economy.Wax), 1e-9)
	assert.InDelta(t, 10.0, ledger.Amount(economy.Honey), 1e-9)

	b.RoadAccess = false
	before := ledger.Snapshot()
	assert.Equal(t, NoRoad, Resolve(b, ledger).Reason)
	assert.False(t, b.Active)
	assert.Equal(t, before, ledger.Snapshot())
}

func TestSimulation_RoadAccessScenario(t *testing.T) {
	f := newFixture(t, DefaultOptions(), nil)
	f.place(t, buildings.TypeObelisk, 5, 5)
	f.place(t, buildings.TypeRoad, 5, 6)
	f.place(t, buildings.TypeRoad, 5, 7)

	bee := f.place(t, "beekeeper", 6, 7)
	assert.True(t, bee.RoadAccess, "adjacent to connected (5,7)")
	assert.False(t, f.sim.Graph().IsRoad(world.C(5, 8)))

	_, err := f.sim.Remove(world.C(5, 6))
	require.NoError(t, err)
	assert.False(t, f.sim.Graph().IsConnected(world.C(5, 7)))
	assert.False(t, bee.RoadAccess)

	access := f.rec.changesAt(world.C(6, 7), ChangeAccess)
	require.Len(t, access, 1)
	assert.False(t, access[0].RoadAccess)
}

func TestSimulation_ActiveImpliesConnectedRoadNeighbor(t *testing.T) {
	f := newFixture(t, DefaultOptions(), economy.Bundle{economy.Tools: 100, economy.Honey: 100, economy.Wood: 10})
	f.place(t, buildings.TypeObelisk, 5, 5)
	f.place(t, buildings.TypeRoad, 5, 6)
	f.place(t, buildings.TypeRoad, 5, 7)
	f.place(t, buildings.TypeRoad, 9, 9) // Disconnected stub
	f.place(t, "hut", 4, 6)
	f.place(t, "hut", 4, 7)
	f.place(t, "beekeeper", 6, 7)
	f.place(t, "beekeeper", 9, 10)

	check := func() {
		for _, b := range f.sim.Registry().All() {
			if !b.Def.RequiresRoad || !b.Active {
				continue
			}
			assert.True(t, f.sim.Graph().HasAccess(b.Pos), "active %s at %s without a connected road", b.Def.ID, b.Pos)
		}
	}

	for i := 0; i < 3; i++ {
		f.runCycle(t)
		check()
	}
	assert.True(t, f.sim.Registry().At(world.C(6, 7)).Active)
	assert.False(t, f.sim.Registry().At(world.C(9, 10)).Active)

	// Cutting the road must deactivate the beekeeper before any cycle runs.
	_, err := f.sim.Remove(world.C(5, 6))
	require.NoError(t, err)
	check()
	bee := f.sim.Registry().At(world.C(6, 7))
	assert.False(t, bee.RoadAccess)
	assert.False(t, bee.Active)
	active := f.rec.changesAt(world.C(6, 7), ChangeActive)
	require.NotEmpty(t, active)
	assert.False(t, active[len(active)-1].Active)

	f.runCycle(t)
	check()
	assert.False(t, bee.Active)

	// Restoring the road brings access back; Active returns on the next resolve.
	f.place(t, buildings.TypeRoad, 5, 6)
	assert.True(t, bee.RoadAccess)
	check()
	f.runCycle(t)
	check()
	assert.True(t, bee.Active)

	_, err = f.sim.Remove(world.C(5, 5))
	require.NoError(t, err)
	check()
	assert.False(t, bee.Active)
}

func TestSimulation_PlaceErrors(t *testing.T) {
	f := newFixture(t, DefaultOptions(), economy.Bundle{economy.Wood: 1})
	f.sim.Map().Set(world.C(3, 3), world.TerrainWater)
	f.place(t, buildings.TypeObelisk, 0, 0)

	cases := []struct {
		name   string
		pos    world.Coord
		typeID string
		want   error
	}{
		{"unknown type", world.C(1, 1), "castle", ErrUnknownType},
		{"out of bounds", world.C(16, 0), "hut", ErrOutOfBounds},
		{"negative", world.C(-1, 2), "hut", ErrOutOfBounds},
		{"water", world.C(3, 3), "hut", ErrWaterCell},
		{"occupied", world.C(0, 0), "hut", ErrOccupied},
		{"second obelisk", world.C(8, 8), buildings.TypeObelisk, ErrObeliskExists},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.sim.Place(tc.pos, tc.typeID)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	f.place(t, "hut", 1, 1)
	assert.Zero(t, f.ledger.Amount(economy.Wood))

	_, err := f.sim.Place(world.C(2, 2), "hut")
	assert.ErrorIs(t, err, ErrInsufficientResources)
	assert.Nil(t, f.sim.Registry().At(world.C(2, 2)))

	_, err = f.sim.Remove(world.C(9, 9))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 2, f.sim.Registry().Len())
}

func TestSimulation_LevelingIsGatedAndMonotonic(t *testing.T) {
	f := newFixture(t, DefaultOptions(), economy.Bundle{economy.Tools: 100, economy.Honey: 10, economy.Wood: 1})
	f.place(t, buildings.TypeObelisk, 5, 5)
	f.place(t, buildings.TypeRoad, 5, 6)
	f.place(t, "hut", 4, 6)
	bee := f.place(t, "beekeeper", 6, 6)

	f.runCycle(t)
	assert.Equal(t, 1, bee.Level)
	require.True(t, bee.Active)

	f.ledger.Add(economy.Bundle{economy.Wood: 100})
	f.runCycle(t)
	assert.Equal(t, 1, bee.Level, "research gate")
	assert.Equal(t, 100.0, f.ledger.Amount(economy.Wood), "scanning never consumes")

	f.research.Complete("apiculture")
	f.runCycle(t)
	require.Equal(t, 2, bee.Level)
	assert.Equal(t, 95.0, f.ledger.Amount(economy.Wood))
	_, prod := bee.Effective()
	assert.Equal(t, economy.Bundle{economy.Wax: 10, economy.Honey: 40}, prod)

	f.runCycle(t)
	require.Equal(t, 3, bee.Level)
	assert.Equal(t, 85.0, f.ledger.Amount(economy.Wood))
	_, prod = bee.Effective()
	assert.Equal(t, economy.Bundle{economy.Wax: 10, economy.Honey: 60}, prod)

	f.runCycle(t)
	assert.Equal(t, 3, bee.Level, "terminal")
	assert.Len(t, f.rec.changesAt(bee.Pos, ChangeLevel), 2)
}

func TestSimulation_UnpaidUpgradeRetriesNextCycle(t *testing.T) {
	f := newFixture(t, DefaultOptions(), nil)
	well := f.place(t, "well", 2, 2)

	f.runCycle(t)
	f.runCycle(t)
	assert.Equal(t, 1, well.Level)

	f.ledger.Add(economy.Bundle{economy.Stone: 1})
	f.runCycle(t)
	assert.Equal(t, 2, well.Level)
	assert.Zero(t, f.ledger.Amount(economy.Stone))
}

func TestSimulation_UpgradeCapPerCycle(t *testing.T) {
	opts := DefaultOptions()
	opts.Scheduler.UpgradeCap = 1
	f := newFixture(t, opts, economy.Bundle{economy.Stone: 10})
	wells := []*buildings.Instance{f.place(t, "well", 1, 1), f.place(t, "well", 3, 1), f.place(t, "well", 5, 1)}

	levels := func() int {
		n := 0
		for _, w := range wells {
			n += w.Level - 1
		}
		return n
	}

	r := f.runCycle(t)
	assert.Equal(t, 1, r.Upgrades)
	assert.Equal(t, 1, levels())
	f.runCycle(t)
	f.runCycle(t)
	assert.Equal(t, 3, levels())
	assert.Equal(t, 7.0, f.ledger.Amount(economy.Stone))
}

func TestSimulation_WorkerPool(t *testing.T) {
	f := newFixture(t, DefaultOptions(), economy.Bundle{economy.Tools: 100, economy.Honey: 10, economy.Wood: 1})
	f.place(t, buildings.TypeObelisk, 5, 5)
	f.place(t, buildings.TypeRoad, 5, 6)
	f.place(t, buildings.TypeRoad, 5, 7)
	hut := f.place(t, "hut", 4, 6)
	first := f.place(t, "beekeeper", 6, 6)
	second := f.place(t, "beekeeper", 6, 7)

	r := f.runCycle(t)
	assert.True(t, hut.NeedsMet)
	assert.Equal(t, 4, r.Workers)
	assert.Equal(t, 4, r.AssignedWorkers)
	assert.Equal(t, 3, first.AssignedWorkers)
	assert.Equal(t, 1, second.AssignedWorkers)
	assert.Equal(t, 4, f.ledger.AssignedWorkers())
	assert.Zero(t, f.ledger.FreeWorkers())
	assert.Equal(t, 2, r.ActiveProducers)
}

func TestSimulation_NoisyNeighborDisturbsHouse(t *testing.T) {
	f := newFixture(t, DefaultOptions(), economy.Bundle{economy.Honey: 10, economy.Wood: 1})
	f.place(t, buildings.TypeObelisk, 5, 5)
	f.place(t, buildings.TypeRoad, 5, 6)
	hut := f.place(t, "hut", 4, 6)

	f.runCycle(t)
	require.True(t, hut.NeedsMet)

	f.place(t, "sawmill", 2, 8)
	r := f.runCycle(t)
	assert.False(t, hut.Quiet)
	assert.False(t, hut.NeedsMet)
	assert.Zero(t, r.Workers)

	_, err := f.sim.Remove(world.C(2, 8))
	require.NoError(t, err)
	f.place(t, "sawmill", 1, 9)
	f.runCycle(t)
	assert.True(t, hut.Quiet, "outside the noise radius")
}

func TestSimulation_UnpaidUpkeepBreaksNeeds(t *testing.T) {
	f := newFixture(t, DefaultOptions(), nil)
	f.place(t, buildings.TypeObelisk, 5, 5)
	f.place(t, buildings.TypeRoad, 5, 6)
	f.ledger.Add(economy.Bundle{economy.Wood: 1})
	hut := f.place(t, "hut", 4, 6)

	f.runCycle(t)
	assert.True(t, hut.NeedsMet, "first cycle runs on the initial supply")
	assert.False(t, hut.Supplied)

	f.runCycle(t)
	assert.False(t, hut.NeedsMet)

	f.ledger.Add(economy.Bundle{economy.Honey: 5})
	f.runCycle(t)
	assert.True(t, hut.Supplied)
	f.runCycle(t)
	assert.True(t, hut.NeedsMet)
}

func buildLayout(t *testing.T, f *fixture) {
	f.place(t, buildings.TypeObelisk, 5, 5)
	for y := 6; y <= 10; y++ {
		f.place(t, buildings.TypeRoad, 5, y)
	}
	for y := 6; y <= 10; y++ {
		f.place(t, "hut", 4, y)
	}
	for y := 6; y <= 9; y++ {
		f.place(t, "beekeeper", 6, y)
	}
	f.place(t, "well", 12, 12)
	f.place(t, "well", 13, 12)
	f.place(t, "sawmill", 3, 12)
	f.research.Complete("apiculture")
}

func TestScheduler_BatchSizeIndependence(t *testing.T) {
	start := economy.Bundle{economy.Tools: 50, economy.Honey: 20, economy.Wood: 40, economy.Stone: 2}
	run := func(batch int) (*Snapshot, []map[Phase]map[world.Coord]int) {
		opts := DefaultOptions()
		opts.Scheduler.NeedsBatch = batch
		opts.Scheduler.ScanBatch = batch
		f := newFixture(t, opts, start)
		buildLayout(t, f)

		var perCycle []map[Phase]map[world.Coord]int
		visits := map[Phase]map[world.Coord]int{}
		f.sim.sched.visit = func(p Phase, b *buildings.Instance) {
			if visits[p] == nil {
				visits[p] = map[world.Coord]int{}
			}
			visits[p][b.Pos]++
		}
		for i := 0; i < 6; i++ {
			f.runCycle(t)
			perCycle = append(perCycle, visits)
			visits = map[Phase]map[world.Coord]int{}
		}
		snap := f.sim.Snapshot()
		snap.TakenAt = time.Time{}
		return snap, perCycle
	}

	small, smallVisits := run(1)
	large, largeVisits := run(10000)
	assert.Equal(t, large, small)

	for _, visits := range [][]map[Phase]map[world.Coord]int{smallVisits, largeVisits} {
		for cycle, v := range visits {
			assert.Len(t, v[PhaseNeeds], 5, "cycle %d", cycle)
			assert.Len(t, v[PhaseUpgradeScan], 18, "cycle %d", cycle)
			for _, phase := range []Phase{PhaseNeeds, PhaseUpgradeScan} {
				for pos, n := range v[phase] {
					assert.Equal(t, 1, n, "%s visited %s %d times in cycle %d", phase, pos, n, cycle)
				}
			}
		}
	}
}

func TestScheduler_PhaseOrder(t *testing.T) {
	opts := DefaultOptions()
	opts.Scheduler.NeedsBatch = 1
	opts.Scheduler.ScanBatch = 1
	f := newFixture(t, opts, economy.Bundle{economy.Honey: 10, economy.Wood: 2})
	f.place(t, buildings.TypeObelisk, 5, 5)
	f.place(t, buildings.TypeRoad, 5, 6)
	f.place(t, "hut", 4, 6)
	f.place(t, "hut", 6, 6)
	f.place(t, "well", 9, 9)

	dt := opts.Scheduler.CheckInterval / 4
	seq := []Phase{f.sim.Scheduler().Phase()}
	for i := 0; i < 40; i++ {
		f.sim.Step(dt)
		if p := f.sim.Scheduler().Phase(); p != seq[len(seq)-1] {
			seq = append(seq, p)
		}
	}

	want := []Phase{PhaseIdle, PhaseNeeds, PhaseUpgradeScan, PhaseUpgrade, PhaseProducers}
	require.GreaterOrEqual(t, len(seq), 2*len(want))
	for i, p := range seq {
		assert.Equal(t, want[i%len(want)], p, "position %d of %v", i, seq)
	}
	assert.Positive(t, f.rec.frames[PhaseNeeds])
	assert.NotEmpty(t, f.rec.reports)
}

func TestScheduler_IdleWaitsForInterval(t *testing.T) {
	f := newFixture(t, DefaultOptions(), nil)
	interval := f.sim.opts.Scheduler.CheckInterval

	assert.Nil(t, f.sim.Step(interval/2))
	assert.Equal(t, PhaseIdle, f.sim.Scheduler().Phase())
	assert.Zero(t, f.sim.Scheduler().Cycle())

	f.sim.Step(interval / 2)
	assert.Equal(t, uint64(1), f.sim.Scheduler().Cycle())
}

func TestScheduler_RemovalMidPhaseIsSkipped(t *testing.T) {
	opts := DefaultOptions()
	opts.Scheduler.NeedsBatch = 1
	f := newFixture(t, opts, economy.Bundle{economy.Honey: 10, economy.Wood: 3})
	f.place(t, "hut", 1, 1)
	f.place(t, "hut", 3, 1)
	f.place(t, "hut", 5, 1)

	visited := map[world.Coord]int{}
	f.sim.sched.visit = func(p Phase, b *buildings.Instance) {
		if p == PhaseNeeds {
			visited[b.Pos]++
		}
	}

	f.sim.Step(opts.Scheduler.CheckInterval)
	require.Equal(t, PhaseNeeds, f.sim.Scheduler().Phase())
	_, err := f.sim.Remove(world.C(3, 1))
	require.NoError(t, err)

	r := f.runCycle(t)
	assert.Equal(t, map[world.Coord]int{world.C(1, 1): 1, world.C(5, 1): 1}, visited)
	assert.Equal(t, 2, r.Houses)
}

func TestCheckConsistency(t *testing.T) {
	f := newFixture(t, DefaultOptions(), nil)
	f.place(t, buildings.TypeObelisk, 5, 5)
	f.place(t, buildings.TypeRoad, 5, 6)
	assert.Empty(t, f.sim.CheckConsistency())

	require.NoError(t, f.sim.graph.RegisterRoad(world.C(5, 7)))
	require.True(t, f.sim.graph.IsConnected(world.C(5, 7)))

	errs := f.sim.CheckConsistency()
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrInconsistent)
	assert.False(t, f.sim.graph.IsConnected(world.C(5, 7)), "orphan cell degrades to disconnected")
	assert.Empty(t, f.sim.CheckConsistency())
}

func TestEngine_PausedFramesDoNotAdvance(t *testing.T) {
	f := newFixture(t, DefaultOptions(), nil)
	e := NewEngine(f.sim, time.Millisecond)
	require.NotNil(t, e.Snapshot())

	e.SetSpeed(0)
	assert.Nil(t, e.Frame(time.Hour))
	assert.Zero(t, f.sim.Scheduler().Cycle())

	e.SetSpeed(-3)
	assert.Zero(t, e.Speed())

	e.SetSpeed(2)
	e.Frame(f.sim.opts.Scheduler.CheckInterval / 2)
	assert.Equal(t, uint64(1), f.sim.Scheduler().Cycle())
	assert.Equal(t, uint64(2), e.Frames())
}

func TestEngine_ExpiredCommandIsNotApplied(t *testing.T) {
	f := newFixture(t, DefaultOptions(), economy.Bundle{economy.Wood: 5})
	e := NewEngine(f.sim, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() {
		result <- e.Submit(ctx, func(s *Simulation) error {
			_, err := s.Place(world.C(2, 2), "hut")
			return err
		})
	}()

	require.Eventually(t, func() bool { return len(e.queue) == 1 }, time.Second, time.Millisecond)
	cancel()
	select {
	case err := <-result:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("submit did not return after cancel")
	}

	e.Frame(0)
	assert.Nil(t, f.sim.Registry().At(world.C(2, 2)), "canceled command must not run")
	assert.Equal(t, 5.0, f.ledger.Amount(economy.Wood))
	assert.Empty(t, e.queue)
}

func TestEngine_SubmitAppliesOnEngineGoroutine(t *testing.T) {
	f := newFixture(t, DefaultOptions(), economy.Bundle{economy.Wood: 5})
	e := NewEngine(f.sim, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go e.Run(ctx)

	err := e.Submit(ctx, func(s *Simulation) error {
		_, err := s.Place(world.C(2, 2), "hut")
		return err
	})
	require.NoError(t, err)

	err = e.Submit(ctx, func(s *Simulation) error {
		_, err := s.Place(world.C(2, 2), "hut")
		return err
	})
	assert.ErrorIs(t, err, ErrOccupied)

	require.Eventually(t, func() bool {
		_, ok := e.Snapshot().Building(world.C(2, 2))
		return ok
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, e.Snapshot().Counts[buildings.KindHouse])

	cancel()
	require.Eventually(t, func() bool { return !e.Running() }, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, e.Submit(ctx, func(*Simulation) error { return nil }), context.Canceled)
}
