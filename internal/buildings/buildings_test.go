package buildings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hive-economy/internal/economy"
	"github.com/talgya/hive-economy/internal/world"
)

func leveledDef() *Definition {
	return &Definition{
		ID: "beekeeper", Kind: KindProducer, WorkersRequired: 3,
		Consumption: economy.Bundle{economy.Tools: 1},
		Production:  economy.Bundle{economy.Wax: 10, economy.Honey: 30},
		Housing:     0,
		Levels: []LevelDelta{
			{ProductionBonus: economy.Bundle{economy.Honey: 10}, AddedConsumption: economy.Bundle{economy.Tools: 0.5}, Research: "apiculture"},
			{ProductionBonus: economy.Bundle{economy.Honey: 15, economy.Wax: 6}, AddedConsumption: economy.Bundle{economy.Pollen: 2}},
		},
	}
}

func TestDefinition_EffectiveAtSumsDeltas(t *testing.T) {
	d := leveledDef()
	require.Equal(t, 3, d.MaxLevel())

	cons, prod, _ := d.EffectiveAt(1)
	assert.Equal(t, economy.Bundle{economy.Tools: 1}, cons)
	assert.Equal(t, economy.Bundle{economy.Wax: 10, economy.Honey: 30}, prod)

	cons, prod, _ = d.EffectiveAt(3)
	assert.Equal(t, economy.Bundle{economy.Tools: 1.5, economy.Pollen: 2}, cons)
	assert.Equal(t, economy.Bundle{economy.Wax: 16, economy.Honey: 55}, prod)

	// Clamped above the terminal level.
	consMax, prodMax, _ := d.EffectiveAt(9)
	assert.Equal(t, cons, consMax)
	assert.Equal(t, prod, prodMax)

	// Base tables untouched.
	assert.Equal(t, economy.Bundle{economy.Tools: 1}, d.Consumption)
}

func TestDefinition_ResearchFor(t *testing.T) {
	d := leveledDef()
	assert.Equal(t, "", d.ResearchFor(1))
	assert.Equal(t, "apiculture", d.ResearchFor(2))
	assert.Equal(t, "", d.ResearchFor(3), "levels without research need none")
	assert.Equal(t, "", d.ResearchFor(4))
	assert.Nil(t, d.Delta(4))
}

func TestInstance_LevelUpInvalidatesMemo(t *testing.T) {
	b := NewInstance(leveledDef(), world.C(1, 1))

	_, prod := b.Effective()
	assert.Equal(t, 30.0, prod[economy.Honey])

	require.True(t, b.LevelUp())
	_, prod = b.Effective()
	assert.Equal(t, 40.0, prod[economy.Honey])

	require.True(t, b.LevelUp())
	assert.True(t, b.IsTerminal())
	assert.False(t, b.LevelUp())
	assert.Equal(t, 3, b.Level)
	assert.Nil(t, b.NextDelta())
}

func TestInstance_Staffing(t *testing.T) {
	b := NewInstance(leveledDef(), world.C(0, 0))
	assert.Equal(t, 0.0, b.Staffing())
	b.AssignedWorkers = 1
	assert.InDelta(t, 1.0/3.0, b.Staffing(), 1e-9)
	b.AssignedWorkers = 5
	assert.Equal(t, 1.0, b.Staffing())

	free := NewInstance(&Definition{ID: "fountain", Kind: KindService}, world.C(0, 0))
	assert.Equal(t, 1.0, free.Staffing())
}

func TestRegistry_LifecycleAndOrder(t *testing.T) {
	cat := DefaultCatalog()
	hut, err := cat.Get("hut")
	require.NoError(t, err)
	bee, err := cat.Get("beekeeper")
	require.NoError(t, err)
	road, err := cat.Get(TypeRoad)
	require.NoError(t, err)

	r := NewRegistry()
	a := NewInstance(hut, world.C(0, 0))
	b := NewInstance(bee, world.C(1, 0))
	c := NewInstance(road, world.C(2, 0))
	require.NoError(t, r.Add(a))
	require.NoError(t, r.Add(b))
	require.NoError(t, r.Add(c))

	err = r.Add(NewInstance(hut, world.C(1, 0)))
	assert.ErrorIs(t, err, ErrOccupied)

	assert.Equal(t, []*Instance{a, b, c}, r.All())
	assert.Equal(t, []*Instance{a}, r.Houses())
	assert.Equal(t, []*Instance{a, b}, r.Producers(), "houses with upkeep take part in the tick")
	assert.Equal(t, []*Instance{c}, r.OfKind(KindRoad))

	removed, err := r.Remove(world.C(1, 0))
	require.NoError(t, err)
	assert.Same(t, b, removed)
	assert.True(t, b.Removed())
	assert.Nil(t, r.At(world.C(1, 0)))
	assert.Equal(t, []*Instance{a, c}, r.All())

	_, err = r.Remove(world.C(1, 0))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, map[Kind]int{KindHouse: 1, KindRoad: 1}, r.CountByKind())
}

func TestRegistry_RefreshAccessSkipsRoads(t *testing.T) {
	cat := DefaultCatalog()
	hut, _ := cat.Get("hut")
	road, _ := cat.Get(TypeRoad)

	r := NewRegistry()
	h := NewInstance(hut, world.C(0, 0))
	rd := NewInstance(road, world.C(1, 0))
	require.NoError(t, r.Add(h))
	require.NoError(t, r.Add(rd))

	changed := r.RefreshAccess(
		[]world.Coord{world.C(0, 0), world.C(1, 0), world.C(0, 0), world.C(7, 7)},
		func(world.Coord) bool { return true },
	)
	assert.Equal(t, []*Instance{h}, changed)
	assert.True(t, h.RoadAccess)
	assert.False(t, rd.RoadAccess)

	assert.Empty(t, r.RefreshAccess([]world.Coord{world.C(0, 0)}, func(world.Coord) bool { return true }))
}

func TestDefaultCatalog_Valid(t *testing.T) {
	cat := DefaultCatalog()
	require.NoError(t, cat.Validate())
	assert.GreaterOrEqual(t, cat.Len(), 20)

	for _, d := range cat.All() {
		assert.LessOrEqual(t, d.MaxLevel(), MaxLevels, d.ID)
	}

	_, err := cat.Get("castle")
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestLoadCatalog_MergesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "buildings.yaml")
	yml := `
buildings:
  - id: candle_shop
    name: Candle Shop
    kind: producer
    workers_required: 1
    requires_road: true
    consumption: {wax: 2}
    production: {candles: 2}
    levels:
      - production_bonus: {candles: 1}
        upgrade_cost: {stone: 3}
        research: wax_working
  - id: road
    name: Paved Road
    kind: road
    cost: {stone: 2}
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	cat, err := LoadCatalog(path)
	require.NoError(t, err)

	shop, err := cat.Get("candle_shop")
	require.NoError(t, err)
	assert.Equal(t, economy.Bundle{economy.Wax: 2}, shop.Consumption)
	assert.Equal(t, 2, shop.MaxLevel())
	assert.Equal(t, "wax_working", shop.ResearchFor(2))

	road, err := cat.Get(TypeRoad)
	require.NoError(t, err)
	assert.Equal(t, "Paved Road", road.Name)
	assert.Equal(t, DefaultCatalog().Len()+1, cat.Len())
}

func TestLoadCatalog_RejectsInvalidRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	yml := `
buildings:
  - id: castle
    kind: fortress
  - id: sink
    kind: producer
    workers_required: -2
    consumption: {wax: -1}
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	_, err := LoadCatalog(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "castle")
	assert.Contains(t, err.Error(), "sink")

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
