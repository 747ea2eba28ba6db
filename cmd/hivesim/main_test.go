package main

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hive-economy/internal/buildings"
	"github.com/talgya/hive-economy/internal/persistence"
	"github.com/talgya/hive-economy/internal/world"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("WARN"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("anything"))
}

func TestDryCellNear(t *testing.T) {
	m := world.NewMap(9, 9)
	center := world.C(4, 4)

	got, ok := dryCellNear(m, center)
	require.True(t, ok)
	assert.Equal(t, center, got)

	// Flood a 3x3 block around the center; the answer lies on ring 2.
	for _, c := range center.Within(1) {
		m.Set(c, world.TerrainWater)
	}
	m.Set(center, world.TerrainWater)
	got, ok = dryCellNear(m, center)
	require.True(t, ok)
	assert.Equal(t, 2, world.ChebyshevDistance(center, got))
	assert.False(t, m.IsWater(got))

	flooded := world.NewMap(2, 2)
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			flooded.Set(world.C(x, y), world.TerrainWater)
		}
	}
	_, ok = dryCellNear(flooded, world.C(1, 1))
	assert.False(t, ok)
}

func TestPrintCatalog(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printCatalog(&buf, buildings.DefaultCatalog()))

	out := buf.String()
	assert.Contains(t, out, "beekeeper")
	assert.Contains(t, out, "obelisk")
	assert.Contains(t, out, "noisy")
}

func TestLevelSummary(t *testing.T) {
	d := &buildings.Definition{ID: "x", Levels: []buildings.LevelDelta{{}, {Research: "masonry"}}}
	assert.Equal(t, "3 (-, masonry)", levelSummary(d))
	assert.Equal(t, "1", levelSummary(&buildings.Definition{ID: "y"}))
}

func TestPrintRuns(t *testing.T) {
	var buf bytes.Buffer
	err := printRuns(&buf, []persistence.RunInfo{
		{RunID: "abc", StartedAt: time.Now().Add(-time.Hour), Seed: 7, Width: 32, Height: 16},
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "abc")
	assert.Contains(t, buf.String(), "32x16")
	assert.Contains(t, buf.String(), "1 hour ago")
}

func TestRootCommandWiring(t *testing.T) {
	root := newRootCommand()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"run", "catalog", "watch", "runs"} {
		assert.True(t, names[want], want)
	}
}
