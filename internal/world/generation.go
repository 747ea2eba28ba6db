// Terrain generation using layered simplex noise.
// An elevation layer carves out ponds; a moisture layer picks the ground cover.
package world

import (
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds terrain generation parameters.
type GenConfig struct {
	Width      int     // Grid width in cells
	Height     int     // Grid height in cells
	Seed       int64   // Random seed (0 = random)
	WaterLevel float64 // Elevation threshold below which cells are water (0 = no water)
	RockLevel  float64 // Elevation threshold above which cells are rock (>=1 = no rock)
}

// DefaultGenConfig returns a reasonable starting configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Width:      64,
		Height:     64,
		Seed:       0,
		WaterLevel: 0.28,
		RockLevel:  0.82,
	}
}

// Generate creates a terrain map from the configuration.
func Generate(cfg GenConfig) *Map {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	elevNoise := opensimplex.NewNormalized(seed)
	moistNoise := opensimplex.NewNormalized(seed + 1)

	m := NewMap(cfg.Width, cfg.Height)
	for y := 0; y < cfg.Height; y++ {
		for x := 0; x < cfg.Width; x++ {
			fx, fy := float64(x), float64(y)
			elev := octaveNoise(elevNoise, fx, fy, 4, 0.07, 0.5)
			moist := octaveNoise(moistNoise, fx, fy, 3, 0.05, 0.5)
			m.Set(C(x, y), deriveTerrain(elev, moist, cfg))
		}
	}
	return m
}

// deriveTerrain determines terrain type from elevation and moisture.
func deriveTerrain(elev, moist float64, cfg GenConfig) Terrain {
	if elev < cfg.WaterLevel {
		return TerrainWater
	}
	if elev > cfg.RockLevel {
		return TerrainRock
	}
	if moist > 0.6 {
		return TerrainForest
	}
	if moist > 0.45 {
		return TerrainMeadow
	}
	return TerrainGrass
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

// TerrainCounts returns a summary of terrain type distribution.
func TerrainCounts(m *Map) map[Terrain]int {
	counts := make(map[Terrain]int)
	for _, t := range m.Cells {
		counts[t]++
	}
	return counts
}

// TerrainName returns a human-readable name for a terrain type.
func TerrainName(t Terrain) string {
	switch t {
	case TerrainGrass:
		return "Grass"
	case TerrainMeadow:
		return "Meadow"
	case TerrainForest:
		return "Forest"
	case TerrainRock:
		return "Rock"
	case TerrainWater:
		return "Water"
	default:
		return "Unknown"
	}
}
