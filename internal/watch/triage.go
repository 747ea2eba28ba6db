package watch

import (
	"sort"

	"github.com/talgya/hive-economy/internal/economy"
)

// Health levels, most severe first.
const (
	LevelStalled  = "STALLED"  // Producers exist but none ran last cycle
	LevelStarving = "STARVING" // A consumed resource runs out within the horizon
	LevelWatch    = "WATCH"    // Idle workers or idle producers
	LevelHealthy  = "HEALTHY"
)

// ShortageHorizon is how many cycles of net drain a stock must cover.
const ShortageHorizon = 5

// Shortage is a resource whose stock will not survive the horizon.
type Shortage struct {
	Resource     economy.Resource
	Amount       float64
	Net          float64
	CyclesToZero float64
}

// Health holds diagnostics derived from a Sample.
type Health struct {
	Level        string
	Shortages    []Shortage
	IdleWorkers  int
	IdleProducer int
	Utilization  float64 // Assigned / total workers, 0 when no workers
}

// Triage derives settlement health from one sample.
func Triage(s *Sample) *Health {
	h := &Health{
		IdleWorkers:  s.Status.Workers - s.Status.AssignedWorkers,
		IdleProducer: s.Status.Producers - s.Status.ActiveProducers,
	}
	if s.Status.Workers > 0 {
		h.Utilization = float64(s.Status.AssignedWorkers) / float64(s.Status.Workers)
	}

	for _, r := range s.Resources {
		net := r.Net()
		if net >= 0 {
			continue
		}
		left := r.Amount / -net
		if left < ShortageHorizon {
			h.Shortages = append(h.Shortages, Shortage{
				Resource:     r.Resource,
				Amount:       r.Amount,
				Net:          net,
				CyclesToZero: left,
			})
		}
	}
	sort.Slice(h.Shortages, func(i, j int) bool {
		return h.Shortages[i].CyclesToZero < h.Shortages[j].CyclesToZero
	})

	switch {
	case s.Status.Cycle > 0 && s.Status.Producers > 0 && s.Status.ActiveProducers == 0:
		h.Level = LevelStalled
	case len(h.Shortages) > 0:
		h.Level = LevelStarving
	case h.IdleWorkers > 0 || h.IdleProducer > 0:
		h.Level = LevelWatch
	default:
		h.Level = LevelHealthy
	}
	return h
}
