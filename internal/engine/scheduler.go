package engine

import (
	"time"

	"github.com/talgya/hive-economy/internal/buildings"
)

// Phase is a stage of the economy cycle.
type Phase uint8

const (
	PhaseIdle        Phase = iota // Waiting for the check interval
	PhaseNeeds                    // Evaluating house needs, NeedsBatch per frame
	PhaseUpgradeScan              // Collecting upgrade candidates, ScanBatch per frame
	PhaseUpgrade                  // Paying for at most UpgradeCap upgrades
	PhaseProducers                // Resolving every producer in one frame
)

// Phases lists every phase in cycle order.
var Phases = []Phase{PhaseIdle, PhaseNeeds, PhaseUpgradeScan, PhaseUpgrade, PhaseProducers}

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseNeeds:
		return "needs"
	case PhaseUpgradeScan:
		return "upgrade_scan"
	case PhaseUpgrade:
		return "upgrade"
	case PhaseProducers:
		return "producers"
	}
	return "unknown"
}

// SchedulerConfig holds the cycle timing and per-frame budgets.
type SchedulerConfig struct {
	CheckInterval time.Duration // Time between cycle starts
	NeedsBatch    int           // Houses evaluated per frame
	ScanBatch     int           // Buildings scanned per frame
	UpgradeCap    int           // Successful upgrades per cycle; <= 0 means unlimited
}

// DefaultSchedulerConfig returns the stock cycle timing.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		CheckInterval: 2 * time.Second,
		NeedsBatch:    16,
		ScanBatch:     32,
		UpgradeCap:    4,
	}
}

// Scheduler is the frame-sliced phase machine. Each phase works over a
// snapshot of buildings taken at phase entry; the cursor carries across
// frames and entries removed mid-phase are skipped.
type Scheduler struct {
	cfg SchedulerConfig
	sim *Simulation

	phase      Phase
	elapsed    time.Duration
	cycle      uint64
	work       []*buildings.Instance
	cursor     int
	candidates []*buildings.Instance
	upgrades   int

	visit func(Phase, *buildings.Instance) // Test hook
}

func newScheduler(cfg SchedulerConfig, sim *Simulation) *Scheduler {
	return &Scheduler{cfg: cfg, sim: sim}
}

// Phase returns the current phase.
func (s *Scheduler) Phase() Phase { return s.phase }

// Cycle returns the number of the current (or last completed) cycle.
func (s *Scheduler) Cycle() uint64 { return s.cycle }

// Progress returns how far the current phase has advanced over its snapshot.
func (s *Scheduler) Progress() (done, total int) {
	return s.cursor, len(s.work)
}

func (s *Scheduler) begin(p Phase, work []*buildings.Instance) {
	s.phase = p
	s.work = work
	s.cursor = 0
}

// Step advances the machine by one host frame of dt. Returns the cycle
// report when the Producers phase completes, nil otherwise.
func (s *Scheduler) Step(dt time.Duration) *Report {
	s.elapsed += dt

	switch s.phase {
	case PhaseIdle:
		if s.elapsed < s.cfg.CheckInterval {
			return nil
		}
		s.elapsed = 0
		s.cycle++
		s.candidates = s.candidates[:0]
		s.upgrades = 0
		s.begin(PhaseNeeds, s.sim.registry.Houses())
		if s.batch(s.cfg.NeedsBatch, s.sim.evaluateNeeds) {
			s.begin(PhaseUpgradeScan, s.sim.registry.All())
		}

	case PhaseNeeds:
		if s.batch(s.cfg.NeedsBatch, s.sim.evaluateNeeds) {
			s.begin(PhaseUpgradeScan, s.sim.registry.All())
		}

	case PhaseUpgradeScan:
		if s.batch(s.cfg.ScanBatch, s.scan) {
			s.begin(PhaseUpgrade, s.candidates)
		}

	case PhaseUpgrade:
		s.runUpgrades()
		s.begin(PhaseProducers, s.sim.registry.Producers())

	case PhaseProducers:
		for _, b := range s.work {
			if !b.Removed() && s.visit != nil {
				s.visit(PhaseProducers, b)
			}
		}
		report := s.sim.resolveProducers(s.cycle, s.work, s.upgrades)
		s.begin(PhaseIdle, nil)
		return &report
	}
	return nil
}

// batch processes up to n live entries of the phase snapshot and reports
// whether the snapshot is exhausted.
func (s *Scheduler) batch(n int, fn func(*buildings.Instance)) bool {
	if n <= 0 {
		n = 1
	}
	for done := 0; s.cursor < len(s.work) && done < n; s.cursor++ {
		b := s.work[s.cursor]
		if b.Removed() {
			continue
		}
		if s.visit != nil {
			s.visit(s.phase, b)
		}
		fn(b)
		done++
	}
	return s.cursor >= len(s.work)
}

func (s *Scheduler) scan(b *buildings.Instance) {
	if s.sim.upgradeEligible(b) {
		s.candidates = append(s.candidates, b)
	}
}

func (s *Scheduler) runUpgrades() {
	for _, b := range s.work {
		if s.cfg.UpgradeCap > 0 && s.upgrades >= s.cfg.UpgradeCap {
			return
		}
		if !s.sim.upgradeEligible(b) {
			continue
		}
		if s.visit != nil {
			s.visit(PhaseUpgrade, b)
		}
		if s.sim.upgrade(b) {
			s.upgrades++
		}
	}
}
