package sim

import (
	"context"
	"fmt"

	"github.com/zeusync/cellsim/internal/core/agent"
	"github.com/zeusync/cellsim/internal/core/events"
	"github.com/zeusync/cellsim/internal/core/observability/log"
	"github.com/zeusync/cellsim/internal/core/system"
)

// agentsStep steps the agents alive at the start of the tick in creation
// order, then prunes the removed ones.
type agentsStep struct {
	sim       *Simulation
	processed int
}

func (st *agentsStep) Step(system.Tick) error {
	s := st.sim
	n := len(s.agents)
	st.processed = 0
	for i := 0; i < n; i++ {
		a := s.agents[i]
		if a.Removed() {
			continue
		}
		st.processed++
		if err := a.Step(s); err != nil {
			return fmt.Errorf("agent %d: %w", a.ID(), err)
		}
	}
	live := s.agents[:0]
	for _, a := range s.agents {
		if !a.Removed() {
			live = append(live, a)
		}
	}
	clear(s.agents[len(live):])
	s.agents = live
	return nil
}

func (st *agentsStep) Processed() int { return st.processed }

// stepField refreshes how many agents of each kind sit inside the imaging
// volume.
func (s *Simulation) stepField(system.Tick) error {
	for _, c := range s.counts {
		c.Imaged = 0
	}
	for _, a := range s.agents {
		if s.field.InsideImagingVolume(a.Location()) {
			s.counts[a.Kind()].Imaged++
		}
	}
	return nil
}

func (s *Simulation) stepSeries(t system.Tick) error {
	every := uint64(s.cfg.SampleEvery)
	if every > 0 && t.Number%every == 0 {
		s.series = append(s.series, s.sample(t))
	}
	live := make(map[string]int, len(s.kinds))
	for _, k := range s.kinds {
		live[k.String()] = s.counts[k].Live
	}
	s.publish(events.TickCompleted, events.Tick{RunID: s.runID, Tick: t.Number, Time: t.Time, Live: live})
	return nil
}

// Step executes one tick, populating first if Populate was not called.
func (s *Simulation) Step() error {
	if !s.populated {
		if err := s.Populate(); err != nil {
			return err
		}
	}
	return s.schedule.Step()
}

// Run executes up to steps ticks, stopping early when ctx is done.
func (s *Simulation) Run(ctx context.Context, steps int) error {
	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			s.logger.Info("run interrupted", log.Uint64("tick", s.schedule.Now().Number))
			return err
		}
		if err := s.Step(); err != nil {
			return err
		}
	}
	return nil
}

// RunUntilEnd runs until simulated time reaches the configured end time.
func (s *Simulation) RunUntilEnd(ctx context.Context) error {
	remaining := s.cfg.Steps() - int(s.schedule.Now().Number)
	if err := s.Run(ctx, remaining); err != nil {
		return err
	}
	fields := []log.Field{log.Uint64("ticks", s.schedule.Now().Number), log.Float64("time", s.schedule.Now().Time)}
	for _, k := range s.kinds {
		c := s.counts[k]
		fields = append(fields, log.Any(k.String(), *c))
	}
	s.logger.Info("run complete", fields...)
	return nil
}

// Agents returns the live agents in creation order.
func (s *Simulation) Agents() []*agent.Agent {
	return append([]*agent.Agent(nil), s.agents...)
}
