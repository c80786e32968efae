package system

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/zeusync/cellsim/internal/core/observability/log"
)

var (
	ErrDuplicateName    = errors.New("steppable already scheduled")
	ErrInvalidTimeSlice = errors.New("time slice must be positive")
)

const clockName = "clock"

type entry struct {
	name    string
	order   Order
	seq     int
	step    Steppable
	metrics Metrics
}

// Schedule runs its steppables once per tick, ordered by Order and then by
// insertion. A clock entry at OrderClock advances simulated time by the time
// slice. Schedule is not safe for concurrent use.
type Schedule struct {
	dt      float64
	tick    uint64
	time    float64
	seq     int
	entries []*entry
	logger  log.Log
}

func NewSchedule(dt float64, logger log.Log) (*Schedule, error) {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTimeSlice, dt)
	}
	s := &Schedule{
		dt:     dt,
		logger: logger.With(log.String("component", "schedule")),
	}
	_ = s.Add(clockName, OrderClock, StepFunc(func(Tick) error {
		s.tick++
		s.time = float64(s.tick) * s.dt
		return nil
	}))
	return s, nil
}

// Add schedules st under a unique name.
func (s *Schedule) Add(name string, order Order, st Steppable) error {
	if s.index(name) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}
	s.seq++
	s.entries = append(s.entries, &entry{name: name, order: order, seq: s.seq, step: st})
	slices.SortStableFunc(s.entries, func(a, b *entry) int {
		if a.order != b.order {
			return int(a.order) - int(b.order)
		}
		return a.seq - b.seq
	})
	s.logger.Debug("steppable scheduled", log.String("name", name), log.Int("order", int(order)))
	return nil
}

// Remove unschedules name. The clock cannot be removed.
func (s *Schedule) Remove(name string) bool {
	if name == clockName {
		return false
	}
	i := s.index(name)
	if i < 0 {
		return false
	}
	s.entries = slices.Delete(s.entries, i, i+1)
	return true
}

// Step executes one tick. The first failing steppable stops the tick and
// simulated time does not advance.
func (s *Schedule) Step() error {
	t := s.Now()
	for _, e := range s.entries {
		start := time.Now()
		err := e.step.Step(t)
		processed := 0
		if c, ok := e.step.(Counter); ok {
			processed = c.Processed()
		}
		e.metrics.record(start, time.Since(start), processed, err)
		if err != nil {
			return fmt.Errorf("tick %d: %s: %w", t.Number, e.name, err)
		}
	}
	return nil
}

// Now is the tick that the next call to Step executes.
func (s *Schedule) Now() Tick { return Tick{Number: s.tick, Time: s.time} }

func (s *Schedule) TimeSlice() float64 { return s.dt }

// Names lists the scheduled steppables in execution order.
func (s *Schedule) Names() []string {
	out := make([]string, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.name
	}
	return out
}

func (s *Schedule) Metrics(name string) (Metrics, bool) {
	i := s.index(name)
	if i < 0 {
		return Metrics{}, false
	}
	return s.entries[i].metrics, true
}

func (s *Schedule) index(name string) int {
	return slices.IndexFunc(s.entries, func(e *entry) bool { return e.name == name })
}
