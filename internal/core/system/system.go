// Package system drives simulation steppables tick by tick in a fixed order.
package system

import "time"

// Steppable is anything the schedule runs once per tick.
type Steppable interface {
	Step(t Tick) error
}

// StepFunc adapts a function to Steppable.
type StepFunc func(Tick) error

func (f StepFunc) Step(t Tick) error { return f(t) }

// Counter is implemented by steppables that work through a collection. The
// count feeds Metrics.EntitiesProcessed.
type Counter interface {
	Processed() int
}

// Order places a steppable within a tick. Lower orders run first; equal
// orders run in the order they were added.
type Order int

const (
	OrderField     Order = 1
	OrderAgents    Order = 2
	OrderRecorders Order = 3
	OrderClock     Order = 10
)

// Tick identifies the tick being executed.
type Tick struct {
	// Number counts executed ticks from zero.
	Number uint64
	// Time is the simulated time at the start of the tick.
	Time float64
}

// Metrics provides runtime metrics for a steppable
type Metrics struct {
	ExecutionCount       uint64
	TotalExecutionTime   time.Duration
	AverageExecutionTime time.Duration
	MaxExecutionTime     time.Duration
	MinExecutionTime     time.Duration
	ErrorCount           uint64
	LastError            error
	LastExecutionTime    time.Time
	EntitiesProcessed    uint64
}

func (m *Metrics) record(at time.Time, d time.Duration, processed int, err error) {
	m.ExecutionCount++
	m.TotalExecutionTime += d
	m.AverageExecutionTime = m.TotalExecutionTime / time.Duration(m.ExecutionCount)
	if d > m.MaxExecutionTime {
		m.MaxExecutionTime = d
	}
	if m.ExecutionCount == 1 || d < m.MinExecutionTime {
		m.MinExecutionTime = d
	}
	m.LastExecutionTime = at
	if processed > 0 {
		m.EntitiesProcessed += uint64(processed)
	}
	if err != nil {
		m.ErrorCount++
		m.LastError = err
	}
}
