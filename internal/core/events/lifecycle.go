// Package events names the lifecycle events a simulation publishes on its bus
// and the payloads carried with them.
package events

import "github.com/zeusync/cellsim/internal/core/geom"

const (
	AgentSpawned   = "agent.spawned"
	AgentConsumed  = "agent.consumed"
	AgentExited    = "agent.exited"
	AgentRecovered = "agent.recovered"
	TickCompleted  = "tick.completed"
)

// Spawned is the payload of AgentSpawned.
type Spawned struct {
	RunID    string
	Tick     uint64
	ID       uint64
	Kind     string
	Location geom.Vector3
}

// Removed is the payload of AgentConsumed, AgentExited and AgentRecovered.
// By is zero unless a predator consumed the agent.
type Removed struct {
	RunID    string
	Tick     uint64
	ID       uint64
	Kind     string
	Location geom.Vector3
	By       uint64
}

// Tick is the payload of TickCompleted.
type Tick struct {
	RunID string
	Tick  uint64
	Time  float64
	Live  map[string]int
}
