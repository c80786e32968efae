// Package stream publishes simulation snapshots to external collaborators
// (portrayal front ends, loggers) over websocket as msgpack frames.
package stream

import (
	"github.com/vmihailenco/msgpack/v5"

	"github.com/zeusync/cellsim/internal/sim"
)

type Frame struct {
	RunID  string       `msgpack:"run_id"`
	Tick   uint64       `msgpack:"tick"`
	Time   float64      `msgpack:"time"`
	Agents []AgentFrame `msgpack:"agents"`
	Counts []CountFrame `msgpack:"counts"`
}

type AgentFrame struct {
	ID   uint64     `msgpack:"id"`
	Kind string     `msgpack:"kind"`
	Pos  [3]float64 `msgpack:"pos"`
	// Euler holds roll, pitch and yaw in radians.
	Euler    [3]float64 `msgpack:"euler"`
	Contacts []uint64   `msgpack:"contacts,omitempty"`
	Meanders int        `msgpack:"meanders,omitempty"`
}

type CountFrame struct {
	Kind      string `msgpack:"kind"`
	Live      int    `msgpack:"live"`
	Imaged    int    `msgpack:"imaged"`
	Spawned   int    `msgpack:"spawned"`
	Consumed  int    `msgpack:"consumed"`
	Exited    int    `msgpack:"exited"`
	Recovered int    `msgpack:"recovered"`
}

func FrameFromSnapshot(s sim.Snapshot) Frame {
	f := Frame{
		RunID:  s.RunID,
		Tick:   s.Tick,
		Time:   s.Time,
		Agents: make([]AgentFrame, len(s.Agents)),
		Counts: make([]CountFrame, len(s.Kinds)),
	}
	for i, a := range s.Agents {
		f.Agents[i] = AgentFrame{
			ID:       a.ID,
			Kind:     a.Kind,
			Pos:      [3]float64{a.Location.X, a.Location.Y, a.Location.Z},
			Euler:    [3]float64{a.Roll, a.Pitch, a.Yaw},
			Contacts: a.Contacts,
			Meanders: a.Meanders,
		}
	}
	for i, k := range s.Kinds {
		f.Counts[i] = CountFrame{
			Kind: k.Kind, Live: k.Live, Imaged: k.Imaged, Spawned: k.Spawned,
			Consumed: k.Consumed, Exited: k.Exited, Recovered: k.Recovered,
		}
	}
	return f
}

func (f *Frame) Encode() ([]byte, error) { return msgpack.Marshal(f) }

func DecodeFrame(data []byte) (Frame, error) {
	var f Frame
	err := msgpack.Unmarshal(data, &f)
	return f, err
}
