package stream

import (
	"github.com/zeusync/cellsim/internal/core/system"
	"github.com/zeusync/cellsim/internal/sim"
)

type Snapshotter interface {
	Snapshot() sim.Snapshot
}

type Broadcaster interface {
	Broadcast(Frame) error
}

// Recorder broadcasts a frame every few ticks. Schedule it with the
// recorders so it sees the tick's final positions.
type Recorder struct {
	src   Snapshotter
	out   Broadcaster
	every uint64
}

func NewRecorder(src Snapshotter, out Broadcaster, every int) *Recorder {
	if every < 1 {
		every = 1
	}
	return &Recorder{src: src, out: out, every: uint64(every)}
}

func (r *Recorder) Step(t system.Tick) error {
	if t.Number%r.every != 0 {
		return nil
	}
	return r.out.Broadcast(FrameFromSnapshot(r.src.Snapshot()))
}
