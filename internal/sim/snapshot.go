package sim

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/zeusync/cellsim/internal/core/agent"
	"github.com/zeusync/cellsim/internal/core/geom"
	"github.com/zeusync/cellsim/internal/core/system"
)

// Counts tracks the population of one kind.
type Counts struct {
	Live      int
	Spawned   int
	Consumed  int
	Exited    int
	Recovered int
	// Imaged is the number of live agents inside the imaging volume as of
	// the start of the last tick.
	Imaged int
}

type KindCounts struct {
	Kind string
	Counts
}

// Sample is one row of the population time series.
type Sample struct {
	Tick  uint64
	Time  float64
	Kinds []KindCounts
}

type AgentState struct {
	ID       uint64
	Kind     string
	Location geom.Vector3
	// Roll, Pitch and Yaw of the orientation in radians.
	Roll, Pitch, Yaw float64
	Contacts         []uint64
	// Meanders counts the steps where a meander bias overrode the move.
	Meanders int
}

type Snapshot struct {
	RunID  string
	Tick   uint64
	Time   float64
	Agents []AgentState
	Kinds  []KindCounts
}

func (s *Simulation) Snapshot() Snapshot {
	now := s.schedule.Now()
	snap := Snapshot{
		RunID:  s.runID,
		Tick:   now.Number,
		Time:   now.Time,
		Agents: make([]AgentState, 0, len(s.agents)),
		Kinds:  s.kindCounts(),
	}
	for _, a := range s.agents {
		roll, pitch, yaw := a.Orientation().ToEulerAngles()
		st := AgentState{
			ID: a.ID(), Kind: a.Kind().String(), Location: a.Location(),
			Roll: roll, Pitch: pitch, Yaw: yaw,
			Meanders: a.Meanders(),
		}
		for _, c := range a.Contacts() {
			st.Contacts = append(st.Contacts, c.ID())
		}
		snap.Agents = append(snap.Agents, st)
	}
	return snap
}

// Counts reports the population counters of kind. Unconfigured kinds report
// zero.
func (s *Simulation) Counts(kind agent.Kind) Counts {
	if c, ok := s.counts[kind]; ok {
		return *c
	}
	return Counts{}
}

func (s *Simulation) TimeSeries() []Sample {
	return append([]Sample(nil), s.series...)
}

// Digest fingerprints every agent position. Equal seeds give equal digests.
func (s *Simulation) Digest() uint64 { return s.field.Digest() }

func (s *Simulation) kindCounts() []KindCounts {
	out := make([]KindCounts, len(s.kinds))
	for i, k := range s.kinds {
		out[i] = KindCounts{Kind: k.String(), Counts: *s.counts[k]}
	}
	return out
}

func (s *Simulation) sample(t system.Tick) Sample {
	return Sample{Tick: t.Number, Time: t.Time, Kinds: s.kindCounts()}
}

var seriesHeader = []string{"tick", "time", "kind", "live", "imaged", "spawned", "consumed", "exited", "recovered"}

// WriteTimeSeriesCSV writes one row per sampled tick and kind.
func WriteTimeSeriesCSV(w io.Writer, series []Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(seriesHeader); err != nil {
		return err
	}
	itoa := strconv.Itoa
	for _, smp := range series {
		for _, k := range smp.Kinds {
			row := []string{
				strconv.FormatUint(smp.Tick, 10),
				strconv.FormatFloat(smp.Time, 'g', -1, 64),
				k.Kind,
				itoa(k.Live), itoa(k.Imaged), itoa(k.Spawned), itoa(k.Consumed), itoa(k.Exited), itoa(k.Recovered),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
