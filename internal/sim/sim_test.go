package sim

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/cellsim/internal/config"
	"github.com/zeusync/cellsim/internal/core/agent"
	"github.com/zeusync/cellsim/internal/core/events"
	"github.com/zeusync/cellsim/internal/core/events/bus"
	"github.com/zeusync/cellsim/internal/core/observability/log"
)

func newSim(t *testing.T, cfg *config.Config) *Simulation {
	t.Helper()
	s, err := New(cfg, log.NewNop(), nil)
	require.NoError(t, err)
	return s
}

func TestSameSeedSameRun(t *testing.T) {
	run := func(seed uint64) (uint64, Counts) {
		cfg := config.Default()
		cfg.Seed = seed
		s := newSim(t, cfg)
		require.NoError(t, s.Run(context.Background(), 40))
		return s.Digest(), s.Counts(agent.KindFragment)
	}
	d1, c1 := run(7)
	d2, c2 := run(7)
	d3, _ := run(8)
	assert.Equal(t, d1, d2)
	assert.Equal(t, c1, c2)
	assert.NotEqual(t, d1, d3)
}

func TestReplacementKeepsPopulationConstant(t *testing.T) {
	cfg := config.Default()
	s := newSim(t, cfg)
	require.NoError(t, s.Populate())
	for i := 0; i < 60; i++ {
		require.NoError(t, s.Step())
		frag := s.Counts(agent.KindFragment)
		mac := s.Counts(agent.KindMacrophage)
		require.Equal(t, 100, frag.Live, "tick %d", i)
		require.Equal(t, 18, mac.Live, "tick %d", i)
		require.Equal(t, frag.Spawned-frag.Consumed-frag.Exited-frag.Recovered, frag.Live)
	}
	assert.Len(t, s.Agents(), 118)
	assert.Equal(t, 118, s.Field().Len())
	for _, a := range s.Agents() {
		assert.False(t, a.Removed())
		if a.Kind() == agent.KindMacrophage {
			assert.LessOrEqual(t, a.Location().Distance(s.Field().Center()), cfg.Field.Radius+cfg.Types[1].Diameter+cfg.MaxSpeed*cfg.TimeSlice)
		}
	}
}

func TestNoOverlapAfterSteps(t *testing.T) {
	s := newSim(t, config.Default())
	require.NoError(t, s.Run(context.Background(), 30))
	agents := s.Agents()
	for i, a := range agents {
		for _, b := range agents[i+1:] {
			d := a.Location().Distance(b.Location())
			require.GreaterOrEqual(t, d, a.Radius()+b.Radius()-1e-6, "agents %d and %d overlap", a.ID(), b.ID())
		}
	}
}

func TestSpawnedAgentsWaitForNextTick(t *testing.T) {
	cfg := config.Default()
	s := newSim(t, cfg)
	require.NoError(t, s.Populate())

	var spawned []uint64
	_, err := s.Bus().Subscribe(events.AgentSpawned, func(e bus.Event) error {
		spawned = append(spawned, e.Data().(events.Spawned).ID)
		return nil
	})
	require.NoError(t, err)

	for i := 0; i < 400 && len(spawned) == 0; i++ {
		require.NoError(t, s.Step())
	}
	require.NotEmpty(t, spawned, "expected at least one replacement")
	for _, a := range s.Agents() {
		for _, id := range spawned {
			if a.ID() != id {
				continue
			}
			start, ok := a.StartLocation()
			require.True(t, ok)
			assert.Equal(t, start, a.Location(), "agent %d moved in the tick it was created", id)
			assert.Equal(t, s.Schedule().Now().Number-1, a.BornAt())
		}
	}
}

func TestLifecycleEvents(t *testing.T) {
	b := bus.New()
	seen := map[string]int{}
	for _, typ := range []string{events.AgentSpawned, events.AgentConsumed, events.AgentExited, events.AgentRecovered, events.TickCompleted} {
		_, err := b.Subscribe(typ, func(e bus.Event) error {
			seen[e.Type()]++
			return nil
		})
		require.NoError(t, err)
	}
	_, err := b.Subscribe(events.TickCompleted, func(bus.Event) error { return errors.New("handler failure") })
	require.NoError(t, err)

	s, err := New(config.Default(), log.NewNop(), b)
	require.NoError(t, err)
	require.NoError(t, s.Run(context.Background(), 25), "handler errors never abort a tick")

	c := s.Counts(agent.KindFragment)
	assert.Equal(t, 25, seen[events.TickCompleted])
	assert.Equal(t, c.Spawned+s.Counts(agent.KindMacrophage).Spawned, seen[events.AgentSpawned])
	assert.Equal(t, c.Consumed, seen[events.AgentConsumed])
	assert.Equal(t, c.Exited, seen[events.AgentExited])
	assert.Equal(t, c.Recovered, seen[events.AgentRecovered])
}

func TestTimeSeriesAndCSV(t *testing.T) {
	cfg := config.Default()
	cfg.SampleEvery = 2
	s := newSim(t, cfg)
	require.NoError(t, s.Run(context.Background(), 10))

	series := s.TimeSeries()
	require.Len(t, series, 5)
	for i, smp := range series {
		assert.Equal(t, uint64(2*i), smp.Tick)
		assert.InDelta(t, float64(2*i)*cfg.TimeSlice, smp.Time, 1e-12)
		require.Len(t, smp.Kinds, 2)
		assert.Equal(t, "fragment", smp.Kinds[0].Kind)
		assert.Equal(t, "macrophage", smp.Kinds[1].Kind)
		assert.Equal(t, 18, smp.Kinds[1].Live)
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTimeSeriesCSV(&buf, series))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1+5*2)
	assert.Equal(t, seriesHeader, rows[0])
	assert.Equal(t, []string{"0", "0", "fragment"}, rows[1][:3])
}

func TestSnapshot(t *testing.T) {
	s := newSim(t, config.Default())
	require.NoError(t, s.Run(context.Background(), 3))
	snap := s.Snapshot()

	assert.Equal(t, s.RunID(), snap.RunID)
	assert.Equal(t, uint64(3), snap.Tick)
	assert.InDelta(t, 1.5, snap.Time, 1e-12)
	require.Len(t, snap.Agents, 118)
	ids := map[uint64]bool{}
	for _, a := range snap.Agents {
		ids[a.ID] = true
		for _, v := range []float64{a.Roll, a.Pitch, a.Yaw} {
			assert.False(t, math.IsNaN(v))
		}
	}
	for _, a := range snap.Agents {
		for _, c := range a.Contacts {
			assert.NotEqual(t, a.ID, c)
		}
	}
	assert.Len(t, ids, 118)
	require.Len(t, snap.Kinds, 2)
	assert.Equal(t, 100, snap.Kinds[0].Live)
}

func TestExplicitPositions(t *testing.T) {
	cfg, err := config.LoadFile("../config/testdata/box.yaml")
	require.NoError(t, err)
	s := newSim(t, cfg)
	require.NoError(t, s.Populate())

	var macs []*agent.Agent
	for _, a := range s.Agents() {
		if a.Kind() == agent.KindMacrophage {
			macs = append(macs, a)
		}
	}
	require.Len(t, macs, 2)
	assert.Equal(t, 25.0, macs[0].Location().X)
	assert.Equal(t, 75.0, macs[1].Location().X)
	assert.Equal(t, 30, s.Counts(agent.KindBCell).Live)

	require.NoError(t, s.RunUntilEnd(context.Background()))
	assert.Equal(t, uint64(10), s.Schedule().Now().Number)
	assert.Equal(t, 30, s.Counts(agent.KindBCell).Live)
}

func TestRunLifecycle(t *testing.T) {
	s := newSim(t, config.Default())
	require.NoError(t, s.Populate())
	assert.ErrorIs(t, s.Populate(), ErrAlreadyStarted)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Run(ctx, 5), context.Canceled)
	assert.Equal(t, uint64(0), s.Schedule().Now().Number)

	_, err := s.Spawn(agent.KindBCell)
	assert.ErrorIs(t, err, ErrUnknownKind)

	m, ok := s.Schedule().Metrics("agents")
	require.True(t, ok)
	assert.Zero(t, m.ExecutionCount)
	require.NoError(t, s.Step())
	m, _ = s.Schedule().Metrics("agents")
	assert.Equal(t, uint64(118), m.EntitiesProcessed)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.TimeSlice = 0
	_, err := New(cfg, log.NewNop(), nil)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}
