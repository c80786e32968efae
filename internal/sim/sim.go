// Package sim owns a single simulation run: the seeded generator, the field,
// the agent population and the schedule that steps them.
package sim

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/zeusync/cellsim/internal/config"
	"github.com/zeusync/cellsim/internal/core/agent"
	"github.com/zeusync/cellsim/internal/core/events"
	"github.com/zeusync/cellsim/internal/core/events/bus"
	"github.com/zeusync/cellsim/internal/core/field"
	"github.com/zeusync/cellsim/internal/core/geom"
	"github.com/zeusync/cellsim/internal/core/motility"
	"github.com/zeusync/cellsim/internal/core/observability/log"
	"github.com/zeusync/cellsim/internal/core/rng"
	"github.com/zeusync/cellsim/internal/core/system"
)

var (
	ErrAlreadyStarted = errors.New("simulation already started")
	ErrUnknownKind    = errors.New("kind not configured")
)

// densityWarning is the packing fraction above which placement is likely to
// struggle.
const densityWarning = 0.4

var _ agent.Environment = (*Simulation)(nil)

type Simulation struct {
	runID  string
	cfg    *config.Config
	logger log.Log
	bus    bus.EventBus

	rng      *rand.Rand
	field    *field.Field
	settings motility.Settings
	schedule *system.Schedule

	types  map[agent.Kind]*agent.Type
	kinds  []agent.Kind
	seq    agent.Sequence
	agents []*agent.Agent
	counts map[agent.Kind]*Counts
	series []Sample

	populated bool
}

// New validates cfg and builds a simulation ready to be populated. A nil
// eventBus gets a private one.
func New(cfg *config.Config, logger log.Log, eventBus bus.EventBus) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if eventBus == nil {
		eventBus = bus.New()
	}
	runID := uuid.NewString()
	s := &Simulation{
		runID:    runID,
		cfg:      cfg,
		logger:   logger.With(log.String("component", "sim"), log.String("run_id", runID)),
		bus:      eventBus,
		rng:      rng.New(cfg.Seed),
		settings: cfg.Settings(),
		types:    make(map[agent.Kind]*agent.Type, len(cfg.Types)),
		counts:   make(map[agent.Kind]*Counts, len(cfg.Types)),
	}

	var err error
	if s.field, err = field.New(cfg.Field, s.rng); err != nil {
		return nil, err
	}
	for i := range cfg.Types {
		tc := &cfg.Types[i]
		factory, err := motility.NewFactory(tc.Paradigm, s.settings, s.rng)
		if err != nil {
			return nil, fmt.Errorf("type %s: %w", tc.Kind, err)
		}
		typ, err := tc.AgentType(factory)
		if err != nil {
			return nil, fmt.Errorf("type %s: %w", tc.Kind, err)
		}
		s.types[typ.Kind] = typ
		s.kinds = append(s.kinds, typ.Kind)
		s.counts[typ.Kind] = &Counts{}
	}

	if s.schedule, err = system.NewSchedule(cfg.TimeSlice, s.logger); err != nil {
		return nil, err
	}
	steps := []struct {
		name  string
		order system.Order
		step  system.Steppable
	}{
		{"field", system.OrderField, system.StepFunc(s.stepField)},
		{"agents", system.OrderAgents, &agentsStep{sim: s}},
		{"series", system.OrderRecorders, system.StepFunc(s.stepSeries)},
	}
	for _, st := range steps {
		if err := s.schedule.Add(st.name, st.order, st.step); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Simulation) RunID() string               { return s.runID }
func (s *Simulation) Config() *config.Config      { return s.cfg }
func (s *Simulation) Field() *field.Field         { return s.field }
func (s *Simulation) Settings() motility.Settings { return s.settings }
func (s *Simulation) Bus() bus.EventBus           { return s.bus }
func (s *Simulation) Schedule() *system.Schedule  { return s.schedule }

// AddRecorder schedules st after the agents have moved.
func (s *Simulation) AddRecorder(name string, st system.Steppable) error {
	return s.schedule.Add(name, system.OrderRecorders, st)
}

// Populate creates the initial population of every configured type in
// configuration order.
func (s *Simulation) Populate() error {
	if s.populated {
		return ErrAlreadyStarted
	}
	s.populated = true

	var occupied float64
	for i := range s.cfg.Types {
		tc := &s.cfg.Types[i]
		typ := s.types[s.kinds[i]]
		occupied += float64(tc.Count) * typ.Volume()
		for n := 0; n < tc.Count; n++ {
			if tc.Placement == config.PlacementPositions {
				p := tc.Positions[n]
				if err := s.placeAt(typ, geom.Vec(p[0], p[1], p[2])); err != nil {
					return err
				}
				continue
			}
			if _, err := s.Spawn(typ.Kind); err != nil {
				return fmt.Errorf("populate %s: %w", typ.Kind, err)
			}
		}
	}

	fields := []log.Field{log.Int("agents", len(s.agents)), log.Float64("field_volume", s.field.Config().Volume())}
	for _, k := range s.kinds {
		fields = append(fields, log.Int(k.String(), s.counts[k].Live))
	}
	s.logger.Info("population placed", fields...)
	if density := occupied / s.field.Config().Volume(); density > densityWarning {
		s.logger.Warn("agent packing is dense, placement may stall", log.Float64("density", density))
	}
	return nil
}

func (s *Simulation) placeAt(typ *agent.Type, loc geom.Vector3) error {
	a := agent.New(s.seq.Next(), typ, s.rng)
	if !s.field.IsOccupiable(loc, a) {
		s.logger.Warn("explicit position overlaps another agent or a restricted zone",
			log.Uint64("id", a.ID()), log.String("kind", typ.Kind.String()), log.Floats("location", loc.Slice()...))
	}
	if err := s.field.Place(a, loc); err != nil {
		return err
	}
	s.admit(a, loc)
	return nil
}

// Spawn creates an agent of kind at a random occupiable location. It becomes
// active from the next tick.
func (s *Simulation) Spawn(kind agent.Kind) (*agent.Agent, error) {
	typ, ok := s.types[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	a := agent.New(s.seq.Next(), typ, s.rng)
	loc, err := s.field.PlaceRandomly(a)
	if err != nil {
		return nil, err
	}
	s.admit(a, loc)
	return a, nil
}

func (s *Simulation) admit(a *agent.Agent, loc geom.Vector3) {
	tick := s.schedule.Now().Number
	a.Placed(loc, tick, true)
	s.agents = append(s.agents, a)
	c := s.counts[a.Kind()]
	c.Live++
	c.Spawned++
	if s.logger.Enabled(log.LevelDebug) {
		s.logger.Debug("agent spawned", log.Uint64("id", a.ID()), log.String("kind", a.Kind().String()),
			log.Floats("location", loc.Slice()...))
	}
	s.publish(events.AgentSpawned, events.Spawned{
		RunID: s.runID, Tick: tick, ID: a.ID(), Kind: a.Kind().String(), Location: loc,
	})
}

// Retire records an agent leaving the field.
func (s *Simulation) Retire(a *agent.Agent, reason agent.RemovalReason, by *agent.Agent) {
	c := s.counts[a.Kind()]
	c.Live--
	payload := events.Removed{
		RunID: s.runID, Tick: s.schedule.Now().Number, ID: a.ID(), Kind: a.Kind().String(), Location: a.Location(),
	}
	var typ string
	switch reason {
	case agent.RemovedConsumed:
		c.Consumed++
		typ = events.AgentConsumed
		if by != nil {
			payload.By = by.ID()
		}
	case agent.RemovedExited:
		c.Exited++
		typ = events.AgentExited
	case agent.RemovedStuck:
		c.Recovered++
		typ = events.AgentRecovered
	}
	if s.logger.Enabled(log.LevelDebug) {
		s.logger.Debug("agent removed", log.Uint64("id", a.ID()), log.String("kind", a.Kind().String()),
			log.String("reason", reason.String()), log.Uint64("by", payload.By))
	}
	s.publish(typ, payload)
}

func (s *Simulation) publish(typ string, data any) {
	if err := s.bus.Publish(bus.NewEvent(typ, s.runID, data)); err != nil {
		s.logger.Warn("event handler failed", log.String("event", typ), log.Error(err))
	}
}
