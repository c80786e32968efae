package motility

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/cellsim/internal/core/geom"
	"github.com/zeusync/cellsim/internal/core/rng"
)

type stubAgent struct {
	loc      geom.Vector3
	start    geom.Vector3
	hasStart bool
	speed    float64
	chance   float64
	meanders int
}

func (s *stubAgent) Location() geom.Vector3 { return s.loc }
func (s *stubAgent) Speed() (float64, bool) { return s.speed, s.speed != 0 }
func (s *stubAgent) MeanderChance() float64 { return s.chance }
func (s *stubAgent) AddMeander()            { s.meanders++ }
func (s *stubAgent) StartLocation() (geom.Vector3, bool) {
	return s.start, s.hasStart
}

var settings = Settings{TimeSlice: 0.5, MaxSpeed: 25}

func allConfigs() []Config {
	return []Config{
		{Name: NameBallistic, Ballistic: BallisticConfig{Speed: 400}},
		{Name: NameBrownian, Brownian: BrownianConfig{SpeedStd: 100}},
		{Name: NameBrownianMeander, BrownianMeander: BrownianMeanderConfig{Speed: 10}},
		{Name: NameHomogeneousCRW, HomogeneousCRW: HomogeneousCRWConfig{
			PitchRateMean: 1, PitchRateStd: 2, RollRateMean: -1, SpeedMean: 30, SpeedStd: 40,
		}},
		{Name: NameHeterogeneousCRW, HeterogeneousCRW: HeterogeneousCRWConfig{
			Pitch: Hyper{MeanMean: 1, MeanStd: 0.5, StdMean: 1, StdStd: 0.2},
			Roll:  Hyper{MeanMean: 2, MeanStd: 0.5, StdMean: 1, StdStd: 0.2},
			Speed: Hyper{MeanMean: 20, MeanStd: 10, StdMean: 10, StdStd: 5},
		}},
		{Name: NameHeterogeneousBetaMeander, BetaMeander: BetaMeanderConfig{Alpha: 2, Beta: 5, Scale: 3, Speed: 5}},
		{Name: NameLevyFlight, Levy: LevyConfig{
			RestMu: 0.5, RestScale: 0.5, MotileMu: 0.5, MotileScale: 1, SpeedMu: 5, SpeedScale: 10,
		}},
	}
}

func TestEveryParadigmRespectsSpeedCapAndUnitOrientation(t *testing.T) {
	for _, cfg := range allConfigs() {
		t.Run(cfg.Name, func(t *testing.T) {
			r := rng.New(5)
			factory, err := NewFactory(cfg, settings, r)
			require.NoError(t, err)
			p := factory()
			assert.Equal(t, cfg.Name, p.Name())

			agent := &stubAgent{speed: 1e6, chance: 0.3, hasStart: true, loc: geom.Vec(3, 4, 5)}
			o := geom.RandomUniform(r)
			limit := settings.MaxSpeed*settings.TimeSlice + 1e-9
			for i := 0; i < 2000; i++ {
				o = p.NewOrientation(o, agent)
				require.InDelta(t, 1, o.Magnitude(), 1e-9)
				move := p.Move(o, agent)
				require.True(t, move.IsFinite())
				require.LessOrEqual(t, move.Length(), limit)
				agent.loc = agent.loc.Add(move)
			}
		})
	}
}

func TestBallisticKeepsHeading(t *testing.T) {
	b := NewBallistic(settings, 10)
	o := geom.RepresentRotation(0.4, 0, 0, 1)
	assert.Equal(t, o, b.NewOrientation(o, &stubAgent{}))

	move := b.Move(geom.Identity(), &stubAgent{})
	assert.True(t, move.ApproxEqual(geom.Vec(5, 0, 0), 1e-12), "move %v", move)

	// Negative speeds still move forward.
	move = NewBallistic(settings, -10).Move(geom.Identity(), &stubAgent{})
	assert.True(t, move.ApproxEqual(geom.Vec(5, 0, 0), 1e-12), "move %v", move)
}

func TestHomogeneousCRWTurnsByConfiguredRate(t *testing.T) {
	c := NewHomogeneousCRW(settings, rng.New(1), HomogeneousCRWConfig{
		PitchRateMean: 0.8, RollRateMean: 0, SpeedMean: 4,
	})
	for i := 0; i < 50; i++ {
		o := c.NewOrientation(geom.Identity(), &stubAgent{})
		// Pure pitch of +-0.4 rad about y tilts the facing out of the x-y plane.
		f := o.Facing()
		assert.InDelta(t, math.Cos(0.4), f.X, 1e-9)
		assert.InDelta(t, math.Sin(0.4), math.Abs(f.Z), 1e-9)
	}
}

func TestMeanderPointsAwayFromStart(t *testing.T) {
	p := NewBrownianMeander(settings, rng.New(2), 0)
	agent := &stubAgent{
		loc: geom.Vec(10, 0, 0), start: geom.Zero, hasStart: true,
		speed: 6, chance: 1,
	}
	move := p.Move(geom.RandomUniform(rng.New(3)), agent)
	assert.True(t, move.ApproxEqual(geom.Vec(3, 0, 0), 1e-12), "move %v", move)
	assert.Equal(t, 1, agent.meanders)

	agent.chance = -1
	move = p.Move(geom.Identity(), agent)
	assert.True(t, move.ApproxEqual(geom.Vec(-3, 0, 0), 1e-12), "move %v", move)
	assert.Equal(t, 2, agent.meanders)
}

func TestMeanderSkipsDegenerateDirection(t *testing.T) {
	p := NewHeterogeneousBetaMeander(settings, rng.New(2), BetaMeanderConfig{Alpha: 1, Beta: 1, Scale: 1})
	agent := &stubAgent{loc: geom.Zero, hasStart: true, speed: 6, chance: 1}
	move := p.Move(geom.Identity(), agent)
	assert.True(t, move.ApproxEqual(geom.Vec(3, 0, 0), 1e-12), "move %v", move)
	assert.Zero(t, agent.meanders)

	agent.hasStart = false
	agent.loc = geom.Vec(1, 1, 1)
	p.Move(geom.Identity(), agent)
	assert.Zero(t, agent.meanders)
}

func TestLevyRestTransition(t *testing.T) {
	l := NewLevyFlight(Settings{TimeSlice: 1, MaxSpeed: 25}, rng.New(8), LevyConfig{
		RestMu: 5, RestScale: 1, MotileMu: 1000, MotileScale: 1, SpeedMu: 5, SpeedScale: 1,
	})
	agent := &stubAgent{}
	o := geom.Identity()

	l.ForceRest(2)
	o = l.NewOrientation(o, agent)
	assert.Equal(t, Rest, l.State())
	assert.Zero(t, l.Move(o, agent).Length())

	o = l.NewOrientation(o, agent)
	assert.Equal(t, Motile, l.State())
	assert.Greater(t, l.Move(o, agent).Length(), 0.0)
}

func TestLevyRunEndsDuringBounce(t *testing.T) {
	l := NewLevyFlight(Settings{TimeSlice: 1, MaxSpeed: 25}, rng.New(6), LevyConfig{
		RestMu: 1000, RestScale: 1, MotileMu: 0, MotileScale: 1e-6, SpeedMu: 5, SpeedScale: 1,
	})
	o := l.NewOrientation(geom.Identity(), &stubAgent{})
	require.Equal(t, Motile, l.State())

	// Only Elapse runs while the agent is bouncing.
	for i := 0; i < 100 && l.State() == Motile; i++ {
		l.Elapse()
	}
	require.Equal(t, Rest, l.State())
	assert.Zero(t, l.Move(o, &stubAgent{}).Length())
}

func TestLevyWithoutRestNeverIdles(t *testing.T) {
	l := NewLevyFlight(Settings{TimeSlice: 1, MaxSpeed: 25}, rng.New(4), LevyConfig{
		RestMu: 0, MotileMu: 0, MotileScale: 0.1, SpeedMu: 5, SpeedScale: 1,
	})
	o := geom.Identity()
	for i := 0; i < 500; i++ {
		o = l.NewOrientation(o, &stubAgent{})
		require.Equal(t, Motile, l.State(), "step %d", i)
	}
}

func TestMeanderFallsBackToConfiguredSpeed(t *testing.T) {
	// Agents without an individual speed move at the paradigm's own speed.
	for _, p := range []Paradigm{
		NewBrownianMeander(settings, rng.New(1), 10),
		NewHeterogeneousBetaMeander(settings, rng.New(1), BetaMeanderConfig{Alpha: 2, Beta: 5, Scale: 1, Speed: 10}),
	} {
		move := p.Move(geom.Identity(), &stubAgent{hasStart: true})
		assert.InDelta(t, 5, move.Length(), 1e-12, p.Name())

		move = p.Move(geom.Identity(), &stubAgent{hasStart: true, speed: 4})
		assert.InDelta(t, 2, move.Length(), 1e-12, p.Name())
	}
}

func TestHyperDrawFoldsNegativeValues(t *testing.T) {
	mean, std := Hyper{MeanMean: -5, StdMean: -2}.draw(rng.New(1))
	assert.Equal(t, 5.0, mean)
	assert.Equal(t, 2.0, std)
}

func TestSignedFollowsGeneratorSign(t *testing.T) {
	a, b := rng.New(12), rng.New(12)
	for i := 0; i < 100; i++ {
		require.Equal(t, 2*rng.Sign(b), signed(a, 2))
	}
}

func TestLevyPositive(t *testing.T) {
	r := rng.New(10)
	for i := 0; i < 5000; i++ {
		x := LevyPositive(r, -1, 0.5)
		require.Greater(t, x, 0.0)
	}
}

func TestFactory(t *testing.T) {
	_, err := NewFactory(Config{Name: "teleport"}, settings, rng.New(1))
	assert.ErrorIs(t, err, ErrUnknownParadigm)
	assert.ErrorContains(t, err, NameLevyFlight)

	_, err = NewFactory(Config{Name: NameHeterogeneousBetaMeander}, settings, rng.New(1))
	assert.ErrorIs(t, err, ErrInvalidParams)

	_, err = NewFactory(Config{Name: NameBallistic}, Settings{}, rng.New(1))
	assert.ErrorIs(t, err, ErrInvalidParams)

	shared, err := NewFactory(Config{Name: NameBrownian, Brownian: BrownianConfig{SpeedStd: 1}}, settings, rng.New(1))
	require.NoError(t, err)
	assert.Same(t, shared(), shared())

	levy, err := NewFactory(allConfigs()[6], settings, rng.New(1))
	require.NoError(t, err)
	assert.NotSame(t, levy(), levy())
}
