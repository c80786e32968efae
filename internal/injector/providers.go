package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/cellsim/internal/config"
	"github.com/zeusync/cellsim/internal/core/events/bus"
	"github.com/zeusync/cellsim/internal/core/observability/log"
	"github.com/zeusync/cellsim/internal/sim"
	"github.com/zeusync/cellsim/internal/stream"
)

// App is everything the command needs for one run.
type App struct {
	Config *config.Config
	Logger *log.Logger
	Bus    bus.EventBus
	Sim    *sim.Simulation
	Hub    *stream.Hub
}

var ProviderSet = wire.NewSet(
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	ProvideBus,
	ProvideSimulation,
	ProvideHub,
	wire.Struct(new(App), "*"),
)

func ProvideLogger(cfg *config.Config) (*log.Logger, error) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return log.New(level), nil
}

func ProvideBus() bus.EventBus { return bus.New() }

func ProvideSimulation(cfg *config.Config, logger log.Log, eventBus bus.EventBus) (*sim.Simulation, error) {
	return sim.New(cfg, logger, eventBus)
}

func ProvideHub(logger log.Log) *stream.Hub { return stream.NewHub(logger) }
