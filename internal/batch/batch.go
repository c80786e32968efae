// Package batch runs independent replicates of one configuration
// concurrently, each with its own seed and generator.
package batch

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/cellsim/internal/config"
	"github.com/zeusync/cellsim/internal/core/observability/log"
	"github.com/zeusync/cellsim/internal/sim"
)

var ErrNoReplicates = errors.New("replicates must be positive")

type Result struct {
	Replicate int
	Seed      uint64
	RunID     string
	Ticks     uint64
	Kinds     []sim.KindCounts
	Digest    uint64
}

// Run executes replicates copies of cfg to their end time, replicate i
// seeded with cfg.Seed+i. At most workers replicates run at once; workers
// <= 0 means no limit. The first failure cancels the rest.
func Run(ctx context.Context, cfg *config.Config, replicates, workers int, logger log.Log) ([]Result, error) {
	if replicates <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrNoReplicates, replicates)
	}
	logger = logger.With(log.String("component", "batch"))
	results := make([]Result, replicates)

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i := 0; i < replicates; i++ {
		g.Go(func() error {
			res, err := runOne(ctx, cfg, i, logger)
			if err != nil {
				return fmt.Errorf("replicate %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	logger.Info("batch complete", log.Int("replicates", replicates), log.Int("workers", workers))
	return results, nil
}

func runOne(ctx context.Context, base *config.Config, i int, logger log.Log) (Result, error) {
	cfg := *base
	cfg.Seed = base.Seed + uint64(i)
	s, err := sim.New(&cfg, logger.With(log.Int("replicate", i)), nil)
	if err != nil {
		return Result{}, err
	}
	if err := s.RunUntilEnd(ctx); err != nil {
		return Result{}, err
	}
	snap := s.Snapshot()
	return Result{
		Replicate: i,
		Seed:      cfg.Seed,
		RunID:     s.RunID(),
		Ticks:     snap.Tick,
		Kinds:     snap.Kinds,
		Digest:    s.Digest(),
	}, nil
}
