package skillgraph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/skillgraph/pkg/graph"
	"github.com/aretw0/skillgraph/pkg/scheduler"
)

// ErrTickLimit is returned when a skill is still running after MaxTicks.
var ErrTickLimit = errors.New("tick limit reached")

// RunOptions controls how a skill is driven to completion.
type RunOptions struct {
	// MaxTicks stops the run with ErrTickLimit. Zero means no limit.
	MaxTicks int
	// Interval paces the ticks. Zero ticks as fast as possible.
	Interval time.Duration
}

// Run starts a skill on g and ticks it until it finishes, the context is
// done or the tick limit is hit. The skill is returned in every case where
// it was started, so callers can inspect how far it got.
//
// Two runs of graphs with the same ID never overlap.
func (e *Engine) Run(ctx context.Context, g *graph.Graph, opts RunOptions) (*scheduler.Skill, error) {
	var skill *scheduler.Skill
	err := e.withLock(ctx, "run:"+g.ID, func() error {
		skill = e.sched.NewSkill(ctx, g)
		if err := skill.Start(); err != nil {
			skill = nil
			return err
		}
		return drive(ctx, skill, opts)
	})
	return skill, err
}

func drive(ctx context.Context, skill *scheduler.Skill, opts RunOptions) error {
	var tick <-chan time.Time
	if opts.Interval > 0 {
		t := time.NewTicker(opts.Interval)
		defer t.Stop()
		tick = t.C
	}

	for skill.State() == scheduler.Running {
		if opts.MaxTicks > 0 && skill.Frame() >= opts.MaxTicks {
			return fmt.Errorf("skill %s after %d ticks: %w", skill.ID, skill.Frame(), ErrTickLimit)
		}
		if tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		skill.Update()
	}
	return nil
}
