package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aretw0/skillgraph"
	"github.com/aretw0/skillgraph/pkg/domain"
	"github.com/aretw0/skillgraph/pkg/graph"
)

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	Ref      string
	MaxTicks int
	Interval time.Duration
	// Params are name=value overrides applied before the skill starts.
	Params []string
	JSON   bool
	// Save writes the graph, parameter values included, back to the store.
	Save  bool
	Watch bool
}

// RunResult is what a run reports once the skill stops.
type RunResult struct {
	Graph       string                   `json:"graph"`
	Skill       skillgraph.SkillStatus   `json:"skill"`
	TickLimited bool                     `json:"tick_limited,omitempty"`
	Parameters  []domain.ParameterRecord `json:"parameters"`
}

// Execute dispatches the run command to a single run or watch mode.
func Execute(ctx context.Context, eng *skillgraph.Engine, opts RunOptions, out io.Writer) error {
	if opts.Watch {
		if !IsDocumentPath(opts.Ref) {
			return fmt.Errorf("--watch needs a document file, got %q", opts.Ref)
		}
		return RunWatch(ctx, eng, opts, out)
	}
	res, err := RunOnce(ctx, eng, opts)
	if res != nil {
		if perr := PrintResult(out, res, opts.JSON); perr != nil {
			return perr
		}
	}
	return err
}

// RunOnce resolves the graph, applies parameter overrides and drives one
// skill to completion. Hitting the tick limit is reported in the result,
// not as an error.
func RunOnce(ctx context.Context, eng *skillgraph.Engine, opts RunOptions) (*RunResult, error) {
	overrides, err := ParseAssignments(opts.Params)
	if err != nil {
		return nil, err
	}
	g, err := ResolveGraph(ctx, eng, opts.Ref)
	if err != nil {
		return nil, err
	}
	for name, v := range overrides {
		found, err := g.SetParameterValue(name, v)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", name, err)
		}
		if !found {
			return nil, fmt.Errorf("parameter %s: %w", name, domain.ErrParameterNotFound)
		}
	}

	skill, err := eng.Run(ctx, g, skillgraph.RunOptions{MaxTicks: opts.MaxTicks, Interval: opts.Interval})
	if skill == nil {
		return nil, err
	}
	res := &RunResult{Graph: g.ID, Skill: skillgraph.StatusOf(skill), Parameters: records(g)}
	if errors.Is(err, skillgraph.ErrTickLimit) {
		res.TickLimited, err = true, nil
	}
	if err != nil {
		return res, err
	}

	if opts.Save {
		if err := eng.Save(ctx, g); err != nil {
			return res, fmt.Errorf("save %s: %w", g.ID, err)
		}
	}
	return res, nil
}

// PrintResult writes res as JSON or as a short human summary.
func PrintResult(w io.Writer, res *RunResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	printSystemMessage(w, "Skill %s %s after %d frames.", shortID(res.Skill.ID), res.Skill.State, res.Skill.Frame)
	if res.TickLimited {
		printSystemMessage(w, "Tick limit reached; still running: %v", res.Skill.Running)
	}
	for _, p := range res.Parameters {
		fmt.Fprintf(w, "  %s (%s) = %v\n", p.Name, p.Type, p.Value)
	}
	return nil
}

func records(g *graph.Graph) []domain.ParameterRecord {
	params := g.Parameters()
	out := make([]domain.ParameterRecord, len(params))
	for i, p := range params {
		out[i] = p.Record()
	}
	return out
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
