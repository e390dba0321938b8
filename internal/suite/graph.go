// Package suite runs scenarios. Scenarios are grouped into stages, stages form
// a dependency graph, and a stage only starts once every stage it needs has
// passed. The session bootstrap is a setup stage the board stages need.
package suite

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/gotrs-io/kanban-e2e/internal/fixture"
	"github.com/gotrs-io/kanban-e2e/internal/session"
)

// ScenarioFunc is the body of a scenario. It must honour ctx and return an
// error for any failed step.
type ScenarioFunc func(ctx context.Context, f *fixture.Fixture) error

// Scenario is one independently runnable check.
type Scenario struct {
	Name string
	Run  ScenarioFunc
}

// SetupFunc produces the session snapshot dependent stages restore.
type SetupFunc func(ctx context.Context) (session.Snapshot, error)

// Stage is a named group of scenarios.
type Stage struct {
	Name string
	// Needs names the stages that must pass before this one starts.
	Needs []string
	// Setup makes this a setup stage. It runs once instead of scenarios and
	// its snapshot is handed to authenticated stages that need it.
	Setup SetupFunc
	// Authenticated scenarios start from the session snapshot.
	Authenticated bool
	Scenarios     []Scenario
}

// Graph is a validated set of stages in dependency order.
type Graph struct {
	stages []Stage
	index  map[string]int
	// levels groups stage indexes that may run together.
	levels [][]int
}

// NewGraph validates stages and orders them. Stage names must be unique,
// every need must name a known stage, there must be no cycles, and an
// authenticated stage must need a setup stage.
func NewGraph(stages ...Stage) (*Graph, error) {
	g := &Graph{
		stages: stages,
		index:  make(map[string]int, len(stages)),
	}
	for i, s := range stages {
		if s.Name == "" {
			return nil, fmt.Errorf("stage %d has no name", i)
		}
		if _, ok := g.index[s.Name]; ok {
			return nil, fmt.Errorf("duplicate stage %q", s.Name)
		}
		if s.Setup != nil && len(s.Scenarios) > 0 {
			return nil, fmt.Errorf("setup stage %q cannot have scenarios", s.Name)
		}
		g.index[s.Name] = i
	}
	for _, s := range stages {
		for _, need := range s.Needs {
			if _, ok := g.index[need]; !ok {
				return nil, fmt.Errorf("stage %q needs unknown stage %q", s.Name, need)
			}
		}
		if s.Authenticated && g.setupFor(s) < 0 {
			return nil, fmt.Errorf("authenticated stage %q needs a setup stage", s.Name)
		}
	}

	depth := make([]int, len(stages))
	state := make([]int, len(stages)) // 0 unvisited, 1 visiting, 2 done
	var visit func(i int) error
	visit = func(i int) error {
		switch state[i] {
		case 1:
			return fmt.Errorf("dependency cycle through stage %q", stages[i].Name)
		case 2:
			return nil
		}
		state[i] = 1
		for _, need := range stages[i].Needs {
			j := g.index[need]
			if err := visit(j); err != nil {
				return err
			}
			depth[i] = max(depth[i], depth[j]+1)
		}
		state[i] = 2
		return nil
	}
	for i := range stages {
		if err := visit(i); err != nil {
			return nil, err
		}
	}
	for i, d := range depth {
		for len(g.levels) <= d {
			g.levels = append(g.levels, nil)
		}
		g.levels[d] = append(g.levels[d], i)
	}
	return g, nil
}

// setupFor returns the index of the setup stage s directly needs, or -1.
func (g *Graph) setupFor(s Stage) int {
	for _, need := range s.Needs {
		if i := g.index[need]; g.stages[i].Setup != nil {
			return i
		}
	}
	return -1
}

// Stages returns the stages in declaration order.
func (g *Graph) Stages() []Stage {
	return slices.Clone(g.stages)
}

// Stage looks up a stage by name.
func (g *Graph) Stage(name string) (Stage, bool) {
	i, ok := g.index[name]
	if !ok {
		return Stage{}, false
	}
	return g.stages[i], true
}

// Levels returns stage names grouped by dependency depth. Stages in one level
// do not depend on each other.
func (g *Graph) Levels() [][]string {
	out := make([][]string, len(g.levels))
	for d, level := range g.levels {
		for _, i := range level {
			out[d] = append(out[d], g.stages[i].Name)
		}
	}
	return out
}

// Select returns the graph restricted to the named stages and everything they
// transitively need.
func (g *Graph) Select(names ...string) (*Graph, error) {
	if len(names) == 0 {
		return g, nil
	}
	keep := make(map[string]bool)
	var add func(name string) error
	add = func(name string) error {
		i, ok := g.index[name]
		if !ok {
			return fmt.Errorf("unknown stage %q", name)
		}
		if keep[name] {
			return nil
		}
		keep[name] = true
		for _, need := range g.stages[i].Needs {
			if err := add(need); err != nil {
				return err
			}
		}
		return nil
	}
	var errs []error
	for _, n := range names {
		errs = append(errs, add(n))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	var stages []Stage
	for _, s := range g.stages {
		if keep[s.Name] {
			stages = append(stages, s)
		}
	}
	return NewGraph(stages...)
}

// Len counts the scenarios in the graph, not counting setup stages.
func (g *Graph) Len() int {
	n := 0
	for _, s := range g.stages {
		n += len(s.Scenarios)
	}
	return n
}
