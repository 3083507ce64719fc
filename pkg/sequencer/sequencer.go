package sequencer

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrUnknownStep is returned by [Sequencer.GetSteps] and
	// [Sequencer.RemoveNode] when the named step has never been
	// registered (or has since been removed).
	ErrUnknownStep = errors.New("unknown step")

	// ErrDependencyNotFound is returned by [Sequencer.Remove] when the
	// pred→succ edge does not exist. The graph is left untouched.
	ErrDependencyNotFound = errors.New("dependency not found")

	// ErrSelfDependency is returned by [Sequencer.Add] when pred and
	// succ name the same step. A step cannot be its own prerequisite.
	ErrSelfDependency = errors.New("step cannot depend on itself")
)

// Edge is a single dependency relation: Pred must run before Succ.
type Edge struct {
	Pred string
	Succ string
}

// Sequencer is a mutable directed graph of named steps.
// Steps are identified by opaque string labels; an edge pred→succ means
// pred must execute before succ.
//
// All internal collections preserve insertion order, which makes every
// derived ordering deterministic. The zero value is not usable — use
// [New].
type Sequencer struct {
	order     []string            // step registration order
	steps     map[string]bool     // membership
	preds     map[string][]string // step -> prerequisite steps, insertion-ordered
	succs     map[string][]string // step -> dependent steps, insertion-ordered
	edgeCount int
}

// New creates an empty Sequencer.
func New() *Sequencer {
	return &Sequencer{
		steps: make(map[string]bool),
		preds: make(map[string][]string),
		succs: make(map[string][]string),
	}
}

// register adds step to the registry if it is new, preserving the
// position of steps registered earlier.
func (s *Sequencer) register(step string) {
	if !s.steps[step] {
		s.steps[step] = true
		s.order = append(s.order, step)
	}
}

// AddNode registers a step with no dependencies in either direction.
// Registering an existing step is a no-op and keeps its original
// insertion position. Steps added here participate in
// [Sequencer.StrongConnections] and [Sequencer.Dot] like any other.
func (s *Sequencer) AddNode(step string) {
	s.register(step)
}

// Add records that pred must execute before succ.
// Unknown endpoints are registered automatically, pred first. Adding an
// edge that already exists is a no-op. Returns ErrSelfDependency if
// pred and succ are the same step; the graph is not modified in that
// case.
func (s *Sequencer) Add(pred, succ string) error {
	if pred == succ {
		return fmt.Errorf("%w: %s", ErrSelfDependency, pred)
	}
	s.register(pred)
	s.register(succ)
	if slices.Contains(s.succs[pred], succ) {
		return nil
	}
	s.succs[pred] = append(s.succs[pred], succ)
	s.preds[succ] = append(s.preds[succ], pred)
	s.edgeCount++
	return nil
}

// Remove deletes the pred→succ edge. Both steps stay registered.
// Returns ErrDependencyNotFound if the edge does not exist (including
// when either step is unknown); no state is modified on failure.
func (s *Sequencer) Remove(pred, succ string) error {
	si := slices.Index(s.succs[pred], succ)
	pi := slices.Index(s.preds[succ], pred)
	if si < 0 || pi < 0 {
		return fmt.Errorf("%w: %s -> %s", ErrDependencyNotFound, pred, succ)
	}
	s.succs[pred] = slices.Delete(s.succs[pred], si, si+1)
	s.preds[succ] = slices.Delete(s.preds[succ], pi, pi+1)
	s.edgeCount--
	return nil
}

// RemoveNode deletes a step together with every edge touching it, in
// both directions. Returns ErrUnknownStep if the step is not
// registered; no state is modified on failure.
func (s *Sequencer) RemoveNode(step string) error {
	if !s.steps[step] {
		return fmt.Errorf("%w: %s", ErrUnknownStep, step)
	}
	for _, succ := range s.succs[step] {
		s.preds[succ] = slices.DeleteFunc(s.preds[succ], func(p string) bool { return p == step })
		s.edgeCount--
	}
	for _, pred := range s.preds[step] {
		s.succs[pred] = slices.DeleteFunc(s.succs[pred], func(x string) bool { return x == step })
		s.edgeCount--
	}
	delete(s.succs, step)
	delete(s.preds, step)
	delete(s.steps, step)
	s.order = slices.DeleteFunc(s.order, func(x string) bool { return x == step })
	return nil
}

// IsStep reports whether the step is currently registered, either via
// [Sequencer.AddNode] or as an endpoint of [Sequencer.Add].
func (s *Sequencer) IsStep(step string) bool { return s.steps[step] }

// Steps returns all registered steps in insertion order.
// The returned slice is a copy.
func (s *Sequencer) Steps() []string { return slices.Clone(s.order) }

// Predecessors returns the direct prerequisites of step in the order
// they were added. Returns nil for unknown steps or steps without
// prerequisites. The returned slice is a copy.
func (s *Sequencer) Predecessors(step string) []string { return slices.Clone(s.preds[step]) }

// Successors returns the direct dependents of step in the order they
// were added. Returns nil for unknown steps or steps without
// dependents. The returned slice is a copy.
func (s *Sequencer) Successors(step string) []string { return slices.Clone(s.succs[step]) }

// Edges returns every dependency edge, ordered by the pred's insertion
// position and then by edge insertion within each pred.
func (s *Sequencer) Edges() []Edge {
	edges := make([]Edge, 0, s.edgeCount)
	for _, pred := range s.order {
		for _, succ := range s.succs[pred] {
			edges = append(edges, Edge{Pred: pred, Succ: succ})
		}
	}
	return edges
}

// StepCount returns the number of registered steps.
func (s *Sequencer) StepCount() int { return len(s.order) }

// EdgeCount returns the number of dependency edges.
func (s *Sequencer) EdgeCount() int { return s.edgeCount }

// isolated reports whether step has no edges in either direction.
func (s *Sequencer) isolated(step string) bool {
	return len(s.succs[step]) == 0 && len(s.preds[step]) == 0
}
