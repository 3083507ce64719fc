package sequencer

import (
	"fmt"
	"slices"
)

// GetSteps returns the execution order needed to reach final: every
// step from which final is reachable, each exactly once, with final
// last. Returns ErrUnknownStep if final is not registered.
//
// For acyclic prerequisites the result is a topological order — each
// dependency precedes all of its dependents. Inside a dependency cycle
// no such order exists; cycle members are emitted contiguously in a
// deterministic order instead of failing. Steps unrelated to final
// never appear.
//
// The walk is breadth-first over predecessors starting at final. When
// a step is encountered again through a longer path it is hoisted
// toward the front of the final order, which is what pushes shared
// prerequisites ahead of everything that needs them.
func (s *Sequencer) GetSteps(final string) ([]string, error) {
	if !s.steps[final] {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStep, final)
	}

	result := []string{final}
	seen := map[string]bool{final: true}
	todo := slices.Clone(s.preds[final])

	for len(todo) > 0 {
		step := todo[0]
		todo = todo[1:]

		if seen[step] {
			// Reached again via a longer path: move to the tail so the
			// closing reversal places it earlier. The final step keeps
			// its position.
			if step != final {
				i := slices.Index(result, step)
				result = slices.Delete(result, i, i+1)
				result = append(result, step)
			}
			continue
		}

		seen[step] = true
		result = append(result, step)
		todo = append(todo, s.preds[step]...)
	}

	slices.Reverse(result)
	return result, nil
}
