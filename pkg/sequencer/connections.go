package sequencer

// StrongConnections partitions all registered steps into strongly
// connected components using Tarjan's algorithm.
//
// Components are emitted in reverse topological order over the
// condensation: every component appears before any component that can
// reach it. A step outside any cycle forms a singleton component;
// isolated steps are included. Roots and successors are visited in
// insertion order, so the result is deterministic for a given
// construction sequence.
//
// Runs in O(N+E) time.
func (s *Sequencer) StrongConnections() [][]string {
	var (
		index   = make(map[string]int, len(s.order))
		lowlink = make(map[string]int, len(s.order))
		onStack = make(map[string]bool, len(s.order))
		stack   []string
		counter int
		result  [][]string
	)

	var connect func(step string)
	connect = func(step string) {
		index[step] = counter
		lowlink[step] = counter
		counter++
		stack = append(stack, step)
		onStack[step] = true

		for _, succ := range s.succs[step] {
			if _, visited := index[succ]; !visited {
				connect(succ)
				lowlink[step] = min(lowlink[step], lowlink[succ])
			} else if onStack[succ] {
				lowlink[step] = min(lowlink[step], index[succ])
			}
		}

		// step is the root of a component: pop the stack down to it.
		if lowlink[step] == index[step] {
			var component []string
			for {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[top] = false
				component = append(component, top)
				if top == step {
					break
				}
			}
			result = append(result, component)
		}
	}

	for _, step := range s.order {
		if _, visited := index[step]; !visited {
			connect(step)
		}
	}
	return result
}
