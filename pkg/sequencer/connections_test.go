package sequencer

import (
	"slices"
	"testing"
)

func TestStrongConnections_Cycle(t *testing.T) {
	s := New()
	s.Add("A", "B")
	s.Add("B", "C")
	s.Add("C", "D")
	s.Add("C", "A")

	want := [][]string{{"D"}, {"C", "B", "A"}}
	got := s.StrongConnections()
	if !slices.EqualFunc(got, want, slices.Equal) {
		t.Errorf("StrongConnections() = %v, want %v", got, want)
	}
}

func TestStrongConnections_TwoCycles(t *testing.T) {
	s := New()
	s.Add("a", "b")
	s.Add("b", "a")
	s.Add("c", "d")
	s.Add("d", "c")
	s.Add("b", "c")

	want := [][]string{{"d", "c"}, {"b", "a"}}
	got := s.StrongConnections()
	if !slices.EqualFunc(got, want, slices.Equal) {
		t.Errorf("StrongConnections() = %v, want %v", got, want)
	}
}

func TestStrongConnections_IncludesIsolated(t *testing.T) {
	s := New()
	s.Add("a", "b")
	s.AddNode("lonely")

	got := s.StrongConnections()
	found := false
	for _, comp := range got {
		if slices.Equal(comp, []string{"lonely"}) {
			found = true
		}
	}
	if !found {
		t.Errorf("StrongConnections() = %v, missing singleton [lonely]", got)
	}
}

func TestStrongConnections_Empty(t *testing.T) {
	s := New()
	if got := s.StrongConnections(); len(got) != 0 {
		t.Errorf("StrongConnections() = %v, want empty", got)
	}
}

// TestStrongConnections_Partition checks the structural guarantees on
// the acyclic build graph: every step lands in exactly one singleton
// component, and emission order is reverse topological (a component
// never appears after one of its prerequisites' components).
func TestStrongConnections_Partition(t *testing.T) {
	s := buildGraph()
	comps := s.StrongConnections()

	if len(comps) != s.StepCount() {
		t.Fatalf("got %d components, want %d singletons", len(comps), s.StepCount())
	}

	pos := make(map[string]int, s.StepCount())
	for i, comp := range comps {
		if len(comp) != 1 {
			t.Fatalf("component %v has %d members, want 1", comp, len(comp))
		}
		if _, dup := pos[comp[0]]; dup {
			t.Fatalf("step %s appears in more than one component", comp[0])
		}
		pos[comp[0]] = i
	}
	for _, step := range s.Steps() {
		if _, ok := pos[step]; !ok {
			t.Errorf("step %s missing from decomposition", step)
		}
	}

	// Reverse topological: succ's component is emitted before pred's.
	for _, e := range s.Edges() {
		if pos[e.Succ] >= pos[e.Pred] {
			t.Errorf("component of %s at %d should precede component of %s at %d",
				e.Succ, pos[e.Succ], e.Pred, pos[e.Pred])
		}
	}
}

func TestStrongConnections_Deterministic(t *testing.T) {
	first := buildGraph().StrongConnections()
	for range 10 {
		got := buildGraph().StrongConnections()
		if !slices.EqualFunc(got, first, slices.Equal) {
			t.Fatalf("StrongConnections() varied between runs: %v vs %v", got, first)
		}
	}
}
