package graph

import (
	"encoding/json"
	"fmt"

	"github.com/distkit/distkit/pkg/sequencer"
)

// Graph is the canonical serialization format for step graphs.
// Used for file export/import, API responses, and cache values.
//
// The format is human-readable and designed for round-trip fidelity:
// export → re-import produces an identical graph, including order.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node identifies one step in the graph.
type Node struct {
	ID string `json:"id"`
}

// Edge represents one dependency: Succ depends on Pred.
type Edge struct {
	Pred string `json:"pred"`
	Succ string `json:"succ"`
}

// FromSequencer converts a sequencer graph to its serialization format.
// Node and edge order follow the sequencer's insertion order, so the
// output is deterministic for a given build sequence.
func FromSequencer(s *sequencer.Sequencer) Graph {
	steps := s.Steps()
	edges := s.Edges()

	out := Graph{
		Nodes: make([]Node, len(steps)),
		Edges: make([]Edge, len(edges)),
	}
	for i, step := range steps {
		out.Nodes[i] = Node{ID: step}
	}
	for i, e := range edges {
		out.Edges[i] = Edge{Pred: e.Pred, Succ: e.Succ}
	}
	return out
}

// ToSequencer builds a Sequencer from its serialization format.
// Nodes are registered first in declaration order, then edges; a malformed
// edge (such as a self-dependency) fails the whole conversion.
func ToSequencer(g Graph) (*sequencer.Sequencer, error) {
	s := sequencer.New()
	for _, n := range g.Nodes {
		s.AddNode(n.ID)
	}
	for _, e := range g.Edges {
		if err := s.Add(e.Pred, e.Succ); err != nil {
			return nil, fmt.Errorf("add edge %s -> %s: %w", e.Pred, e.Succ, err)
		}
	}
	return s, nil
}

// Unmarshal deserializes JSON bytes to a Graph.
func Unmarshal(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, err
	}
	return g, nil
}
