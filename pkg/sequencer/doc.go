// Package sequencer provides a mutable dependency graph of named steps
// with deterministic execution ordering.
//
// # Overview
//
// Build and install workflows are naturally expressed as "step B needs
// step A first" relations. This package stores those relations as a
// directed graph and answers the question that matters to a runner:
// given a target step, in what order must everything execute?
//
// Unlike a strict DAG, the graph tolerates dependency cycles. Ordering
// degrades gracefully inside a cycle (members are emitted contiguously
// in a deterministic order) instead of failing, and [Sequencer.StrongConnections]
// exposes the cycles explicitly for callers that want to inspect them.
//
// # Basic Usage
//
// Create a graph with [New], declare dependencies with [Sequencer.Add]
// (endpoints are registered automatically), and ask for an order with
// [Sequencer.GetSteps]:
//
//	s := sequencer.New()
//	s.Add("check", "build")
//	s.Add("build", "test")
//	steps, _ := s.GetSteps("test") // [check build test]
//
// Steps without dependencies are registered with [Sequencer.AddNode].
// Edges and steps are removed with [Sequencer.Remove] and
// [Sequencer.RemoveNode]; removing a step cascades to its incident
// edges.
//
// # Determinism
//
// Every output (orders, strongly connected components, DOT text,
// accessor slices) is a pure function of the construction call
// sequence. Steps and adjacency lists are kept in insertion order and
// no map iteration order ever reaches a result. Two programs issuing
// the same calls get byte-identical output.
//
// # Export
//
// [Sequencer.Dot] renders the graph in Graphviz DOT form for quick
// inspection or downstream rendering.
//
// # Concurrency
//
// Sequencer instances are not safe for concurrent use. Callers must
// synchronize access if multiple goroutines read or modify the same
// graph.
package sequencer
