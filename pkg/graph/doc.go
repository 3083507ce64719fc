// Package graph provides serialization for dependency-step graphs.
//
// This package defines the canonical wire format for distkit's graph data,
// used for JSON files, API responses, caching, and cross-tool
// interoperability.
//
// # Architecture
//
// The package sits at the serialization boundary between the internal
// representation and external formats:
//
//   - [Graph], [Node], [Edge]: Serialization types (this package)
//   - pkg/sequencer.Sequencer: Internal graph representation
//
// Use [FromSequencer]/[ToSequencer] to convert between them.
//
// # Graph Serialization
//
// Graphs use a simple node-link JSON format. Edges point from prerequisite
// to dependent:
//
//	{
//	  "nodes": [{"id": "check"}, {"id": "build"}],
//	  "edges": [{"pred": "check", "succ": "build"}]
//	}
//
// Common operations:
//
//	s, _ := graph.ReadFile("steps.json")    // File → Sequencer
//	graph.WriteFile(s, "output.json")       // Sequencer → File
//	data, _ := graph.Marshal(s)             // Sequencer → []byte
//	parsed, _ := graph.Unmarshal(data)      // []byte → Graph
//
// # Determinism
//
// Node and edge order in serialized output follow the sequencer's insertion
// order, and importing preserves that order. Exporting a graph and importing
// it again yields a sequencer with identical iteration behavior.
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph
