package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/distkit/distkit/pkg/sequencer"
)

// =============================================================================
// Graph Serialization API
// =============================================================================

// Marshal converts a sequencer graph to JSON bytes.
// Output order follows the sequencer's insertion order.
func Marshal(s *sequencer.Sequencer) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeTo(s, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile writes a sequencer graph to a JSON file.
// The file is created with 0644 permissions.
func WriteFile(s *sequencer.Sequencer, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeTo(s, f)
}

// Write writes a sequencer graph as JSON to an io.Writer.
// Use Marshal for in-memory serialization or WriteFile for files.
func Write(s *sequencer.Sequencer, w io.Writer) error {
	return writeTo(s, w)
}

// ReadFile reads a JSON file and returns the decoded sequencer graph.
// Returns an error for malformed JSON or malformed edges.
func ReadFile(path string) (*sequencer.Sequencer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readFrom(f)
}

// Read decodes a JSON graph from an io.Reader into a Sequencer.
// Use ReadFile for files or pass bytes.NewReader for in-memory data.
func Read(r io.Reader) (*sequencer.Sequencer, error) {
	return readFrom(r)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeTo(s *sequencer.Sequencer, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromSequencer(s)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readFrom(r io.Reader) (*sequencer.Sequencer, error) {
	var g Graph
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return ToSequencer(g)
}
