// Package entrypoint parses export entry specifications of the form
//
//	name = prefix:suffix [flag1, flag2=value]
//
// as found in distribution metadata for scripts and plugins. The
// suffix and the bracketed flag list are optional.
package entrypoint

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidSpec is returned for strings that look like an export
// entry but are malformed.
var ErrInvalidSpec = errors.New("invalid export entry")

var entryRE = regexp.MustCompile(
	`(?P<name>[^\[]\S*)\s*=\s*(?P<callable>\w+(?:[:.]\w+)*)\s*` +
		`(?:\[\s*(?P<flags>[\w-]+(?:=\w+)?(?:,\s*\w+(?:=\w+)?)*)\s*\])?`)

// Entry is one parsed export entry.
type Entry struct {
	Name   string
	Prefix string
	Suffix string
	Flags  []string
}

// Value returns the callable the entry exports, "prefix:suffix" or
// just the prefix when no suffix was given.
func (e *Entry) Value() string {
	if e.Suffix == "" {
		return e.Prefix
	}
	return e.Prefix + ":" + e.Suffix
}

func (e *Entry) String() string {
	s := e.Name + " = " + e.Value()
	if len(e.Flags) > 0 {
		s += " [" + strings.Join(e.Flags, ",") + "]"
	}
	return s
}

// Parse interprets spec as an export entry. Strings that are not
// entry specifications at all yield (nil, nil); strings that are but
// are malformed yield ErrInvalidSpec.
func Parse(spec string) (*Entry, error) {
	m := entryRE.FindStringSubmatch(spec)
	if m == nil {
		if strings.ContainsAny(spec, "[]") {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSpec, spec)
		}
		return nil, nil
	}

	name, callable, flagGroup := m[1], m[2], m[3]

	var prefix, suffix string
	switch strings.Count(callable, ":") {
	case 0:
		prefix = callable
	case 1:
		prefix, suffix, _ = strings.Cut(callable, ":")
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidSpec, spec)
	}

	var flags []string
	if flagGroup == "" {
		// Brackets in the spec without a well-formed flag list mean
		// the list was malformed, not absent.
		if strings.ContainsAny(spec, "[]") {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSpec, spec)
		}
	} else {
		for _, f := range strings.Split(flagGroup, ",") {
			flags = append(flags, strings.TrimSpace(f))
		}
	}

	return &Entry{Name: name, Prefix: prefix, Suffix: suffix, Flags: flags}, nil
}
