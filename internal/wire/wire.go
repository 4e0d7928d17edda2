// Package wire edits the wires of a flow document.
package wire

import (
	"errors"
	"fmt"
	"slices"

	"flowkit/internal/flow"
)

var (
	ErrSourceNotFound = errors.New("source node not found")
	ErrTargetNotFound = errors.New("target node not found")
	ErrInvalidPort    = errors.New("output port must not be negative")
	ErrMalformedWires = flow.ErrWires
)

// Connect wires output port of source to target. Missing wires become an
// empty list and ports up to port are created empty. It reports false when
// the wire already existed, in which case doc is left untouched.
func Connect(doc *flow.Document, source, target string, port int) (bool, error) {
	if port < 0 {
		return false, fmt.Errorf("%w: %d", ErrInvalidPort, port)
	}
	src := doc.Find(source)
	if src == nil {
		return false, fmt.Errorf("%w: %q", ErrSourceNotFound, source)
	}
	if doc.Find(target) == nil {
		return false, fmt.Errorf("%w: %q", ErrTargetNotFound, target)
	}

	ports, err := src.Ports()
	if err != nil {
		return false, fmt.Errorf("node %q: %w", source, err)
	}
	if port < len(ports) && slices.Contains(ports[port], target) {
		return false, nil
	}
	for len(ports) <= port {
		ports = append(ports, []string{})
	}
	ports[port] = append(ports[port], target)
	if err := src.SetPorts(ports); err != nil {
		return false, fmt.Errorf("node %q: %w", source, err)
	}
	return true, nil
}

// Disconnect removes target from output port of source. It reports false
// when no such wire existed. Ports are never removed, so the port numbering
// of the remaining wires is unchanged.
func Disconnect(doc *flow.Document, source, target string, port int) (bool, error) {
	if port < 0 {
		return false, fmt.Errorf("%w: %d", ErrInvalidPort, port)
	}
	src := doc.Find(source)
	if src == nil {
		return false, fmt.Errorf("%w: %q", ErrSourceNotFound, source)
	}
	ports, err := src.Ports()
	if err != nil {
		return false, fmt.Errorf("node %q: %w", source, err)
	}
	if port >= len(ports) {
		return false, nil
	}
	i := slices.Index(ports[port], target)
	if i < 0 {
		return false, nil
	}
	ports[port] = slices.Delete(ports[port], i, i+1)
	if err := src.SetPorts(ports); err != nil {
		return false, fmt.Errorf("node %q: %w", source, err)
	}
	return true, nil
}
