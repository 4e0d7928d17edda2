// Package template generates boilerplate flow documents. Every template
// produces one tab plus nodes that live on it, wired only to each other, so
// its output validates cleanly.
package template

import (
	"fmt"
	"sort"

	"flowkit/internal/flow"
	"flowkit/internal/nodeid"
)

// Template is a named flow generator.
type Template interface {
	// Name returns the identifier used on the command line (e.g. "mqtt").
	Name() string

	// Describe returns a one-line summary.
	Describe() string

	// Generate builds a fresh document, drawing every node ID from ids.
	Generate(ids nodeid.Source) *flow.Document
}

// builtin adapts a generator function to Template.
type builtin struct {
	name, desc string
	gen        func(ids nodeid.Source) *flow.Document
}

func (b builtin) Name() string                              { return b.name }
func (b builtin) Describe() string                          { return b.desc }
func (b builtin) Generate(ids nodeid.Source) *flow.Document { return b.gen(ids) }

// registry holds the built-in templates keyed by name.
var registry = map[string]Template{}

func register(t Template) {
	if _, dup := registry[t.Name()]; dup {
		panic(fmt.Sprintf("template: %q registered twice", t.Name()))
	}
	registry[t.Name()] = t
}

func init() {
	register(builtin{"mqtt", "MQTT subscribe and publish", mqttFlow})
	register(builtin{"http-api", "HTTP endpoint with a function and response", httpAPIFlow})
	register(builtin{"data-pipeline", "Injected data transformed, filtered and debugged", dataPipelineFlow})
	register(builtin{"error-handler", "Function failure caught and logged", errorHandlerFlow})
}

// Lookup returns the template called name.
func Lookup(name string) (Template, bool) {
	t, ok := registry[name]
	return t, ok
}

// Names returns all template names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// member is one key/value of a node under construction.
type member struct {
	key string
	val any
}

func m(key string, val any) member { return member{key, val} }

// node builds a node from literal members. Template values are static, so an
// encoding failure is a programming error.
func node(members ...member) *flow.Node {
	n := flow.NewNode()
	for _, mb := range members {
		if err := n.Set(mb.key, mb.val); err != nil {
			panic(fmt.Sprintf("template: %v", err))
		}
	}
	return n
}

func tab(id, label, info string) *flow.Node {
	return node(
		m(flow.KeyID, id),
		m(flow.KeyType, flow.TypeTab),
		m("label", label),
		m("disabled", false),
		m("info", info),
	)
}

// to wires a single output port to targets.
func to(targets ...string) [][]string {
	return [][]string{append([]string{}, targets...)}
}

// none is a node with no output ports.
var none = [][]string{}
