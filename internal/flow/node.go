package flow

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Recognized node member keys.
const (
	KeyID    = "id"
	KeyType  = "type"
	KeyZ     = "z"
	KeyName  = "name"
	KeyWires = "wires"
	KeyX     = "x"
	KeyY     = "y"
	KeyFunc  = "func"
)

// Node types with special meaning.
const (
	TypeTab      = "tab"      // container node referenced by z
	TypeFunction = "function" // code-bearing node; func holds its body
)

var (
	// ErrNotObject is returned when editing an element that is not a JSON object.
	ErrNotObject = errors.New("node is not a JSON object")

	// ErrWires indicates a wires member that is not an array of arrays of node IDs.
	ErrWires = errors.New("wires must be an array of arrays of node IDs")
)

// Str is the typed view of an optional string member.
// A JSON null counts as present with an empty value.
type Str struct {
	Value   string
	Present bool // key exists
	Valid   bool // value is a JSON string or null
}

type member struct {
	key string
	val json.RawMessage
}

// Node is one element of a flow document. Members are kept in their
// original key order, including the ones flowkit does not interpret, so an
// edited node re-encodes without losing fields.
type Node struct {
	members []member
	raw     json.RawMessage // non-object element, kept verbatim
}

// NewNode returns an empty object node.
func NewNode() *Node {
	return &Node{members: []member{}}
}

// IsObject reports whether the element was a JSON object.
func (n *Node) IsObject() bool { return n.raw == nil }

// ID returns the id member.
func (n *Node) ID() Str { return n.str(KeyID) }

// Type returns the type member.
func (n *Node) Type() Str { return n.str(KeyType) }

// Z returns the tab reference.
func (n *Node) Z() Str { return n.str(KeyZ) }

// Name returns the name member.
func (n *Node) Name() Str { return n.str(KeyName) }

// Func returns the code body of a function node.
func (n *Node) Func() Str { return n.str(KeyFunc) }

// IsTab reports whether the node is a tab container.
func (n *Node) IsTab() bool {
	t := n.Type()
	return t.Valid && t.Value == TypeTab
}

// Has reports whether key is present.
func (n *Node) Has(key string) bool {
	_, ok := n.Raw(key)
	return ok
}

// Raw returns the undecoded value of key.
func (n *Node) Raw(key string) (json.RawMessage, bool) {
	for _, m := range n.members {
		if m.key == key {
			return m.val, true
		}
	}
	return nil, false
}

// Keys returns member keys in document order.
func (n *Node) Keys() []string {
	keys := make([]string, len(n.members))
	for i, m := range n.members {
		keys[i] = m.key
	}
	return keys
}

func (n *Node) str(key string) Str {
	raw, ok := n.Raw(key)
	if !ok {
		return Str{}
	}
	if isNull(raw) {
		return Str{Present: true, Valid: true}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return Str{Present: true}
	}
	return Str{Value: s, Present: true, Valid: true}
}

// Set sets key to the JSON encoding of v, replacing an existing member in
// place or appending a new one.
func (n *Node) Set(key string, v any) error {
	if !n.IsObject() {
		return ErrNotObject
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	n.put(key, b)
	return nil
}

func (n *Node) put(key string, val json.RawMessage) {
	for i := range n.members {
		if n.members[i].key == key {
			n.members[i].val = val
			return
		}
	}
	n.members = append(n.members, member{key: key, val: val})
}

// Ports decodes wires into one target list per output port. A node without
// wires has no ports. Anything but an array of arrays of strings yields
// ErrWires.
func (n *Node) Ports() ([][]string, error) {
	raw, ok := n.Raw(KeyWires)
	if !ok {
		return nil, nil
	}
	if isNull(raw) {
		return nil, ErrWires
	}
	var ports [][]string
	if err := json.Unmarshal(raw, &ports); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWires, err)
	}
	for i, p := range ports {
		if p == nil {
			return nil, fmt.Errorf("%w: wires[%d] is null", ErrWires, i)
		}
	}
	return ports, nil
}

// SetPorts replaces wires. Nil port lists are written as empty arrays.
func (n *Node) SetPorts(ports [][]string) error {
	out := make([][]string, len(ports))
	for i, p := range ports {
		if p == nil {
			p = []string{}
		}
		out[i] = p
	}
	return n.Set(KeyWires, out)
}

// UnmarshalJSON decodes an object preserving key order. A repeated key keeps
// its first position and its last value. Non-object values are kept
// verbatim and reported through IsObject.
func (n *Node) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		n.members = nil
		n.raw = append(json.RawMessage(nil), trimmed...)
		return nil
	}
	n.raw = nil
	n.members = []member{}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if _, err := dec.Token(); err != nil {
		return err
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected object key %v", tok)
		}
		var val json.RawMessage
		if err := dec.Decode(&val); err != nil {
			return fmt.Errorf("member %q: %w", key, err)
		}
		n.put(key, val)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// MarshalJSON encodes members in order.
func (n *Node) MarshalJSON() ([]byte, error) {
	if !n.IsObject() {
		return n.raw, nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range n.members {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(m.key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(m.val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// kindOf names the JSON kind of raw by its first byte.
func kindOf(raw []byte) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "nothing"
	}
	switch raw[0] {
	case '{':
		return "object"
	case '[':
		return "array"
	case '"':
		return "string"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	default:
		return "number"
	}
}
