// Package validate checks flow documents for structural and referential
// integrity: unique node IDs, tab references that resolve to tab nodes, and
// wires whose targets exist.
//
// Validation is a pure function of the document. Per-node problems are
// collected as Issues; only an unparsable document or a non-array top
// level stops the checks early.
package validate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"flowkit/internal/flow"
)

// Kind classifies an Issue.
type Kind string

const (
	KindUnreadable    Kind = "unreadable"
	KindInvalidJSON   Kind = "invalid_json"
	KindNotArray      Kind = "not_array"
	KindNotObject     Kind = "not_object"
	KindMissingID     Kind = "missing_id"
	KindDuplicateID   Kind = "duplicate_id"
	KindMissingType   Kind = "missing_type"
	KindMissingTab    Kind = "missing_tab"
	KindUnknownTab    Kind = "unknown_tab"
	KindFieldType     Kind = "field_type"
	KindWiresShape    Kind = "wires_shape"
	KindPortShape     Kind = "port_shape"
	KindDanglingWire  Kind = "dangling_wire"
	KindNoCoordinates Kind = "no_coordinates"
	KindEmptyCode     Kind = "empty_code"
)

// unknownLabel names a node without an id in pass-2 messages.
const unknownLabel = "unknown"

// Issue is one error or warning.
type Issue struct {
	Kind    Kind
	Node    string // id of the offending node, "" for document-level issues
	Message string
}

func (i Issue) String() string { return i.Message }

// Result is the outcome of validating one document.
type Result struct {
	Nodes    int
	Errors   []Issue
	Warnings []Issue

	// Fatal is set when the document could not be checked at all.
	Fatal bool
}

// OK reports whether no errors were found. Warnings do not count.
func (r *Result) OK() bool { return len(r.Errors) == 0 }

// ErrorMessages returns the error messages in report order.
func (r *Result) ErrorMessages() []string { return messages(r.Errors) }

// WarningMessages returns the warning messages in report order.
func (r *Result) WarningMessages() []string { return messages(r.Warnings) }

func messages(issues []Issue) []string {
	out := make([]string, len(issues))
	for i, is := range issues {
		out[i] = is.Message
	}
	return out
}

func (r *Result) errorf(kind Kind, node, format string, a ...any) {
	r.Errors = append(r.Errors, Issue{Kind: kind, Node: node, Message: fmt.Sprintf(format, a...)})
}

func (r *Result) warnf(kind Kind, node, format string, a ...any) {
	r.Warnings = append(r.Warnings, Issue{Kind: kind, Node: node, Message: fmt.Sprintf(format, a...)})
}

// Fatal returns the single-error result for a document that could not be
// checked.
func Fatal(kind Kind, message string) Result {
	return Result{
		Errors: []Issue{{Kind: kind, Message: message}},
		Fatal:  true,
	}
}

// File reads the flow at path and validates it. A missing or unreadable
// file yields a fatal result rather than an error.
func File(path string) Result {
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return Fatal(KindUnreadable, "File not found: "+path)
	case err != nil:
		return Fatal(KindUnreadable, fmt.Sprintf("Cannot read %s: %v", path, err))
	}
	return Bytes(data)
}

// Bytes parses data as a flow document and validates it.
func Bytes(data []byte) Result {
	doc, err := flow.Parse(data)
	switch {
	case errors.Is(err, flow.ErrShape):
		return Fatal(KindNotArray, "Flow must be a JSON array")
	case err != nil:
		var pe *flow.ParseError
		if errors.As(err, &pe) && pe.Err != nil {
			return Fatal(KindInvalidJSON, "Invalid JSON: "+pe.Err.Error())
		}
		return Fatal(KindInvalidJSON, "Invalid JSON: "+err.Error())
	}
	return Document(doc)
}

// Document validates doc in two passes. The first collects node IDs and tab
// IDs; the second checks every non-tab node against them.
func Document(doc *flow.Document) Result {
	r := Result{Nodes: doc.Len()}

	ids := make(map[string]struct{}, doc.Len())
	tabs := make(map[string]struct{})
	for i, n := range doc.Nodes {
		if !n.IsObject() {
			r.errorf(KindNotObject, "", "Node at index %d is not an object", i)
			continue
		}
		id := n.ID()
		if !id.Present {
			r.errorf(KindMissingID, "", "Node missing 'id' field: %s", nameOf(n))
			continue
		}
		if !id.Valid {
			raw, _ := n.Raw(flow.KeyID)
			r.errorf(KindFieldType, "", "Node has non-string 'id' field: %s", compact(raw))
			continue
		}
		if _, dup := ids[id.Value]; dup {
			r.errorf(KindDuplicateID, id.Value, "Duplicate node ID: %s", id.Value)
		}
		ids[id.Value] = struct{}{}
		if n.IsTab() {
			tabs[id.Value] = struct{}{}
		}
	}

	for _, n := range doc.Nodes {
		if !n.IsObject() || n.IsTab() {
			continue
		}
		checkNode(&r, n, ids, tabs)
	}
	return r
}

func checkNode(r *Result, n *flow.Node, ids, tabs map[string]struct{}) {
	label := labelOf(n)

	if !n.Has(flow.KeyType) {
		r.errorf(KindMissingType, label, "Node %s missing 'type' field", label)
	}

	if raw, ok := n.Raw(flow.KeyZ); !ok {
		r.errorf(KindMissingTab, label, "Node %s missing 'z' field (tab reference)", label)
	} else if !falsy(raw) {
		z := n.Z()
		if _, known := tabs[z.Value]; !z.Valid || !known {
			r.errorf(KindUnknownTab, label, "Node %s references non-existent tab: %s", label, text(raw))
		}
	}

	if raw, ok := n.Raw(flow.KeyWires); ok {
		checkWires(r, label, raw, ids)
	}

	if !n.Has(flow.KeyX) || !n.Has(flow.KeyY) {
		r.warnf(KindNoCoordinates, label, "Node %s missing coordinates (x, y)", label)
	}

	if t := n.Type(); t.Valid && t.Value == flow.TypeFunction {
		if raw, ok := n.Raw(flow.KeyFunc); ok && emptyCode(n.Func(), raw) {
			r.warnf(KindEmptyCode, label, "Function node %s has empty code", label)
		}
	}
}

// emptyCode reports whether a func member holds no code: a blank string or
// any other empty value.
func emptyCode(f flow.Str, raw json.RawMessage) bool {
	if f.Valid {
		return strings.TrimSpace(f.Value) == ""
	}
	return falsy(raw)
}

// falsy reports whether raw is null, false, zero, "" or an empty array or
// object. Such a tab reference means "no tab".
func falsy(raw json.RawMessage) bool {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch v := v.(type) {
	case nil:
		return true
	case bool:
		return !v
	case float64:
		return v == 0
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	}
	return false
}

// checkWires reports shape problems and targets missing from ids. Shape is
// checked level by level so one bad port does not hide the others.
func checkWires(r *Result, label string, raw json.RawMessage, ids map[string]struct{}) {
	var ports []json.RawMessage
	if err := json.Unmarshal(raw, &ports); err != nil || ports == nil {
		r.errorf(KindWiresShape, label, "Node %s: 'wires' must be an array", label)
		return
	}
	for i, p := range ports {
		var targets []json.RawMessage
		if err := json.Unmarshal(p, &targets); err != nil || targets == nil {
			r.errorf(KindPortShape, label, "Node %s: wires[%d] must be an array", label, i)
			continue
		}
		for _, t := range targets {
			var id string
			if err := json.Unmarshal(t, &id); err != nil || isNullJSON(t) {
				r.errorf(KindDanglingWire, label, "Node %s wires to non-existent node: %s", label, compact(t))
				continue
			}
			if _, ok := ids[id]; !ok {
				r.errorf(KindDanglingWire, label, "Node %s wires to non-existent node: %s", label, id)
			}
		}
	}
}

// labelOf names a node in pass-2 messages. A non-string id is shown as
// written.
func labelOf(n *flow.Node) string {
	raw, ok := n.Raw(flow.KeyID)
	if !ok {
		return unknownLabel
	}
	return text(raw)
}

// nameOf names a node that has no id.
func nameOf(n *flow.Node) string {
	if name := n.Name(); name.Present && name.Valid {
		return name.Value
	}
	return "unnamed"
}

func compact(raw json.RawMessage) string {
	return strings.TrimSpace(string(raw))
}

// text returns a JSON string's value, or any other value as written.
func text(raw json.RawMessage) string {
	var s string
	if !isNullJSON(raw) && json.Unmarshal(raw, &s) == nil {
		return s
	}
	return compact(raw)
}

func isNullJSON(raw json.RawMessage) bool { return compact(raw) == "null" }
