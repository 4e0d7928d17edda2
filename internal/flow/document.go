// Package flow models flow documents: JSON arrays of node objects that form
// a directed graph. Nodes reference their container tab through z and their
// downstream nodes through wires, one target list per output port.
package flow

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Document is an ordered sequence of nodes.
type Document struct {
	Nodes []*Node
}

// Parse decodes a flow document. It returns a *ParseError for malformed JSON
// and a *ShapeError when the top-level value is not an array.
func Parse(data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	var top json.RawMessage
	if err := dec.Decode(&top); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ParseError{Offset: 0, Err: io.ErrUnexpectedEOF}
		}
		var se *json.SyntaxError
		if errors.As(err, &se) {
			return nil, &ParseError{Offset: se.Offset, Err: err}
		}
		return nil, &ParseError{Offset: -1, Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &ParseError{Offset: dec.InputOffset(), Err: errors.New("trailing data after top-level value")}
	}
	if k := kindOf(top); k != "array" {
		return nil, &ShapeError{Got: k}
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(top, &elems); err != nil {
		return nil, &ParseError{Offset: -1, Err: err}
	}
	doc := &Document{Nodes: make([]*Node, 0, len(elems))}
	for i, e := range elems {
		n := &Node{}
		if err := n.UnmarshalJSON(e); err != nil {
			return nil, &ParseError{Offset: -1, Err: fmt.Errorf("node %d: %w", i, err)}
		}
		doc.Nodes = append(doc.Nodes, n)
	}
	return doc, nil
}

// Load reads and parses the flow file at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(data)
}

// Find returns the first node whose id equals id, or nil.
func (d *Document) Find(id string) *Node {
	for _, n := range d.Nodes {
		if v := n.ID(); v.Valid && v.Present && v.Value == id {
			return n
		}
	}
	return nil
}

// Len returns the number of nodes.
func (d *Document) Len() int { return len(d.Nodes) }

// Append adds nodes to the end of the document.
func (d *Document) Append(nodes ...*Node) {
	d.Nodes = append(d.Nodes, nodes...)
}

// MarshalJSON encodes the document as an array; an empty document is [].
func (d *Document) MarshalJSON() ([]byte, error) {
	nodes := d.Nodes
	if nodes == nil {
		nodes = []*Node{}
	}
	return json.Marshal(nodes)
}

// Encode writes doc to w, indenting nested values by indent spaces. An
// indent of zero writes compact JSON.
func Encode(w io.Writer, doc *Document, indent int) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if indent > 0 {
		enc.SetIndent("", strings.Repeat(" ", indent))
	}
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode flow: %w", err)
	}
	return nil
}

// WriteFile encodes doc and writes it to path.
func WriteFile(path string, doc *Document, indent int) error {
	var buf bytes.Buffer
	if err := Encode(&buf, doc, indent); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
