package wire_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowkit/internal/flow"
	"flowkit/internal/validate"
	"flowkit/internal/wire"
)

func parse(t *testing.T, s string) *flow.Document {
	t.Helper()
	doc, err := flow.Parse([]byte(s))
	require.NoError(t, err)
	return doc
}

func wiresOf(t *testing.T, doc *flow.Document, id string) string {
	t.Helper()
	n := doc.Find(id)
	require.NotNil(t, n)
	raw, ok := n.Raw(flow.KeyWires)
	require.True(t, ok, "node %s has no wires", id)
	return string(raw)
}

const base = `[
	{"id":"T","type":"tab"},
	{"id":"a","type":"inject","z":"T","x":1,"y":1},
	{"id":"b","type":"debug","z":"T","x":2,"y":1,"wires":[]},
	{"id":"c","type":"debug","z":"T","x":3,"y":1,"wires":[["b"]]}
]`

func TestConnectCreatesWires(t *testing.T) {
	doc := parse(t, base)
	added, err := wire.Connect(doc, "a", "b", 0)
	require.NoError(t, err)
	assert.True(t, added)
	assert.JSONEq(t, `[["b"]]`, wiresOf(t, doc, "a"))
	res := validate.Document(doc)
	assert.True(t, res.OK())
}

func TestConnectPadsPorts(t *testing.T) {
	doc := parse(t, base)
	added, err := wire.Connect(doc, "b", "c", 2)
	require.NoError(t, err)
	assert.True(t, added)
	assert.JSONEq(t, `[[],[],["c"]]`, wiresOf(t, doc, "b"))
}

func TestConnectAppends(t *testing.T) {
	doc := parse(t, base)
	added, err := wire.Connect(doc, "c", "a", 0)
	require.NoError(t, err)
	assert.True(t, added)
	assert.JSONEq(t, `[["b","a"]]`, wiresOf(t, doc, "c"))
}

func TestConnectExistingWire(t *testing.T) {
	doc := parse(t, base)
	added, err := wire.Connect(doc, "c", "b", 0)
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, `[["b"]]`, wiresOf(t, doc, "c"))
}

func TestConnectSameTargetOtherPort(t *testing.T) {
	doc := parse(t, base)
	added, err := wire.Connect(doc, "c", "b", 1)
	require.NoError(t, err)
	assert.True(t, added)
	assert.JSONEq(t, `[["b"],["b"]]`, wiresOf(t, doc, "c"))
}

func TestConnectToTab(t *testing.T) {
	doc := parse(t, base)
	added, err := wire.Connect(doc, "a", "T", 0)
	require.NoError(t, err)
	assert.True(t, added)
}

func TestConnectErrors(t *testing.T) {
	tests := []struct {
		name           string
		doc            string
		source, target string
		port           int
		want           error
	}{
		{"missing source", base, "zz", "b", 0, wire.ErrSourceNotFound},
		{"missing target", base, "a", "zz", 0, wire.ErrTargetNotFound},
		{"negative port", base, "a", "b", -1, wire.ErrInvalidPort},
		{"malformed wires", `[{"id":"a","wires":"b"},{"id":"b"}]`, "a", "b", 0, wire.ErrMalformedWires},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parse(t, tt.doc)
			added, err := wire.Connect(doc, tt.source, tt.target, tt.port)
			assert.False(t, added)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestConnectKeepsOtherMembers(t *testing.T) {
	doc := parse(t, `[{"id":"a","type":"x","custom":{"k":1}},{"id":"b"}]`)
	_, err := wire.Connect(doc, "a", "b", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "type", "custom", "wires"}, doc.Find("a").Keys())
}

func TestDisconnect(t *testing.T) {
	doc := parse(t, base)
	removed, err := wire.Disconnect(doc, "c", "b", 0)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.JSONEq(t, `[[]]`, wiresOf(t, doc, "c"))

	removed, err = wire.Disconnect(doc, "c", "b", 0)
	require.NoError(t, err)
	assert.False(t, removed)

	removed, err = wire.Disconnect(doc, "c", "b", 5)
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = wire.Disconnect(doc, "zz", "b", 0)
	assert.ErrorIs(t, err, wire.ErrSourceNotFound)
}
