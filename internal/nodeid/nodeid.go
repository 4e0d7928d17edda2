// Package nodeid generates node identifiers: 32 lowercase hexadecimal
// characters with no delimiters.
package nodeid

import (
	"strings"

	"github.com/google/uuid"
)

// Length is the number of characters in a generated ID.
const Length = 32

// Source produces node IDs. Templates take a Source so callers can supply
// deterministic IDs.
type Source func() string

// New returns a random ID derived from a version 4 UUID.
func New() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// NewN returns n random IDs.
func NewN(n int) []string {
	ids := make([]string, 0, max(n, 0))
	for i := 0; i < n; i++ {
		ids = append(ids, New())
	}
	return ids
}

// Valid reports whether s looks like an ID produced by New.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
