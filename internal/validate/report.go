package validate

import (
	"fmt"
	"io"
)

// Report writes r as human-readable text: an error block, a warning block
// separated by a blank line, or a single success line when both are empty.
// The format is for people; callers needing structure should use Result.
func (r *Result) Report(w io.Writer) error {
	if len(r.Errors) == 0 && len(r.Warnings) == 0 {
		_, err := fmt.Fprintf(w, "✓ Flow is valid (%d nodes)\n", r.Nodes)
		return err
	}
	if len(r.Errors) > 0 {
		if _, err := fmt.Fprintln(w, "ERRORS found:"); err != nil {
			return err
		}
		for _, e := range r.Errors {
			if _, err := fmt.Fprintf(w, "  ✗ %s\n", e.Message); err != nil {
				return err
			}
		}
	}
	if len(r.Warnings) > 0 {
		if _, err := fmt.Fprintln(w, "\nWARNINGS:"); err != nil {
			return err
		}
		for _, wn := range r.Warnings {
			if _, err := fmt.Fprintf(w, "  ⚠ %s\n", wn.Message); err != nil {
				return err
			}
		}
	}
	return nil
}

// Summary returns "<n> errors, <m> warnings".
func (r *Result) Summary() string {
	return fmt.Sprintf("%d errors, %d warnings", len(r.Errors), len(r.Warnings))
}
