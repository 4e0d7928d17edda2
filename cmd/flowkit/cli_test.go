package main

import (
	"bytes"
	"strings"
	"testing"
)

// quiet sends command output to a buffer for the duration of the test.
func quiet(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = prev })
	return &buf
}

// notTerminal disables interactive prompts for the duration of the test.
func notTerminal(t *testing.T) {
	t.Helper()
	interactive = func() bool { return false }
	t.Cleanup(func() { interactive = isTerminal })
}

func TestUsageListsCommandsInOrder(t *testing.T) {
	out := quiet(t)
	if err := dispatch(nil); err != nil {
		t.Fatalf("dispatch(nil): %v", err)
	}
	got := out.String()
	if !strings.HasPrefix(got, "flowkit — validate, generate and wire flow files\n") {
		t.Errorf("missing banner:\n%s", got)
	}
	last := -1
	for _, name := range []string{"validate", "new", "id", "wire", "unwire", "boilerplate"} {
		i := strings.Index(got, "\n  "+name+" ")
		if i < 0 {
			t.Fatalf("usage missing %q:\n%s", name, got)
		}
		if i < last {
			t.Errorf("%q listed out of order", name)
		}
		last = i
	}
}

func TestHelpFlagsMatchBareInvocation(t *testing.T) {
	out := quiet(t)
	if err := dispatch(nil); err != nil {
		t.Fatal(err)
	}
	want := out.String()
	for _, args := range [][]string{{"-h"}, {"--help"}, {"help"}} {
		out.Reset()
		if err := dispatch(args); err != nil {
			t.Fatalf("dispatch(%v): %v", args, err)
		}
		if out.String() != want {
			t.Errorf("dispatch(%v) printed different usage", args)
		}
	}
}

func TestHelpWireAndUnwire(t *testing.T) {
	tests := []struct {
		name string
		want []string
	}{
		{"wire", []string{
			"Usage: flowkit wire <flow.json> <source-id> <target-id> [port]",
			"Missing ports are created empty.",
			"rewritten only when the wire\nis new.",
		}},
		{"unwire", []string{
			"Usage: flowkit unwire <flow.json> <source-id> <target-id> [port]",
			"Ports are kept even when they become empty.",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := quiet(t)
			if err := dispatch([]string{"help", tt.name}); err != nil {
				t.Fatal(err)
			}
			for _, w := range tt.want {
				if !strings.Contains(out.String(), w) {
					t.Errorf("help %s missing %q:\n%s", tt.name, w, out.String())
				}
			}
		})
	}
}

func TestHelpNewListsTemplates(t *testing.T) {
	out := quiet(t)
	if err := dispatch([]string{"help", "new"}); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"mqtt", "http-api", "data-pipeline", "error-handler"} {
		if !strings.Contains(out.String(), "\n  "+name+" ") {
			t.Errorf("help new missing template %q:\n%s", name, out.String())
		}
	}
}

func TestHelpBoilerplateListsSnippets(t *testing.T) {
	out := quiet(t)
	if err := dispatch([]string{"help", "boilerplate"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Snippets: async, context") {
		t.Errorf("got:\n%s", out.String())
	}
}

func TestHelpUnknownCommand(t *testing.T) {
	out := quiet(t)
	if err := dispatch([]string{"help", "merge"}); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), `flowkit: unknown command "merge"`) {
		t.Errorf("got:\n%s", out.String())
	}
}

func TestUnknownCommand(t *testing.T) {
	quiet(t)
	err := dispatch([]string{"lint", "flow.json"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.HasPrefix(err.Error(), `unknown command "lint"`) || !strings.Contains(err.Error(), "flowkit help") {
		t.Errorf("got %q", err)
	}
}

func TestNewWithoutTemplateOffTerminal(t *testing.T) {
	out := quiet(t)
	notTerminal(t)
	err := dispatch([]string{"new"})
	if err == nil || err.Error() != "usage: flowkit new <template> [output.json]" {
		t.Fatalf("got %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestWrongArgCountGivesCommandUsage(t *testing.T) {
	quiet(t)
	notTerminal(t)
	tests := [][]string{
		{"validate"},
		{"validate", "a.json", "b.json"},
		{"new", "mqtt", "out.json", "extra"},
		{"id", "1", "2"},
		{"wire", "flow.json", "a"},
		{"unwire", "flow.json", "a", "b", "0", "1"},
		{"boilerplate"},
	}
	for _, args := range tests {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			err := dispatch(args)
			if err == nil {
				t.Fatal("expected usage error")
			}
			if want := "usage: flowkit " + args[0] + " "; !strings.HasPrefix(err.Error(), want) {
				t.Errorf("got %q, want prefix %q", err, want)
			}
		})
	}
}
