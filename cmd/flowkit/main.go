package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"flowkit/internal/flow"
	"flowkit/internal/logging"
	"flowkit/internal/nodeid"
	"flowkit/internal/settings"
	"flowkit/internal/template"
	"flowkit/internal/validate"
	"flowkit/internal/wire"
)

// command describes a CLI subcommand.
type command struct {
	name  string
	short string
	usage string
	long  string
	run   func(args []string) error
}

var commands = []command{
	{
		name:  "validate",
		short: "Check a flow file for structural problems",
		usage: "flowkit validate <flow.json>",
		long: `Validate a flow file.

Checks that the file is a JSON array of node objects, that node IDs are
unique, that every node sits on an existing tab and that every wire points
at an existing node. Missing coordinates and empty function code are
reported as warnings.

Exits non-zero when any error is found. Warnings alone do not fail.
`,
		run: runValidate,
	},
	{
		name:  "new",
		short: "Generate a flow from a template",
		usage: "flowkit new <template> [output.json]",
		long: `Generate a new flow from a built-in template.

Every node gets a fresh ID. The output defaults to
<output.dir>/<template>-flow.json. With no arguments on a terminal the
template and output path are asked for interactively.

Templates:
` + templateList(),
		run: runNew,
	},
	{
		name:  "id",
		short: "Print fresh node IDs",
		usage: "flowkit id [count]",
		long: `Print count fresh node IDs (default 1), one per line.

IDs are 32 lowercase hexadecimal characters.
`,
		run: runID,
	},
	{
		name:  "wire",
		short: "Connect an output port of one node to another node",
		usage: "flowkit wire <flow.json> <source-id> <target-id> [port]",
		long: `Add a wire from port (default 0) of the source node to the target node.

Missing ports are created empty. The file is rewritten only when the wire
is new.
`,
		run: runWire,
	},
	{
		name:  "unwire",
		short: "Remove a wire between two nodes",
		usage: "flowkit unwire <flow.json> <source-id> <target-id> [port]",
		long: `Remove the wire from port (default 0) of the source node to the target node.

Ports are kept even when they become empty. The file is rewritten only
when a wire was removed.
`,
		run: runUnwire,
	},
	{
		name:  "boilerplate",
		short: "Print a function-node code snippet",
		usage: "flowkit boilerplate <name>",
		long: `Print a starter snippet for a function node.

Snippets: ` + strings.Join(template.BoilerplateNames(), ", ") + `
`,
		run: runBoilerplate,
	},
}

var (
	// stdout receives command results; tests swap it for a buffer.
	stdout io.Writer = os.Stdout

	// cfg is replaced by the loaded settings in main.
	cfg = settings.Default()

	// workdir is the project root deny rules are relative to.
	workdir = "."

	// interactive reports whether prompts may be shown.
	interactive = isTerminal
)

func isTerminal() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
}

// errInvalid marks a validation failure that has already been reported.
var errInvalid = errors.New("flow is invalid")

func templateList() string {
	var sb strings.Builder
	for _, name := range template.Names() {
		t, _ := template.Lookup(name)
		fmt.Fprintf(&sb, "  %-14s %s\n", name, t.Describe())
	}
	return sb.String()
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "flowkit — validate, generate and wire flow files\n\n")
	fmt.Fprintf(w, "Usage:\n  flowkit <command> [arguments]\n\n")
	fmt.Fprintf(w, "Commands:\n")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-12s %s\n", cmd.name, cmd.short)
	}
	fmt.Fprintf(w, "\nRun 'flowkit help <command>' for details on a specific command.\n")
}

func printCommandHelp(w io.Writer, name string) {
	for _, cmd := range commands {
		if cmd.name == name {
			fmt.Fprintf(w, "Usage: %s\n\n%s", cmd.usage, cmd.long)
			return
		}
	}
	fmt.Fprintf(w, "flowkit: unknown command %q\n\nRun 'flowkit help' for usage.\n", name)
}

func dispatch(args []string) error {
	if len(args) == 0 || args[0] == "--help" || args[0] == "-h" {
		printUsage(stdout)
		return nil
	}
	if args[0] == "help" {
		if len(args) >= 2 {
			printCommandHelp(stdout, args[1])
		} else {
			printUsage(stdout)
		}
		return nil
	}
	for _, cmd := range commands {
		if cmd.name == args[0] {
			return cmd.run(args[1:])
		}
	}
	return fmt.Errorf("unknown command %q\n\nRun 'flowkit help' for usage.", args[0])
}

// ---------------------------------------------------------------------------
// validate
// ---------------------------------------------------------------------------

func runValidate(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: flowkit validate <flow.json>")
	}
	path := args[0]
	log := logging.WithComponent("validate")

	r := validate.File(path)
	log.Debug().Str("path", path).Int("nodes", r.Nodes).
		Int("errors", len(r.Errors)).Int("warnings", len(r.Warnings)).Msg("validated")
	if err := r.Report(stdout); err != nil {
		return err
	}
	if !r.OK() {
		return fmt.Errorf("%w: %s", errInvalid, r.Summary())
	}
	return nil
}

// ---------------------------------------------------------------------------
// new
// ---------------------------------------------------------------------------

func runNew(args []string) error {
	if len(args) == 0 {
		if !interactive() {
			return fmt.Errorf("usage: flowkit new <template> [output.json]")
		}
		answers, err := promptQuestions([]question{
			{Key: "template", Prompt: "Template (" + strings.Join(template.Names(), ", ") + ")"},
			{Key: "output", Prompt: "Output file (blank for default)"},
		})
		if err != nil {
			return fmt.Errorf("prompt: %w", err)
		}
		args = []string{strings.TrimSpace(answers["template"])}
		if out := strings.TrimSpace(answers["output"]); out != "" {
			args = append(args, out)
		}
	}
	if len(args) > 2 {
		return fmt.Errorf("usage: flowkit new <template> [output.json]")
	}

	name := args[0]
	t, ok := template.Lookup(name)
	if !ok {
		return fmt.Errorf("unknown template %q (available: %s)", name, strings.Join(template.Names(), ", "))
	}
	out := filepath.Join(cfg.Output.Dir, name+"-flow.json")
	if len(args) == 2 {
		out = args[1]
	}
	if err := checkWritable(out); err != nil {
		return err
	}

	doc := t.Generate(nodeid.New)
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := flow.WriteFile(out, doc, cfg.Output.Indent); err != nil {
		return err
	}
	log := logging.WithComponent("new")
	log.Debug().Str("template", name).Str("path", out).Msg("generated")
	fmt.Fprintf(stdout, "✓ Created %s flow template: %s\n  %d nodes generated\n", name, out, doc.Len())
	return nil
}

// ---------------------------------------------------------------------------
// id
// ---------------------------------------------------------------------------

func runID(args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("usage: flowkit id [count]")
	}
	count := 1
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("count must be a positive integer, got %q", args[0])
		}
		count = n
	}
	ids := nodeid.NewN(count)
	if count == 1 {
		fmt.Fprintln(stdout, ids[0])
		return nil
	}
	for i, id := range ids {
		fmt.Fprintf(stdout, "ID %d: %s\n", i+1, id)
	}
	return nil
}

// ---------------------------------------------------------------------------
// wire / unwire
// ---------------------------------------------------------------------------

func runWire(args []string) error {
	path, source, target, port, err := wireArgs("wire", args)
	if err != nil {
		return err
	}
	return editWires(path, func(doc *flow.Document) error {
		added, err := wire.Connect(doc, source, target, port)
		if err != nil {
			return err
		}
		if !added {
			fmt.Fprintf(stdout, "Wire already exists: %s -> %s\n", source, target)
			return errUnchanged
		}
		fmt.Fprintf(stdout, "✓ Wired %s (output %d) -> %s\n", source, port, target)
		return nil
	})
}

func runUnwire(args []string) error {
	path, source, target, port, err := wireArgs("unwire", args)
	if err != nil {
		return err
	}
	return editWires(path, func(doc *flow.Document) error {
		removed, err := wire.Disconnect(doc, source, target, port)
		if err != nil {
			return err
		}
		if !removed {
			fmt.Fprintf(stdout, "No wire: %s (output %d) -> %s\n", source, port, target)
			return errUnchanged
		}
		fmt.Fprintf(stdout, "✓ Unwired %s (output %d) -> %s\n", source, port, target)
		return nil
	})
}

// errUnchanged tells editWires to skip the write.
var errUnchanged = errors.New("unchanged")

func wireArgs(name string, args []string) (path, source, target string, port int, err error) {
	if len(args) < 3 || len(args) > 4 {
		return "", "", "", 0, fmt.Errorf("usage: flowkit %s <flow.json> <source-id> <target-id> [port]", name)
	}
	if len(args) == 4 {
		port, err = strconv.Atoi(args[3])
		if err != nil {
			return "", "", "", 0, fmt.Errorf("port must be an integer, got %q", args[3])
		}
	}
	return args[0], args[1], args[2], port, nil
}

// editWires loads path, applies edit and writes the result back unless
// edit returned errUnchanged.
func editWires(path string, edit func(*flow.Document) error) error {
	if err := checkWritable(path); err != nil {
		return err
	}
	doc, err := flow.Load(path)
	if err != nil {
		return err
	}
	err = edit(doc)
	if errors.Is(err, errUnchanged) {
		return nil
	}
	if err != nil {
		return err
	}
	log := logging.WithComponent("wire")
	log.Debug().Str("path", path).Msg("rewriting flow")
	return flow.WriteFile(path, doc, cfg.Output.Indent)
}

// ---------------------------------------------------------------------------
// boilerplate
// ---------------------------------------------------------------------------

func runBoilerplate(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: flowkit boilerplate <name>")
	}
	code, ok := template.Boilerplate(args[0])
	if !ok {
		return fmt.Errorf("unknown boilerplate %q (available: %s)", args[0], strings.Join(template.BoilerplateNames(), ", "))
	}
	fmt.Fprint(stdout, code)
	return nil
}

// checkWritable refuses paths matched by a permissions.deny rule.
func checkWritable(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	root, err := filepath.Abs(workdir)
	if err != nil {
		return err
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		rel = path
	}
	if cfg.IsDenied(filepath.ToSlash(rel)) {
		return fmt.Errorf("writing %s is denied by settings", path)
	}
	return nil
}

// ---------------------------------------------------------------------------
// TUI prompt helpers
// ---------------------------------------------------------------------------

// question is one prompt shown by promptQuestions.
type question struct {
	Key    string
	Prompt string
}

// promptModel is a bubbletea model that asks one question at a time.
type promptModel struct {
	questions []question
	idx       int
	inputs    []textinput.Model
	done      bool
}

func newPromptModel(questions []question) promptModel {
	inputs := make([]textinput.Model, len(questions))
	for i, q := range questions {
		ti := textinput.New()
		ti.Placeholder = q.Prompt
		ti.CharLimit = 512
		inputs[i] = ti
	}
	m := promptModel{
		questions: questions,
		inputs:    inputs,
	}
	if len(inputs) > 0 {
		m.inputs[0].Focus()
	}
	return m
}

func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.idx < len(m.inputs)-1 {
				m.inputs[m.idx].Blur()
				m.idx++
				m.inputs[m.idx].Focus()
				return m, textinput.Blink
			}
			m.done = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.inputs[m.idx], cmd = m.inputs[m.idx].Update(msg)
	return m, cmd
}

func (m promptModel) View() string {
	if m.done || len(m.questions) == 0 {
		return ""
	}
	q := m.questions[m.idx]
	return fmt.Sprintf("%s: %s\n", q.Prompt, m.inputs[m.idx].View())
}

// promptQuestions runs the TUI and returns answers keyed by question.Key.
func promptQuestions(questions []question) (map[string]string, error) {
	if len(questions) == 0 {
		return map[string]string{}, nil
	}
	p := tea.NewProgram(newPromptModel(questions))
	result, err := p.Run()
	if err != nil {
		return nil, err
	}
	final, ok := result.(promptModel)
	if !ok || !final.done {
		return nil, fmt.Errorf("prompt cancelled")
	}
	answers := make(map[string]string, len(questions))
	for i, q := range questions {
		answers[q.Key] = final.inputs[i].Value()
	}
	return answers, nil
}

func main() {
	logging.Init(logging.DefaultConfig())

	s, err := settings.Load(workdir)
	if err != nil {
		log := logging.Logger()
		log.Fatal().Err(err).Msg("load settings")
	}
	cfg = s
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	if err := dispatch(os.Args[1:]); err != nil {
		if errors.Is(err, errInvalid) {
			os.Exit(1)
		}
		log := logging.Logger()
		log.Fatal().Err(err).Msg("flowkit")
	}
}
