// Package settings loads flowkit configuration.
//
// Sources, later ones winning:
//
//	built-in defaults
//	<root>/.flowkit/settings.yaml
//	<root>/.env (does not override variables already set)
//	FLOWKIT_* environment variables
//
// The settings file also carries a deny list of glob patterns naming flow
// files flowkit must never rewrite. Patterns may be bare globs
// ("flows/prod/**") or wrapped in a Write() verb ("Write(./flows/prod/**)").
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the settings file.
const (
	EnvLogLevel  = "FLOWKIT_LOG_LEVEL"
	EnvLogFormat = "FLOWKIT_LOG_FORMAT"
	EnvIndent    = "FLOWKIT_INDENT"
	EnvOutputDir = "FLOWKIT_OUTPUT_DIR"
)

// Settings holds flowkit configuration.
type Settings struct {
	Log         Log         `yaml:"log"`
	Output      Output      `yaml:"output"`
	Permissions Permissions `yaml:"permissions"`
}

// Log configures diagnostics written to stderr.
type Log struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=console json"`
}

// Output configures how flow files are written.
type Output struct {
	// Indent is the number of spaces per nesting level; 0 writes compact JSON.
	Indent int `yaml:"indent" validate:"min=0,max=8"`

	// Dir is where generated flows go when no output path is given.
	Dir string `yaml:"dir" validate:"required"`
}

// Permissions controls which files flowkit writes.
type Permissions struct {
	// Deny is a list of glob patterns for files flowkit must not write.
	// Example: ["Write(./flows/prod/**)"]
	Deny []string `yaml:"deny"`
}

// Default returns the built-in settings.
func Default() *Settings {
	return &Settings{
		Log:    Log{Level: "warn", Format: "console"},
		Output: Output{Indent: 2, Dir: "."},
	}
}

var validate = validator.New()

// Load builds settings for the project rooted at root.
func Load(root string) (*Settings, error) {
	s := Default()

	path := filepath.Join(root, ".flowkit", "settings.yaml")
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", path, err)
		}
	}

	envPath := filepath.Join(root, ".env")
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envPath, err)
	}
	if err := s.applyEnv(); err != nil {
		return nil, err
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) applyEnv() error {
	if v := os.Getenv(EnvLogLevel); v != "" {
		s.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		s.Log.Format = strings.ToLower(v)
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		s.Output.Dir = v
	}
	if v := os.Getenv(EnvIndent); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %q is not an integer", EnvIndent, v)
		}
		s.Output.Indent = n
	}
	return nil
}

// Validate checks field constraints.
func (s *Settings) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid settings: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("invalid settings: %s", strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Settings.")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %v", field, fe.Param(), fe.Value())
	case "min":
		return fmt.Sprintf("%s must be at least %s, got %v", field, fe.Param(), fe.Value())
	case "max":
		return fmt.Sprintf("%s must be at most %s, got %v", field, fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

// IsDenied reports whether relPath (forward-slash, relative to the project
// root) matches any deny rule. Safe to call on a nil *Settings receiver.
func (s *Settings) IsDenied(relPath string) bool {
	if s == nil {
		return false
	}
	for _, rule := range s.Permissions.Deny {
		if matchDenyPattern(parseDenyRule(rule), relPath) {
			return true
		}
	}
	return false
}

// parseDenyRule extracts the path glob from a deny rule.
//
//	"Write(./flows/prod/**)" → "flows/prod/**"
//	"flows/prod/**"          → "flows/prod/**"
func parseDenyRule(rule string) string {
	if strings.HasPrefix(rule, "Write(") && strings.HasSuffix(rule, ")") {
		rule = rule[len("Write(") : len(rule)-1]
	}
	return strings.TrimPrefix(rule, "./")
}

// matchDenyPattern reports whether path matches a deny glob pattern.
//
// "prefix/**" matches the prefix directory itself and every path beneath it.
// All other patterns use filepath.Match semantics (single * does not cross /).
func matchDenyPattern(pattern, path string) bool {
	if strings.HasSuffix(pattern, "/**") {
		prefix := strings.TrimSuffix(pattern, "/**")
		return path == prefix || strings.HasPrefix(path, prefix+"/")
	}
	matched, _ := filepath.Match(pattern, path)
	return matched
}
