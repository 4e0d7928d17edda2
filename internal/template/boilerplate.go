package template

import (
	"embed"
	"path"
	"sort"
	"strings"
)

//go:embed boilerplate/*.js
var boilerplateFS embed.FS

// Boilerplate returns the function-node snippet called name ("async",
// "context").
func Boilerplate(name string) (string, bool) {
	data, err := boilerplateFS.ReadFile(path.Join("boilerplate", name+".js"))
	if err != nil {
		return "", false
	}
	return string(data), true
}

// BoilerplateNames returns the available snippet names, sorted.
func BoilerplateNames() []string {
	entries, err := boilerplateFS.ReadDir("boilerplate")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".js"))
	}
	sort.Strings(names)
	return names
}
