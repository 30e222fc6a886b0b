// Package prompts serves the LLM prompt templates used by the pipeline
// stages. Templates live in JSON files embedded at build time; each file
// maps prompt keys to template text with {{.Name}} placeholders.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

//go:embed *.json
var promptFS embed.FS

var (
	mu     sync.RWMutex
	loaded = make(map[string]map[string]string)
)

// Get returns the template stored under key in the named file. The filename
// is bare, without a path (e.g. "parsing.json").
func Get(filename, key string) (string, error) {
	templates, err := load(filename)
	if err != nil {
		return "", err
	}

	template, ok := templates[key]
	if !ok {
		return "", fmt.Errorf("prompt %q not found in %s", key, filename)
	}
	return template, nil
}

// MustGet is Get for prompts the binary cannot run without; it panics on a
// missing file or key.
func MustGet(filename, key string) string {
	template, err := Get(filename, key)
	if err != nil {
		panic(err)
	}
	return template
}

// Format substitutes {{.Name}} placeholders with the given values.
// Placeholders without a value are left intact.
func Format(template string, data map[string]string) string {
	out := template
	for name, value := range data {
		out = strings.ReplaceAll(out, "{{."+name+"}}", value)
	}
	return out
}

// List returns the sorted prompt keys available in a file.
func List(filename string) ([]string, error) {
	templates, err := load(filename)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(templates))
	for key := range templates {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// ClearCache drops parsed files. Only tests need this.
func ClearCache() {
	mu.Lock()
	loaded = make(map[string]map[string]string)
	mu.Unlock()
}

func load(filename string) (map[string]string, error) {
	mu.RLock()
	templates, ok := loaded[filename]
	mu.RUnlock()
	if ok {
		return templates, nil
	}

	data, err := promptFS.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}
	if err := json.Unmarshal(data, &templates); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}

	mu.Lock()
	loaded[filename] = templates
	mu.Unlock()
	return templates, nil
}
