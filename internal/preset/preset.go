// Package preset loads named sets of gateway query defaults from YAML.
package preset

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Set is the parsed presets file.
type Set struct {
	Presets map[string]*Preset `yaml:"presets"`
}

// Preset holds query parameter defaults. A request's own parameters win
// over the preset's.
type Preset struct {
	Description string            `yaml:"description"`
	Params      map[string]string `yaml:"params"`
}

// Load reads a presets file.
func Load(path string) (*Set, error) {
	cleanPath := filepath.Clean(path)
	b, err := os.ReadFile(cleanPath) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, err
	}
	var s Set
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	for name, p := range s.Presets {
		if p == nil {
			return nil, fmt.Errorf("preset %q is empty", name)
		}
		if _, ok := p.Params["preset"]; ok {
			return nil, fmt.Errorf("preset %q: presets cannot nest", name)
		}
	}
	return &s, nil
}

// Get returns the named preset. A nil Set has no presets.
func (s *Set) Get(name string) (*Preset, bool) {
	if s == nil {
		return nil, false
	}
	p, ok := s.Presets[name]
	return p, ok
}

// Names returns the preset names in sorted order.
func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.Presets))
	for n := range s.Presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Apply copies the preset's params into q where q has no value yet.
func (p *Preset) Apply(q url.Values) {
	for k, v := range p.Params {
		if q.Get(k) == "" {
			q.Set(k, v)
		}
	}
}
