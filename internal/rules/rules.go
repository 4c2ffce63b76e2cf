// Package rules loads the keyword and pattern tables that drive extraction,
// classification and resolution.
package rules

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/Drewraw/social-record-platform/internal/cases"
	"github.com/Drewraw/social-record-platform/internal/extract"
	"github.com/Drewraw/social-record-platform/internal/resolver"
)

// Set is the full rule configuration.
type Set struct {
	Extract    extract.Config `yaml:"extract"`
	Cases      cases.Config   `yaml:"cases"`
	Essentials []string       `yaml:"essentials"`
}

// Default returns the compiled-in rules.
func Default() *Set {
	return &Set{
		Extract:    extract.DefaultConfig(),
		Cases:      cases.DefaultConfig(),
		Essentials: append([]string(nil), resolver.DefaultEssentials...),
	}
}

// Load reads a rules file. Keys present in the file replace the defaults;
// absent keys keep them. An empty path returns Default.
func Load(path string) (*Set, error) {
	set := Default()
	if path == "" {
		return set, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "rules: read %s", path)
	}

	// The file has a top-level "rules" key
	wrapper := struct {
		Rules *Set `yaml:"rules"`
	}{Rules: set}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrapf(err, "rules: parse %s", path)
	}
	if err := set.Validate(); err != nil {
		return nil, eris.Wrapf(err, "rules: invalid %s", path)
	}
	return set, nil
}

// Validate checks that the tables can be compiled.
func (s *Set) Validate() error {
	if len(s.Essentials) == 0 {
		return eris.New("rules: essentials list is empty")
	}
	if len(s.Cases.Rules) == 0 {
		return eris.New("rules: no disposition rules")
	}
	if _, err := cases.NewClassifier(s.Cases); err != nil {
		return err
	}
	return nil
}

// Dump renders the set as YAML under the "rules" key, suitable for Load.
func (s *Set) Dump() ([]byte, error) {
	out, err := yaml.Marshal(struct {
		Rules *Set `yaml:"rules"`
	}{Rules: s})
	if err != nil {
		return nil, eris.Wrap(err, "rules: marshal")
	}
	return out, nil
}
