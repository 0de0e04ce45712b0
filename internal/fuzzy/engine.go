// Package fuzzy implements the Fuzzy Rule Engine: an ordered
// list of regex-based rewrites applied to canonical paths, shared verbatim
// between the offline engine here and the embedded JS copy used by the
// Dynamic Rewriter Helper (see gen.go).
package fuzzy

import (
	_ "embed"
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// Rule is one ordered (match, replace) pair.
type Rule struct {
	Name    string
	Match   *regexp.Regexp
	Replace string
}

// Engine holds the ordered, immutable rule list. It is injected into the
// Canonicalizer rather than read from a package-level singleton, so tests
// can substitute an alternate rule list.
type Engine struct {
	rules []Rule
}

type ruleFile struct {
	Rules []ruleEntry `yaml:"rules"`
}

type ruleEntry struct {
	Name    string `yaml:"name"`
	Match   string `yaml:"match"`
	Replace string `yaml:"replace"`
}

// New compiles rules into an Engine. Rule order is preserved.
func New(rules []Rule) *Engine {
	return &Engine{rules: rules}
}

// Default returns the Engine compiled from the embedded rules.yaml, the
// single source of truth shared with the Dynamic Rewriter Helper's JS
// asset (see gen.go).
func Default() (*Engine, error) {
	return Load(defaultRulesYAML)
}

// Load compiles an Engine from a YAML rule table in the documented
// {name, match, replace} shape.
func Load(data []byte) (*Engine, error) {
	var doc ruleFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("fuzzy: parse rule table: %w", err)
	}

	rules := make([]Rule, 0, len(doc.Rules))
	for _, entry := range doc.Rules {
		re, err := regexp.Compile(entry.Match)
		if err != nil {
			return nil, fmt.Errorf("fuzzy: rule %q: compile %q: %w", entry.Name, entry.Match, err)
		}
		rules = append(rules, Rule{Name: entry.Name, Match: re, Replace: entry.Replace})
	}
	return New(rules), nil
}

// Apply walks the ordered rule list and returns the expansion of the
// first rule whose pattern matches anchored at the start of path
// (mirroring Python's re.match semantics, which the original rule table
// was authored against). If no rule matches, path is returned unchanged.
func (e *Engine) Apply(path string) string {
	if e == nil {
		return path
	}
	for _, r := range e.rules {
		loc := r.Match.FindStringSubmatchIndex(path)
		if loc == nil || loc[0] != 0 {
			continue
		}
		return string(r.Match.ExpandString(nil, r.Replace, path, loc))
	}
	return path
}

// Rules exposes the compiled rule list, e.g. for the JS-table generator in
// gen.go or for tests asserting on rule count/order.
func (e *Engine) Rules() []Rule {
	if e == nil {
		return nil
	}
	return e.rules
}
