// Package manifest loads the authored bundle profile from disk.
//
// The manifest is YAML by default; a .toml extension switches to TOML.
// Every section is optional: omitted sections keep the stock profile, so an
// empty manifest renders exactly the guide's verbatim bundle.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/dkoosis/stylekit/pkg/bundle"
)

// DefaultPath is where Load looks when no path is given.
const DefaultPath = "stylekit.yaml"

type ruleSpec struct {
	Name     string `yaml:"name" toml:"name"`
	Severity string `yaml:"severity" toml:"severity"`
	Options  any    `yaml:"options,omitempty" toml:"options,omitempty"`
}

type ruleSetSpec struct {
	Name  string     `yaml:"name" toml:"name"`
	Files []string   `yaml:"files,omitempty" toml:"files,omitempty"`
	Rules []ruleSpec `yaml:"rules" toml:"rules"`
}

type aliasSpec struct {
	Prefix string `yaml:"prefix" toml:"prefix"`
	Target string `yaml:"target" toml:"target"`
}

type overrideSpec struct {
	Files   string         `yaml:"files" toml:"files"`
	Options map[string]any `yaml:"options" toml:"options"`
}

type formatterSpec struct {
	PrintWidth    *int           `yaml:"printWidth,omitempty" toml:"printWidth,omitempty"`
	TabWidth      *int           `yaml:"tabWidth,omitempty" toml:"tabWidth,omitempty"`
	UseTabs       *bool          `yaml:"useTabs,omitempty" toml:"useTabs,omitempty"`
	Semi          *bool          `yaml:"semi,omitempty" toml:"semi,omitempty"`
	SingleQuote   *bool          `yaml:"singleQuote,omitempty" toml:"singleQuote,omitempty"`
	TrailingComma *string        `yaml:"trailingComma,omitempty" toml:"trailingComma,omitempty"`
	Overrides     []overrideSpec `yaml:"overrides,omitempty" toml:"overrides,omitempty"`
}

type editorSpec struct {
	Settings    map[string]any `yaml:"settings,omitempty" toml:"settings,omitempty"`
	Recommended []string       `yaml:"recommended,omitempty" toml:"recommended,omitempty"`
	Unwanted    []string       `yaml:"unwanted,omitempty" toml:"unwanted,omitempty"`
}

type commandsSpec struct {
	Lint        string `yaml:"lint,omitempty" toml:"lint,omitempty"`
	LintFix     string `yaml:"lintFix,omitempty" toml:"lintFix,omitempty"`
	Format      string `yaml:"format,omitempty" toml:"format,omitempty"`
	FormatCheck string `yaml:"formatCheck,omitempty" toml:"formatCheck,omitempty"`
}

// Manifest mirrors the on-disk structure.
type Manifest struct {
	Name       string         `yaml:"name,omitempty" toml:"name,omitempty"`
	TypeScript *bool          `yaml:"typescript,omitempty" toml:"typescript,omitempty"`
	RuleSets   []ruleSetSpec  `yaml:"ruleSets,omitempty" toml:"ruleSets,omitempty"`
	Ignore     []string       `yaml:"ignore,omitempty" toml:"ignore,omitempty"`
	Aliases    []aliasSpec    `yaml:"aliases,omitempty" toml:"aliases,omitempty"`
	Formatter  *formatterSpec `yaml:"formatter,omitempty" toml:"formatter,omitempty"`
	Editor     *editorSpec    `yaml:"editor,omitempty" toml:"editor,omitempty"`
	Commands   *commandsSpec  `yaml:"commands,omitempty" toml:"commands,omitempty"`
}

// Load reads a manifest file and resolves it into a profile. An empty path
// loads DefaultPath when present and falls back to the stock profile when it
// is not.
func Load(path string) (bundle.Profile, error) {
	if path == "" {
		path = DefaultPath
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return bundle.DefaultProfile(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return bundle.Profile{}, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &m); err != nil {
			return bundle.Profile{}, fmt.Errorf("parse manifest %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &m); err != nil {
			return bundle.Profile{}, fmt.Errorf("parse manifest %s: %w", path, err)
		}
	}

	return m.Resolve()
}

// Resolve overlays the manifest on the stock profile and validates the
// result.
func (m *Manifest) Resolve() (bundle.Profile, error) {
	p := bundle.DefaultProfile()

	if m.Name != "" {
		p.Name = m.Name
	}
	if m.TypeScript != nil {
		p.TypeScript = *m.TypeScript
	}

	if m.RuleSets != nil {
		sets, err := resolveRuleSets(m.RuleSets)
		if err != nil {
			return bundle.Profile{}, err
		}
		p.RuleSets = sets
	}

	if m.Ignore != nil {
		p.Ignore = bundle.IgnoreList(m.Ignore)
	}

	if m.Aliases != nil {
		aliases := make([]bundle.Alias, 0, len(m.Aliases))
		for _, a := range m.Aliases {
			aliases = append(aliases, bundle.Alias{Prefix: a.Prefix, Target: a.Target})
		}
		am, err := bundle.NewAliasMap(aliases)
		if err != nil {
			return bundle.Profile{}, fmt.Errorf("aliases: %w", err)
		}
		p.Aliases = am
	}

	if m.Formatter != nil {
		applyFormatter(&p.Formatter, m.Formatter)
	}
	if m.Editor != nil {
		applyEditor(&p.Editor, m.Editor)
	}
	if m.Commands != nil {
		applyCommands(&p.Commands, m.Commands)
	}

	if err := p.Validate(); err != nil {
		return bundle.Profile{}, fmt.Errorf("manifest invalid: %w", err)
	}
	return p, nil
}

func resolveRuleSets(specs []ruleSetSpec) ([]bundle.RuleSet, error) {
	sets := make([]bundle.RuleSet, 0, len(specs))
	for _, rs := range specs {
		if strings.TrimSpace(rs.Name) == "" {
			return nil, fmt.Errorf("rule set without a name")
		}
		set := bundle.RuleSet{Name: rs.Name, Files: rs.Files}
		for _, r := range rs.Rules {
			if strings.TrimSpace(r.Name) == "" {
				return nil, fmt.Errorf("rule set %q: rule without a name", rs.Name)
			}
			sev, err := bundle.ParseSeverity(r.Severity)
			if err != nil {
				return nil, fmt.Errorf("rule set %q: rule %q: %w", rs.Name, r.Name, err)
			}
			set.Rules = append(set.Rules, bundle.Rule{Name: r.Name, Severity: sev, Options: r.Options})
		}
		sets = append(sets, set)
	}
	return sets, nil
}

func applyFormatter(dst *bundle.FormatterOptions, spec *formatterSpec) {
	if spec.PrintWidth != nil {
		dst.PrintWidth = *spec.PrintWidth
	}
	if spec.TabWidth != nil {
		dst.TabWidth = *spec.TabWidth
	}
	if spec.UseTabs != nil {
		dst.UseTabs = *spec.UseTabs
	}
	if spec.Semi != nil {
		dst.Semi = *spec.Semi
	}
	if spec.SingleQuote != nil {
		dst.SingleQuote = *spec.SingleQuote
	}
	if spec.TrailingComma != nil {
		dst.TrailingComma = *spec.TrailingComma
	}
	if spec.Overrides != nil {
		dst.Overrides = nil
		for _, o := range spec.Overrides {
			dst.Overrides = append(dst.Overrides, bundle.FormatterOverride{Files: o.Files, Options: o.Options})
		}
	}
}

func applyEditor(dst *bundle.EditorSettings, spec *editorSpec) {
	if spec.Settings != nil {
		dst.Settings = spec.Settings
	}
	if spec.Recommended != nil {
		dst.Recommended = spec.Recommended
	}
	if spec.Unwanted != nil {
		dst.Unwanted = spec.Unwanted
	}
}

func applyCommands(dst *bundle.Commands, spec *commandsSpec) {
	if spec.Lint != "" {
		dst.Lint = spec.Lint
	}
	if spec.LintFix != "" {
		dst.LintFix = spec.LintFix
	}
	if spec.Format != "" {
		dst.Format = spec.Format
	}
	if spec.FormatCheck != "" {
		dst.FormatCheck = spec.FormatCheck
	}
}

// Starter is the manifest `stylekit init` writes: the stock profile spelled
// out so there is something concrete to edit.
const Starter = `# stylekit manifest. Every section is optional; omitted sections keep the
# stock profile.
name: default
typescript: true

ignore:
  - node_modules/**
  - dist/**
  - build/**
  - coverage/**
  - '*.min.js'

aliases:
  - prefix: '@'
    target: ./src
  - prefix: '~'
    target: .

formatter:
  printWidth: 100
  tabWidth: 2
  semi: true
  singleQuote: true
  trailingComma: all

commands:
  lint: eslint .
  lintFix: eslint . --fix
  format: prettier --write .
  formatCheck: prettier --check .
`
