package bundle

import "fmt"

// FormatterOverride scopes formatter options to a file glob.
type FormatterOverride struct {
	Files   string
	Options map[string]any
}

// FormatterOptions is the formatter options document, with per-file-type
// overrides keyed by glob pattern.
type FormatterOptions struct {
	PrintWidth    int
	TabWidth      int
	UseTabs       bool
	Semi          bool
	SingleQuote   bool
	TrailingComma string
	Overrides     []FormatterOverride
}

// EditorSettings covers the two editor-integration documents: a settings
// key/value map and recommended/unwanted extension identifier lists.
type EditorSettings struct {
	Settings    map[string]any
	Recommended []string
	Unwanted    []string
}

// Commands is the delegated command surface. Each entry is the exact shell
// command the corresponding package.json script runs.
type Commands struct {
	Lint        string
	LintFix     string
	Format      string
	FormatCheck string
}

// Profile is the authored description of a bundle, typically loaded from a
// manifest file. Rendering a profile yields the fixed document set.
type Profile struct {
	Name       string
	TypeScript bool
	RuleSets   []RuleSet
	Ignore     IgnoreList
	Aliases    AliasMap
	Formatter  FormatterOptions
	Editor     EditorSettings
	Commands   Commands
}

// Validate checks the profile invariants: unique alias prefixes and known
// severities. Ignore globs are deliberately not validated here; doctor
// reports them without blocking a render.
func (p *Profile) Validate() error {
	if _, err := NewAliasMap(p.Aliases); err != nil {
		return fmt.Errorf("aliases: %w", err)
	}
	for _, rs := range p.RuleSets {
		for _, r := range rs.Rules {
			switch r.Severity {
			case SeverityOff, SeverityWarn, SeverityError:
			default:
				return fmt.Errorf("rule set %q: rule %q: unknown severity %q", rs.Name, r.Name, r.Severity)
			}
		}
	}
	return nil
}

// Render produces the complete bundle for the profile.
func (p *Profile) Render() (*Bundle, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	docs := []Document{}

	eslint, err := renderESLint(p)
	if err != nil {
		return nil, fmt.Errorf("render eslint config: %w", err)
	}
	docs = append(docs, eslint)

	prettierrc, err := renderPrettierOptions(p.Formatter)
	if err != nil {
		return nil, fmt.Errorf("render formatter options: %w", err)
	}
	docs = append(docs, prettierrc, renderPrettierIgnore(p.Ignore))

	aliasDoc, err := renderAliasDocument(p)
	if err != nil {
		return nil, fmt.Errorf("render alias document: %w", err)
	}
	docs = append(docs, aliasDoc)

	settings, extensions, err := renderEditorDocuments(p.Editor)
	if err != nil {
		return nil, fmt.Errorf("render editor documents: %w", err)
	}
	docs = append(docs, settings, extensions)

	scripts, err := renderScripts(p.Commands)
	if err != nil {
		return nil, fmt.Errorf("render scripts: %w", err)
	}
	docs = append(docs, scripts)

	return &Bundle{Documents: docs}, nil
}

// AliasDocumentPath returns the path of the alias document for the profile:
// tsconfig.json for TypeScript projects, jsconfig.json otherwise.
func (p *Profile) AliasDocumentPath() string {
	if p.TypeScript {
		return "tsconfig.json"
	}
	return "jsconfig.json"
}
