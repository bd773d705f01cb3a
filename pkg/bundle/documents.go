package bundle

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Target paths for the JSON documents of the bundle.
const (
	PrettierOptionsPath  = ".prettierrc.json"
	PrettierIgnorePath   = ".prettierignore"
	EditorSettingsPath   = ".vscode/settings.json"
	EditorExtensionsPath = ".vscode/extensions.json"
	PackageJSONPath      = "package.json"
)

func jsonDocument(path string, v any) (Document, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return Document{}, fmt.Errorf("encode %s: %w", path, err)
	}
	return Document{Path: path, Content: buf.Bytes(), Format: FormatJSON}, nil
}

type prettierOverride struct {
	Files   string         `json:"files"`
	Options map[string]any `json:"options"`
}

type prettierOptions struct {
	PrintWidth    int                `json:"printWidth"`
	TabWidth      int                `json:"tabWidth"`
	UseTabs       bool               `json:"useTabs"`
	Semi          bool               `json:"semi"`
	SingleQuote   bool               `json:"singleQuote"`
	TrailingComma string             `json:"trailingComma"`
	Overrides     []prettierOverride `json:"overrides,omitempty"`
}

func renderPrettierOptions(opts FormatterOptions) (Document, error) {
	doc := prettierOptions{
		PrintWidth:    opts.PrintWidth,
		TabWidth:      opts.TabWidth,
		UseTabs:       opts.UseTabs,
		Semi:          opts.Semi,
		SingleQuote:   opts.SingleQuote,
		TrailingComma: opts.TrailingComma,
	}
	for _, o := range opts.Overrides {
		doc.Overrides = append(doc.Overrides, prettierOverride{Files: o.Files, Options: o.Options})
	}
	return jsonDocument(PrettierOptionsPath, doc)
}

// renderPrettierIgnore writes the ignore globs one per line, in authored
// order. No dedup: the list is the user's to shape.
func renderPrettierIgnore(ignore IgnoreList) Document {
	var b strings.Builder
	for _, glob := range ignore {
		b.WriteString(glob)
		b.WriteByte('\n')
	}
	return Document{Path: PrettierIgnorePath, Content: []byte(b.String()), Format: FormatText}
}

// renderAliasDocument emits the compilerOptions.paths block the external
// build step resolves aliases with. Each prefix maps to a wildcard pair so
// both bare and nested imports resolve.
func renderAliasDocument(p *Profile) (Document, error) {
	paths := make(map[string][]string, len(p.Aliases))
	for _, a := range p.Aliases {
		paths[a.Prefix+"/*"] = []string{strings.TrimSuffix(a.Target, "/") + "/*"}
	}
	doc := map[string]any{
		"compilerOptions": map[string]any{
			"baseUrl": ".",
			"paths":   paths,
		},
	}
	return jsonDocument(p.AliasDocumentPath(), doc)
}

func renderEditorDocuments(editor EditorSettings) (Document, Document, error) {
	settings := editor.Settings
	if settings == nil {
		settings = map[string]any{}
	}
	settingsDoc, err := jsonDocument(EditorSettingsPath, settings)
	if err != nil {
		return Document{}, Document{}, err
	}

	extensionsDoc, err := jsonDocument(EditorExtensionsPath, map[string]any{
		"recommendations":         append([]string{}, editor.Recommended...),
		"unwantedRecommendations": append([]string{}, editor.Unwanted...),
	})
	if err != nil {
		return Document{}, Document{}, err
	}
	return settingsDoc, extensionsDoc, nil
}

// ScriptNames are the four delegated package.json scripts, in the order the
// command surface documents them.
var ScriptNames = []string{"lint", "lint:fix", "format", "format:check"}

// ScriptCommands maps script names to the profile's commands.
func (c Commands) ScriptCommands() map[string]string {
	return map[string]string{
		"lint":         c.Lint,
		"lint:fix":     c.LintFix,
		"format":       c.Format,
		"format:check": c.FormatCheck,
	}
}

func renderScripts(c Commands) (Document, error) {
	return jsonDocument(PackageJSONPath, map[string]any{
		"scripts": c.ScriptCommands(),
	})
}
