package bundle

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ESLintConfigPath is where the flat config document lands in the target tree.
const ESLintConfigPath = "eslint.config.mjs"

// renderESLint emits the flat config: one ignore-pattern object followed by
// the shared presets and the profile's rule-set objects, in order. The
// formatter compatibility preset always comes last so it can switch off
// whatever stylistic rules the sets above turned on.
func renderESLint(p *Profile) (Document, error) {
	var b strings.Builder

	b.WriteString("import js from '@eslint/js';\n")
	if p.TypeScript {
		b.WriteString("import tseslint from 'typescript-eslint';\n")
	}
	b.WriteString("import prettier from 'eslint-config-prettier';\n")
	b.WriteString("\nexport default [\n")

	b.WriteString("  {\n    ignores: [")
	for i, glob := range p.Ignore {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(jsString(glob))
	}
	b.WriteString("],\n  },\n")

	b.WriteString("  js.configs.recommended,\n")
	if p.TypeScript {
		b.WriteString("  ...tseslint.configs.recommended,\n")
	}

	for _, rs := range p.RuleSets {
		if err := writeRuleSet(&b, rs); err != nil {
			return Document{}, fmt.Errorf("rule set %q: %w", rs.Name, err)
		}
	}

	if len(p.Aliases) > 0 {
		writeAliasSettings(&b, p.Aliases)
	}

	b.WriteString("  prettier,\n")
	b.WriteString("];\n")

	return Document{
		Path:    ESLintConfigPath,
		Content: []byte(b.String()),
		Format:  FormatJavaScript,
	}, nil
}

func writeRuleSet(b *strings.Builder, rs RuleSet) error {
	b.WriteString("  {\n")
	if rs.Name != "" {
		fmt.Fprintf(b, "    name: %s,\n", jsString(rs.Name))
	}
	if len(rs.Files) > 0 {
		b.WriteString("    files: [")
		for i, glob := range rs.Files {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(jsString(glob))
		}
		b.WriteString("],\n")
	}
	b.WriteString("    rules: {\n")
	for _, r := range rs.Rules {
		entry, err := ruleEntry(r)
		if err != nil {
			return err
		}
		fmt.Fprintf(b, "      %s: %s,\n", jsString(r.Name), entry)
	}
	b.WriteString("    },\n  },\n")
	return nil
}

// writeAliasSettings keeps the lint config's import resolution in step with
// the alias document rendered from the same profile.
func writeAliasSettings(b *strings.Builder, aliases AliasMap) {
	b.WriteString("  {\n    settings: {\n      'import/resolver': {\n        alias: {\n          map: [\n")
	for _, a := range aliases {
		fmt.Fprintf(b, "            [%s, %s],\n", jsString(a.Prefix), jsString(a.Target))
	}
	b.WriteString("          ],\n        },\n      },\n    },\n  },\n")
}

func ruleEntry(r Rule) (string, error) {
	if r.Options == nil {
		return jsString(string(r.Severity)), nil
	}
	opts, err := json.Marshal(r.Options)
	if err != nil {
		return "", fmt.Errorf("rule %q options: %w", r.Name, err)
	}
	return fmt.Sprintf("[%s, %s]", jsString(string(r.Severity)), opts), nil
}

// jsString renders a single-quoted JavaScript string literal.
func jsString(s string) string {
	escaped := strings.ReplaceAll(s, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, "'", `\'`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	return "'" + escaped + "'"
}
