package bundle

// DefaultProfile returns the stock bundle: the configuration the guide ships
// verbatim for a TypeScript web project. An empty manifest renders exactly
// this.
func DefaultProfile() Profile {
	return Profile{
		Name:       "default",
		TypeScript: true,
		RuleSets: []RuleSet{
			{
				Name:  "base",
				Files: []string{"**/*.{js,jsx,ts,tsx}"},
				Rules: []Rule{
					{Name: "no-console", Severity: SeverityWarn, Options: map[string]any{"allow": []string{"warn", "error"}}},
					{Name: "no-debugger", Severity: SeverityError},
					{Name: "eqeqeq", Severity: SeverityError, Options: "always"},
					{Name: "prefer-const", Severity: SeverityError},
					{Name: "no-var", Severity: SeverityError},
				},
			},
			{
				Name:  "typescript",
				Files: []string{"**/*.{ts,tsx}"},
				Rules: []Rule{
					{Name: "no-unused-vars", Severity: SeverityOff},
					{Name: "@typescript-eslint/no-unused-vars", Severity: SeverityError, Options: map[string]any{"argsIgnorePattern": "^_"}},
					{Name: "@typescript-eslint/no-explicit-any", Severity: SeverityWarn},
					{Name: "@typescript-eslint/consistent-type-imports", Severity: SeverityError},
				},
			},
		},
		Ignore: IgnoreList{
			"node_modules/**",
			"dist/**",
			"build/**",
			"coverage/**",
			"*.min.js",
		},
		Aliases: AliasMap{
			{Prefix: "@", Target: "./src"},
			{Prefix: "~", Target: "."},
		},
		Formatter: FormatterOptions{
			PrintWidth:    100,
			TabWidth:      2,
			UseTabs:       false,
			Semi:          true,
			SingleQuote:   true,
			TrailingComma: "all",
			Overrides: []FormatterOverride{
				{Files: "*.md", Options: map[string]any{"proseWrap": "always", "printWidth": 80}},
				{Files: "*.{yml,yaml}", Options: map[string]any{"singleQuote": false}},
			},
		},
		Editor: EditorSettings{
			Settings: map[string]any{
				"editor.defaultFormatter":              "esbenp.prettier-vscode",
				"editor.formatOnSave":                  true,
				"editor.codeActionsOnSave":             map[string]any{"source.fixAll.eslint": "explicit"},
				"eslint.useFlatConfig":                 true,
				"files.trimTrailingWhitespace":         true,
				"typescript.preferences.importModuleSpecifier": "non-relative",
			},
			Recommended: []string{
				"dbaeumer.vscode-eslint",
				"esbenp.prettier-vscode",
				"editorconfig.editorconfig",
			},
			Unwanted: []string{
				"hookyqr.beautify",
				"ms-vscode.vscode-typescript-tslint-plugin",
			},
		},
		Commands: Commands{
			Lint:        "eslint .",
			LintFix:     "eslint . --fix",
			Format:      "prettier --write .",
			FormatCheck: "prettier --check .",
		},
	}
}
