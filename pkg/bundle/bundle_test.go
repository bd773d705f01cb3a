package bundle

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseSeverity(t *testing.T) {
	cases := []struct {
		in      string
		want    Severity
		wantErr bool
	}{
		{in: "off", want: SeverityOff},
		{in: "0", want: SeverityOff},
		{in: "warn", want: SeverityWarn},
		{in: "1", want: SeverityWarn},
		{in: "ERROR", want: SeverityError},
		{in: "2", want: SeverityError},
		{in: "fatal", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tc := range cases {
		got, err := ParseSeverity(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseSeverity(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseSeverity(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseSeverity(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestNewAliasMapRejectsDuplicates(t *testing.T) {
	_, err := NewAliasMap([]Alias{
		{Prefix: "@", Target: "./src"},
		{Prefix: "@", Target: "./lib"},
	})
	if err == nil {
		t.Fatalf("expected duplicate alias error")
	}

	_, err = NewAliasMap([]Alias{{Prefix: "", Target: "./src"}})
	if err == nil {
		t.Fatalf("expected empty prefix error")
	}

	m, err := NewAliasMap([]Alias{{Prefix: "@", Target: "./src"}, {Prefix: "~", Target: "."}})
	if err != nil {
		t.Fatalf("valid map rejected: %v", err)
	}
	if target, ok := m.Lookup("@"); !ok || target != "./src" {
		t.Fatalf("lookup @ = %q, %v", target, ok)
	}
	if _, ok := m.Lookup("#"); ok {
		t.Fatalf("lookup of undefined prefix should fail")
	}
}

func TestRenderProducesFixedDocumentSet(t *testing.T) {
	p := DefaultProfile()
	b, err := p.Render()
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	want := []string{
		ESLintConfigPath,
		PrettierOptionsPath,
		PrettierIgnorePath,
		"tsconfig.json",
		EditorSettingsPath,
		EditorExtensionsPath,
		PackageJSONPath,
	}
	if diff := cmp.Diff(want, b.Paths()); diff != "" {
		t.Fatalf("document paths mismatch (-want +got):\n%s", diff)
	}

	for _, d := range b.Documents {
		if d.Format != FormatJSON {
			continue
		}
		var v any
		if err := json.Unmarshal(d.Content, &v); err != nil {
			t.Errorf("%s is not valid JSON: %v", d.Path, err)
		}
	}
}

func TestRenderESLintOrdering(t *testing.T) {
	p := DefaultProfile()
	b, err := p.Render()
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	doc, ok := b.Find(ESLintConfigPath)
	if !ok {
		t.Fatalf("missing %s", ESLintConfigPath)
	}
	content := string(doc.Content)

	// Flat config order: ignores object first, presets, rule sets, then the
	// formatter compatibility preset last.
	ignoresAt := strings.Index(content, "ignores:")
	baseAt := strings.Index(content, "name: 'base'")
	tsAt := strings.Index(content, "name: 'typescript'")
	prettierAt := strings.LastIndex(content, "prettier,")

	if ignoresAt < 0 || baseAt < 0 || tsAt < 0 || prettierAt < 0 {
		t.Fatalf("missing sections in config:\n%s", content)
	}
	if !(ignoresAt < baseAt && baseAt < tsAt && tsAt < prettierAt) {
		t.Fatalf("section order wrong: ignores=%d base=%d ts=%d prettier=%d", ignoresAt, baseAt, tsAt, prettierAt)
	}

	if !strings.Contains(content, "'no-console': ['warn', {\"allow\":[\"warn\",\"error\"]}]") {
		t.Errorf("rule options not rendered:\n%s", content)
	}
	if !strings.Contains(content, "['@', './src']") {
		t.Errorf("alias settings not rendered:\n%s", content)
	}
}

func TestRenderPrettierIgnorePreservesAuthoredOrder(t *testing.T) {
	p := DefaultProfile()
	p.Ignore = IgnoreList{"dist/**", "dist/**", "node_modules/**"}

	b, err := p.Render()
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	doc, _ := b.Find(PrettierIgnorePath)
	got := string(doc.Content)
	want := "dist/**\ndist/**\nnode_modules/**\n"
	if got != want {
		t.Fatalf("ignore file reordered or deduped:\ngot  %q\nwant %q", got, want)
	}
}

func TestRenderAliasDocument(t *testing.T) {
	p := DefaultProfile()
	p.TypeScript = false

	b, err := p.Render()
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	doc, ok := b.Find("jsconfig.json")
	if !ok {
		t.Fatalf("expected jsconfig.json for non-TypeScript profile, have %v", b.Paths())
	}

	var parsed struct {
		CompilerOptions struct {
			BaseURL string              `json:"baseUrl"`
			Paths   map[string][]string `json:"paths"`
		} `json:"compilerOptions"`
	}
	if err := json.Unmarshal(doc.Content, &parsed); err != nil {
		t.Fatalf("parse alias doc: %v", err)
	}
	if parsed.CompilerOptions.BaseURL != "." {
		t.Errorf("baseUrl = %q", parsed.CompilerOptions.BaseURL)
	}
	if got := parsed.CompilerOptions.Paths["@/*"]; len(got) != 1 || got[0] != "./src/*" {
		t.Errorf("paths[@/*] = %v", got)
	}
}

func TestValidateRejectsUnknownSeverity(t *testing.T) {
	p := DefaultProfile()
	p.RuleSets[0].Rules[0].Severity = Severity("loud")

	if err := p.Validate(); err == nil {
		t.Fatalf("expected severity validation error")
	}
}

func TestScriptCommands(t *testing.T) {
	c := DefaultProfile().Commands
	got := c.ScriptCommands()
	if got["lint"] != "eslint ." || got["format:check"] != "prettier --check ." {
		t.Fatalf("unexpected script commands: %v", got)
	}
	if len(got) != len(ScriptNames) {
		t.Fatalf("expected %d scripts, got %d", len(ScriptNames), len(got))
	}
}
