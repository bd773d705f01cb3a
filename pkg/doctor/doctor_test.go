package doctor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dkoosis/stylekit/pkg/apply"
	"github.com/dkoosis/stylekit/pkg/bundle"
	"github.com/dkoosis/stylekit/pkg/sarif"
)

// seedTree renders the stock bundle into a temp dir so checks start from a
// consistent tree.
func seedTree(t *testing.T) (string, bundle.Profile) {
	t.Helper()
	root := t.TempDir()
	p := bundle.DefaultProfile()
	b, err := p.Render()
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if _, err := apply.Run(b, apply.Options{Root: root}); err != nil {
		t.Fatalf("seed apply: %v", err)
	}
	return root, p
}

func write(t *testing.T, root, rel, content string) {
	t.Helper()
	target := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		t.Fatalf("create dir: %v", err)
	}
	if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func resultsByRule(log *sarif.Log) map[string][]sarif.Result {
	byRule := map[string][]sarif.Result{}
	for _, r := range log.Runs[0].Results {
		byRule[r.RuleID] = append(byRule[r.RuleID], r)
	}
	return byRule
}

func TestRunCleanTreeHasNoFindings(t *testing.T) {
	root, p := seedTree(t)

	log, err := Run(Config{Root: root, Profile: p})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if n := len(log.Runs[0].Results); n != 0 {
		t.Fatalf("expected clean tree, got %d findings: %+v", n, log.Runs[0].Results)
	}
	if log.Runs[0].AutomationDetails == nil || log.Runs[0].AutomationDetails.GUID == "" {
		t.Fatalf("expected automation GUID on run")
	}
	if len(log.Runs[0].Tool.Driver.Rules) == 0 {
		t.Fatalf("expected rule descriptors on driver")
	}
}

func TestRunDetectsUndefinedAndDuplicateAlias(t *testing.T) {
	root, p := seedTree(t)

	// An alias the lint config resolves but tsconfig never defines, plus a
	// prefix mapped twice.
	write(t, root, bundle.ESLintConfigPath, `import js from '@eslint/js';
export default [
  {
    settings: {
      'import/resolver': {
        alias: {
          map: [
            ['@', './src'],
            ['@', './lib'],
            ['#', './app'],
          ],
        },
      },
    },
  },
];
`)

	log, err := Run(Config{Root: root, Profile: p})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	byRule := resultsByRule(log)

	if len(byRule[RuleAliasUndefined]) != 1 {
		t.Errorf("alias-undefined findings = %+v", byRule[RuleAliasUndefined])
	}
	if len(byRule[RuleAliasDuplicate]) != 1 {
		t.Errorf("alias-duplicate findings = %+v", byRule[RuleAliasDuplicate])
	}
}

func TestRunDetectsInvalidJSONWithRegion(t *testing.T) {
	root, p := seedTree(t)
	write(t, root, bundle.PrettierOptionsPath, "{\n  \"semi\": true,\n}\n")

	log, err := Run(Config{Root: root, Profile: p})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	findings := resultsByRule(log)[RuleJSONInvalid]
	if len(findings) != 1 {
		t.Fatalf("json-invalid findings = %+v", findings)
	}
	region := findings[0].Locations[0].PhysicalLocation.Region
	if region == nil || region.StartLine != 3 {
		t.Errorf("expected region at line 3, got %+v", region)
	}
}

func TestRunChecksIgnoreGlobs(t *testing.T) {
	root, p := seedTree(t)
	write(t, root, bundle.PrettierIgnorePath, "dist/**\ndist/**\n[broken\n# comment\n\n")

	log, err := Run(Config{Root: root, Profile: p})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	byRule := resultsByRule(log)

	dups := byRule[RuleIgnoreDuplicate]
	if len(dups) != 1 {
		t.Fatalf("ignore-duplicate findings = %+v", dups)
	}
	if dups[0].Level != "note" {
		t.Errorf("duplicate ignore should be a note, got %s", dups[0].Level)
	}
	if len(byRule[RuleIgnoreGlobInvalid]) != 1 {
		t.Errorf("ignore-glob-invalid findings = %+v", byRule[RuleIgnoreGlobInvalid])
	}
}

func TestRunDetectsUnknownSeverity(t *testing.T) {
	root, p := seedTree(t)
	write(t, root, bundle.ESLintConfigPath, `export default [
  {
    rules: {
      'no-console': 'loud',
      'eqeqeq': ['error', 'always'],
    },
  },
];
`)

	log, err := Run(Config{Root: root, Profile: p})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	findings := resultsByRule(log)[RuleSeverityUnknown]
	if len(findings) != 1 {
		t.Fatalf("severity-unknown findings = %+v", findings)
	}
}

func TestRunChecksScripts(t *testing.T) {
	root, p := seedTree(t)
	write(t, root, bundle.PackageJSONPath, `{
  "scripts": {
    "lint": "standard",
    "lint:fix": "eslint . --fix",
    "format": "prettier --write ."
  }
}
`)

	log, err := Run(Config{Root: root, Profile: p})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	byRule := resultsByRule(log)

	if len(byRule[RuleScriptDrift]) != 1 {
		t.Errorf("script-drift findings = %+v", byRule[RuleScriptDrift])
	}
	if len(byRule[RuleScriptMissing]) != 1 {
		t.Errorf("script-missing findings = %+v", byRule[RuleScriptMissing])
	}
}

func TestRunReportsAllScriptsMissingWithoutPackageJSON(t *testing.T) {
	root, p := seedTree(t)
	if err := os.Remove(filepath.Join(root, "package.json")); err != nil {
		t.Fatalf("remove package.json: %v", err)
	}

	log, err := Run(Config{Root: root, Profile: p})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := len(resultsByRule(log)[RuleScriptMissing]); got != len(bundle.ScriptNames) {
		t.Fatalf("expected %d script-missing findings, got %d", len(bundle.ScriptNames), got)
	}
}

func TestRunDetectsExtensionConflict(t *testing.T) {
	root, p := seedTree(t)
	write(t, root, bundle.EditorExtensionsPath, `{
  "recommendations": ["esbenp.prettier-vscode", "hookyqr.beautify"],
  "unwantedRecommendations": ["hookyqr.beautify"]
}
`)

	log, err := Run(Config{Root: root, Profile: p})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	findings := resultsByRule(log)[RuleExtensionConflict]
	if len(findings) != 1 {
		t.Fatalf("extension-conflict findings = %+v", findings)
	}
}
