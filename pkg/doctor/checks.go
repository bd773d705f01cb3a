package doctor

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/dkoosis/stylekit/pkg/bundle"
	"github.com/dkoosis/stylekit/pkg/sarif"
)

// checkJSONDocuments parses every bundle-owned JSON file that exists and
// reports the ones that do not parse. Parsed documents are returned for the
// cross-reference checks.
func checkJSONDocuments(root string, p *bundle.Profile) ([]sarif.Result, map[string]any, error) {
	owned := []string{
		bundle.PrettierOptionsPath,
		p.AliasDocumentPath(),
		bundle.EditorSettingsPath,
		bundle.EditorExtensionsPath,
		bundle.PackageJSONPath,
	}

	var results []sarif.Result
	parsed := make(map[string]any, len(owned))

	for _, rel := range owned {
		data, err := readIfPresent(root, rel)
		if err != nil {
			return nil, nil, err
		}
		if data == nil {
			continue
		}

		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			result := sarif.NewResult(RuleJSONInvalid, "error", fmt.Sprintf("%s: %v", rel, err), rel)
			var syntax *json.SyntaxError
			if errors.As(err, &syntax) {
				line, col := lineColAt(data, syntax.Offset)
				result = result.WithRegion(line, col)
			}
			results = append(results, result)
			continue
		}
		parsed[rel] = v
	}
	return results, parsed, nil
}

func lineColAt(data []byte, offset int64) (int, int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	prefix := data[:offset]
	line := bytes.Count(prefix, []byte{'\n'}) + 1
	col := int(offset) - bytes.LastIndexByte(prefix, '\n')
	return line, col
}

var aliasPairPattern = regexp.MustCompile(`\[\s*'([^']+)',\s*'[^']*'\s*\]`)

// checkAliases cross-references the alias prefixes the lint config resolves
// against the prefixes the alias document defines.
func checkAliases(root string, p *bundle.Profile, parsed map[string]any) []sarif.Result {
	var results []sarif.Result

	aliasDoc := p.AliasDocumentPath()
	defined := definedAliases(parsed[aliasDoc])

	eslintData, err := readIfPresent(root, bundle.ESLintConfigPath)
	if err != nil || eslintData == nil {
		return results
	}

	seen := map[string]int{}
	scanner := bufio.NewScanner(bytes.NewReader(eslintData))
	lineNo := 0
	inMap := false
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "map:"):
			inMap = true
			continue
		case inMap && (trimmed == "]," || trimmed == "]"):
			inMap = false
			continue
		}
		if !inMap {
			continue
		}
		m := aliasPairPattern.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		prefix := m[1]
		seen[prefix]++
		if seen[prefix] == 2 {
			results = append(results, sarif.NewResult(RuleAliasDuplicate, "warning",
				fmt.Sprintf("alias %q is mapped more than once", prefix), bundle.ESLintConfigPath).WithRegion(lineNo, 1))
		}
		if defined != nil {
			if _, ok := defined[prefix]; !ok {
				results = append(results, sarif.NewResult(RuleAliasUndefined, "error",
					fmt.Sprintf("alias %q is resolved by the lint config but not defined in %s", prefix, aliasDoc),
					bundle.ESLintConfigPath).WithRegion(lineNo, 1))
			}
		}
	}

	return results
}

// definedAliases extracts the alias prefixes from a parsed alias document,
// stripping the trailing /* wildcard. A nil document yields nil, which
// disables the undefined-alias check rather than flagging everything.
func definedAliases(doc any) map[string]struct{} {
	m, ok := doc.(map[string]any)
	if !ok {
		return nil
	}
	co, ok := m["compilerOptions"].(map[string]any)
	if !ok {
		return nil
	}
	paths, ok := co["paths"].(map[string]any)
	if !ok {
		return nil
	}
	defined := make(map[string]struct{}, len(paths))
	for k := range paths {
		defined[strings.TrimSuffix(k, "/*")] = struct{}{}
	}
	return defined
}

// checkIgnoreFile validates the formatter ignore globs. Duplicates are a
// note, never an error: the ignore list carries no dedup invariant.
func checkIgnoreFile(root string) []sarif.Result {
	data, err := readIfPresent(root, bundle.PrettierIgnorePath)
	if err != nil || data == nil {
		return nil
	}

	var results []sarif.Result
	seen := map[string]int{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		pattern := strings.TrimSpace(scanner.Text())
		if pattern == "" || strings.HasPrefix(pattern, "#") {
			continue
		}

		if _, err := path.Match(pattern, "probe"); err != nil {
			results = append(results, sarif.NewResult(RuleIgnoreGlobInvalid, "error",
				fmt.Sprintf("invalid glob %q", pattern), bundle.PrettierIgnorePath).WithRegion(lineNo, 1))
		}

		seen[pattern]++
		if seen[pattern] == 2 {
			results = append(results, sarif.NewResult(RuleIgnoreDuplicate, "note",
				fmt.Sprintf("pattern %q appears more than once", pattern), bundle.PrettierIgnorePath).WithRegion(lineNo, 1))
		}
	}
	return results
}

var ruleEntryPattern = regexp.MustCompile(`^'[^']+':\s*(?:'([^']+)'|\[\s*'([^']+)')`)

// checkSeverities scans the flat config's rule entries for severities the
// external linter would reject.
func checkSeverities(root string) []sarif.Result {
	data, err := readIfPresent(root, bundle.ESLintConfigPath)
	if err != nil || data == nil {
		return nil
	}

	var results []sarif.Result
	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		m := ruleEntryPattern.FindStringSubmatch(strings.TrimSpace(scanner.Text()))
		if m == nil {
			continue
		}
		sev := m[1]
		if sev == "" {
			sev = m[2]
		}
		if _, err := bundle.ParseSeverity(sev); err != nil {
			results = append(results, sarif.NewResult(RuleSeverityUnknown, "error",
				fmt.Sprintf("severity %q is not off/warn/error", sev), bundle.ESLintConfigPath).WithRegion(lineNo, 1))
		}
	}
	return results
}

// checkScripts compares package.json's delegated scripts with the bundle's
// commands. A missing package.json reports every script as missing.
func checkScripts(root string, p *bundle.Profile, parsed map[string]any) []sarif.Result {
	want := p.Commands.ScriptCommands()

	pkg, present := parsed[bundle.PackageJSONPath]
	if !present {
		if data, err := readIfPresent(root, bundle.PackageJSONPath); err != nil || data != nil {
			// Unparseable file already produced a json-invalid finding.
			return nil
		}
		var results []sarif.Result
		for _, name := range bundle.ScriptNames {
			results = append(results, sarif.NewResult(RuleScriptMissing, "error",
				fmt.Sprintf("package.json is missing and with it the %q script", name), bundle.PackageJSONPath))
		}
		return results
	}

	var scripts map[string]any
	if m, ok := pkg.(map[string]any); ok {
		scripts, _ = m["scripts"].(map[string]any)
	}

	var results []sarif.Result
	for _, name := range bundle.ScriptNames {
		got, ok := scripts[name].(string)
		if !ok {
			results = append(results, sarif.NewResult(RuleScriptMissing, "error",
				fmt.Sprintf("package.json lacks the %q script", name), bundle.PackageJSONPath))
			continue
		}
		if got != want[name] {
			results = append(results, sarif.NewResult(RuleScriptDrift, "warning",
				fmt.Sprintf("script %q runs %q, bundle expects %q", name, got, want[name]), bundle.PackageJSONPath))
		}
	}
	return results
}

// checkExtensions flags identifiers listed as both recommended and unwanted.
func checkExtensions(parsed map[string]any) []sarif.Result {
	doc, ok := parsed[bundle.EditorExtensionsPath].(map[string]any)
	if !ok {
		return nil
	}
	recommended := stringSet(doc["recommendations"])
	unwanted, _ := doc["unwantedRecommendations"].([]any)

	var results []sarif.Result
	for _, v := range unwanted {
		id, ok := v.(string)
		if !ok {
			continue
		}
		if _, conflict := recommended[id]; conflict {
			results = append(results, sarif.NewResult(RuleExtensionConflict, "error",
				fmt.Sprintf("extension %q is both recommended and unwanted", id), bundle.EditorExtensionsPath))
		}
	}
	return results
}

func stringSet(v any) map[string]struct{} {
	arr, _ := v.([]any)
	out := make(map[string]struct{}, len(arr))
	for _, item := range arr {
		if s, ok := item.(string); ok {
			out[s] = struct{}{}
		}
	}
	return out
}
