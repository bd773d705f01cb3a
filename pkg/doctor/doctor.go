// Package doctor verifies that the bundle documents in a project tree are
// syntactically valid and mutually consistent. It is read-only and reports
// findings as SARIF.
package doctor

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dkoosis/stylekit/pkg/bundle"
	"github.com/dkoosis/stylekit/pkg/sarif"
)

// DriverName identifies doctor runs in SARIF output.
const DriverName = "stylekit-doctor"

// Config controls the analysis behavior.
type Config struct {
	// Root is the path to the project root.
	Root string
	// Profile is the bundle profile the tree is checked against.
	Profile bundle.Profile
}

// Rule IDs reported by doctor.
const (
	RuleJSONInvalid       = "bundle-json-invalid"
	RuleAliasUndefined    = "alias-undefined"
	RuleAliasDuplicate    = "alias-duplicate"
	RuleIgnoreGlobInvalid = "ignore-glob-invalid"
	RuleIgnoreDuplicate   = "ignore-duplicate"
	RuleSeverityUnknown   = "severity-unknown"
	RuleScriptMissing     = "script-missing"
	RuleScriptDrift       = "script-drift"
	RuleExtensionConflict = "extension-conflict"
)

func descriptors() []sarif.Descriptor {
	describe := func(id, text string) sarif.Descriptor {
		return sarif.Descriptor{ID: id, ShortDescription: &sarif.Message{Text: text}}
	}
	return []sarif.Descriptor{
		describe(RuleJSONInvalid, "A bundle-owned JSON document does not parse."),
		describe(RuleAliasUndefined, "The lint config references an alias the alias document does not define."),
		describe(RuleAliasDuplicate, "An alias prefix is defined more than once."),
		describe(RuleIgnoreGlobInvalid, "An ignore pattern is not a valid glob."),
		describe(RuleIgnoreDuplicate, "An ignore pattern appears more than once."),
		describe(RuleSeverityUnknown, "A rule severity is outside off/warn/error."),
		describe(RuleScriptMissing, "package.json lacks one of the delegated scripts."),
		describe(RuleScriptDrift, "A delegated script's command differs from the bundle's."),
		describe(RuleExtensionConflict, "An extension is both recommended and unwanted."),
	}
}

// Run executes the consistency checks and returns a SARIF log.
func Run(cfg Config) (*sarif.Log, error) {
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}

	var results []sarif.Result

	jsonResults, parsed, err := checkJSONDocuments(root, &cfg.Profile)
	if err != nil {
		return nil, err
	}
	results = append(results, jsonResults...)

	results = append(results, checkAliases(root, &cfg.Profile, parsed)...)
	results = append(results, checkIgnoreFile(root)...)
	results = append(results, checkSeverities(root)...)
	results = append(results, checkScripts(root, &cfg.Profile, parsed)...)
	results = append(results, checkExtensions(parsed)...)

	log := sarif.NewLog()
	run := sarif.NewRun(DriverName, descriptors())
	run.Results = results
	log.Runs = append(log.Runs, run)
	return log, nil
}

// readIfPresent returns nil data without error when the file does not
// exist; doctor only checks what is actually on disk.
func readIfPresent(root, rel string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rel, err)
	}
	return data, nil
}
