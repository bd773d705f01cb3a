// Package bundle models the configuration bundle: the fixed set of lint,
// format, alias, and editor documents merged into a consuming project.
package bundle

import (
	"fmt"
	"strings"
)

// Severity is a rule severity recognized by the external linter.
type Severity string

const (
	SeverityOff   Severity = "off"
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

// ParseSeverity normalizes the textual and numeric severity spellings the
// external linter accepts. Unknown values are returned with an error so the
// caller can report them instead of silently emitting broken config.
func ParseSeverity(v string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "off", "0":
		return SeverityOff, nil
	case "warn", "1":
		return SeverityWarn, nil
	case "error", "2":
		return SeverityError, nil
	default:
		return "", fmt.Errorf("unknown severity %q", v)
	}
}

// Rule is a single lint rule entry: a well-known name, a severity, and
// optional tool-specific options rendered alongside the severity.
type Rule struct {
	Name     string
	Severity Severity
	Options  any
}

// RuleSet is an ordered group of rules scoped to a set of file globs.
// Order matters: flat config applies later objects over earlier ones.
type RuleSet struct {
	Name  string
	Files []string
	Rules []Rule
}

// IgnoreList is a set of glob patterns. Order is irrelevant and duplicates
// are permitted; nothing here dedups what the user authored.
type IgnoreList []string

// Alias maps an import prefix to a filesystem path.
type Alias struct {
	Prefix string
	Target string
}

// AliasMap is an ordered list of aliases with unique prefixes.
type AliasMap []Alias

// NewAliasMap builds an AliasMap, rejecting duplicate prefixes.
func NewAliasMap(aliases []Alias) (AliasMap, error) {
	seen := make(map[string]struct{}, len(aliases))
	for _, a := range aliases {
		if strings.TrimSpace(a.Prefix) == "" {
			return nil, fmt.Errorf("alias with empty prefix (target %q)", a.Target)
		}
		if strings.TrimSpace(a.Target) == "" {
			return nil, fmt.Errorf("alias %q has empty target", a.Prefix)
		}
		if _, dup := seen[a.Prefix]; dup {
			return nil, fmt.Errorf("duplicate alias %q", a.Prefix)
		}
		seen[a.Prefix] = struct{}{}
	}
	return AliasMap(aliases), nil
}

// Lookup returns the target for a prefix, if defined.
func (m AliasMap) Lookup(prefix string) (string, bool) {
	for _, a := range m {
		if a.Prefix == prefix {
			return a.Target, true
		}
	}
	return "", false
}

// Format tags the syntax of a rendered document.
type Format string

const (
	FormatJSON       Format = "json"
	FormatJavaScript Format = "javascript"
	FormatText       Format = "text"
)

// Document is one rendered artifact of the bundle: a slash-relative target
// path and its fixed content.
type Document struct {
	Path    string
	Content []byte
	Format  Format
}

// Mergeable reports whether an existing file at the document's path can be
// key-merged instead of overwritten. Only JSON documents merge.
func (d Document) Mergeable() bool {
	return d.Format == FormatJSON
}

// Bundle is the complete set of documents rendered from a profile.
type Bundle struct {
	Documents []Document
}

// Find returns the document targeting the given path.
func (b *Bundle) Find(path string) (Document, bool) {
	for _, d := range b.Documents {
		if d.Path == path {
			return d, true
		}
	}
	return Document{}, false
}

// Paths lists the target paths in render order.
func (b *Bundle) Paths() []string {
	paths := make([]string, 0, len(b.Documents))
	for _, d := range b.Documents {
		paths = append(paths, d.Path)
	}
	return paths
}
