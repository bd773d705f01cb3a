package runner

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dkoosis/stylekit/pkg/sarif"
)

// eslintMessage mirrors one entry of ESLint's --format json output.
type eslintMessage struct {
	RuleID   string `json:"ruleId"`
	Severity int    `json:"severity"` // 1 warning, 2 error
	Message  string `json:"message"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
}

// eslintResult is one file's worth of messages.
type eslintResult struct {
	FilePath string          `json:"filePath"`
	Messages []eslintMessage `json:"messages"`
}

// ConvertESLintJSON translates ESLint's JSON report into SARIF results.
// Paths are relativized against root so the SARIF stays portable.
func ConvertESLintJSON(data []byte, root string) ([]sarif.Result, error) {
	var report []eslintResult
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parse eslint JSON report: %w", err)
	}

	var results []sarif.Result
	for _, file := range report {
		uri := file.FilePath
		if root != "" {
			if rel, err := filepath.Rel(root, file.FilePath); err == nil && !strings.HasPrefix(rel, "..") {
				uri = filepath.ToSlash(rel)
			}
		}
		for _, m := range file.Messages {
			ruleID := m.RuleID
			if ruleID == "" {
				ruleID = "eslint"
			}
			level := "warning"
			if m.Severity >= 2 {
				level = "error"
			}
			results = append(results, sarif.NewResult(ruleID, level, m.Message, uri).WithRegion(m.Line, m.Column))
		}
	}
	return results, nil
}
