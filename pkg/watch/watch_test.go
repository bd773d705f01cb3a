package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dkoosis/stylekit/pkg/apply"
	"github.com/dkoosis/stylekit/pkg/bundle"
	"github.com/dkoosis/stylekit/pkg/doctor"
	"github.com/dkoosis/stylekit/pkg/sarif"
)

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

func TestRunRequiresCallback(t *testing.T) {
	err := Run(context.Background(), Config{Root: t.TempDir()})
	if err == nil {
		t.Fatalf("expected error without OnReport")
	}
}

func TestRunReportsOnOwnedFileChange(t *testing.T) {
	root, p := seedTree(t)

	reports := make(chan *sarif.Log, 8)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Config{
			Root:     root,
			Profile:  p,
			Debounce: 50 * time.Millisecond,
			OnReport: func(log *sarif.Log) { reports <- log },
		})
	}()

	// Initial report for the clean tree.
	select {
	case report := <-reports:
		if n := len(report.Runs[0].Results); n != 0 {
			t.Fatalf("initial report should be clean, got %d findings", n)
		}
	case <-ctx.Done():
		t.Fatalf("no initial report")
	}

	// Break a delegated script; the watcher should notice and re-check.
	pkg := filepath.Join(root, "package.json")
	if err := os.WriteFile(pkg, []byte(`{"scripts":{"lint":"standard"}}`), 0o644); err != nil {
		t.Fatalf("rewrite package.json: %v", err)
	}

	deadline := time.After(8 * time.Second)
	for {
		select {
		case report := <-reports:
			if hasRule(report, doctor.RuleScriptDrift) {
				cancel()
				if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
					t.Fatalf("watch returned %v", err)
				}
				return
			}
		case <-deadline:
			t.Fatalf("no report with script drift finding")
		}
	}
}

func TestRunIgnoresUnrelatedFiles(t *testing.T) {
	root, p := seedTree(t)

	reports := make(chan *sarif.Log, 8)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	go func() {
		_ = Run(ctx, Config{
			Root:     root,
			Profile:  p,
			Debounce: 50 * time.Millisecond,
			OnReport: func(log *sarif.Log) { reports <- log },
		})
	}()

	<-reports // initial

	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("scratch"), 0o644); err != nil {
		t.Fatalf("write unrelated file: %v", err)
	}

	select {
	case <-reports:
		t.Fatalf("unrelated file should not trigger a report")
	case <-time.After(500 * time.Millisecond):
	}
}

func hasRule(log *sarif.Log, ruleID string) bool {
	for _, r := range log.Runs[0].Results {
		if r.RuleID == ruleID {
			return true
		}
	}
	return false
}
