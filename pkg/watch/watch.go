// Package watch re-runs the consistency checks whenever a bundle-owned file
// changes. Events are debounced so editor save bursts produce one report.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dkoosis/stylekit/internal/log"
	"github.com/dkoosis/stylekit/pkg/bundle"
	"github.com/dkoosis/stylekit/pkg/doctor"
	"github.com/dkoosis/stylekit/pkg/sarif"
)

// DefaultDebounce is how long after the last event a check waits.
const DefaultDebounce = 250 * time.Millisecond

// Config controls a watch session.
type Config struct {
	Root     string
	Profile  bundle.Profile
	Debounce time.Duration
	// OnReport receives each check report. Required.
	OnReport func(*sarif.Log)
}

// Run watches the project root until ctx is cancelled. An initial report is
// delivered before the first event.
func Run(ctx context.Context, cfg Config) error {
	if cfg.OnReport == nil {
		return fmt.Errorf("OnReport callback is required")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return fmt.Errorf("resolve root: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	// The bundle's documents live in the root and .vscode; watching the
	// directories catches atomic-rename saves that per-file watches miss.
	if err := watcher.Add(root); err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}
	vscode := filepath.Join(root, ".vscode")
	if info, err := os.Stat(vscode); err == nil && info.IsDir() {
		if err := watcher.Add(vscode); err != nil {
			return fmt.Errorf("watch %s: %w", vscode, err)
		}
	}

	owned := ownedPaths(&cfg.Profile)
	logger := log.WithComponent("watch")

	check := func() {
		report, err := doctor.Run(doctor.Config{Root: root, Profile: cfg.Profile})
		if err != nil {
			logger.Error().Err(err).Msg("check failed")
			return
		}
		cfg.OnReport(report)
	}
	check()

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			rel, err := filepath.Rel(root, event.Name)
			if err != nil {
				continue
			}
			if _, ours := owned[filepath.ToSlash(rel)]; !ours {
				continue
			}
			logger.Debug().Str("path", rel).Str("op", event.Op.String()).Msg("change detected")
			if timer == nil {
				timer = time.NewTimer(cfg.Debounce)
				timerC = timer.C
			} else {
				timer.Reset(cfg.Debounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("watch error")
		case <-timerC:
			check()
		}
	}
}

func ownedPaths(p *bundle.Profile) map[string]struct{} {
	owned := map[string]struct{}{
		bundle.ESLintConfigPath:     {},
		bundle.PrettierOptionsPath:  {},
		bundle.PrettierIgnorePath:   {},
		bundle.EditorSettingsPath:   {},
		bundle.EditorExtensionsPath: {},
		bundle.PackageJSONPath:      {},
	}
	owned[p.AliasDocumentPath()] = struct{}{}
	return owned
}
