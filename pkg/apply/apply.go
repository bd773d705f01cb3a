// Package apply places bundle documents into a consuming project's file
// tree. Each document is written atomically; existing JSON files are
// key-merged rather than clobbered.
package apply

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"

	"github.com/dkoosis/stylekit/internal/log"
	"github.com/dkoosis/stylekit/pkg/bundle"
)

// Kind classifies what apply did (or would do) for one document.
type Kind string

const (
	KindCreate    Kind = "create"    // target does not exist
	KindMerge     Kind = "merge"     // JSON target exists, bundle keys merged in
	KindOverwrite Kind = "overwrite" // non-mergeable target replaced (force only)
	KindSkip      Kind = "skip"      // non-mergeable target differs, left alone
	KindUnchanged Kind = "unchanged" // target already matches
)

// Action records the outcome for one document path.
type Action struct {
	Path string
	Kind Kind
}

// Options controls an apply run.
type Options struct {
	Root   string // target project root
	Force  bool   // overwrite non-mergeable files that differ
	DryRun bool   // plan only, touch nothing
}

// Run merges the bundle into the tree rooted at opts.Root and reports one
// action per document. With DryRun set, the tree is never touched.
func Run(b *bundle.Bundle, opts Options) ([]Action, error) {
	if opts.Root == "" {
		opts.Root = "."
	}
	logger := log.WithComponent("apply")

	actions := make([]Action, 0, len(b.Documents))
	for _, doc := range b.Documents {
		action, content, err := resolve(opts.Root, doc, opts.Force)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", doc.Path, err)
		}
		actions = append(actions, action)

		if opts.DryRun || content == nil {
			logger.Debug().Str("path", doc.Path).Str("kind", string(action.Kind)).Bool("dry_run", opts.DryRun).Msg("planned")
			continue
		}
		if err := writeAtomic(filepath.Join(opts.Root, filepath.FromSlash(doc.Path)), content); err != nil {
			return nil, fmt.Errorf("%s: %w", doc.Path, err)
		}
		logger.Info().Str("path", doc.Path).Str("kind", string(action.Kind)).Msg("wrote")
	}
	return actions, nil
}

// resolve decides the action for one document. A nil content means nothing
// needs writing.
func resolve(root string, doc bundle.Document, force bool) (Action, []byte, error) {
	target := filepath.Join(root, filepath.FromSlash(doc.Path))

	existing, err := os.ReadFile(target)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return Action{Path: doc.Path, Kind: KindCreate}, doc.Content, nil
	case err != nil:
		return Action{}, nil, fmt.Errorf("read existing: %w", err)
	}

	if bytes.Equal(existing, doc.Content) {
		return Action{Path: doc.Path, Kind: KindUnchanged}, nil, nil
	}

	if doc.Mergeable() {
		merged, changed, err := mergeJSON(existing, doc.Content)
		if err != nil {
			// Unparseable target: merge is impossible, treat like any other
			// non-mergeable file.
			if force {
				return Action{Path: doc.Path, Kind: KindOverwrite}, doc.Content, nil
			}
			return Action{Path: doc.Path, Kind: KindSkip}, nil, nil
		}
		if !changed {
			return Action{Path: doc.Path, Kind: KindUnchanged}, nil, nil
		}
		return Action{Path: doc.Path, Kind: KindMerge}, merged, nil
	}

	if force {
		return Action{Path: doc.Path, Kind: KindOverwrite}, doc.Content, nil
	}
	return Action{Path: doc.Path, Kind: KindSkip}, nil, nil
}

// writeAtomic writes content with temp file + fsync + rename so a document
// is never observable half-written.
func writeAtomic(target string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	pending, err := renameio.NewPendingFile(target, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending file: %w", err)
	}
	defer func() {
		if err := pending.Cleanup(); err != nil {
			logger := log.WithComponent("apply")
			logger.Debug().Err(err).Msg("cleanup pending file")
		}
	}()

	if _, err := pending.Write(content); err != nil {
		return fmt.Errorf("write pending file: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace: %w", err)
	}
	return nil
}
