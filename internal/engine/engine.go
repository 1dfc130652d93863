// Package engine orchestrates the migration rules: scanning sources
// and directory trees for findings, and planning plus applying fixes
// against one snapshot at a time. The engine itself keeps no state
// between calls.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sort"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/mvvmshift/mvvmshift/internal/rules"
	"github.com/mvvmshift/mvvmshift/internal/syntax"
	"github.com/mvvmshift/mvvmshift/pkg/model"
)

var (
	// ErrNoFix marks a fix request whose construct offers nothing to
	// rewrite. The finding stands; the document is returned unchanged.
	ErrNoFix = errors.New("no applicable fix")

	// ErrStale marks a location that no longer matches the snapshot it
	// was reported against. The caller should re-scan.
	ErrStale = errors.New("location no longer matches the snapshot")
)

// Options configure an engine instance.
type Options struct {
	// Rules restricts the engine to the given rule IDs. Empty means
	// all registered rules.
	Rules []string

	// Include/Exclude filter directory scans by glob, matched against
	// the path relative to the scan root and against the base name.
	Include []string
	Exclude []string

	// Workers bounds concurrent file scans. Zero means GOMAXPROCS.
	Workers int
}

// Engine runs rules over documents and applies their fixes.
type Engine struct {
	registry *rules.Registry
	enabled  []rules.Rule
	include  []string
	exclude  []string
	workers  int
}

// New creates an engine. Unknown rule IDs are rejected.
func New(opts Options) (*Engine, error) {
	registry := rules.NewRegistry()

	enabled := registry.List()
	if len(opts.Rules) > 0 {
		enabled = enabled[:0]
		for _, id := range opts.Rules {
			rule, err := registry.Get(id)
			if err != nil {
				return nil, fmt.Errorf("unknown rule %q (known: %v)", id, registry.IDs())
			}
			enabled = append(enabled, rule)
		}
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	return &Engine{
		registry: registry,
		enabled:  enabled,
		include:  opts.Include,
		exclude:  opts.Exclude,
		workers:  workers,
	}, nil
}

// Rules describes the rules this engine runs.
func (e *Engine) Rules() []model.RuleInfo {
	infos := make([]model.RuleInfo, 0, len(e.enabled))
	for _, rule := range e.enabled {
		infos = append(infos, model.RuleInfo{
			ID:          rule.ID(),
			Title:       rule.Title(),
			Description: rule.Description(),
			Severity:    rule.Severity(),
			CanFix:      rule.CanFix(),
		})
	}
	return infos
}

// Scan checks one source snapshot and reports every finding, ordered
// by position.
func (e *Engine) Scan(ctx context.Context, path string, source []byte) (model.FileReport, error) {
	report := model.FileReport{Path: path}

	doc, err := syntax.NewParser().Parse(ctx, path, source)
	if err != nil {
		return report, fmt.Errorf("scan %s: %w", path, err)
	}
	defer doc.Close()

	for _, rule := range e.enabled {
		select {
		case <-ctx.Done():
			return report, ctx.Err()
		default:
		}
		report.Findings = append(report.Findings, rule.Check(doc)...)
	}

	sort.SliceStable(report.Findings, func(i, j int) bool {
		return report.Findings[i].Location.Span.Start < report.Findings[j].Location.Span.Start
	})
	return report, nil
}

// ScanFile reads and scans a single file.
func (e *Engine) ScanFile(ctx context.Context, path string) (model.FileReport, error) {
	if !syntax.IsSourceFile(path) {
		return model.FileReport{Path: path}, fmt.Errorf("not a C# source file: %s", path)
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return model.FileReport{Path: path}, fmt.Errorf("failed to read file: %w", err)
	}

	return e.Scan(ctx, path, source)
}

// ScanDir walks a directory tree and scans every matching C# file
// concurrently. Files that fail to read or parse are logged and
// skipped; they never abort the scan.
func (e *Engine) ScanDir(ctx context.Context, root string) (*model.ScanSummary, error) {
	files, err := e.collectFiles(root)
	if err != nil {
		return nil, err
	}

	reports := make([]*model.FileReport, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			report, err := e.ScanFile(ctx, path)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				log.Warn().Err(err).Str("file", path).Msg("Skipping unreadable file")
				return nil
			}
			reports[i] = &report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := model.NewScanSummary()
	for _, report := range reports {
		if report != nil {
			summary.Add(*report)
		}
	}
	summary.Sort()

	log.Info().
		Int("files", summary.FilesScanned).
		Int("findings", summary.Total).
		Int("fixable", summary.Fixable).
		Msg("Scan complete")
	return summary, nil
}

func (e *Engine) ruleEnabled(id string) bool {
	for _, rule := range e.enabled {
		if rule.ID() == id {
			return true
		}
	}
	return false
}
