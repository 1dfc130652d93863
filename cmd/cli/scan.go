package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mvvmshift/mvvmshift/internal/config"
	"github.com/mvvmshift/mvvmshift/internal/engine"
	"github.com/mvvmshift/mvvmshift/internal/gitrepo"
	"github.com/mvvmshift/mvvmshift/internal/rules"
	"github.com/mvvmshift/mvvmshift/pkg/model"
)

// scanOptions carries the engine knobs shared by scan and fix.
type scanOptions struct {
	rules   []string
	include []string
	exclude []string
	workers int
}

func scanCmd() *cobra.Command {
	var (
		repoURL string
		jsonOut bool
		opts    scanOptions
	)

	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Scan C# sources for legacy MVVM patterns",
		Long: `Scan a file or directory tree for legacy MVVM patterns.

Directory scans honor a .mvvmshift.yaml in the scan root; flags given
here override it. With --repo, a GitHub repository is cloned to a
temporary directory and scanned instead of a local path.

Exits 1 when findings are reported.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := "."
			if len(args) > 0 {
				target = args[0]
			}

			var (
				summary *model.ScanSummary
				err     error
			)
			if repoURL != "" {
				summary, err = scanRemote(context.Background(), repoURL, opts)
			} else {
				summary, err = scanPath(context.Background(), target, opts)
			}
			if err != nil {
				return err
			}

			if jsonOut {
				if err := printJSON(summary); err != nil {
					return err
				}
			} else {
				renderSummary(os.Stdout, summary)
			}

			if summary.Total > 0 {
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&repoURL, "repo", "r", "", "GitHub repository URL to clone and scan")
	cmd.Flags().StringSliceVar(&opts.rules, "rule", nil, "Rule IDs to run (default: all)")
	cmd.Flags().StringSliceVar(&opts.include, "include", nil, "Glob patterns of files to scan")
	cmd.Flags().StringSliceVar(&opts.exclude, "exclude", nil, "Glob patterns of files to skip")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Concurrent file scans (0 = one per CPU)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the summary as JSON")

	return cmd
}

// scanPath scans a local file or directory.
func scanPath(ctx context.Context, target string, opts scanOptions) (*model.ScanSummary, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, err
	}

	if info.IsDir() {
		eng, err := dirEngine(target, opts)
		if err != nil {
			return nil, err
		}
		return eng.ScanDir(ctx, target)
	}

	eng, err := newEngine(opts)
	if err != nil {
		return nil, err
	}
	report, err := eng.ScanFile(ctx, target)
	if err != nil {
		return nil, err
	}

	summary := model.NewScanSummary()
	summary.Add(report)
	summary.Sort()
	return summary, nil
}

// scanRemote clones a repository into a temporary directory, scans it,
// and removes the clone before returning.
func scanRemote(ctx context.Context, repoURL string, opts scanOptions) (*model.ScanSummary, error) {
	info, err := gitrepo.ParseRepoURL(repoURL)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	base, err := os.MkdirTemp("", "mvvmshift-scan-")
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := os.RemoveAll(base); err != nil {
			log.Warn().Err(err).Str("dir", base).Msg("Failed to remove clone")
		}
	}()

	svc := gitrepo.NewRepoService(base, cfg.GitHubToken)
	clone, err := svc.Clone(ctx, info)
	if err != nil {
		return nil, fmt.Errorf("failed to clone repository: %w", err)
	}

	return scanPath(ctx, clone.Path, opts)
}

// dirEngine builds an engine for a directory scan: project config from
// the scan root, overridden by the flags.
func dirEngine(dir string, opts scanOptions) (*engine.Engine, error) {
	proj, err := config.LoadProjectConfig(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load project config: %w", err)
	}
	proj.Merge(&config.ProjectConfig{
		Include: opts.include,
		Exclude: opts.exclude,
		Scan:    config.ScanConfig{Workers: opts.workers},
	})

	ruleIDs := opts.rules
	if len(ruleIDs) == 0 {
		ruleIDs = proj.EnabledRules(rules.NewRegistry().IDs())
		if len(ruleIDs) == 0 {
			return nil, fmt.Errorf("project config disables every rule")
		}
	}

	return engine.New(engine.Options{
		Rules:   ruleIDs,
		Include: proj.Include,
		Exclude: proj.Exclude,
		Workers: proj.Scan.Workers,
	})
}

func newEngine(opts scanOptions) (*engine.Engine, error) {
	return engine.New(engine.Options{
		Rules:   opts.rules,
		Include: opts.include,
		Exclude: opts.exclude,
		Workers: opts.workers,
	})
}

func renderSummary(w io.Writer, summary *model.ScanSummary) {
	for _, report := range summary.Reports {
		for _, f := range report.Findings {
			tag := ""
			if f.Fixable {
				tag = " " + fixableColor.Sprint("[fixable]")
			}
			fmt.Fprintf(w, "%s:%d:%d: %s %s %s%s\n",
				pathColor.Sprint(report.Path), f.Location.Line, f.Location.Column,
				severityColor.Sprint(string(f.Severity)), ruleColor.Sprint(f.RuleID),
				f.Message, tag)
		}
	}

	if summary.Total == 0 {
		fmt.Fprintln(w, "No legacy MVVM patterns found.")
		return
	}
	fmt.Fprintf(w, "\n%d finding(s) in %d of %d file(s), %d fixable\n",
		summary.Total, summary.FilesFlagged, summary.FilesScanned, summary.Fixable)
}
