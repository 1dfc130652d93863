package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvvmshift/mvvmshift/internal/diff"
	"github.com/mvvmshift/mvvmshift/internal/engine"
)

// fileFix is the per-file outcome of a fix run. Remaining counts the
// findings left in the fixed output, the ones needing manual work.
type fileFix struct {
	Path      string   `json:"path"`
	Changed   bool     `json:"changed"`
	Applied   []string `json:"applied,omitempty"`
	Remaining int      `json:"remaining,omitempty"`
	Diff      string   `json:"diff,omitempty"`
}

func fixCmd() *cobra.Command {
	var (
		write   bool
		jsonOut bool
		opts    scanOptions
	)

	cmd := &cobra.Command{
		Use:   "fix <path>",
		Short: "Rewrite fixable findings",
		Long: `Apply automatic rewrites for every fixable finding in a file or
directory tree.

By default the planned changes are printed as unified diffs and
nothing is touched. With --write, the fixed sources are written back
in place.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			target := args[0]

			info, err := os.Stat(target)
			if err != nil {
				return err
			}

			var fixes []fileFix
			if info.IsDir() {
				fixes, err = fixDir(ctx, target, opts, write)
			} else {
				eng, engErr := newEngine(opts)
				if engErr != nil {
					return engErr
				}
				var fix fileFix
				fix, err = fixFile(ctx, eng, target, write)
				fixes = []fileFix{fix}
			}
			if err != nil {
				return err
			}

			remaining := 0
			for _, fix := range fixes {
				remaining += fix.Remaining
			}

			if jsonOut {
				if err := printJSON(fixes); err != nil {
					return err
				}
			} else {
				changed := 0
				for _, fix := range fixes {
					if !fix.Changed {
						continue
					}
					changed++
					if write {
						fmt.Printf("%s: applied %d fix(es)\n", fix.Path, len(fix.Applied))
					} else {
						fmt.Print(fix.Diff)
					}
				}

				if changed == 0 {
					fmt.Println("Nothing to fix.")
				} else if write {
					fmt.Printf("\n✅ Fixed %d file(s)\n", changed)
				}
				if remaining > 0 {
					fmt.Printf("%d finding(s) need manual migration\n", remaining)
				}
			}

			if remaining > 0 {
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write fixes back to the files")
	cmd.Flags().StringSliceVar(&opts.rules, "rule", nil, "Rule IDs to apply (default: all)")
	cmd.Flags().StringSliceVar(&opts.include, "include", nil, "Glob patterns of files to fix")
	cmd.Flags().StringSliceVar(&opts.exclude, "exclude", nil, "Glob patterns of files to skip")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Concurrent file scans (0 = one per CPU)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the results as JSON")

	return cmd
}

// fixFile runs the fix loop over one file. Without write, the result
// carries a unified diff of what would change.
func fixFile(ctx context.Context, eng *engine.Engine, path string, write bool) (fileFix, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return fileFix{}, fmt.Errorf("failed to read file: %w", err)
	}

	result, err := eng.FixAll(ctx, path, source)
	if err != nil {
		return fileFix{}, fmt.Errorf("fix %s: %w", path, err)
	}

	fix := fileFix{
		Path:      path,
		Changed:   result.Changed,
		Applied:   result.Applied,
		Remaining: len(result.Remaining),
	}
	if !result.Changed {
		return fix, nil
	}

	if write {
		info, err := os.Stat(path)
		if err != nil {
			return fileFix{}, err
		}
		if err := os.WriteFile(path, []byte(result.Output), info.Mode().Perm()); err != nil {
			return fileFix{}, fmt.Errorf("failed to write file: %w", err)
		}
		return fix, nil
	}

	patch, err := diff.Unified(path, source, []byte(result.Output))
	if err != nil {
		return fileFix{}, err
	}
	fix.Diff = string(patch)
	return fix, nil
}

// fixDir scans the tree first, then fixes each flagged file.
func fixDir(ctx context.Context, dir string, opts scanOptions, write bool) ([]fileFix, error) {
	eng, err := dirEngine(dir, opts)
	if err != nil {
		return nil, err
	}

	summary, err := eng.ScanDir(ctx, dir)
	if err != nil {
		return nil, err
	}

	fixes := make([]fileFix, 0, len(summary.Reports))
	for _, report := range summary.Reports {
		fix, err := fixFile(ctx, eng, report.Path, write)
		if err != nil {
			return nil, err
		}
		fixes = append(fixes, fix)
	}
	return fixes, nil
}
