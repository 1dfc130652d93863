package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/mvvmshift/mvvmshift/internal/rewrite"
	"github.com/mvvmshift/mvvmshift/internal/rules"
	"github.com/mvvmshift/mvvmshift/internal/syntax"
	"github.com/mvvmshift/mvvmshift/pkg/model"
)

// maxFixPasses bounds the fix-all loop. Every successful fix removes
// the construct it matched, so the pass count never exceeds the number
// of findings in a well-behaved document.
const maxFixPasses = 256

// Fix re-derives the finding at loc from the given snapshot and applies
// its rewrite. ruleID narrows the match to one rule; empty tries every
// enabled rule in registration order.
//
// A construct that no longer matches returns ErrStale, one that matches
// but offers no rewrite returns ErrNoFix. In both cases Output holds
// the source unchanged.
func (e *Engine) Fix(ctx context.Context, path string, source []byte, loc model.Location, ruleID string) (model.FixResult, error) {
	unchanged := model.FixResult{Changed: false, Output: string(source)}

	if ruleID != "" && !e.ruleEnabled(ruleID) {
		return unchanged, fmt.Errorf("unknown rule %q (known: %v)", ruleID, e.registry.IDs())
	}

	doc, err := syntax.NewParser().Parse(ctx, path, source)
	if err != nil {
		return unchanged, fmt.Errorf("fix %s: %w", path, err)
	}
	defer doc.Close()

	prop := propertyAt(doc, loc.Span.Start)
	if !prop.Exists() {
		return unchanged, ErrStale
	}

	plan, err := e.planAt(doc, prop, ruleID)
	if err != nil {
		return unchanged, err
	}

	out, err := rewrite.Apply(doc, plan)
	if err != nil {
		return unchanged, fmt.Errorf("fix %s: %w", path, err)
	}

	log.Debug().
		Str("file", path).
		Str("rule", plan.RuleID).
		Int("edits", len(plan.Edits)).
		Msg("Applied fix")
	return model.FixResult{
		Changed: true,
		Output:  string(out),
		Applied: []string{plan.RuleID},
	}, nil
}

// planAt matches the property against the requested rule, or against
// every enabled rule when ruleID is empty, and plans its rewrite.
func (e *Engine) planAt(doc *syntax.Document, prop syntax.Node, ruleID string) (rewrite.Plan, error) {
	tryRule := func(id string) bool {
		return (ruleID == "" || ruleID == id) && e.ruleEnabled(id)
	}

	if tryRule(rules.RuleNotifiedSetter) {
		if m, ok := rules.MatchNotifiedSetter(prop); ok {
			plan := rewrite.PlanNotifiedSetter(doc, m)
			if plan.Empty() {
				return rewrite.Plan{}, ErrNoFix
			}
			return plan, nil
		}
	}

	if tryRule(rules.RuleDelegateCommandType) {
		if m, ok := rules.MatchDelegateCommand(prop); ok {
			if !m.Reconstructable() {
				return rewrite.Plan{}, ErrNoFix
			}
			plan := rewrite.PlanDelegateCommand(doc, m)
			if plan.Empty() {
				return rewrite.Plan{}, ErrNoFix
			}
			return plan, nil
		}
	}

	if tryRule(rules.RuleSimpleCommandType) {
		if _, ok := rules.MatchSimpleCommand(prop); ok {
			// Diagnosis only: the target shape needs a human decision.
			return rewrite.Plan{}, ErrNoFix
		}
	}

	return rewrite.Plan{}, ErrStale
}

// FixAll repeatedly scans the document and applies the first fixable
// finding until none remain. Each pass re-derives every match from the
// freshly rewritten snapshot.
func (e *Engine) FixAll(ctx context.Context, path string, source []byte) (model.FixResult, error) {
	current := source
	var applied []string
	var remaining []model.Finding

	for pass := 0; pass < maxFixPasses; pass++ {
		if err := ctx.Err(); err != nil {
			return model.FixResult{Changed: len(applied) > 0, Output: string(current), Applied: applied}, err
		}

		report, err := e.Scan(ctx, path, current)
		if err != nil {
			return model.FixResult{Changed: len(applied) > 0, Output: string(current), Applied: applied}, err
		}
		remaining = report.Findings

		fixed := false
		for _, finding := range report.Findings {
			if !finding.Fixable {
				continue
			}
			result, err := e.Fix(ctx, path, current, finding.Location, finding.RuleID)
			if err != nil {
				if errors.Is(err, ErrNoFix) || errors.Is(err, ErrStale) {
					continue
				}
				return model.FixResult{Changed: len(applied) > 0, Output: string(current), Applied: applied}, err
			}
			current = []byte(result.Output)
			applied = append(applied, result.Applied...)
			fixed = true
			break // spans shifted; re-scan before the next fix
		}
		if !fixed {
			break
		}
	}

	return model.FixResult{
		Changed:   len(applied) > 0,
		Output:    string(current),
		Applied:   applied,
		Remaining: remaining,
	}, nil
}

// propertyAt returns the innermost property declaration covering the
// byte offset.
func propertyAt(doc *syntax.Document, offset int) syntax.Node {
	var best syntax.Node
	doc.Root().Walk(func(n syntax.Node) {
		if n.Kind() != syntax.KindPropertyDeclaration {
			return
		}
		span := n.Span()
		if span.Start <= offset && offset < span.End {
			if !best.Exists() || span.Len() < best.Span().Len() {
				best = n
			}
		}
	})
	return best
}
