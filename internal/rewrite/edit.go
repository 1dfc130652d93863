// Package rewrite plans and materializes source edits. Planners turn
// matched structures into edit sets; Apply splices them into the
// original bytes, leaving untouched text byte-identical.
package rewrite

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/mvvmshift/mvvmshift/internal/syntax"
	"github.com/mvvmshift/mvvmshift/pkg/model"
)

// Op identifies what an edit does to the document.
type Op string

const (
	OpInsert       Op = "insert"
	OpRemove       Op = "remove"
	OpReplace      Op = "replace"
	OpEnsureImport Op = "ensure_import"
)

// Edit is one change to a document. Spans address the snapshot the
// plan was built from; edits of one plan are order-independent.
type Edit struct {
	Op   Op         `json:"op"`
	Span model.Span `json:"span"`
	Text string     `json:"text,omitempty"`
}

// Insert adds text at a byte offset.
func Insert(at int, text string) Edit {
	return Edit{Op: OpInsert, Span: model.Span{Start: at, End: at}, Text: text}
}

// Remove deletes a byte range.
func Remove(span model.Span) Edit {
	return Edit{Op: OpRemove, Span: span}
}

// Replace substitutes a byte range with new text.
func Replace(span model.Span, text string) Edit {
	return Edit{Op: OpReplace, Span: span, Text: text}
}

// EnsureImport adds a using directive for the namespace unless one
// already covers it.
func EnsureImport(namespace string) Edit {
	return Edit{Op: OpEnsureImport, Text: namespace}
}

// Plan is the edit set produced for one finding. An empty plan means
// the planner declined: the finding stands but nothing changes.
type Plan struct {
	RuleID string `json:"rule_id"`
	Edits  []Edit `json:"edits"`
}

// Empty reports whether the plan changes anything.
func (p Plan) Empty() bool { return len(p.Edits) == 0 }

// Apply materializes a plan against the document it was planned from
// and returns the rewritten bytes. The input document is not touched.
func Apply(doc *syntax.Document, plan Plan) ([]byte, error) {
	if plan.Empty() {
		return doc.Source, nil
	}

	edits := resolveImports(doc, plan.Edits)
	edits = dropSubsumed(edits)

	sort.SliceStable(edits, func(i, j int) bool {
		if edits[i].Span.Start != edits[j].Span.Start {
			return edits[i].Span.Start < edits[j].Span.Start
		}
		// Insertions sit before removals anchored at the same offset.
		return edits[i].Span.Len() < edits[j].Span.Len()
	})

	var out bytes.Buffer
	last := 0
	for _, e := range edits {
		if e.Span.Start < last {
			return nil, fmt.Errorf("conflicting edits: offset %d already consumed (op %s)", e.Span.Start, e.Op)
		}
		if e.Span.End > len(doc.Source) {
			return nil, fmt.Errorf("edit past end of source: %d > %d", e.Span.End, len(doc.Source))
		}
		out.Write(doc.Source[last:e.Span.Start])
		out.WriteString(e.Text)
		last = e.Span.End
	}
	out.Write(doc.Source[last:])

	return out.Bytes(), nil
}

// resolveImports turns EnsureImport edits into concrete insertions.
// Coverage is exact path equality: importing a sub-namespace does not
// bring the parent into scope, and a redundant using is harmless where
// a missing one is not.
func resolveImports(doc *syntax.Document, edits []Edit) []Edit {
	resolved := make([]Edit, 0, len(edits))
	seen := make(map[string]bool)
	directives := syntax.UsingDirectives(doc.Root())

	for _, e := range edits {
		if e.Op != OpEnsureImport {
			resolved = append(resolved, e)
			continue
		}
		if seen[e.Text] {
			continue
		}
		seen[e.Text] = true

		covered := false
		for _, d := range directives {
			if syntax.UsingPath(d) == e.Text {
				covered = true
				break
			}
		}
		if covered {
			continue
		}

		if len(directives) > 0 {
			lastUsing := directives[len(directives)-1]
			resolved = append(resolved, Insert(lastUsing.Span().End, "\nusing "+e.Text+";"))
		} else {
			resolved = append(resolved, Insert(0, "using "+e.Text+";\n\n"))
		}
	}
	return resolved
}

// dropSubsumed discards removals nested inside a wider removal of the
// same plan; the container wins.
func dropSubsumed(edits []Edit) []Edit {
	kept := make([]Edit, 0, len(edits))
	for i, e := range edits {
		if e.Op == OpRemove {
			subsumed := false
			for j, other := range edits {
				if i == j || other.Op != OpRemove {
					continue
				}
				if other.Span.Contains(e.Span) && other.Span != e.Span {
					subsumed = true
					break
				}
			}
			if subsumed {
				continue
			}
		}
		kept = append(kept, e)
	}
	return kept
}

// expandToLines widens a span to whole lines: back over leading
// indentation to the line start, forward past the trailing newline.
func expandToLines(source []byte, span model.Span) model.Span {
	start := span.Start
	for start > 0 && source[start-1] != '\n' {
		if c := source[start-1]; c != ' ' && c != '\t' {
			return span // not alone on the line; leave untouched
		}
		start--
	}

	end := span.End
	for end < len(source) && source[end] != '\n' {
		if c := source[end]; c != ' ' && c != '\t' && c != '\r' {
			return model.Span{Start: start, End: span.End}
		}
		end++
	}
	if end < len(source) {
		end++ // include the newline
	}
	return model.Span{Start: start, End: end}
}

// indentOf returns the leading whitespace of the line the offset sits
// on.
func indentOf(source []byte, offset int) string {
	lineStart := offset
	for lineStart > 0 && source[lineStart-1] != '\n' {
		lineStart--
	}
	end := lineStart
	for end < len(source) && (source[end] == ' ' || source[end] == '\t') {
		end++
	}
	return string(source[lineStart:end])
}
