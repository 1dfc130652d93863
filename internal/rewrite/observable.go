package rewrite

import (
	"strings"

	"github.com/mvvmshift/mvvmshift/internal/rules"
	"github.com/mvvmshift/mvvmshift/internal/syntax"
)

// PlanNotifiedSetter rewrites a notified-setter property into a
// partial auto-property carrying [Observable] and one [NotifyFor] per
// extra announce target. The backing field goes away when it belongs
// to this property alone.
func PlanNotifiedSetter(doc *syntax.Document, m *rules.NotifiedProperty) Plan {
	plan := Plan{RuleID: rules.RuleNotifiedSetter}
	if !m.Class.Exists() {
		return plan
	}

	indent := indentOf(doc.Source, m.Property.Span().Start)

	var lines []string
	for _, c := range m.Property.LeadingComments() {
		lines = append(lines, indent+c.Text())
	}
	lines = append(lines, indent+"["+rules.ObservableAttr+"]")
	for _, target := range m.NotifyTargets {
		lines = append(lines, indent+"["+rules.NotifyForAttr+"(nameof("+target+"))]")
	}

	decl := indent + strings.Join(withPartial(m.Modifiers), " ") + " " + m.Type + " " +
		m.NewPropertyName() + " { get; set; }"
	if init := m.Initializer(); init != "" {
		decl += " = " + init + ";"
	}
	lines = append(lines, decl)

	propSpan := expandToLines(doc.Source, m.Property.SpanWithComments())
	plan.Edits = append(plan.Edits,
		Insert(propSpan.Start, strings.Join(lines, "\n")+"\n"),
		Remove(propSpan),
	)
	if m.FieldDecl.Exists() && m.FieldSolo {
		plan.Edits = append(plan.Edits,
			Remove(expandToLines(doc.Source, m.FieldDecl.SpanWithComments())))
	}
	plan.Edits = append(plan.Edits, EnsureImport(rules.MarkerNamespace))

	return plan
}

func withPartial(modifiers []string) []string {
	for _, m := range modifiers {
		if m == "partial" {
			return modifiers
		}
	}
	return append(append([]string{}, modifiers...), "partial")
}
