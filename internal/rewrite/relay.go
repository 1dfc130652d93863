package rewrite

import (
	"strings"

	"github.com/mvvmshift/mvvmshift/internal/rules"
	"github.com/mvvmshift/mvvmshift/internal/syntax"
)

// PlanDelegateCommand rewrites a DelegateCommand property into a
// [RelayCommand] method. Three shapes, tried in order:
//
//   - an Execute method exists: rename it and attach the attribute;
//   - the handler lambda forwards to a class method: attach the
//     attribute to that method;
//   - otherwise synthesize a method from the lambda.
//
// The property and its backing field go away in every shape. When the
// structure is not reconstructable the plan stays empty and the
// finding stands.
func PlanDelegateCommand(doc *syntax.Document, m *rules.DelegateCommandProperty) Plan {
	plan := Plan{RuleID: rules.RuleDelegateCommandType}
	if !m.Class.Exists() || !m.Reconstructable() {
		return plan
	}

	switch {
	case m.ExecuteMethod.Exists():
		planRenameExecute(doc, m, &plan)
	case m.AdoptMethod.Exists():
		planAdopt(doc, m, &plan)
	default:
		planSynthesize(doc, m, &plan)
	}

	propSpan := expandToLines(doc.Source, m.Property.SpanWithComments())
	plan.Edits = append(plan.Edits, Remove(propSpan))
	if m.FieldDecl.Exists() && m.FieldSolo {
		plan.Edits = append(plan.Edits,
			Remove(expandToLines(doc.Source, m.FieldDecl.SpanWithComments())))
	}
	plan.Edits = append(plan.Edits, EnsureImport(rules.MarkerNamespace))

	return plan
}

// planRenameExecute turns Execute<X> into <X>, attaches the
// attribute, and drops a trivial CanExecute<X> wrapper in favor of
// its field.
func planRenameExecute(doc *syntax.Document, m *rules.DelegateCommandProperty, plan *Plan) {
	target := ""
	switch {
	case m.CanExecuteRemovable:
		target = m.CanExecuteField
		plan.Edits = append(plan.Edits,
			Remove(expandToLines(doc.Source, m.CanExecuteMethod.SpanWithComments())))
	case m.CanExecuteMethod.Exists():
		target = m.CanExecuteName
	}

	name := m.ExecuteMethod.Field("name")
	plan.Edits = append(plan.Edits,
		Replace(name.Span(), m.MethodName()),
		attributeAbove(doc, m.ExecuteMethod, target),
	)
}

// planAdopt attaches the attribute to the method the lambda forwards
// to. The method keeps its name, and a CanExecute wrapper is only
// referenced, never removed.
func planAdopt(doc *syntax.Document, m *rules.DelegateCommandProperty, plan *Plan) {
	target := ""
	if m.CanExecuteMethod.Exists() {
		target = m.CanExecuteName
	}
	plan.Edits = append(plan.Edits, attributeAbove(doc, m.AdoptMethod, target))
}

// planSynthesize builds a new handler method from the lambda and
// inserts it where the property was.
func planSynthesize(doc *syntax.Document, m *rules.DelegateCommandProperty, plan *Plan) {
	target := ""
	if m.CanExecuteMethod.Exists() {
		target = m.CanExecuteName
	}

	indent := indentOf(doc.Source, m.Property.Span().Start)

	var lines []string
	for _, c := range m.Property.LeadingComments() {
		lines = append(lines, indent+c.Text())
	}
	lines = append(lines, indent+relayAttribute(target))

	returns := "void"
	if m.LambdaAsync {
		returns = "async Task"
	}
	signature := indent + "private " + returns + " " + m.MethodName() +
		"(" + strings.Join(m.LambdaDecls, ", ") + ")"

	switch {
	case m.HandlerExpr.Exists():
		lines = append(lines,
			signature,
			indent+"{",
			indent+"    "+m.HandlerExpr.Text()+";",
			indent+"}",
		)
	case !strings.Contains(m.HandlerBlock.Text(), "\n"):
		lines = append(lines, signature+" "+m.HandlerBlock.Text())
	default:
		lines = append(lines, signature, indent+m.HandlerBlock.Text())
	}

	propSpan := expandToLines(doc.Source, m.Property.SpanWithComments())
	plan.Edits = append(plan.Edits, Insert(propSpan.Start, strings.Join(lines, "\n")+"\n"))
}

// attributeAbove inserts the relay attribute on its own line directly
// above a method, below any leading comments.
func attributeAbove(doc *syntax.Document, method syntax.Node, canExecuteTarget string) Edit {
	at := lineStartOf(doc.Source, method.Span().Start)
	indent := indentOf(doc.Source, method.Span().Start)
	return Insert(at, indent+relayAttribute(canExecuteTarget)+"\n")
}

func relayAttribute(canExecuteTarget string) string {
	if canExecuteTarget == "" {
		return "[" + rules.RelayCommandAttr + "]"
	}
	return "[" + rules.RelayCommandAttr + "(CanExecute = nameof(" + canExecuteTarget + "))]"
}

func lineStartOf(source []byte, offset int) int {
	for offset > 0 && source[offset-1] != '\n' {
		offset--
	}
	return offset
}
