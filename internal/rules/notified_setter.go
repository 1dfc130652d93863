package rules

import (
	"fmt"
	"strings"

	"github.com/mvvmshift/mvvmshift/internal/syntax"
	"github.com/mvvmshift/mvvmshift/pkg/model"
)

// NotifiedSetterRule finds properties whose setter assigns a backing
// field and announces the change by hand, either directly or through
// a compare-and-assign helper.
type NotifiedSetterRule struct{}

func (r *NotifiedSetterRule) ID() string    { return RuleNotifiedSetter }
func (r *NotifiedSetterRule) Title() string { return "Manually notified setter" }

func (r *NotifiedSetterRule) Description() string {
	return "Properties that call " + AnnounceCall + " or " + CompareAssignCall +
		" from an explicit setter can be rewritten as [" + ObservableAttr +
		"] auto-properties, with [" + NotifyForAttr + "] carrying any extra notifications."
}

func (r *NotifiedSetterRule) Severity() model.Severity { return model.SeverityError }
func (r *NotifiedSetterRule) CanFix() bool             { return true }

func (r *NotifiedSetterRule) Check(doc *syntax.Document) []model.Finding {
	var findings []model.Finding
	classProperties(doc, func(class, prop syntax.Node) {
		if _, ok := MatchNotifiedSetter(prop); !ok {
			return
		}
		name := prop.Field("name")
		findings = append(findings, model.Finding{
			RuleID:   RuleNotifiedSetter,
			Message:  fmt.Sprintf("setter of %q notifies manually; replace with an [%s] auto-property", name.Text(), ObservableAttr),
			Severity: model.SeverityError,
			Location: name.Location(),
			Fixable:  true,
		})
	})
	return findings
}

// NotifiedProperty is the reconstructed structure of one matched
// notified-setter property. Everything the planner needs to rebuild
// the declaration is extracted here; the planner itself never walks
// the tree.
type NotifiedProperty struct {
	Property syntax.Node
	Class    syntax.Node

	Name      string
	Type      string
	Modifiers []string

	// BackingField is empty when no assignment or compare-and-assign
	// named one. Last write wins when the setter touches several.
	BackingField string
	FieldDecl    syntax.Node
	FieldSolo    bool // declaration declares no other variable
	FieldInit    string
	PropertyInit string

	// NotifyTargets holds the extra members announced by the setter,
	// in call order, deduplicated, never the property itself.
	NotifyTargets []string
}

// MatchNotifiedSetter matches one property declaration against the
// notified-setter shape. Used both for detection and, at fix time, to
// re-derive the structure from the current snapshot.
func MatchNotifiedSetter(prop syntax.Node) (*NotifiedProperty, bool) {
	if prop.Kind() != syntax.KindPropertyDeclaration {
		return nil, false
	}
	setter := syntax.AccessorOfKind(prop.Field("accessors"), "set")
	if !setter.Exists() {
		return nil, false
	}
	statements := accessorStatements(setter)
	if len(statements) == 0 {
		return nil, false
	}

	m := &NotifiedProperty{
		Property:  prop,
		Class:     enclosingClass(prop),
		Name:      prop.Field("name").Text(),
		Type:      prop.Field("type").Text(),
		Modifiers: syntax.Modifiers(prop),
	}

	recognized := false
	for _, expr := range statements {
		switch expr.Kind() {
		case syntax.KindAssignmentExpression:
			left := expr.Field("left")
			right := expr.Field("right")
			if left.Kind() == syntax.KindIdentifier && right.Kind() == syntax.KindIdentifier && right.Text() == "value" {
				m.BackingField = left.Text()
			}

		case syntax.KindInvocationExpression:
			switch syntax.InvocationName(expr) {
			case CompareAssignCall:
				args := syntax.Arguments(expr)
				if len(args) != 2 {
					continue
				}
				target, _ := syntax.ArgumentExpr(args[0])
				if target.Kind() != syntax.KindIdentifier {
					continue
				}
				m.BackingField = target.Text()
				recognized = true

			case AnnounceCall:
				args := syntax.Arguments(expr)
				if len(args) > 1 {
					continue
				}
				recognized = true
				if len(args) == 1 {
					argExpr, _ := syntax.ArgumentExpr(args[0])
					if target, ok := syntax.NameArgument(argExpr); ok {
						m.addNotifyTarget(target)
					}
				}
			}
		}
	}
	if !recognized {
		return nil, false
	}

	if accessors := prop.Field("accessors"); accessors.Exists() {
		if value := prop.Field("value"); value.Exists() && value.Kind() != syntax.KindArrowExpressionClause {
			m.PropertyInit = value.Text()
		}
	}
	if m.BackingField != "" && m.Class.Exists() {
		decl, declarator := classField(m.Class, m.BackingField)
		if decl.Exists() {
			m.FieldDecl = decl
			m.FieldSolo = len(decl.FindAll(syntax.KindVariableDeclarator)) == 1
			if init := syntax.DeclaratorValue(declarator); init.Exists() {
				m.FieldInit = init.Text()
			}
		}
	}

	return m, true
}

// NewPropertyName is the name the rewritten auto-property takes: the
// backing field with leading underscores stripped and the first
// letter upper-cased, or the current name when no field was resolved.
func (m *NotifiedProperty) NewPropertyName() string {
	if m.BackingField == "" {
		return m.Name
	}
	trimmed := strings.TrimLeft(m.BackingField, "_")
	if trimmed == "" {
		return m.Name
	}
	return strings.ToUpper(trimmed[:1]) + trimmed[1:]
}

// Initializer is the initializer the new property keeps: its own when
// present, the backing field's otherwise.
func (m *NotifiedProperty) Initializer() string {
	if m.PropertyInit != "" {
		return m.PropertyInit
	}
	return m.FieldInit
}

func (m *NotifiedProperty) addNotifyTarget(name string) {
	if name == "" || name == m.Name {
		return
	}
	for _, t := range m.NotifyTargets {
		if t == name {
			return
		}
	}
	m.NotifyTargets = append(m.NotifyTargets, name)
}

// accessorStatements flattens an accessor body into its top-level
// expressions: each expression statement of a block body, or the
// single expression of an arrow body.
func accessorStatements(accessor syntax.Node) []syntax.Node {
	body := accessor.Field("body")
	if !body.Exists() {
		for _, c := range accessor.NamedChildren() {
			if c.Kind() == syntax.KindBlock || c.Kind() == syntax.KindArrowExpressionClause {
				body = c
				break
			}
		}
	}

	switch body.Kind() {
	case syntax.KindBlock:
		var exprs []syntax.Node
		for _, s := range body.NamedChildren() {
			if s.Kind() != syntax.KindExpressionStatement {
				continue
			}
			for _, c := range s.NamedChildren() {
				if c.Kind() != syntax.KindComment {
					exprs = append(exprs, c)
					break
				}
			}
		}
		return exprs

	case syntax.KindArrowExpressionClause:
		for _, c := range body.NamedChildren() {
			if c.Kind() != syntax.KindComment {
				return []syntax.Node{c}
			}
		}
	}
	return nil
}
