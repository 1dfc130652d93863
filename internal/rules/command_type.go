package rules

import (
	"fmt"

	"github.com/mvvmshift/mvvmshift/internal/syntax"
	"github.com/mvvmshift/mvvmshift/pkg/model"
)

// SimpleCommandRule flags properties declared with the bare Command
// type. There is no mechanical rewrite for these: the command's
// wiring lives elsewhere, so the rule only reports.
type SimpleCommandRule struct{}

func (r *SimpleCommandRule) ID() string    { return RuleSimpleCommandType }
func (r *SimpleCommandRule) Title() string { return "Command-typed property" }

func (r *SimpleCommandRule) Description() string {
	return "Properties typed " + SimpleCommandType + " predate [" + RelayCommandAttr +
		"] methods. They are flagged for manual migration; no automatic fix exists."
}

func (r *SimpleCommandRule) Severity() model.Severity { return model.SeverityError }
func (r *SimpleCommandRule) CanFix() bool             { return false }

func (r *SimpleCommandRule) Check(doc *syntax.Document) []model.Finding {
	var findings []model.Finding
	classProperties(doc, func(class, prop syntax.Node) {
		if _, ok := MatchSimpleCommand(prop); !ok {
			return
		}
		name := prop.Field("name")
		findings = append(findings, model.Finding{
			RuleID:   RuleSimpleCommandType,
			Message:  fmt.Sprintf("property %q is typed %s; migrate it to a [%s] method by hand", name.Text(), SimpleCommandType, RelayCommandAttr),
			Severity: model.SeverityError,
			Location: name.Location(),
			Fixable:  false,
		})
	})
	return findings
}

// SimpleCommandProperty identifies a matched Command-typed property.
// No further structure is extracted; the rule carries no rewrite.
type SimpleCommandProperty struct {
	Property syntax.Node
	Name     string
	TypeName string
}

// MatchSimpleCommand matches a property whose declared type reduces
// to the bare Command name.
func MatchSimpleCommand(prop syntax.Node) (*SimpleCommandProperty, bool) {
	if prop.Kind() != syntax.KindPropertyDeclaration {
		return nil, false
	}
	if syntax.SimpleTypeName(prop.Field("type")) != SimpleCommandType {
		return nil, false
	}
	return &SimpleCommandProperty{
		Property: prop,
		Name:     prop.Field("name").Text(),
		TypeName: prop.Field("type").Text(),
	}, true
}
