// Package rules detects legacy manual change-notification patterns in
// parsed C# documents. Each rule reports findings; the matchers that
// back them also extract the structure the rewrite planners consume.
package rules

import (
	"fmt"
	"sort"

	"github.com/mvvmshift/mvvmshift/internal/syntax"
	"github.com/mvvmshift/mvvmshift/pkg/model"
)

// Rule IDs are stable across releases; hosts and suppressions key on
// them.
const (
	RuleNotifiedSetter      = "notified-setter"
	RuleSimpleCommandType   = "simple-command-type"
	RuleDelegateCommandType = "delegate-command-type"
)

// Names of the legacy constructs the rules look for and of the marker
// attributes the rewrites introduce.
const (
	AnnounceCall        = "OnPropertyChanged"
	CompareAssignCall   = "SetProperty"
	SimpleCommandType   = "Command"
	DelegateCommandType = "DelegateCommand"
	ObservableAttr      = "Observable"
	NotifyForAttr       = "NotifyFor"
	RelayCommandAttr    = "RelayCommand"
	MarkerNamespace     = "Mvvm.Annotations"
	CommandSuffix       = "Command"
	AsyncSuffix         = "Async"
	ExecutePrefix       = "Execute"
	CanExecutePrefix    = "CanExecute"
)

// Rule checks one legacy pattern against a parsed document.
type Rule interface {
	// ID returns the stable rule identifier (e.g. "notified-setter").
	ID() string

	// Title returns a short human-readable name.
	Title() string

	// Description explains what the rule matches and what the fix does.
	Description() string

	// Severity is fixed per rule.
	Severity() model.Severity

	// CanFix reports whether the rule has a rewrite.
	CanFix() bool

	// Check scans the document and reports every match.
	Check(doc *syntax.Document) []model.Finding
}

// Registry holds all available rules.
type Registry struct {
	rules map[string]Rule
	order []string
}

// NewRegistry creates a registry with all built-in rules.
func NewRegistry() *Registry {
	r := &Registry{
		rules: make(map[string]Rule),
	}

	r.Register(&NotifiedSetterRule{})
	r.Register(&SimpleCommandRule{})
	r.Register(&DelegateCommandRule{})

	return r
}

// Register adds a rule to the registry.
func (r *Registry) Register(rule Rule) {
	if _, ok := r.rules[rule.ID()]; !ok {
		r.order = append(r.order, rule.ID())
	}
	r.rules[rule.ID()] = rule
}

// Get returns a rule by ID.
func (r *Registry) Get(id string) (Rule, error) {
	rule, ok := r.rules[id]
	if !ok {
		return nil, fmt.Errorf("rule not found: %s", id)
	}
	return rule, nil
}

// List returns all rules in registration order.
func (r *Registry) List() []Rule {
	list := make([]Rule, 0, len(r.order))
	for _, id := range r.order {
		list = append(list, r.rules[id])
	}
	return list
}

// IDs returns the registered rule IDs, sorted.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.rules))
	for id := range r.rules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// classProperties iterates every property declaration grouped under
// its immediate class. Nested classes are visited in document order.
func classProperties(doc *syntax.Document, visit func(class, prop syntax.Node)) {
	for _, class := range doc.Root().FindAll(syntax.KindClassDeclaration) {
		body := class.Field("body")
		for _, member := range body.NamedChildren() {
			if member.Kind() == syntax.KindPropertyDeclaration {
				visit(class, member)
			}
		}
	}
}

// classMethod finds a method of the class by name.
func classMethod(class syntax.Node, name string) syntax.Node {
	body := class.Field("body")
	for _, member := range body.NamedChildren() {
		if member.Kind() != syntax.KindMethodDeclaration {
			continue
		}
		if member.Field("name").Text() == name {
			return member
		}
	}
	return syntax.Node{}
}

// classField finds the field declaration of the class that declares
// the named variable, together with its declarator.
func classField(class syntax.Node, name string) (decl, declarator syntax.Node) {
	body := class.Field("body")
	for _, member := range body.NamedChildren() {
		if member.Kind() != syntax.KindFieldDeclaration {
			continue
		}
		for _, vd := range member.FindAll(syntax.KindVariableDeclarator) {
			if vd.Field("name").Text() == name {
				return member, vd
			}
		}
	}
	return syntax.Node{}, syntax.Node{}
}

// enclosingClass walks up to the class declaration containing the
// node.
func enclosingClass(n syntax.Node) syntax.Node {
	for p := n.Parent(); p.Exists(); p = p.Parent() {
		if p.Kind() == syntax.KindClassDeclaration {
			return p
		}
	}
	return syntax.Node{}
}
