package rules

import (
	"fmt"
	"strings"

	"github.com/mvvmshift/mvvmshift/internal/syntax"
	"github.com/mvvmshift/mvvmshift/pkg/model"
)

// DelegateCommandRule finds properties typed DelegateCommand. These
// carry enough structure (a lazily built command object, or an
// Execute/CanExecute method pair) to be rewritten into a
// [RelayCommand] method.
type DelegateCommandRule struct{}

func (r *DelegateCommandRule) ID() string    { return RuleDelegateCommandType }
func (r *DelegateCommandRule) Title() string { return "DelegateCommand-typed property" }

func (r *DelegateCommandRule) Description() string {
	return "Properties typed " + DelegateCommandType + " wrap a handler in a lazily " +
		"constructed command object. The handler can be promoted to a [" +
		RelayCommandAttr + "] method and the property and backing field dropped."
}

func (r *DelegateCommandRule) Severity() model.Severity { return model.SeverityError }
func (r *DelegateCommandRule) CanFix() bool             { return true }

func (r *DelegateCommandRule) Check(doc *syntax.Document) []model.Finding {
	var findings []model.Finding
	classProperties(doc, func(class, prop syntax.Node) {
		if _, ok := MatchDelegateCommand(prop); !ok {
			return
		}
		name := prop.Field("name")
		findings = append(findings, model.Finding{
			RuleID:   RuleDelegateCommandType,
			Message:  fmt.Sprintf("property %q is typed %s; rewrite as a [%s] method", name.Text(), DelegateCommandType, RelayCommandAttr),
			Severity: model.SeverityError,
			Location: name.Location(),
			Fixable:  true,
		})
	})
	return findings
}

// DelegateCommandProperty is the reconstructed structure of one
// DelegateCommand property. Detection needs only the type; the rest
// is extracted opportunistically and may be absent, in which case the
// planner declines instead of guessing.
type DelegateCommandProperty struct {
	Property syntax.Node
	Class    syntax.Node

	Name         string
	StrippedName string // property name minus the Command suffix

	// Lazy-creation shape: f ?? (f = new DelegateCommand(...)).
	BackingField string
	FieldDecl    syntax.Node
	FieldSolo    bool
	CommandBody  syntax.Node // the object creation expression

	// Inline handler, when the command wraps a lambda. HandlerExpr is
	// the single body expression; HandlerBlock the block body when it
	// holds more than one statement.
	Lambda       syntax.Node
	LambdaParams []string // parameter names
	LambdaDecls  []string // typed declarations for synthesis
	LambdaAsync  bool
	HandlerExpr  syntax.Node
	HandlerBlock syntax.Node

	// AdoptMethod is set when the lambda merely forwards its
	// parameters, in order, to one method of the class.
	AdoptMethod syntax.Node

	// Execute/CanExecute method pair, when the class follows that
	// convention.
	ExecuteMethod       syntax.Node
	ExecuteAsync        bool
	CanExecuteMethod    syntax.Node
	CanExecuteName      string
	CanExecuteField     string // identifier of a trivial "return field;" body
	CanExecuteRemovable bool
}

// MatchDelegateCommand matches a property declaration against the
// DelegateCommand shape. The match succeeds on the type alone;
// callers that rewrite must check the extracted structure.
func MatchDelegateCommand(prop syntax.Node) (*DelegateCommandProperty, bool) {
	if prop.Kind() != syntax.KindPropertyDeclaration {
		return nil, false
	}
	if syntax.SimpleTypeName(prop.Field("type")) != DelegateCommandType {
		return nil, false
	}

	m := &DelegateCommandProperty{
		Property: prop,
		Class:    enclosingClass(prop),
		Name:     prop.Field("name").Text(),
	}
	m.StrippedName = strings.TrimSuffix(m.Name, CommandSuffix)
	if m.StrippedName == "" {
		m.StrippedName = m.Name
	}

	m.extractLazyCreation()
	m.extractLambda()
	m.extractMethods()

	return m, true
}

// extractLazyCreation unwraps the property value expression, which
// must read f ?? (f = new ...), into the backing field and the
// command construction.
func (m *DelegateCommandProperty) extractLazyCreation() {
	expr := propertyValue(m.Property)
	if !expr.Exists() {
		return
	}

	expr = syntax.Unparenthesize(expr)
	if expr.Kind() != syntax.KindBinaryExpression || !isCoalesce(expr) {
		return
	}

	left := syntax.Unparenthesize(expr.Field("left"))
	if left.Kind() != syntax.KindIdentifier {
		return
	}
	field := left.Text()

	right := syntax.Unparenthesize(expr.Field("right"))
	if right.Kind() != syntax.KindAssignmentExpression {
		return
	}
	assignTo := syntax.Unparenthesize(right.Field("left"))
	if assignTo.Kind() != syntax.KindIdentifier || assignTo.Text() != field {
		return
	}
	creation := syntax.Unparenthesize(right.Field("right"))
	if creation.Kind() != syntax.KindObjectCreation {
		return
	}

	m.BackingField = field
	m.CommandBody = creation
	if m.Class.Exists() {
		decl, _ := classField(m.Class, field)
		if decl.Exists() {
			m.FieldDecl = decl
			m.FieldSolo = len(decl.FindAll(syntax.KindVariableDeclarator)) == 1
		}
	}
}

// extractLambda locates the handler lambda anywhere under the
// property and, when it only forwards to a class method, resolves
// that method for adoption.
func (m *DelegateCommandProperty) extractLambda() {
	lambdas := m.Property.FindAll(syntax.KindLambdaExpression)
	if len(lambdas) == 0 {
		return
	}
	m.Lambda = lambdas[0]
	m.LambdaParams, m.LambdaDecls = lambdaParameters(m.Lambda)
	m.LambdaAsync = syntax.HasModifier(m.Lambda, "async")

	if expr := lambdaBody(m.Lambda); expr.Exists() {
		m.HandlerExpr = expr
	} else if body := m.Lambda.Field("body"); body.Kind() == syntax.KindBlock {
		m.HandlerBlock = body
	}

	if target := m.forwardedMethodName(); target != "" && m.Class.Exists() {
		m.AdoptMethod = classMethod(m.Class, target)
	}
}

// forwardedMethodName returns the method a forwarding lambda calls:
// the body is one invocation of a class method, bare or this-qualified,
// possibly awaited, passing exactly the lambda's parameters in order.
func (m *DelegateCommandProperty) forwardedMethodName() string {
	body := lambdaBody(m.Lambda)
	if body.Kind() == syntax.KindAwaitExpression {
		for _, c := range body.NamedChildren() {
			if c.Kind() != syntax.KindComment {
				body = c
				break
			}
		}
	}
	if body.Kind() != syntax.KindInvocationExpression {
		return ""
	}

	// Calls on another receiver (Items.Clear()) can shadow a class
	// method of the same name; only this-qualified access forwards.
	fn := body.Field("function")
	if fn.Kind() == syntax.KindMemberAccess &&
		fn.Field("expression").Kind() != syntax.KindThisExpression {
		return ""
	}

	name := syntax.InvocationName(body)
	if name == "" {
		return ""
	}

	args := syntax.Arguments(body)
	if len(args) != len(m.LambdaParams) {
		return ""
	}
	for i, arg := range args {
		expr, byRef := syntax.ArgumentExpr(arg)
		if byRef || expr.Kind() != syntax.KindIdentifier || expr.Text() != m.LambdaParams[i] {
			return ""
		}
	}
	return name
}

// extractMethods resolves the Execute/CanExecute pair by naming
// convention.
func (m *DelegateCommandProperty) extractMethods() {
	if !m.Class.Exists() {
		return
	}

	if method := classMethod(m.Class, ExecutePrefix+m.StrippedName); method.Exists() {
		m.ExecuteMethod = method
		m.ExecuteAsync = syntax.HasModifier(method, "async") ||
			syntax.SimpleTypeName(syntax.MethodReturnType(method)) == "Task"
	}

	method := classMethod(m.Class, CanExecutePrefix+m.StrippedName)
	if !method.Exists() {
		return
	}
	m.CanExecuteMethod = method
	m.CanExecuteName = method.Field("name").Text()
	if field, ok := trivialReturnTarget(method); ok {
		m.CanExecuteField = field
		m.CanExecuteRemovable = true
	}
}

// Reconstructable reports whether the planner has a handler to work
// from. A detection without one still stands as a finding; the fix
// declines.
func (m *DelegateCommandProperty) Reconstructable() bool {
	if m.ExecuteMethod.Exists() || m.AdoptMethod.Exists() {
		return true
	}
	return m.Lambda.Exists() && m.CommandBody.Exists() &&
		(m.HandlerExpr.Exists() || m.HandlerBlock.Exists())
}

// MethodName is the name the promoted handler method takes.
func (m *DelegateCommandProperty) MethodName() string {
	name := m.StrippedName
	async := m.LambdaAsync
	if m.ExecuteMethod.Exists() {
		async = m.ExecuteAsync || m.LambdaAsync
	}
	if async && !strings.HasSuffix(name, AsyncSuffix) {
		name += AsyncSuffix
	}
	return name
}

// propertyValue finds the expression a property evaluates to: an
// expression body, a getter expression body, or the getter's single
// return.
func propertyValue(prop syntax.Node) syntax.Node {
	if value := prop.Field("value"); value.Kind() == syntax.KindArrowExpressionClause {
		return firstExpr(value)
	}

	getter := syntax.AccessorOfKind(prop.Field("accessors"), "get")
	if !getter.Exists() {
		return syntax.Node{}
	}
	body := getter.Field("body")
	if !body.Exists() {
		for _, c := range getter.NamedChildren() {
			if c.Kind() == syntax.KindBlock || c.Kind() == syntax.KindArrowExpressionClause {
				body = c
				break
			}
		}
	}

	switch body.Kind() {
	case syntax.KindArrowExpressionClause:
		return firstExpr(body)
	case syntax.KindBlock:
		var ret syntax.Node
		for _, s := range body.NamedChildren() {
			switch s.Kind() {
			case syntax.KindComment:
			case syntax.KindReturnStatement:
				if ret.Exists() {
					return syntax.Node{}
				}
				ret = s
			default:
				return syntax.Node{}
			}
		}
		return firstExpr(ret)
	}
	return syntax.Node{}
}

// trivialReturnTarget matches a method whose whole body is
// "return <identifier>;" and returns that identifier.
func trivialReturnTarget(method syntax.Node) (string, bool) {
	body := method.Field("body")
	if body.Kind() != syntax.KindBlock {
		return "", false
	}
	var ret syntax.Node
	for _, s := range body.NamedChildren() {
		switch s.Kind() {
		case syntax.KindComment:
		case syntax.KindReturnStatement:
			if ret.Exists() {
				return "", false
			}
			ret = s
		default:
			return "", false
		}
	}
	expr := firstExpr(ret)
	if expr.Kind() != syntax.KindIdentifier {
		return "", false
	}
	return expr.Text(), true
}

// lambdaBody returns the lambda's body expression, or the single
// expression of a one-statement block body.
func lambdaBody(lambda syntax.Node) syntax.Node {
	body := lambda.Field("body")
	if !body.Exists() {
		return syntax.Node{}
	}
	if body.Kind() != syntax.KindBlock {
		return body
	}

	var expr syntax.Node
	for _, s := range body.NamedChildren() {
		switch s.Kind() {
		case syntax.KindComment:
		case syntax.KindExpressionStatement:
			if expr.Exists() {
				return syntax.Node{}
			}
			expr = firstExpr(s)
		default:
			return syntax.Node{}
		}
	}
	return expr
}

// lambdaParameters collects the lambda's parameter names and the
// declarations a synthesized method would use. Untyped parameters
// fall back to object, the parameter type of the legacy command.
func lambdaParameters(lambda syntax.Node) (names, decls []string) {
	params := lambda.Field("parameters")
	if !params.Exists() {
		for _, c := range lambda.Children() {
			if c.Kind() == "=>" {
				break
			}
			if c.Kind() == syntax.KindIdentifier || c.Kind() == syntax.KindParameterList {
				params = c
				break
			}
		}
	}

	switch params.Kind() {
	case syntax.KindIdentifier:
		names = append(names, params.Text())
		decls = append(decls, "object "+params.Text())
	case syntax.KindParameterList:
		for _, p := range params.NamedChildren() {
			if p.Kind() != syntax.KindParameter {
				continue
			}
			name := p.Field("name").Text()
			if name == "" {
				name = p.Text()
			}
			names = append(names, name)
			if decl := p.Text(); decl != name {
				decls = append(decls, decl)
			} else {
				decls = append(decls, "object "+name)
			}
		}
	}
	return names, decls
}

// isCoalesce reports whether a binary expression uses the ??
// operator.
func isCoalesce(n syntax.Node) bool {
	if op := n.Field("operator"); op.Exists() {
		return op.Text() == "??"
	}
	for _, c := range n.Children() {
		if c.Kind() == "??" {
			return true
		}
	}
	return false
}

// firstExpr returns the first named non-comment child, the expression
// slot of single-expression wrappers.
func firstExpr(n syntax.Node) syntax.Node {
	for _, c := range n.NamedChildren() {
		if c.Kind() != syntax.KindComment {
			return c
		}
	}
	return syntax.Node{}
}
