package syntax

import "strings"

// Node kinds of the C# grammar this tool inspects. Kept as plain
// constants so rule code reads as closed switches over known shapes.
const (
	KindCompilationUnit       = "compilation_unit"
	KindUsingDirective        = "using_directive"
	KindNamespaceDeclaration  = "namespace_declaration"
	KindClassDeclaration      = "class_declaration"
	KindDeclarationList       = "declaration_list"
	KindPropertyDeclaration   = "property_declaration"
	KindFieldDeclaration      = "field_declaration"
	KindMethodDeclaration     = "method_declaration"
	KindAccessorList          = "accessor_list"
	KindAccessorDeclaration   = "accessor_declaration"
	KindArrowExpressionClause = "arrow_expression_clause"
	KindVariableDeclaration   = "variable_declaration"
	KindVariableDeclarator    = "variable_declarator"
	KindEqualsValueClause     = "equals_value_clause"
	KindExpressionStatement   = "expression_statement"
	KindReturnStatement       = "return_statement"
	KindAssignmentExpression  = "assignment_expression"
	KindInvocationExpression  = "invocation_expression"
	KindArgumentList          = "argument_list"
	KindArgument              = "argument"
	KindIdentifier            = "identifier"
	KindMemberAccess          = "member_access_expression"
	KindThisExpression        = "this_expression"
	KindBinaryExpression      = "binary_expression"
	KindParenthesized         = "parenthesized_expression"
	KindLambdaExpression      = "lambda_expression"
	KindObjectCreation        = "object_creation_expression"
	KindAwaitExpression       = "await_expression"
	KindComment               = "comment"
	KindStringLiteral         = "string_literal"
	KindGenericName           = "generic_name"
	KindQualifiedName         = "qualified_name"
	KindBlock                 = "block"
	KindParameterList         = "parameter_list"
	KindParameter             = "parameter"
	KindAttributeList         = "attribute_list"
	KindModifier              = "modifier"
)

// SimpleTypeName reduces a type node to its bare name: namespace
// qualifiers and generic argument lists are stripped, so both
// "Ui.Input.DelegateCommand" and "DelegateCommand<string>" reduce to
// "DelegateCommand".
func SimpleTypeName(n Node) string {
	switch n.Kind() {
	case KindQualifiedName:
		return SimpleTypeName(n.Field("name"))
	case KindGenericName:
		for _, c := range n.NamedChildren() {
			if c.Kind() == KindIdentifier {
				return c.Text()
			}
		}
		return ""
	default:
		return n.Text()
	}
}

// Unparenthesize unwraps nested parenthesized expressions.
func Unparenthesize(n Node) Node {
	for n.Kind() == KindParenthesized {
		inner := Node{}
		for _, c := range n.NamedChildren() {
			if c.Kind() != KindComment {
				inner = c
				break
			}
		}
		if !inner.Exists() {
			return n
		}
		n = inner
	}
	return n
}

// Modifiers returns the modifier keywords of a declaration in source
// order.
func Modifiers(n Node) []string {
	var mods []string
	for _, c := range n.Children() {
		if c.Kind() == KindModifier {
			mods = append(mods, c.Text())
		}
	}
	return mods
}

// HasModifier reports whether a declaration carries the given
// modifier keyword. Grammar versions differ on whether "async" on a
// lambda is a modifier node or a bare token, so both are accepted.
func HasModifier(n Node, keyword string) bool {
	for _, c := range n.Children() {
		if c.Kind() == keyword {
			return true
		}
		if c.Kind() == KindModifier && c.Text() == keyword {
			return true
		}
	}
	return false
}

// AttributeLists returns the attribute_list children of a declaration.
func AttributeLists(n Node) []Node {
	var lists []Node
	for _, c := range n.NamedChildren() {
		if c.Kind() == KindAttributeList {
			lists = append(lists, c)
		}
	}
	return lists
}

// InvocationName returns the simple name a call targets: "Fire" for
// both "Fire(...)" and "this.Fire(...)". Empty for anything more
// involved than an identifier or member access.
func InvocationName(n Node) string {
	if n.Kind() != KindInvocationExpression {
		return ""
	}
	fn := n.Field("function")
	switch fn.Kind() {
	case KindIdentifier:
		return fn.Text()
	case KindMemberAccess:
		return fn.Field("name").Text()
	}
	return ""
}

// Arguments returns the argument nodes of an invocation, in order.
func Arguments(n Node) []Node {
	if n.Kind() != KindInvocationExpression {
		return nil
	}
	var args []Node
	for _, c := range n.NamedChildren() {
		if c.Kind() == KindArgumentList {
			for _, a := range c.NamedChildren() {
				if a.Kind() == KindArgument {
					args = append(args, a)
				}
			}
		}
	}
	return args
}

// ArgumentExpr unwraps one argument into its expression and whether
// it was passed by ref/out.
func ArgumentExpr(arg Node) (expr Node, byRef bool) {
	for _, c := range arg.Children() {
		switch c.Kind() {
		case "ref", "out", "in":
			byRef = true
		default:
			if c.IsNamed() && c.Kind() != KindComment {
				expr = c
			}
		}
	}
	return expr, byRef
}

// NameArgument resolves a member-name argument expression: a nameof
// invocation yields its operand's simple name, a string literal its
// unquoted value. The second result is false for any other shape.
func NameArgument(n Node) (string, bool) {
	switch n.Kind() {
	case KindInvocationExpression:
		if InvocationName(n) != "nameof" {
			return "", false
		}
		args := Arguments(n)
		if len(args) != 1 {
			return "", false
		}
		operand, _ := ArgumentExpr(args[0])
		switch operand.Kind() {
		case KindIdentifier:
			return operand.Text(), true
		case KindMemberAccess:
			return operand.Field("name").Text(), true
		}
		return "", false
	case KindStringLiteral:
		text := n.Text()
		if len(text) >= 2 && strings.HasPrefix(text, `"`) && strings.HasSuffix(text, `"`) {
			return text[1 : len(text)-1], true
		}
		return "", false
	}
	return "", false
}

// DeclaratorValue returns the initializer expression of a variable
// declarator, or an absent node. Handles both grammar spellings: a
// wrapping equals_value_clause and a bare "=" token followed by the
// expression.
func DeclaratorValue(decl Node) Node {
	if decl.Kind() != KindVariableDeclarator {
		return Node{}
	}
	seenEquals := false
	for _, c := range decl.Children() {
		if c.Kind() == KindEqualsValueClause {
			named := c.NamedChildren()
			if len(named) > 0 {
				return named[len(named)-1]
			}
			return Node{}
		}
		if c.Kind() == "=" {
			seenEquals = true
			continue
		}
		if seenEquals && c.IsNamed() && c.Kind() != KindComment {
			return c
		}
	}
	return Node{}
}

// MethodReturnType returns the return type node of a method
// declaration. Grammar versions disagree on the field name, so both
// are tried.
func MethodReturnType(method Node) Node {
	if method.Kind() != KindMethodDeclaration {
		return Node{}
	}
	if t := method.Field("returns"); t.Exists() {
		return t
	}
	return method.Field("type")
}

// AccessorOfKind finds the "get" or "set" accessor in an
// accessor_list.
func AccessorOfKind(accessorList Node, keyword string) Node {
	if accessorList.Kind() != KindAccessorList {
		return Node{}
	}
	for _, acc := range accessorList.NamedChildren() {
		if acc.Kind() != KindAccessorDeclaration {
			continue
		}
		for _, c := range acc.Children() {
			if c.Kind() == keyword {
				return acc
			}
		}
	}
	return Node{}
}

// UsingDirectives returns the file's using directives in order.
func UsingDirectives(root Node) []Node {
	return root.FindAll(KindUsingDirective)
}

// UsingPath extracts the imported namespace path from a using
// directive.
func UsingPath(directive Node) string {
	if directive.Kind() != KindUsingDirective {
		return ""
	}
	for _, c := range directive.NamedChildren() {
		switch c.Kind() {
		case KindIdentifier, KindQualifiedName:
			return c.Text()
		}
	}
	return ""
}
