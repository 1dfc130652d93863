package syntax

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/mvvmshift/mvvmshift/pkg/model"
)

// Node is a read-only view of one tree node. The zero value means
// "absent": every accessor tolerates it, so lookups can be chained
// without nil checks at each step.
type Node struct {
	inner *sitter.Node
	doc   *Document
}

// Exists reports whether the node is present in the tree.
func (n Node) Exists() bool {
	return n.inner != nil
}

// Kind returns the grammar's node kind, e.g. "property_declaration".
func (n Node) Kind() string {
	if !n.Exists() {
		return ""
	}
	return n.inner.Type()
}

// Text returns the source text the node covers.
func (n Node) Text() string {
	if !n.Exists() {
		return ""
	}
	return n.inner.Content(n.doc.Source)
}

// Span returns the node's byte range in the source.
func (n Node) Span() model.Span {
	if !n.Exists() {
		return model.Span{}
	}
	return model.Span{Start: int(n.inner.StartByte()), End: int(n.inner.EndByte())}
}

// Line returns the 1-based line of the node's first byte.
func (n Node) Line() int {
	if !n.Exists() {
		return 0
	}
	return int(n.inner.StartPoint().Row) + 1
}

// Column returns the 1-based column of the node's first byte.
func (n Node) Column() int {
	if !n.Exists() {
		return 0
	}
	return int(n.inner.StartPoint().Column) + 1
}

// Location anchors the node in its document.
func (n Node) Location() model.Location {
	loc := model.Location{Span: n.Span(), Line: n.Line(), Column: n.Column()}
	if n.doc != nil {
		loc.File = n.doc.Path
	}
	return loc
}

// Field returns the child occupying the named grammar field.
func (n Node) Field(name string) Node {
	if !n.Exists() {
		return Node{}
	}
	return Node{inner: n.inner.ChildByFieldName(name), doc: n.doc}
}

// Parent returns the enclosing node.
func (n Node) Parent() Node {
	if !n.Exists() {
		return Node{}
	}
	return Node{inner: n.inner.Parent(), doc: n.doc}
}

// Child returns the i-th child, anonymous tokens included.
func (n Node) Child(i int) Node {
	if !n.Exists() || i < 0 || i >= int(n.inner.ChildCount()) {
		return Node{}
	}
	return Node{inner: n.inner.Child(i), doc: n.doc}
}

// ChildCount counts all children, anonymous tokens included.
func (n Node) ChildCount() int {
	if !n.Exists() {
		return 0
	}
	return int(n.inner.ChildCount())
}

// NamedChild returns the i-th named child.
func (n Node) NamedChild(i int) Node {
	if !n.Exists() || i < 0 || i >= int(n.inner.NamedChildCount()) {
		return Node{}
	}
	return Node{inner: n.inner.NamedChild(i), doc: n.doc}
}

// NamedChildCount counts named children only.
func (n Node) NamedChildCount() int {
	if !n.Exists() {
		return 0
	}
	return int(n.inner.NamedChildCount())
}

// Children returns all children, anonymous tokens included.
func (n Node) Children() []Node {
	count := n.ChildCount()
	children := make([]Node, 0, count)
	for i := 0; i < count; i++ {
		children = append(children, n.Child(i))
	}
	return children
}

// NamedChildren returns the named children.
func (n Node) NamedChildren() []Node {
	count := n.NamedChildCount()
	children := make([]Node, 0, count)
	for i := 0; i < count; i++ {
		children = append(children, n.NamedChild(i))
	}
	return children
}

// NextNamedSibling returns the following named sibling.
func (n Node) NextNamedSibling() Node {
	if !n.Exists() {
		return Node{}
	}
	return Node{inner: n.inner.NextNamedSibling(), doc: n.doc}
}

// PrevNamedSibling returns the preceding named sibling.
func (n Node) PrevNamedSibling() Node {
	if !n.Exists() {
		return Node{}
	}
	return Node{inner: n.inner.PrevNamedSibling(), doc: n.doc}
}

// IsNamed reports whether the node is a named grammar node rather
// than an anonymous token.
func (n Node) IsNamed() bool {
	return n.Exists() && n.inner.IsNamed()
}

// Walk visits the node and every descendant in document order.
func (n Node) Walk(visit func(Node)) {
	if !n.Exists() {
		return
	}

	cursor := sitter.NewTreeCursor(n.inner)
	defer cursor.Close()

	for {
		visit(Node{inner: cursor.CurrentNode(), doc: n.doc})

		if cursor.GoToFirstChild() {
			continue
		}

		for {
			if cursor.GoToNextSibling() {
				break
			}
			if !cursor.GoToParent() {
				return
			}
		}
	}
}

// FindAll collects every descendant of the given kind, the node
// itself included.
func (n Node) FindAll(kind string) []Node {
	var found []Node
	n.Walk(func(c Node) {
		if c.Kind() == kind {
			found = append(found, c)
		}
	})
	return found
}

func (n Node) startRow() int {
	if !n.Exists() {
		return 0
	}
	return int(n.inner.StartPoint().Row)
}

func (n Node) endRow() int {
	if !n.Exists() {
		return 0
	}
	return int(n.inner.EndPoint().Row)
}

// LeadingComments returns the comment siblings sitting directly above
// the node: contiguous lines, no blank line in between, and never a
// trailing comment that shares a line with the previous declaration.
func (n Node) LeadingComments() []Node {
	if !n.Exists() {
		return nil
	}

	var comments []Node
	row := n.startRow()
	sib := n.PrevNamedSibling()
	for sib.Exists() && sib.Kind() == KindComment {
		if row-sib.endRow() > 1 {
			break
		}
		prev := sib.PrevNamedSibling()
		if prev.Exists() && prev.Kind() != KindComment && prev.endRow() == sib.startRow() {
			break
		}
		comments = append(comments, sib)
		row = sib.startRow()
		sib = prev
	}

	// Collected bottom-up; restore document order.
	for i, j := 0, len(comments)-1; i < j; i, j = i+1, j-1 {
		comments[i], comments[j] = comments[j], comments[i]
	}
	return comments
}

// SpanWithComments returns the node's span widened to include its
// leading comments.
func (n Node) SpanWithComments() model.Span {
	span := n.Span()
	if comments := n.LeadingComments(); len(comments) > 0 {
		span.Start = comments[0].Span().Start
	}
	return span
}
