// Package syntax wraps the tree-sitter C# grammar behind a small
// read-only facade. Rules and rewrite planners consume trees through
// this package and never touch tree-sitter directly.
package syntax

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"
)

// Parser parses C# source files using tree-sitter. A Parser is not
// safe for concurrent use; give each goroutine its own.
type Parser struct {
	csParser *sitter.Parser
}

// NewParser creates a parser for C# source.
func NewParser() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(csharp.GetLanguage())

	return &Parser{csParser: p}
}

// Parse parses source content into a Document. The caller owns the
// returned document and must Close it.
func (p *Parser) Parse(ctx context.Context, path string, source []byte) (*Document, error) {
	tree, err := p.csParser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return &Document{
		Path:   path,
		Source: source,
		tree:   tree,
	}, nil
}

// ParseFile reads and parses a single file.
func (p *Parser) ParseFile(ctx context.Context, filePath string) (*Document, error) {
	if !IsSourceFile(filePath) {
		return nil, fmt.Errorf("not a C# source file: %s", filePath)
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return p.Parse(ctx, filePath, content)
}

// Document is one parsed source file: the original bytes plus the
// concrete syntax tree over them.
type Document struct {
	Path   string
	Source []byte
	tree   *sitter.Tree
}

// Root returns the document's root node (a compilation_unit).
func (d *Document) Root() Node {
	return Node{inner: d.tree.RootNode(), doc: d}
}

// Sexp returns the S-expression rendering of the whole tree. Useful
// for inspecting which node kinds the grammar produces.
func (d *Document) Sexp() string {
	return d.tree.RootNode().String()
}

// Close releases the underlying tree. The document must not be used
// afterwards.
func (d *Document) Close() {
	if d.tree != nil {
		d.tree.Close()
		d.tree = nil
	}
}

// IsSourceFile reports whether path names a C# source file.
func IsSourceFile(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".cs"
}
