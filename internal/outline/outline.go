// Package outline converts Markdown outlines into block documents and
// renders block documents as indented text.
//
// Headings nest the blocks that follow them by level, list items nest
// their sub-lists, and every block gets a fresh block ID and text ID from
// the supplied generator:
//
//	# Plan            heading
//	Intro text.         paragraph
//	- one               list-item
//	  - one.a             list-item
//	## Later            heading
package outline

import (
	"bytes"
	"io"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/dshills/blockstorm/internal/engine/node"
	"github.com/dshills/blockstorm/internal/plugin/blocks"
)

// Block types produced by Parse.
const (
	TypeHeading   = "heading"
	TypeParagraph = "paragraph"
	TypeListItem  = "list-item"
	TypeCode      = "code"
	TypeQuote     = "quote"
	TypeDivider   = "divider"
)

// AttrLevel holds a heading's level, "1" to "6".
const AttrLevel = "level"

// Parse builds a document from Markdown source. The returned root is an
// untyped element whose children are the top-level blocks.
func Parse(src []byte, gen blocks.IDGenerator) *node.Node {
	if gen == nil {
		gen = blocks.UUIDGenerator{}
	}
	b := &builder{src: src, gen: gen}

	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	type stackEntry struct {
		node  *node.Node
		level int
	}
	root := node.NewElement("", nil)
	stack := []stackEntry{{node: root, level: 0}}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok {
			// Pop until the top is a shallower heading (or the root).
			for len(stack) > 1 && stack[len(stack)-1].level >= h.Level {
				stack = stack[:len(stack)-1]
			}
			blk := b.block(TypeHeading, inlineText(h, src))
			blk.Attrs[AttrLevel] = strconv.Itoa(h.Level)
			parent := stack[len(stack)-1].node
			parent.Children = append(parent.Children, blk)
			stack = append(stack, stackEntry{node: blk, level: h.Level})
			continue
		}
		parent := stack[len(stack)-1].node
		parent.Children = append(parent.Children, b.convert(n)...)
	}
	return root
}

// ParseReader reads all of r and parses it.
func ParseReader(r io.Reader, gen blocks.IDGenerator) (*node.Node, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(src, gen), nil
}

type builder struct {
	src []byte
	gen blocks.IDGenerator
}

func (b *builder) block(typ, text string, children ...*node.Node) *node.Node {
	return node.Block(typ, b.gen.NewID(), b.gen.NewID(), text, children...)
}

// convert maps one non-heading block node to zero or more blocks.
func (b *builder) convert(n ast.Node) []*node.Node {
	switch n := n.(type) {
	case *ast.List:
		var items []*node.Node
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if li, ok := c.(*ast.ListItem); ok {
				items = append(items, b.listItem(li))
			}
		}
		return items
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		return []*node.Node{b.block(TypeCode, lines(n, b.src))}
	case *ast.ThematicBreak:
		return []*node.Node{b.block(TypeDivider, "")}
	case *ast.Blockquote:
		var parts []string
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if t := inlineText(c, b.src); t != "" {
				parts = append(parts, t)
			}
		}
		return []*node.Node{b.block(TypeQuote, strings.Join(parts, "\n"))}
	case *ast.HTMLBlock:
		return nil
	default:
		t := inlineText(n, b.src)
		if t == "" {
			return nil
		}
		return []*node.Node{b.block(TypeParagraph, t)}
	}
}

// listItem takes its text from the first paragraph; everything after it
// nests.
func (b *builder) listItem(li *ast.ListItem) *node.Node {
	var head string
	var kids []*node.Node
	c := li.FirstChild()
	if c != nil {
		if _, isList := c.(*ast.List); !isList {
			head = inlineText(c, b.src)
			c = c.NextSibling()
		}
	}
	for ; c != nil; c = c.NextSibling() {
		kids = append(kids, b.convert(c)...)
	}
	return b.block(TypeListItem, head, kids...)
}

// inlineText flattens the inline content of n. Soft line breaks become
// spaces.
func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch t := c.(type) {
			case *ast.Text:
				buf.Write(t.Value(src))
				if t.HardLineBreak() {
					buf.WriteByte('\n')
				} else if t.SoftLineBreak() {
					buf.WriteByte(' ')
				}
			case *ast.String:
				buf.Write(t.Value)
			default:
				walk(c)
			}
		}
	}
	walk(n)
	return strings.TrimSpace(buf.String())
}

// lines returns the raw lines of a block node such as a code block.
func lines(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	segs := n.Lines()
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		buf.Write(seg.Value(src))
	}
	return strings.TrimRight(buf.String(), "\n")
}
