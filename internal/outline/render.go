package outline

import (
	"io"
	"strings"

	"github.com/dshills/blockstorm/internal/engine/node"
	"github.com/dshills/blockstorm/internal/engine/path"
)

// RenderOptions controls Render output.
type RenderOptions struct {
	// ShowPaths prefixes each line with the element's path.
	ShowPaths bool

	// ShowIDs appends the block ID in brackets.
	ShowIDs bool
}

// Render writes one line per element below doc, indented two spaces per
// level:
//
//	0    heading [id]: Plan
//	0.1    paragraph [id]: Intro text.
//
// The text of a line is the concatenation of the element's own text
// leaves. Text leaves are not listed separately.
func Render(w io.Writer, doc *node.Node, opts RenderOptions) error {
	var sb strings.Builder
	if doc != nil {
		for i, c := range doc.Children {
			renderNode(&sb, c, path.Of(i), opts)
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// String renders doc with paths and IDs.
func String(doc *node.Node) string {
	var sb strings.Builder
	_ = Render(&sb, doc, RenderOptions{ShowPaths: true, ShowIDs: true})
	return sb.String()
}

func renderNode(sb *strings.Builder, n *node.Node, p path.Path, opts RenderOptions) {
	if !n.IsElement() {
		return
	}
	if opts.ShowPaths {
		sb.WriteString(p.String())
		sb.WriteString(strings.Repeat(" ", max(1, 6-len(p.String()))))
	}
	sb.WriteString(strings.Repeat("  ", p.Len()-1))

	typ := n.Type
	if typ == "" {
		typ = "element"
	}
	sb.WriteString(typ)
	if opts.ShowIDs {
		if id, ok := n.BlockID(); ok {
			sb.WriteString(" [")
			sb.WriteString(id)
			sb.WriteString("]")
		}
	}

	var text strings.Builder
	for _, c := range n.Children {
		if c.IsText() {
			text.WriteString(c.Text)
		}
	}
	if text.Len() > 0 {
		sb.WriteString(": ")
		sb.WriteString(strings.ReplaceAll(text.String(), "\n", `\n`))
	}
	sb.WriteByte('\n')

	for i, c := range n.Children {
		renderNode(sb, c, p.Child(i), opts)
	}
}
