package sexp

import "strings"

// Forms that read better on a single line regardless of nesting.
var inlineTags = map[string]bool{
	"param":      true,
	"result":     true,
	"local":      true,
	"export":     true,
	"import":     true,
	"table":      true,
	"memory":     true,
	"global":     true,
	"start":      true,
	"offset":     true,
	"local.get":  true,
	"global.get": true,
}

func isInline(n *Node) bool {
	tag := n.Tag()
	if strings.HasSuffix(tag, ".const") {
		return true
	}
	return inlineTags[tag]
}

// Pretty renders a node as indented multi-line text. Small leaf forms stay
// on one line; function bodies get a trailing blank line. Intended for
// human inspection only; the pipeline itself always emits Serialize output.
func Pretty(n *Node) string {
	var b strings.Builder
	prettyNode(&b, n, 0)
	b.WriteByte('\n')
	return b.String()
}

func prettyNode(b *strings.Builder, n *Node, level int) {
	if n.IsAtom() {
		b.WriteString(n.Text)
		return
	}
	if isInline(n) || len(n.Forms()) == 0 {
		b.WriteString(Serialize(n))
		return
	}

	indent := strings.Repeat("  ", level)
	b.WriteByte('(')
	head := true
	for _, it := range n.Items {
		if it.IsAtom() && head {
			if it != n.Items[0] {
				b.WriteByte(' ')
			}
			b.WriteString(it.Text)
			continue
		}
		head = false
		b.WriteByte('\n')
		b.WriteString(indent)
		b.WriteString("  ")
		prettyNode(b, it, level+1)
	}
	b.WriteByte(')')
	if n.HasTag("func") {
		b.WriteByte('\n')
	}
}
