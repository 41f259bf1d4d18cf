package sexp

import "strings"

// Serialize renders a node back to text: atoms verbatim, lists as their
// children joined by single spaces inside parentheses. The output is
// deterministic, so equal trees serialize identically and parsing the
// result yields an equal tree.
func Serialize(n *Node) string {
	var b strings.Builder
	writeNode(&b, n)
	return b.String()
}

func writeNode(b *strings.Builder, n *Node) {
	if n.IsAtom() {
		b.WriteString(n.Text)
		return
	}
	b.WriteByte('(')
	for i, it := range n.Items {
		if i > 0 {
			b.WriteByte(' ')
		}
		writeNode(b, it)
	}
	b.WriteByte(')')
}
