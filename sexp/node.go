package sexp

// Kind discriminates the two node variants.
type Kind int

const (
	Atom Kind = iota
	List
)

func (k Kind) String() string {
	switch k {
	case Atom:
		return "atom"
	case List:
		return "list"
	}
	return "unknown"
}

// Node is a parsed S-expression unit: either an atom holding its verbatim
// source text, or an ordered list of child nodes. Atoms that are string
// literals keep their quotes and raw escape sequences, so serializing a
// tree the passes did not touch reproduces the content byte for byte.
type Node struct {
	Text  string  // atom source text, valid when Kind == Atom
	Items []*Node // children, valid when Kind == List
	Kind  Kind
}

// NewAtom builds an atom node carrying the given source text.
func NewAtom(text string) *Node {
	return &Node{Kind: Atom, Text: text}
}

// NewList builds a list node from the given children.
func NewList(items ...*Node) *Node {
	return &Node{Kind: List, Items: items}
}

// Form builds a tagged list: (tag items...).
func Form(tag string, items ...*Node) *Node {
	return NewList(append([]*Node{NewAtom(tag)}, items...)...)
}

// IsAtom reports whether n is an atom.
func (n *Node) IsAtom() bool { return n != nil && n.Kind == Atom }

// IsList reports whether n is a list.
func (n *Node) IsList() bool { return n != nil && n.Kind == List }

// Tag returns the leading atom of a list, or "" if n is not a list or its
// first child is not an atom. Every recognized form is matched by tag.
func (n *Node) Tag() string {
	if !n.IsList() || len(n.Items) == 0 || !n.Items[0].IsAtom() {
		return ""
	}
	return n.Items[0].Text
}

// HasTag reports whether n is a list whose leading atom equals tag.
func (n *Node) HasTag(tag string) bool {
	return n.Tag() == tag
}

// Args returns the children following the tag atom. For untagged lists it
// returns all children.
func (n *Node) Args() []*Node {
	if !n.IsList() {
		return nil
	}
	if len(n.Items) > 0 && n.Items[0].IsAtom() {
		return n.Items[1:]
	}
	return n.Items
}

// Forms returns the immediate child lists of n, in order.
func (n *Node) Forms() []*Node {
	var out []*Node
	for _, it := range n.Args() {
		if it.IsList() {
			out = append(out, it)
		}
	}
	return out
}

// Atoms returns the text of the immediate atom children following the tag.
func (n *Node) Atoms() []string {
	var out []string
	for _, it := range n.Args() {
		if it.IsAtom() {
			out = append(out, it.Text)
		}
	}
	return out
}

// FindForm returns the first immediate child list with the given tag, or nil.
func (n *Node) FindForm(tag string) *Node {
	for _, f := range n.Forms() {
		if f.HasTag(tag) {
			return f
		}
	}
	return nil
}

// Walk visits n and every descendant in depth-first pre-order. Returning
// false from fn stops the walk.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, it := range n.Items {
		if !it.Walk(fn) {
			return false
		}
	}
	return true
}

// Equal reports deep structural equality.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	if n.Kind != other.Kind {
		return false
	}
	if n.Kind == Atom {
		return n.Text == other.Text
	}
	if len(n.Items) != len(other.Items) {
		return false
	}
	for i := range n.Items {
		if !n.Items[i].Equal(other.Items[i]) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	if n.Kind == Atom {
		return NewAtom(n.Text)
	}
	items := make([]*Node, len(n.Items))
	for i, it := range n.Items {
		items[i] = it.Clone()
	}
	return NewList(items...)
}

// IsModule reports whether n is the outermost (module ...) form.
func IsModule(n *Node) bool {
	return n.HasTag("module")
}
