package wordgraph

import (
	"iter"
)

// compile time check
var (
	_ Node = (*arrayNode)(nil)
	_ Node = (*listNode)(nil)
)

// Node is a state of the word graph. It has a set of outgoing edges, each
// labelled with a single character, and a flag telling whether the path from
// the root to this node spells a complete word.
//
// A node may be shared by several parents once the graph has been minimized.
type Node interface {
	// Child returns the node reached by following the edge labelled ch, or
	// nil if there is no such edge.
	Child(ch rune) Node

	// SetChild points the edge labelled ch at child. If there is no edge
	// labelled ch yet, a new one is appended.
	SetChild(ch rune, child Node)

	HasChildren() bool
	NumChildren() int
	Terminal() bool
	SetTerminal(terminal bool)

	// Edges iterates over the outgoing edges in the order they were added.
	Edges() iter.Seq2[rune, Node]

	edgeAt(i int) (rune, Node)
}

// arrayNode stores its edges in a pair of slot arrays allocated up front.
// It is used when the number of children is known, or bounded by the
// alphabet.
type arrayNode struct {
	chars    []rune
	children []Node
	used     int
	terminal bool
}

// NewArrayNode returns a node with room for capacity edges.
func NewArrayNode(capacity int, terminal bool) Node {
	return &arrayNode{
		chars:    make([]rune, capacity),
		children: make([]Node, capacity),
		terminal: terminal,
	}
}

func (n *arrayNode) Child(ch rune) Node {
	for i := 0; i < n.used; i++ {
		if n.chars[i] == ch {
			return n.children[i]
		}
	}
	return nil
}

func (n *arrayNode) SetChild(ch rune, child Node) {
	for i := 0; i < n.used; i++ {
		if n.chars[i] == ch {
			n.children[i] = child
			return
		}
	}

	if n.used == len(n.chars) {
		// out of slots; grow instead of dropping the edge
		n.chars = append(n.chars, ch)
		n.children = append(n.children, child)
	} else {
		n.chars[n.used] = ch
		n.children[n.used] = child
	}
	n.used++
}

func (n *arrayNode) HasChildren() bool { return n.used > 0 }
func (n *arrayNode) NumChildren() int { return n.used }
func (n *arrayNode) Terminal() bool { return n.terminal }
func (n *arrayNode) SetTerminal(terminal bool) { n.terminal = terminal }

func (n *arrayNode) Edges() iter.Seq2[rune, Node] {
	return func(yield func(rune, Node) bool) {
		for i := 0; i < n.used; i++ {
			if !yield(n.chars[i], n.children[i]) {
				return
			}
		}
	}
}

func (n *arrayNode) edgeAt(i int) (rune, Node) {
	return n.chars[i], n.children[i]
}

type edge struct {
	ch   rune
	node Node
}

// listNode keeps a growable list of edges. It is used when nothing is known
// about the number of children ahead of time.
type listNode struct {
	edges    []edge
	terminal bool
}

// NewListNode returns an empty node backed by a growable edge list.
func NewListNode(terminal bool) Node {
	return &listNode{terminal: terminal}
}

func (n *listNode) Child(ch rune) Node {
	for _, e := range n.edges {
		if e.ch == ch {
			return e.node
		}
	}
	return nil
}

func (n *listNode) SetChild(ch rune, child Node) {
	for i := range n.edges {
		if n.edges[i].ch == ch {
			n.edges[i].node = child
			return
		}
	}
	n.edges = append(n.edges, edge{ch: ch, node: child})
}

func (n *listNode) HasChildren() bool { return len(n.edges) > 0 }
func (n *listNode) NumChildren() int { return len(n.edges) }
func (n *listNode) Terminal() bool { return n.terminal }
func (n *listNode) SetTerminal(terminal bool) { n.terminal = terminal }

func (n *listNode) Edges() iter.Seq2[rune, Node] {
	return func(yield func(rune, Node) bool) {
		for _, e := range n.edges {
			if !yield(e.ch, e.node) {
				return
			}
		}
	}
}

func (n *listNode) edgeAt(i int) (rune, Node) {
	return n.edges[i].ch, n.edges[i].node
}

// Equal reports whether a and b accept the same set of suffixes: they have
// the same terminal flag, the same edge labels, and for every label the
// children are themselves Equal. The storage strategy of the nodes does not
// matter. Shared nodes are compared only once.
func Equal(a, b Node) bool {
	type pair struct{ a, b Node }

	var seen map[pair]struct{}
	stack := []pair{{a, b}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.a == p.b {
			continue
		}
		if p.a == nil || p.b == nil {
			return false
		}
		if p.a.Terminal() != p.b.Terminal() || p.a.NumChildren() != p.b.NumChildren() {
			return false
		}

		for i := 0; i < p.a.NumChildren(); i++ {
			ch, child := p.a.edgeAt(i)
			other := p.b.Child(ch)
			if other == nil {
				return false
			}
			if child == other {
				continue
			}

			next := pair{child, other}
			if seen == nil {
				seen = make(map[pair]struct{})
			}
			if _, ok := seen[next]; ok {
				continue
			}
			seen[next] = struct{}{}
			stack = append(stack, next)
		}
	}

	return true
}
