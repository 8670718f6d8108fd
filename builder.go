package wordgraph

import (
	"fmt"
	"sort"
)

// Storage selects how the builder stores the edges of the nodes it creates.
type Storage int

const (
	// ArrayStorage allocates a fixed number of edge slots per node.
	ArrayStorage Storage = iota

	// ListStorage grows each node's edge list as edges are added.
	ListStorage
)

func (s Storage) String() string {
	switch s {
	case ArrayStorage:
		return "array"
	case ListStorage:
		return "list"
	}
	return fmt.Sprintf("Storage(%d)", int(s))
}

// ParseStorage returns the Storage named by s ("array" or "list").
func ParseStorage(s string) (Storage, error) {
	switch s {
	case "array":
		return ArrayStorage, nil
	case "list":
		return ListStorage, nil
	}
	return 0, fmt.Errorf("wordgraph: unknown storage %q", s)
}

// DefaultCapacity is the number of edge slots of a fresh array node: one per
// lowercase letter.
const DefaultCapacity = 26

type options struct {
	storage  Storage
	capacity int
}

// Option configures a Builder.
type Option func(*options)

// WithStorage sets the storage strategy of the nodes created while building.
func WithStorage(s Storage) Option {
	return func(o *options) {
		o.storage = s
	}
}

// WithCapacity sets the number of edge slots given to each new array node.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}

type uncheckedNode struct {
	parent Node
	ch     rune
	child  Node
}

// Builder creates a minimal graph from words added in sorted order.
type Builder struct {
	opts options
	root Node

	// these are erased after we finish building
	lastWord string
	lastEdge map[Node]rune
	registry *registry
	spine    []uncheckedNode

	numAdded int
	finished bool
	graph    *Graph
}

// New creates a new Builder.
func New(opts ...Option) *Builder {
	o := options{storage: ArrayStorage, capacity: DefaultCapacity}
	for _, opt := range opts {
		opt(&o)
	}

	b := &Builder{
		opts:     o,
		lastEdge: make(map[Node]rune),
		registry: newRegistry(),
	}
	b.root = b.newNode()
	return b
}

// Build sorts a copy of words and builds a minimal graph that accepts each of
// them. Duplicate words are allowed.
func Build(words []string, opts ...Option) *Graph {
	sorted := make([]string, len(words))
	copy(sorted, words)
	sort.Strings(sorted)

	b := New(opts...)
	for _, word := range sorted {
		// cannot fail: the input is sorted and the builder is not finished
		_ = b.Add(word)
	}
	return b.Finish()
}

// CanAdd will return true if the word can be added to the Builder.
// Words must be added in alphabetical order.
func (b *Builder) CanAdd(word string) bool {
	return !b.finished && (b.numAdded == 0 || word >= b.lastWord)
}

// Add adds a word to the graph. Adding the same word twice in a row has no
// effect.
func (b *Builder) Add(word string) error {
	if b.finished {
		return ErrFinished
	}
	if b.numAdded > 0 && word < b.lastWord {
		return fmt.Errorf("%w: %q after %q", ErrNotSorted, word, b.lastWord)
	}

	// follow the common prefix
	node := b.root
	suffix := []rune(word)
	for len(suffix) > 0 {
		next := node.Child(suffix[0])
		if next == nil {
			break
		}
		node = next
		suffix = suffix[1:]
	}

	// nothing will be added below the open branch of node any more, so it
	// can be minimized before the new suffix is attached.
	if len(suffix) > 0 && node.HasChildren() {
		b.replaceOrRegister(node)
	}

	for _, ch := range suffix {
		next := b.newNode()
		node.SetChild(ch, next)
		b.lastEdge[node] = ch
		node = next
	}
	node.SetTerminal(true)

	b.lastWord = word
	b.numAdded++
	return nil
}

// NumAdded returns the number of words added, including duplicates.
func (b *Builder) NumAdded() int {
	return b.numAdded
}

// Finish minimizes the last open branch and returns the graph. The Builder
// cannot be added to afterwards; calling Finish again returns the same graph.
func (b *Builder) Finish() *Graph {
	if !b.finished {
		b.finished = true

		if b.root.HasChildren() {
			b.replaceOrRegister(b.root)
		}

		b.graph = &Graph{root: b.root}

		// no longer needed
		b.lastEdge = nil
		b.registry = nil
		b.spine = nil
	}
	return b.graph
}

// replaceOrRegister walks the most recently added branch below node and,
// from the deepest node up, replaces each node with an equal canonical one
// or registers it as canonical.
func (b *Builder) replaceOrRegister(node Node) {
	spine := b.spine[:0]
	for {
		ch := b.lastEdge[node]
		child := node.Child(ch)
		spine = append(spine, uncheckedNode{parent: node, ch: ch, child: child})
		if !child.HasChildren() {
			break
		}
		node = child
	}

	for i := len(spine) - 1; i >= 0; i-- {
		u := spine[i]
		delete(b.lastEdge, u.child)

		if canonical, h := b.registry.find(u.child); canonical != nil {
			// replace the child with the previously encountered one
			u.parent.SetChild(u.ch, canonical)
		} else {
			b.registry.insert(h, u.child)
		}
	}

	b.spine = spine[:0]
}

func (b *Builder) newNode() Node {
	if b.opts.storage == ListStorage {
		return NewListNode(false)
	}
	return NewArrayNode(b.opts.capacity, false)
}
