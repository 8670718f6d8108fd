package wordgraph

// EnumFn is called by Enumerate for every node reached, with the word spelled
// by the path to it and whether that word is in the graph.
type EnumFn = func(word []rune, final bool) EnumerationResult

// EnumerationResult is returned by the enumeration function to indicate whether
// enumeration should continue below this depth or stop altogether
type EnumerationResult = int

const (
	// Continue enumerating all words with this prefix
	Continue EnumerationResult = iota

	// Skip will skip all words with this prefix
	Skip

	// Stop will immediately stop enumerating words
	Stop
)

// Graph is a minimal acyclic word graph. It is created by a Builder or by
// Decode and is not modified afterwards, so its query methods may be called
// from several goroutines at once.
type Graph struct {
	root Node
}

// Size holds the number of distinct nodes and edges in a graph.
type Size struct {
	Nodes int
	Edges int
}

// Root returns the entry node of the graph.
func (g *Graph) Root() Node {
	return g.root
}

// Contains reports whether word was added to the graph.
// The empty word is never reported, even if it was added.
func (g *Graph) Contains(word string) bool {
	node := g.root
	final := false
	for _, ch := range word {
		node = node.Child(ch)
		if node == nil {
			return false
		}
		final = node.Terminal()
	}
	return final
}

// FindAllPrefixesOf returns all words in the graph that are a prefix of the
// input string, shortest first.
func (g *Graph) FindAllPrefixesOf(input string) []string {
	var results []string
	node := g.root

	for pos, ch := range input {
		if node.Terminal() {
			results = append(results, input[:pos])
		}
		node = node.Child(ch)
		if node == nil {
			return results
		}
	}

	if node.Terminal() {
		results = append(results, input)
	}
	return results
}

// Words returns every word in the graph. Words are listed in edge insertion
// order, which is not necessarily alphabetical.
func (g *Graph) Words() []string {
	var words []string
	g.Enumerate(func(word []rune, final bool) EnumerationResult {
		if final {
			words = append(words, string(word))
		}
		return Continue
	})
	return words
}

// Enumerate will call the given method, passing it every possible prefix of
// words in the graph, depth first. Return Continue to continue enumeration,
// Skip to skip this branch, or Stop to stop enumeration.
//
// A node shared by several paths is visited once per path.
func (g *Graph) Enumerate(fn EnumFn) {
	type frame struct {
		node Node
		next int
	}

	var runes []rune
	if fn(runes, g.root.Terminal()) != Continue {
		return
	}

	stack := []frame{{node: g.root}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next == top.node.NumChildren() {
			stack = stack[:len(stack)-1]
			if len(runes) > 0 {
				runes = runes[:len(runes)-1]
			}
			continue
		}

		ch, child := top.node.edgeAt(top.next)
		top.next++

		runes = append(runes, ch)
		switch fn(runes, child.Terminal()) {
		case Continue:
			stack = append(stack, frame{node: child})
		case Skip:
			runes = runes[:len(runes)-1]
		case Stop:
			return
		}
	}
}

// Size counts the distinct nodes reachable from the root and the edges
// leaving them. Nodes are told apart by identity, so a shared node counts
// once.
func (g *Graph) Size() Size {
	var size Size
	g.walk(func(n Node) bool {
		size.Nodes++
		size.Edges += n.NumChildren()
		return true
	})
	return size
}

// walk calls fn once for every distinct node reachable from the root, in
// depth first pre-order, until fn returns false.
func (g *Graph) walk(fn func(Node) bool) {
	visited := map[Node]struct{}{g.root: {}}
	stack := []Node{g.root}

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !fn(n) {
			return
		}

		// push in reverse so children are visited in edge order
		for i := n.NumChildren() - 1; i >= 0; i-- {
			_, child := n.edgeAt(i)
			if _, ok := visited[child]; !ok {
				visited[child] = struct{}{}
				stack = append(stack, child)
			}
		}
	}
}
