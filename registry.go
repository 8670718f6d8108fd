package wordgraph

import (
	"hash"
	"hash/fnv"
	"slices"
	"strconv"
	"unicode/utf8"
)

// registry holds the canonical, already minimized nodes found so far.
// Nodes are bucketed by a hash of their signature, which is the terminal
// flag followed by the sorted (label, canonical id) pairs of their edges.
// Every child of a node being registered is itself canonical, so equal
// nodes produce equal signatures and a bucket rarely holds more than one
// candidate.
type registry struct {
	buckets map[uint32][]Node
	ids     map[Node]int

	buf    []byte
	edges  []signatureEdge
	hasher hash.Hash32
}

type signatureEdge struct {
	ch rune
	id int
}

func newRegistry() *registry {
	return &registry{
		buckets: make(map[uint32][]Node),
		ids:     make(map[Node]int),
		hasher:  fnv.New32a(),
	}
}

// Len returns the number of canonical nodes.
func (r *registry) Len() int {
	return len(r.ids)
}

func (r *registry) hash(n Node) uint32 {
	r.edges = r.edges[:0]
	for ch, child := range n.Edges() {
		id, ok := r.ids[child]
		if !ok {
			id = -1
		}
		r.edges = append(r.edges, signatureEdge{ch, id})
	}
	slices.SortFunc(r.edges, func(a, b signatureEdge) int {
		return int(a.ch) - int(b.ch)
	})

	// node name is _ch:id... for each child, with a trailing ! if final
	buf := r.buf[:0]
	for _, e := range r.edges {
		buf = append(buf, '_')
		buf = utf8.AppendRune(buf, e.ch)
		buf = append(buf, ':')
		buf = strconv.AppendInt(buf, int64(e.id), 10)
	}
	if n.Terminal() {
		buf = append(buf, '!')
	}
	r.buf = buf

	r.hasher.Reset()
	r.hasher.Write(buf)
	return r.hasher.Sum32()
}

// find returns the canonical node equal to n, if there is one, along with
// the hash of n for a following insert.
func (r *registry) find(n Node) (Node, uint32) {
	h := r.hash(n)
	for _, candidate := range r.buckets[h] {
		if Equal(candidate, n) {
			return candidate, h
		}
	}
	return nil, h
}

func (r *registry) insert(h uint32, n Node) {
	r.buckets[h] = append(r.buckets[h], n)
	r.ids[n] = len(r.ids)
}
