package wordgraph

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"unicode/utf8"
)

/* TEXT FORMAT

stream := 'A' node
node   := id ('*' | '#') numChildren edge* '/'
edge   := ch '\' node       first visit of the child
        | ch '>' id         back-reference to a node already written

Ids are decimal and assigned in depth first pre-order, starting from 0 at the
root, so that an id equals the number of nodes written before it. '*' marks a
terminal node and '#' a non-terminal one. Numbers are not delimited; they end
at the first character that is not a digit.
*/

const (
	formatArray = 'A'

	markTerminal    = '*'
	markNonTerminal = '#'
	actionNew       = '\\'
	actionRef       = '>'
	endOfNode       = '/'
)

// maxChildren bounds the child count read from a node header. A node cannot
// have more edges than there are distinct runes.
const maxChildren = utf8.MaxRune + 1

func encodable(ch rune) bool {
	return !(ch >= '0' && ch <= '9') && ch != endOfNode && utf8.ValidRune(ch)
}

// checkEncodable returns ErrUnencodableEdge if any edge label of g is
// reserved by the text format.
func checkEncodable(g *Graph) error {
	var bad error
	g.walk(func(n Node) bool {
		for ch := range n.Edges() {
			if !encodable(ch) {
				bad = fmt.Errorf("%w: %q", ErrUnencodableEdge, ch)
				return false
			}
		}
		return true
	})
	return bad
}

// Encode writes g to w in the text format. Shared nodes are written once and
// referred to by id afterwards.
func Encode(w io.Writer, g *Graph) error {
	if err := checkEncodable(g); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	ids := make(map[Node]int)
	var num []byte

	writeHeader := func(n Node) {
		id := len(ids)
		ids[n] = id

		num = strconv.AppendInt(num[:0], int64(id), 10)
		bw.Write(num)
		if n.Terminal() {
			bw.WriteByte(markTerminal)
		} else {
			bw.WriteByte(markNonTerminal)
		}
		num = strconv.AppendInt(num[:0], int64(n.NumChildren()), 10)
		bw.Write(num)
	}

	type frame struct {
		node Node
		next int
	}

	bw.WriteByte(formatArray)
	writeHeader(g.root)
	stack := []frame{{node: g.root}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next == top.node.NumChildren() {
			bw.WriteByte(endOfNode)
			stack = stack[:len(stack)-1]
			continue
		}

		ch, child := top.node.edgeAt(top.next)
		top.next++

		bw.WriteRune(ch)
		if id, ok := ids[child]; ok {
			bw.WriteByte(actionRef)
			num = strconv.AppendInt(num[:0], int64(id), 10)
			bw.Write(num)
		} else {
			bw.WriteByte(actionNew)
			writeHeader(child)
			stack = append(stack, frame{node: child})
		}
	}

	// bufio.Writer keeps the first error, so checking Flush is enough
	return bw.Flush()
}

// WriteTo writes the graph to w in the text format. It returns the number
// of bytes written.
func (g *Graph) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	err := Encode(cw, g)
	return cw.n, err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// Decode reads a graph written by Encode. Nodes are rebuilt as array nodes,
// every node must have exactly the number of children its header declares,
// and every back-reference resolves to the same
// shared node. On error no graph is returned; malformed input yields an
// error wrapping ErrInvalidFormat.
func Decode(r io.Reader) (*Graph, error) {
	d := &decoder{r: bufio.NewReader(r)}
	root, err := d.decode()
	if err != nil {
		return nil, err
	}
	return &Graph{root: root}, nil
}

type decoder struct {
	r      *bufio.Reader
	offset int64

	nodes []Node
	open  []bool // open[id] is set while the node's edges are being read
}

func (d *decoder) errorf(format string, args ...interface{}) error {
	return &FormatError{Offset: d.offset, Msg: fmt.Sprintf(format, args...)}
}

func (d *decoder) next() (rune, error) {
	ch, size, err := d.r.ReadRune()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, d.errorf("unexpected end of input")
		}
		return 0, fmt.Errorf("wordgraph: read: %w", err)
	}
	if ch == utf8.RuneError && size == 1 {
		return 0, d.errorf("invalid UTF-8")
	}
	d.offset += int64(size)
	return ch, nil
}

// number reads consecutive digits. The character following them is pushed
// back for the next read.
func (d *decoder) number() (int, error) {
	start := d.offset
	n := 0
	digits := 0
	for {
		ch, size, err := d.r.ReadRune()
		if err != nil && !errors.Is(err, io.EOF) {
			return 0, fmt.Errorf("wordgraph: read: %w", err)
		}
		if err != nil || ch < '0' || ch > '9' {
			if err == nil {
				_ = d.r.UnreadRune()
			}
			break
		}
		d.offset += int64(size)
		digits++
		digit := int(ch - '0')
		if n > (math.MaxInt32-digit)/10 {
			return 0, &FormatError{Offset: start, Msg: "number too large"}
		}
		n = n*10 + digit
	}
	if digits == 0 {
		return 0, d.errorf("expected a number")
	}
	return n, nil
}

// header reads id, terminal marker and child count, and allocates the node.
func (d *decoder) header() (Node, int, error) {
	at := d.offset
	id, err := d.number()
	if err != nil {
		return nil, 0, err
	}
	if id != len(d.nodes) {
		return nil, 0, &FormatError{Offset: at, Msg: fmt.Sprintf("node id %d out of sequence, expected %d", id, len(d.nodes))}
	}

	mark, err := d.next()
	if err != nil {
		return nil, 0, err
	}
	var terminal bool
	switch mark {
	case markTerminal:
		terminal = true
	case markNonTerminal:
	default:
		return nil, 0, d.errorf("expected %q or %q, got %q", markTerminal, markNonTerminal, mark)
	}

	count, err := d.number()
	if err != nil {
		return nil, 0, err
	}
	if count > maxChildren {
		return nil, 0, d.errorf("node %d declares %d children", id, count)
	}

	// the count is not trusted for allocation until the edges are read;
	// array nodes grow past their initial slots
	n := NewArrayNode(min(count, DefaultCapacity), terminal)
	d.nodes = append(d.nodes, n)
	d.open = append(d.open, true)
	return n, count, nil
}

func (d *decoder) decode() (Node, error) {
	tag, err := d.next()
	if err != nil {
		return nil, err
	}
	if tag != formatArray {
		return nil, d.errorf("unknown format tag %q", tag)
	}

	type frame struct {
		node Node
		id   int
		want int
	}

	root, want, err := d.header()
	if err != nil {
		return nil, err
	}
	stack := []frame{{node: root, id: 0, want: want}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]

		ch, err := d.next()
		if err != nil {
			return nil, err
		}
		if ch == endOfNode {
			if got := top.node.NumChildren(); got != top.want {
				return nil, d.errorf("node %d declares %d children, found %d", top.id, top.want, got)
			}
			d.open[top.id] = false
			stack = stack[:len(stack)-1]
			continue
		}
		if !encodable(ch) {
			return nil, d.errorf("invalid edge label %q", ch)
		}
		if top.node.Child(ch) != nil {
			return nil, d.errorf("duplicate edge %q on node %d", ch, top.id)
		}
		if top.node.NumChildren() == top.want {
			return nil, d.errorf("node %d has more than %d children", top.id, top.want)
		}

		action, err := d.next()
		if err != nil {
			return nil, err
		}
		switch action {
		case actionNew:
			id := len(d.nodes)
			child, want, err := d.header()
			if err != nil {
				return nil, err
			}
			top.node.SetChild(ch, child)
			stack = append(stack, frame{node: child, id: id, want: want})

		case actionRef:
			at := d.offset
			id, err := d.number()
			if err != nil {
				return nil, err
			}
			if id >= len(d.nodes) {
				return nil, &FormatError{Offset: at, Msg: fmt.Sprintf("back-reference to unknown node %d", id)}
			}
			if d.open[id] {
				return nil, &FormatError{Offset: at, Msg: fmt.Sprintf("back-reference to node %d creates a cycle", id)}
			}
			top.node.SetChild(ch, d.nodes[id])

		default:
			return nil, d.errorf("expected %q or %q after edge %q, got %q", actionNew, actionRef, ch, action)
		}
	}

	return root, nil
}
