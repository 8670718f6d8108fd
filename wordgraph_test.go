package wordgraph_test

import (
	"bufio"
	"bytes"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milden6/wordgraph"
)

func uniqueSorted(words []string) []string {
	out := slices.Clone(words)
	slices.Sort(out)
	return slices.Compact(out)
}

func roundTrip(t *testing.T, g *wordgraph.Graph) *wordgraph.Graph {
	t.Helper()

	var buf bytes.Buffer
	n, err := g.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, int64(buf.Len()), n)

	decoded, err := wordgraph.Decode(&buf)
	require.NoError(t, err)
	return decoded
}

func testGraph(t *testing.T, g *wordgraph.Graph, words []string) {
	t.Helper()

	for _, word := range words {
		if word == "" {
			continue
		}
		assert.True(t, g.Contains(word), "Contains(%q)", word)
	}

	got := g.Words()
	slices.Sort(got)
	assert.Equal(t, uniqueSorted(words), got)
}

func runTest(t *testing.T, words []string) *wordgraph.Graph {
	t.Helper()

	g := wordgraph.Build(words)
	testGraph(t, g, words)

	decoded := roundTrip(t, g)
	testGraph(t, decoded, words)
	assert.Equal(t, g.Size(), decoded.Size())

	return g
}

func TestEmptyList(t *testing.T) {
	g := runTest(t, nil)

	assert.Equal(t, wordgraph.Size{Nodes: 1, Edges: 0}, g.Size())
	assert.False(t, g.Root().Terminal())
	assert.Empty(t, g.Words())

	var buf bytes.Buffer
	require.NoError(t, wordgraph.Encode(&buf, g))
	assert.Equal(t, "A0#0/", buf.String())
}

func TestSingleEntry(t *testing.T) {
	g := runTest(t, []string{"a"})
	assert.Equal(t, wordgraph.Size{Nodes: 2, Edges: 1}, g.Size())
}

func TestHelloJello(t *testing.T) {
	g := runTest(t, []string{"hello", "jello"})

	// h and j lead to the same "ello" chain
	assert.Same(t, g.Root().Child('h'), g.Root().Child('j'))
	assert.Equal(t, wordgraph.Size{Nodes: 6, Edges: 6}, g.Size())
}

func TestSharedSuffix(t *testing.T) {
	g := runTest(t, []string{"bat", "cat"})

	// an unminimized trie needs 7 nodes; both "at" chains and the b and c
	// nodes themselves collapse
	size := g.Size()
	assert.Less(t, size.Nodes, 7)
	assert.Equal(t, wordgraph.Size{Nodes: 4, Edges: 4}, size)

	b := g.Root().Child('b')
	c := g.Root().Child('c')
	require.NotNil(t, b)
	assert.Same(t, b, c)
	assert.Same(t, b.Child('a').Child('t'), c.Child('a').Child('t'))
}

func TestDistinctLeavesMerge(t *testing.T) {
	g := runTest(t, []string{"a", "b"})

	// both words end in a childless terminal node, which is a single state
	assert.Equal(t, wordgraph.Size{Nodes: 2, Edges: 2}, g.Size())
}

func TestTerminalWithChildren(t *testing.T) {
	g := runTest(t, []string{"car", "cart"})

	assert.True(t, g.Contains("car"))
	assert.True(t, g.Contains("cart"))
	assert.False(t, g.Contains("ca"))
	assert.False(t, g.Contains("carts"))
	assert.False(t, g.Contains("x"))
}

func TestCarCare(t *testing.T) {
	g := runTest(t, []string{"car", "cars", "care", "cared"})
	assert.False(t, g.Contains("cards"))
	assert.False(t, g.Contains("cares"))
}

func TestEmptyWordIsNeverContained(t *testing.T) {
	g := runTest(t, []string{"", "a"})

	assert.True(t, g.Root().Terminal())
	assert.False(t, g.Contains(""))
	assert.Contains(t, g.Words(), "")

	decoded := roundTrip(t, g)
	assert.True(t, decoded.Root().Terminal())
	assert.False(t, decoded.Contains(""))
}

func TestDuplicates(t *testing.T) {
	g := runTest(t, []string{"b", "a", "b", "a", "ab"})
	assert.Len(t, g.Words(), 3)
}

func TestUnsortedInput(t *testing.T) {
	runTest(t, []string{"zebra", "apple", "mango", "app", "zeb"})
}

func TestBuilderOrder(t *testing.T) {
	b := wordgraph.New()
	require.NoError(t, b.Add("cat"))
	require.NoError(t, b.Add("cat"))
	assert.True(t, b.CanAdd("cats"))
	assert.False(t, b.CanAdd("bat"))

	err := b.Add("bat")
	require.ErrorIs(t, err, wordgraph.ErrNotSorted)

	g := b.Finish()
	assert.Same(t, g, b.Finish())
	assert.Equal(t, 2, b.NumAdded())
	assert.False(t, b.CanAdd("dog"))
	require.ErrorIs(t, b.Add("dog"), wordgraph.ErrFinished)

	assert.Equal(t, []string{"cat"}, g.Words())
}

func TestStorageStrategies(t *testing.T) {
	words := randomWords(rand.New(rand.NewSource(7)), 2000, 1, 8, "abcdef")

	array := wordgraph.Build(words, wordgraph.WithStorage(wordgraph.ArrayStorage))
	list := wordgraph.Build(words, wordgraph.WithStorage(wordgraph.ListStorage))
	small := wordgraph.Build(words, wordgraph.WithCapacity(1))

	assert.Equal(t, array.Size(), list.Size())
	assert.Equal(t, array.Size(), small.Size())
	assert.True(t, wordgraph.Equal(array.Root(), list.Root()))

	var a, l bytes.Buffer
	require.NoError(t, wordgraph.Encode(&a, array))
	require.NoError(t, wordgraph.Encode(&l, list))
	assert.Equal(t, a.String(), l.String())
}

func TestRandomRoundTrip(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		words := randomWords(rnd, 1+rnd.Intn(500), 1, 12, "abcdefghijklmnopqrstuvwxyz")
		g := runTest(t, words)

		known := make(map[string]bool, len(words))
		for _, word := range words {
			known[word] = true
		}
		for _, probe := range randomWords(rnd, 200, 1, 12, "abcdefghijklmnopqrstuvwxyz") {
			assert.Equal(t, known[probe], g.Contains(probe), "Contains(%q)", probe)
		}
	}
}

func TestEncodeIsStable(t *testing.T) {
	words := randomWords(rand.New(rand.NewSource(3)), 300, 1, 10, "abcdefghij")
	g := wordgraph.Build(words)

	var first, second bytes.Buffer
	require.NoError(t, wordgraph.Encode(&first, g))

	decoded, err := wordgraph.Decode(bytes.NewReader(first.Bytes()))
	require.NoError(t, err)
	require.NoError(t, wordgraph.Encode(&second, decoded))

	assert.Equal(t, first.String(), second.String())
}

func TestEncodeFormat(t *testing.T) {
	g := wordgraph.Build([]string{"bat", "cat"})

	var buf bytes.Buffer
	require.NoError(t, wordgraph.Encode(&buf, g))
	assert.Equal(t, `A0#2b\1#1a\2#1t\3*0///c>1/`, buf.String())
}

func TestEncodeUnencodableEdge(t *testing.T) {
	for _, words := range [][]string{{"a1"}, {"a/b"}} {
		g := wordgraph.Build(words)

		var buf bytes.Buffer
		err := wordgraph.Encode(&buf, g)
		require.ErrorIs(t, err, wordgraph.ErrUnencodableEdge)
		assert.Zero(t, buf.Len(), "nothing is written for %v", words)
	}
}

func TestEncodeSpecialCharacters(t *testing.T) {
	runTest(t, []string{"a*b", "a#b", `a\b`, "a>b", "AB", "café", "日本"})
}

func TestDecodeSharedNode(t *testing.T) {
	g, err := wordgraph.Decode(bytes.NewBufferString(`A0#2a\1*0/b>1/`))
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"a", "b"}, g.Words())
	assert.Same(t, g.Root().Child('a'), g.Root().Child('b'))
	assert.Equal(t, wordgraph.Size{Nodes: 2, Edges: 2}, g.Size())
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"wrong tag", "B0#0/"},
		{"missing id", "A#0/"},
		{"bad marker", "A0?0/"},
		{"missing count", "A0#/"},
		{"truncated", `A0#1a\1*0`},
		{"truncated number", "A0#1a>"},
		{"dangling reference", "A0#1a>5/"},
		{"reference to ancestor", `A0#1a\1#1b>0//`},
		{"reference to itself", `A0#1a\1#1b>1//`},
		{"too few children", `A0#2a\1*0//`},
		{"too many children", `A0#1a\1*0/b>1/`},
		{"duplicate edge", `A0#2a\1*0/a>1/`},
		{"id out of sequence", `A0#1a\5*0//`},
		{"unknown action", "A0#1a?1/"},
		{"digit edge", `A0#11\1*0//`},
		{"huge number", "A99999999999999999999#0/"},
		{"count above rune range", "A0#1114113/"},
		{"huge count truncated", `A0#1114111a\1#1114111a\2#1114111`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := wordgraph.Decode(bytes.NewBufferString(tt.input))
			require.ErrorIs(t, err, wordgraph.ErrInvalidFormat)
			assert.Nil(t, g)

			var formatErr *wordgraph.FormatError
			assert.ErrorAs(t, err, &formatErr)
		})
	}
}

func TestDecodeWideNode(t *testing.T) {
	var words []string
	for ch := rune(0x100); ch < 0x100+100; ch++ {
		words = append(words, string(ch))
	}
	g := runTest(t, words)
	assert.Equal(t, 100, g.Root().NumChildren())
}

func TestDecodeDeclaredCountDoesNotAllocate(t *testing.T) {
	var input strings.Builder
	input.WriteString("A0#1114111")
	for id := 1; id <= 20; id++ {
		fmt.Fprintf(&input, "a\\%d#1114111", id)
	}

	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)

	g, err := wordgraph.Decode(strings.NewReader(input.String()))

	runtime.ReadMemStats(&after)
	require.ErrorIs(t, err, wordgraph.ErrInvalidFormat)
	assert.Nil(t, g)

	// a full allocation of the declared slots would be over 20 MB per node
	assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(8<<20))
}

func TestDecodeIgnoresTrailingData(t *testing.T) {
	g, err := wordgraph.Decode(bytes.NewBufferString("A0#1a\\1*0//\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, g.Words())
}

func TestPrefixes(t *testing.T) {
	g := wordgraph.Build([]string{"", "blip", "cat", "catnip", "cats"})

	assert.Equal(t, []string{"", "cat", "cats"}, g.FindAllPrefixesOf("catsup"))
	assert.Equal(t, []string{""}, g.FindAllPrefixesOf("dog"))

	g = wordgraph.Build([]string{"cat", "cats"})
	assert.Equal(t, []string{"cat", "cats"}, g.FindAllPrefixesOf("cats"))
	assert.Empty(t, g.FindAllPrefixesOf("ca"))
}

func TestEnumerate(t *testing.T) {
	g := wordgraph.Build([]string{"ab", "abc", "b", "bc", "c"})

	var prefixes []string
	g.Enumerate(func(word []rune, final bool) wordgraph.EnumerationResult {
		prefixes = append(prefixes, string(word))
		if string(word) == "b" {
			return wordgraph.Skip
		}
		return wordgraph.Continue
	})
	assert.Equal(t, []string{"", "a", "ab", "abc", "b", "c"}, prefixes)

	var words []string
	g.Enumerate(func(word []rune, final bool) wordgraph.EnumerationResult {
		if final {
			words = append(words, string(word))
		}
		if len(words) == 2 {
			return wordgraph.Stop
		}
		return wordgraph.Continue
	})
	assert.Equal(t, []string{"ab", "abc"}, words)
}

func TestSaveLoad(t *testing.T) {
	words := []string{"hello", "help", "helping", "jello", "yellow"}
	g := wordgraph.Build(words)

	path := filepath.Join(t.TempDir(), "test.dawg")
	n, err := g.Save(path)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, info.Size(), n)

	loaded, err := wordgraph.Load(path)
	require.NoError(t, err)
	testGraph(t, loaded, words)
	assert.Equal(t, g.Size(), loaded.Size())
}

func TestSaveUnencodableLeavesFilesAlone(t *testing.T) {
	g := wordgraph.Build([]string{"route66"})
	dir := t.TempDir()

	missing := filepath.Join(dir, "new.dawg")
	_, err := g.Save(missing)
	require.ErrorIs(t, err, wordgraph.ErrUnencodableEdge)
	assert.NoFileExists(t, missing)

	existing := filepath.Join(dir, "old.dawg")
	require.NoError(t, os.WriteFile(existing, []byte("A0#0/"), 0o644))
	_, err = g.Save(existing)
	require.ErrorIs(t, err, wordgraph.ErrUnencodableEdge)

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "A0#0/", string(data))
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.dawg")
	require.NoError(t, os.WriteFile(path, []byte("not a graph"), 0o644))

	g, err := wordgraph.Load(path)
	require.ErrorIs(t, err, wordgraph.ErrInvalidFormat)
	assert.Nil(t, g)

	_, err = wordgraph.Load(filepath.Join(t.TempDir(), "missing.dawg"))
	require.Error(t, err)
}

func TestReadAtOffset(t *testing.T) {
	g := wordgraph.Build([]string{"one", "two"})

	var buf bytes.Buffer
	buf.WriteString("header")
	n, err := g.WriteTo(&buf)
	require.NoError(t, err)

	read, err := wordgraph.Read(bytes.NewReader(buf.Bytes()), 6, n)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"one", "two"}, read.Words())
}

func TestConcurrentQueries(t *testing.T) {
	words := randomWords(rand.New(rand.NewSource(11)), 500, 1, 8, "abcdefgh")
	g := wordgraph.Build(words)
	want := g.Size()

	done := make(chan struct{})
	for i := 0; i < 4; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for _, word := range words {
				if !g.Contains(word) {
					t.Errorf("Contains(%q) = false", word)
				}
			}
			if got := g.Size(); got != want {
				t.Errorf("Size() = %v, want %v", got, want)
			}
		}()
	}
	for i := 0; i < 4; i++ {
		<-done
	}
}

func randomWords(rnd *rand.Rand, n, minLen, maxLen int, alphabet string) []string {
	words := make([]string, n)
	for i := range words {
		length := minLen + rnd.Intn(maxLen-minLen+1)
		buf := make([]byte, length)
		for j := range buf {
			buf[j] = alphabet[rnd.Intn(len(alphabet))]
		}
		words[i] = string(buf)
	}
	return words
}

func readDictWords(t *testing.T) []string {
	dict := "/usr/share/dict/words"
	if _, err := os.Stat(dict); os.IsNotExist(err) {
		t.Skipf("Skipping full dictionary test; can't find %s", dict)
	}

	file, err := os.Open(dict)
	require.NoError(t, err)
	defer file.Close()

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		words = append(words, scanner.Text())
	}
	require.NoError(t, scanner.Err())
	return words
}

func TestFullDict(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping full dictionary in short mode")
	}

	words := readDictWords(t)
	for i, word := range words {
		// the text format reserves digits and '/'
		if !utf8.ValidString(word) || strings.ContainsAny(word, "0123456789/") {
			words[i] = ""
		}
	}

	g := runTest(t, words)
	size := g.Size()
	t.Logf("graph has %v words, %v nodes, %v edges", len(g.Words()), size.Nodes, size.Edges)
}

func ExampleBuild() {
	g := wordgraph.Build([]string{"cats", "cat", "catnip", "blip"})

	for _, prefix := range g.FindAllPrefixesOf("catsup") {
		fmt.Printf("Found prefix %s\n", prefix)
	}

	size := g.Size()
	fmt.Printf("%d nodes, %d edges\n", size.Nodes, size.Edges)

	// Output:
	// Found prefix cat
	// Found prefix cats
	// 8 nodes, 9 edges
}

func ExampleEncode() {
	g := wordgraph.Build([]string{"bat", "cat"})

	var buf bytes.Buffer
	if err := wordgraph.Encode(&buf, g); err != nil {
		panic(err)
	}
	fmt.Println(buf.String())

	// Output:
	// A0#2b\1#1a\2#1t\3*0///c>1/
}
