package wordgraph

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/exp/mmap"
)

// Save writes the graph to disk. Returns the number of bytes written
func (g *Graph) Save(filename string) (int64, error) {
	// nothing is created or truncated for a graph that cannot be written
	if err := checkEncodable(g); err != nil {
		return 0, fmt.Errorf("wordgraph: save %s: %w", filename, err)
	}

	f, err := os.Create(filename)
	if err != nil {
		return 0, err
	}

	n, err := g.WriteTo(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, fmt.Errorf("wordgraph: save %s: %w", filename, err)
	}
	return n, nil
}

// Load maps a file written by Save into memory and decodes it.
func Load(filename string) (*Graph, error) {
	f, err := mmap.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Read(f, 0, int64(f.Len()))
}

// Read decodes a graph stored in the size bytes of f starting at offset.
func Read(f io.ReaderAt, offset, size int64) (*Graph, error) {
	return Decode(io.NewSectionReader(f, offset, size))
}
