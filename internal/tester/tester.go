// Package tester builds a word graph from a word list, checks it against the
// list, writes it to disk, reads it back and checks the copy again.
package tester

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/milden6/wordgraph"
	"github.com/milden6/wordgraph/internal/config"
)

const letters = "abcdefghijklmnopqrstuvwxyz"

// Check is the outcome of verifying one graph against the word list.
type Check struct {
	Missing    []string // listed words the graph does not contain
	Mismatched int      // enumerated words that differ from the sorted list
	Found      []string // random non-members the graph claims to contain
	Size       wordgraph.Size
}

// OK reports whether the graph matched the word list.
func (c Check) OK() bool {
	return len(c.Missing) == 0 && c.Mismatched == 0 && len(c.Found) == 0
}

// Report holds the results of a run.
type Report struct {
	Words   int
	Path    string
	Bytes   int64
	Built   Check
	Decoded Check
}

// OK reports whether both the built and the decoded graph passed.
func (r Report) OK() bool {
	return r.Built.OK() && r.Decoded.OK()
}

// Run performs the whole test described by cfg. Cancelling ctx stops the
// run before its next phase starts.
func Run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (Report, error) {
	var report Report

	storage, err := cfg.StorageKind()
	if err != nil {
		return report, err
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}

	words, err := ReadWords(cfg.Input)
	if err != nil {
		return report, err
	}
	report.Words = len(words)
	logger.Info().Str("input", cfg.Input).Int("words", len(words)).Msg("read word list")

	probes := randomProbes(words, cfg.Probes, cfg.Seed)
	if err := ctx.Err(); err != nil {
		return report, err
	}

	start := time.Now()
	graph := wordgraph.Build(words, wordgraph.WithStorage(storage))
	logger.Info().Stringer("storage", storage).Dur("took", time.Since(start)).Msg("built graph from word list")
	if err := ctx.Err(); err != nil {
		return report, err
	}

	report.Built = Verify(graph, words, probes, logger)
	if err := ctx.Err(); err != nil {
		return report, err
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return report, fmt.Errorf("create output dir: %w", err)
	}
	report.Path = filepath.Join(cfg.OutputDir, cfg.OutputFile)

	start = time.Now()
	report.Bytes, err = graph.Save(report.Path)
	if err != nil {
		return report, err
	}
	logger.Info().Str("path", report.Path).Int64("bytes", report.Bytes).Dur("took", time.Since(start)).Msg("wrote graph")
	if err := ctx.Err(); err != nil {
		return report, err
	}

	start = time.Now()
	decoded, err := wordgraph.Load(report.Path)
	if err != nil {
		return report, err
	}
	logger.Info().Str("path", report.Path).Dur("took", time.Since(start)).Msg("built graph from file")
	if err := ctx.Err(); err != nil {
		return report, err
	}

	report.Decoded = Verify(decoded, words, probes, logger)
	return report, nil
}

// Verify checks that graph contains every listed word, that it enumerates
// exactly the distinct listed words, and that it rejects every probe.
func Verify(graph *wordgraph.Graph, words, probes []string, logger zerolog.Logger) Check {
	var check Check

	for _, word := range words {
		if word != "" && !graph.Contains(word) {
			logger.Debug().Str("word", word).Msg("not in dictionary")
			check.Missing = append(check.Missing, word)
		}
	}
	logger.Info().Int("missing", len(check.Missing)).Msg("checked wanted words")

	start := time.Now()
	found := graph.Words()
	logger.Info().Int("words", len(found)).Dur("took", time.Since(start)).Msg("found all words in graph")

	want := slices.Clone(words)
	slices.Sort(want)
	want = slices.Compact(want)
	slices.Sort(found)

	for i := 0; i < max(len(found), len(want)); i++ {
		if i >= len(found) || i >= len(want) || found[i] != want[i] {
			check.Mismatched++
		}
	}

	for _, probe := range probes {
		if graph.Contains(probe) {
			check.Found = append(check.Found, probe)
		}
	}
	if check.Mismatched == 0 && len(check.Found) == 0 {
		logger.Info().Msg("all words in the dictionary are valid")
	} else {
		logger.Warn().Int("mismatched", check.Mismatched).Strs("unexpected", check.Found).Msg("the dictionary contains invalid words")
	}

	start = time.Now()
	check.Size = graph.Size()
	logger.Info().Int("nodes", check.Size.Nodes).Int("edges", check.Size.Edges).Dur("took", time.Since(start)).Msg("counted graph nodes")

	return check
}

// ReadWords reads whitespace separated words from a file.
func ReadWords(filename string) ([]string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ScanWords(f)
}

// ScanWords reads whitespace separated words from r.
func ScanWords(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		words = append(words, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read words: %w", err)
	}
	return words, nil
}

// randomProbes returns n random lowercase words that are not in words.
func randomProbes(words []string, n int, seed int64) []string {
	if n == 0 {
		return nil
	}

	minLen, maxLen := 1, 1
	known := make(map[string]struct{}, len(words))
	for _, word := range words {
		known[word] = struct{}{}
		if len(word) > maxLen {
			maxLen = len(word)
		}
	}

	rnd := rand.New(rand.NewSource(seed))
	probes := make([]string, 0, n)
	buf := make([]byte, 0, maxLen)
	for attempts := 0; len(probes) < n && attempts < n*100; attempts++ {
		length := minLen + rnd.Intn(maxLen-minLen+1)
		buf = buf[:0]
		for len(buf) < length {
			buf = append(buf, letters[rnd.Intn(len(letters))])
		}
		word := string(buf)
		if _, ok := known[word]; ok {
			continue
		}
		known[word] = struct{}{}
		probes = append(probes, word)
	}
	return probes
}
