/*
Package wordgraph builds, queries and stores minimal acyclic word graphs, also
known as DAWGs. A word graph is a deterministic automaton with one edge per
character that accepts exactly the words of a dictionary. Nodes accepting the
same set of suffixes are merged, so large word lists shrink to a small number
of shared nodes.

The simplest way to get a graph is Build, which sorts the words first. To
stream words that are already sorted, create a builder with New, call Add for
each word and then Finish. Words must be added in alphabetical order;
repeating the previous word is allowed and has no effect.

Nodes come in two flavors: array nodes with a fixed number of edge slots and
list nodes that grow as edges are added. The builder uses array nodes with one
slot per lowercase letter unless told otherwise with WithStorage.

A finished Graph answers Contains, Words, Enumerate, FindAllPrefixesOf and
Size. It can be written with Encode or Save and read back with Decode or Load.
The text format is described at the top of codec.go. Shared nodes are written
once and referred to by id afterwards, so a decoded graph has exactly the
same shape as the one that was written.
*/
package wordgraph
