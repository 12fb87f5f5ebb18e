package steno

import (
	"strings"

	"github.com/notnil/chess"
)

// Entry is one half-move of a steno: the authored mark expression, the
// constraints the synthesiser attached to it, and its bracket conditions.
// Entries are created by Parse, annotated by Synthesise and
// ForecastExtinction, and read-only during search.
type Entry struct {
	Index          int
	Marks          string // authored atoms, e.g. "N&!x"
	MetaMarks      string // synthesised atoms, e.g. "!#!K"
	Conditions     string // authored bracket groups, e.g. "[xQ][^6|=Q]"
	MetaConditions string
	Checkpoint     bool // trailing $: snapshot after this entry
}

// Color returns the side making this half-move: White on even indexes.
func (e *Entry) Color() chess.Color {
	if e.Index%2 == 0 {
		return chess.White
	}
	return chess.Black
}

// AllMarks is the authored expression with the meta atoms appended.
func (e *Entry) AllMarks() string {
	return e.Marks + e.MetaMarks
}

// AllConditions is the authored bracket groups with the meta groups appended.
func (e *Entry) AllConditions() string {
	return e.Conditions + e.MetaConditions
}

// addMetaMark appends an atom to the meta marks unless already present.
func (e *Entry) addMetaMark(atom string) {
	if !strings.Contains(e.MetaMarks, atom) {
		e.MetaMarks += atom
	}
}

// addMetaCondition appends a bracket group unless already present.
func (e *Entry) addMetaCondition(group string) {
	if !strings.Contains(e.MetaConditions, group) {
		e.MetaConditions += group
	}
}

// Steno is a parsed puzzle: the ordered mark entries plus the resume and
// chunking directives that prefixed them.
type Steno struct {
	Vocab   Vocabulary
	Entries []*Entry

	// Resume is set by a leading $ or by a chunk directive: the solve
	// continues from a previously saved checkpoint.
	Resume bool

	// ChunkFirst..ChunkLast is the 1-based chunk range of an N[-M]*
	// directive; both zero when absent.
	ChunkFirst int
	ChunkLast  int
}

// MultiChunk reports whether a chunk directive was given.
func (st *Steno) MultiChunk() bool {
	return st.ChunkFirst > 0
}

// Last returns the index of the final entry, or -1 for an empty steno.
func (st *Steno) Last() int {
	return len(st.Entries) - 1
}
