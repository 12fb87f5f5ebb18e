package solver

import (
	"math/bits"
	"strings"

	"github.com/dylhunn/dragontoothmg"
	"github.com/notnil/chess"

	"steno-solver/steno"
)

// futureNeeds summarises what the remaining mark entries still demand of
// a position, per colour. It drives the cheap per-position lookahead and
// the check_future inheritance.
type futureNeeds struct {
	castleKing  [2]bool
	castleQueen [2]bool
	castleAny   [2]bool
	pawn        [2]bool
}

func sideIndex(c chess.Color) int {
	if c == chess.Black {
		return 1
	}
	return 0
}

// computeFutureNeeds scans the entries not yet consumed. Marks beyond
// castling and pawn demands are left for the full matcher; the probe only
// covers what a FEN shows directly.
func computeFutureNeeds(st *steno.Steno, from int) *futureNeeds {
	n := &futureNeeds{}
	for _, e := range st.Entries[from:] {
		atoms, err := steno.CompileMarks(st.Vocab, e.AllMarks())
		if err != nil {
			continue
		}
		side := sideIndex(e.Color())
		for _, a := range atoms {
			if a.Neg {
				continue
			}
			if st.Vocab.CastleMark(a.Ch) {
				switch a.Ch {
				case 'o':
					n.castleKing[side] = true
				case 'O':
					if st.Vocab == steno.PGN {
						n.castleAny[side] = true
					} else {
						n.castleQueen[side] = true
					}
				default: // 0 or -
					n.castleAny[side] = true
				}
			}
			if st.Vocab.PawnMark(a.Ch) {
				n.pawn[side] = true
			}
		}
	}
	return n
}

// any reports whether the probe can still prune anything; positions keep
// check_future only while it can.
func (n *futureNeeds) any() bool {
	for side := 0; side < 2; side++ {
		if n.castleKing[side] || n.castleQueen[side] || n.castleAny[side] || n.pawn[side] {
			return true
		}
	}
	return false
}

// fenCouldSolve is the cheap per-position probe: a position whose FEN no
// longer offers a demanded castling right, or has no pawns left for a
// colour that must still move one, can never satisfy the remaining marks.
// Every other future check conservatively passes.
func fenCouldSolve(key string, n *futureNeeds) bool {
	fields := strings.Fields(key)
	if len(fields) < 4 {
		return true
	}
	castling := fields[2]
	if n.castleKing[0] && !strings.ContainsRune(castling, 'K') {
		return false
	}
	if n.castleQueen[0] && !strings.ContainsRune(castling, 'Q') {
		return false
	}
	if n.castleAny[0] && !strings.ContainsAny(castling, "KQ") {
		return false
	}
	if n.castleKing[1] && !strings.ContainsRune(castling, 'k') {
		return false
	}
	if n.castleQueen[1] && !strings.ContainsRune(castling, 'q') {
		return false
	}
	if n.castleAny[1] && !strings.ContainsAny(castling, "kq") {
		return false
	}
	if n.pawn[0] || n.pawn[1] {
		bb := dragontoothmg.ParseFen(key + " 0 1")
		if n.pawn[0] && bits.OnesCount64(bb.White.Pawns) == 0 {
			return false
		}
		if n.pawn[1] && bits.OnesCount64(bb.Black.Pawns) == 0 {
			return false
		}
	}
	return true
}
