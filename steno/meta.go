package steno

import (
	"strings"

	"github.com/notnil/chess"
)

// Synthesise walks the mark entries once before search and attaches the
// constraints implied by later marks: no premature game end, pawn-advance
// schedules ahead of promotions, and the support a castling mark demands
// from every earlier half-move. Running it twice adds nothing: every
// injection is guarded by a substring test.
func Synthesise(st *Steno, standardStart bool) {
	synthGameEnd(st, standardStart)
	synthPromotions(st)
	synthCastling(st, standardStart)
}

// synthGameEnd forbids mates (and, late enough for them to exist, forced
// draws) on every half-move but the last.
func synthGameEnd(st *Steno, standardStart bool) {
	if !standardStart {
		return
	}
	last := st.Last()
	for _, e := range st.Entries {
		if e.Index < 2 || e.Index >= last {
			continue
		}
		e.addMetaMark("!#")
		if e.Index > 17 {
			e.addMetaMark("!" + string(st.Vocab.DrawMark()))
		}
	}
}

// synthPromotions schedules the pawn advance a promotion mark requires:
// four, three, two and one of the promoting colour's moves earlier, a pawn
// must already be far enough up the board, unless the piece was already
// created by an earlier promotion.
func synthPromotions(st *Steno) {
	for _, e := range st.Entries {
		atoms, err := CompileMarks(st.Vocab, e.Marks)
		if err != nil {
			continue
		}
		for _, a := range atoms {
			if a.Neg || !st.Vocab.PromotionMark(a.Ch) {
				continue
			}
			pieces := "NBRQ"
			if t := st.Vocab.PromotionTarget(a.Ch); t != chess.NoPieceType {
				pieces = string(promoChar(t))
			}
			promotionSchedule(st, e.Index, e.Color(), pieces, 0)
		}
	}
}

// promotionSchedule injects [pawn-advanced | piece-already-promoted]
// conditions on the half-moves leading up to a promotion at anchor.
func promotionSchedule(st *Steno, anchor int, c chess.Color, pieces string, minIndex int) {
	for turn := 1; turn <= 4; turn++ {
		cond := pawnAdvanceCond(c, turn, pieces)
		for _, idx := range [2]int{anchor - 2*turn, anchor - 2*turn + 1} {
			if idx < minIndex || idx >= anchor {
				continue
			}
			st.Entries[idx].addMetaCondition(cond)
		}
	}
}

// pawnAdvanceCond builds the bracket group for one turn of the schedule:
// [^7|=Q] says a white pawn is on rank 7 or higher, or a white queen has
// already been promoted.
func pawnAdvanceCond(c chess.Color, turn int, pieces string) string {
	var b strings.Builder
	b.WriteByte('[')
	if c == chess.White {
		b.WriteByte('^')
		b.WriteByte(byte('0' + 8 - turn))
	} else {
		b.WriteByte('v')
		b.WriteByte(byte('1' + turn))
	}
	for i := 0; i < len(pieces); i++ {
		b.WriteString("|=")
		ch := pieces[i]
		if c == chess.Black {
			ch = lower(ch)
		}
		b.WriteByte(ch)
	}
	b.WriteByte(']')
	return b.String()
}

func promoChar(t chess.PieceType) byte {
	switch t {
	case chess.Knight:
		return 'N'
	case chess.Bishop:
		return 'B'
	case chess.Rook:
		return 'R'
	case chess.Queen:
		return 'Q'
	}
	return 0
}

// synthCastling attaches the support a castling mark demands: the king
// has never moved, the rook is still home after every earlier half-move,
// the opponent did not just give check, and the squares between king and
// rook are clear as the castle approaches.
func synthCastling(st *Steno, standardStart bool) {
	for _, e := range st.Entries {
		atoms, err := CompileMarks(st.Vocab, e.Marks)
		if err != nil {
			continue
		}
		for _, a := range atoms {
			if a.Neg || !st.Vocab.CastleMark(a.Ch) {
				continue
			}
			side := castleSideFor(st.Vocab, a.Ch, e.Index, standardStart)
			synthOneCastle(st, e, side, standardStart)
		}
	}
}

// castleSideFor names the castling side a mark implies: 'K' for
// king-side, 'Q' for queen-side, 0 when the mark leaves it open.
func castleSideFor(v Vocabulary, ch byte, index int, standardStart bool) byte {
	switch {
	case v == PGN:
		return 'K'
	case ch == 'o':
		return 'K'
	case ch == 'O':
		return 'Q'
	case ch == '0' && standardStart && index <= 7:
		// Too early for queen-side: four of the colour's moves cannot
		// yet have cleared the queen, bishop and knight.
		return 'K'
	}
	return 0
}

func synthOneCastle(st *Steno, e *Entry, side byte, standardStart bool) {
	c := e.Color()
	var rookCond, between, bFile string
	if c == chess.White {
		if side == 'K' {
			rookCond, between = "[Rh1]", "[-f1][-g1]"
		} else if side == 'Q' {
			rookCond, between = "[Ra1]", "[-b1][-c1][-d1]"
			bFile = "[-b1|nb1|lb1]"
		}
	} else {
		if side == 'K' {
			rookCond, between = "[rh8]", "[-f8][-g8]"
		} else if side == 'Q' {
			rookCond, between = "[ra8]", "[-b8][-c8][-d8]"
			bFile = "[-b8|Nb8|Db8]"
		}
	}

	for _, prior := range st.Entries[:e.Index] {
		if prior.Color() == c {
			prior.addMetaMark("!K")
		}
		if rookCond != "" {
			prior.addMetaCondition(rookCond)
		}
	}
	if e.Index == 0 {
		return
	}
	prev := st.Entries[e.Index-1]
	prev.addMetaMark("!+")
	if between == "" {
		return
	}
	for _, g := range splitGroups(between) {
		prev.addMetaCondition(g)
	}
	if standardStart && e.Index >= 2 {
		prev2 := st.Entries[e.Index-2]
		if side == 'K' {
			for _, g := range splitGroups(between) {
				prev2.addMetaCondition(g)
			}
		} else {
			// Two half-moves out the b-square may still hold an opposing
			// bishop or knight passing through.
			if c == chess.White {
				prev2.addMetaCondition("[-c1]")
				prev2.addMetaCondition("[-d1]")
			} else {
				prev2.addMetaCondition("[-c8]")
				prev2.addMetaCondition("[-d8]")
			}
			prev2.addMetaCondition(bFile)
		}
	}
}

// splitGroups cuts a concatenation of bracket groups into its groups.
func splitGroups(s string) []string {
	var out []string
	for len(s) > 0 {
		end := strings.IndexByte(s, ']')
		if end < 0 {
			break
		}
		out = append(out, s[:end+1])
		s = s[end+1:]
	}
	return out
}

// ForecastExtinction runs after each consumed entry: when every live
// position shows a piece type of some colour to be extinct but a future
// entry still demands one, the piece must come from a promotion, and the
// promotion schedule is injected at the earliest such entry. One piece
// type is forecast per step. missing reports whether a FEN piece
// character is absent from every live position. Reports whether anything
// was injected.
func ForecastExtinction(st *Steno, afterIndex int, missing func(byte) bool) bool {
	for j := afterIndex + 1; j < len(st.Entries); j++ {
		e := st.Entries[j]
		atoms, err := CompileMarks(st.Vocab, e.Marks)
		if err != nil {
			continue
		}
		for _, a := range atoms {
			if a.Neg {
				continue
			}
			t := pieceTypeOf(a.Ch)
			switch t {
			case chess.Knight, chess.Bishop, chess.Rook, chess.Queen:
			default:
				continue
			}
			fenChar := promoChar(t)
			if e.Color() == chess.Black {
				fenChar = lower(fenChar)
			}
			if !missing(fenChar) {
				continue
			}
			target := j
			if st.Vocab != PGN {
				// The promoted piece must exist before the entry that
				// moves it; the promotion lands two half-moves earlier.
				target = j - 2
			}
			if target <= afterIndex {
				target = afterIndex + 1
			}
			cond := "[=" + string(fenChar) + "]"
			if strings.Contains(st.Entries[target].MetaConditions, "="+string(fenChar)) {
				continue
			}
			st.Entries[target].addMetaCondition(cond)
			promotionSchedule(st, target, e.Color(), string(promoChar(t)), afterIndex+1)
			return true
		}
	}
	return false
}
