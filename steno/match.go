package steno

import (
	"strings"

	"github.com/notnil/chess"

	"steno-solver/board"
)

// MarkAtom is one atom of a compiled mark expression.
type MarkAtom struct {
	Ch  byte
	Neg bool
}

// CompileMarks turns a mark expression string (authored marks plus meta
// marks) into its atom list. Atoms combine by conjunction; ! inverts the
// atom it precedes and & is an internal separator.
func CompileMarks(v Vocabulary, s string) ([]MarkAtom, error) {
	atoms := make([]MarkAtom, 0, len(s))
	neg := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '&':
		case '!':
			neg = true
		default:
			if !v.ValidMark(s[i]) {
				return nil, errAt(i, "%q is not a %s mark", string(s[i]), v)
			}
			atoms = append(atoms, MarkAtom{Ch: s[i], Neg: neg})
			neg = false
		}
	}
	return atoms, nil
}

// MoveContext is everything the matcher sees for one candidate move.
type MoveContext struct {
	Board *board.Board // position before the move
	Move  board.Move

	// PrevDests carries, per history reaching the position, the
	// destination square of the mover's previous move (-1 when none).
	// Only read when the expression contains a " mark.
	PrevDests []int8
}

// MatchResult is the matcher's verdict on one candidate move.
type MatchResult struct {
	Matched bool

	// NeedStalemate/NeedDraw request post-move verification of the
	// board's endgame type: = demands stalemate, / any forced draw.
	NeedStalemate bool
	NeedDraw      bool

	// Survivors lists the indexes into PrevDests that witness a " mark;
	// nil means every history survives.
	Survivors []int
}

// MatchMove decides whether the candidate move satisfies the expression.
// Every atom must hold with its polarity; a " atom additionally narrows
// the histories the successor position may keep.
func MatchMove(v Vocabulary, atoms []MarkAtom, ctx *MoveContext) MatchResult {
	res := MatchResult{Matched: true}
	for _, a := range atoms {
		if a.Ch == '"' && v == Extended {
			if !filterRecall(a.Neg, ctx, &res) {
				return MatchResult{}
			}
			continue
		}
		ok, needStale, needDraw := atomMatches(v, a.Ch, ctx)
		if ok == a.Neg {
			return MatchResult{}
		}
		if !a.Neg {
			res.NeedStalemate = res.NeedStalemate || needStale
			res.NeedDraw = res.NeedDraw || needDraw
		}
	}
	return res
}

// filterRecall handles the " mark: the move must start on the square this
// player last moved to, judged per history. Histories that do not witness
// the atom are dropped; the move fails when none survive.
func filterRecall(neg bool, ctx *MoveContext, res *MatchResult) bool {
	var surv []int
	from := int8(ctx.Move.From)
	for i, d := range ctx.PrevDests {
		if (d >= 0 && d == from) != neg {
			surv = append(surv, i)
		}
	}
	if len(surv) == 0 {
		return false
	}
	if len(surv) < len(ctx.PrevDests) {
		res.Survivors = intersect(res.Survivors, surv)
		if res.Survivors != nil && len(res.Survivors) == 0 {
			return false
		}
	}
	return true
}

func intersect(a, b []int) []int {
	if a == nil {
		return b
	}
	out := a[:0]
	for _, x := range a {
		for _, y := range b {
			if x == y {
				out = append(out, x)
				break
			}
		}
	}
	return out
}

// atomMatches evaluates one positive atom against the candidate move.
func atomMatches(v Vocabulary, ch byte, ctx *MoveContext) (ok, needStalemate, needDraw bool) {
	m := &ctx.Move
	switch {
	case ch >= 'a' && ch <= 'h':
		return fileMatches(v, int(ch-'a'), m), false, false
	case ch >= '1' && ch <= '8':
		return rankMatches(v, int(ch-'1'), m), false, false
	}
	switch ch {
	case 'P', 'N', 'B', 'R', 'Q', 'K', 'L':
		t := pieceTypeOf(ch)
		if m.Piece.Type() == t {
			return true, false, false
		}
		// PGN piece letters also name the promotion target, as in e8=Q.
		return v == PGN && m.Promo == t, false, false
	case 'n', 'l', 'r', 'q':
		return m.Promo == v.PromotionTarget(ch), false, false
	case 'p':
		return m.Promo != chess.NoPieceType, false, false
	case '=':
		if v == PGN {
			return m.Promo != chess.NoPieceType, false, false
		}
		return !m.Check, true, false
	case '/':
		if v == PGN {
			return !m.Check, false, true
		}
		df, dr := delta(m)
		return df == dr && df != 0, false, false
	case '\\':
		df, dr := delta(m)
		return df == -dr && df != 0, false, false
	case '|':
		return m.From.File() == m.To.File(), false, false
	case '_':
		return m.From.Rank() == m.To.Rank(), false, false
	case '<':
		return m.To.File() < m.From.File(), false, false
	case '>':
		return m.To.File() > m.From.File(), false, false
	case '^':
		return m.To.Rank() > m.From.Rank(), false, false
	case 'v':
		return m.To.Rank() < m.From.Rank(), false, false
	case 'x':
		return m.IsCapture(), false, false
	case '%':
		return m.EnPassant, false, false
	case '-':
		if v == PGN {
			return m.Castle != board.NoCastle, false, false
		}
		return !m.IsCapture(), false, false
	case 'o':
		return m.Castle == board.KingSide, false, false
	case 'O':
		if v == PGN {
			return m.Castle != board.NoCastle, false, false
		}
		return m.Castle == board.QueenSide, false, false
	case '0':
		return m.Castle != board.NoCastle, false, false
	case '+':
		return m.Check && m.Promo == chess.NoPieceType, false, false
	case '#':
		return m.Check && m.Mate && m.Promo == chess.NoPieceType, false, false
	case '~', '.':
		return true, false, false
	}
	return false, false, false
}

func delta(m *board.Move) (df, dr int) {
	return int(m.To.File()) - int(m.From.File()), int(m.To.Rank()) - int(m.From.Rank())
}

// fileMatches handles file marks: the destination file, the castle file
// aliases outside PGN, and in PGN also SAN disambiguation and the origin
// file of a pawn capture.
func fileMatches(v Vocabulary, f int, m *board.Move) bool {
	if m.Castle != board.NoCastle {
		if v == PGN {
			return false
		}
		// The king lands on g or c; To already points there.
	}
	if int(m.To.File()) == f {
		return true
	}
	if v != PGN {
		return false
	}
	if m.Piece.Type() == chess.Pawn {
		return m.IsCapture() && int(m.From.File()) == f
	}
	return strings.IndexByte(sanDisambiguation(m.SAN), byte('a'+f)) >= 0
}

// rankMatches handles rank marks: the destination rank, and in PGN also
// SAN disambiguation. PGN castling matches only through O and -.
func rankMatches(v Vocabulary, r int, m *board.Move) bool {
	if m.Castle != board.NoCastle && v == PGN {
		return false
	}
	if int(m.To.Rank()) == r {
		return true
	}
	if v != PGN {
		return false
	}
	return strings.IndexByte(sanDisambiguation(m.SAN), byte('1'+r)) >= 0
}

// sanDisambiguation extracts the disambiguation characters of a SAN piece
// move: the text between the piece letter and the destination square, with
// the capture x removed. Pawn moves and castles have none.
func sanDisambiguation(san string) string {
	if len(san) == 0 || san[0] < 'A' || san[0] > 'Z' || san[0] == 'O' {
		return ""
	}
	san = strings.TrimRight(san, "+#")
	if i := strings.IndexByte(san, '='); i >= 0 {
		san = san[:i]
	}
	if len(san) < 3 {
		return ""
	}
	mid := san[1 : len(san)-2]
	return strings.ReplaceAll(mid, "x", "")
}
