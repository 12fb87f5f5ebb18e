package solver

import (
	"strings"

	"github.com/notnil/chess"

	"steno-solver/board"
)

// MoveSet is one path that reached a position: the SAN half-moves played,
// the multisets of pieces captured and created by promotion along the
// way, and the two most recent destination squares (for the recall mark).
type MoveSet struct {
	Moves      string // space-separated SAN, terminal result token last
	Captures   string
	Promotions string
	LastDest   int8 // destination of the most recent half-move, -1 none
	PrevDest   int8 // destination of the half-move before that
}

// Len counts the SAN tokens, the terminal result token excluded.
func (ms *MoveSet) Len() int {
	if ms.Moves == "" {
		return 0
	}
	n := strings.Count(ms.Moves, " ") + 1
	if ms.Ended() {
		n--
	}
	return n
}

// Ended reports whether the game this path plays is over.
func (ms *MoveSet) Ended() bool {
	return strings.HasSuffix(ms.Moves, "1-0") ||
		strings.HasSuffix(ms.Moves, "0-1") ||
		strings.HasSuffix(ms.Moves, "½-½")
}

// extend returns a copy of ms with one more half-move played.
func (ms *MoveSet) extend(m board.Move, result string) *MoveSet {
	next := &MoveSet{
		Moves:      ms.Moves,
		Captures:   ms.Captures,
		Promotions: ms.Promotions,
		LastDest:   int8(m.To),
		PrevDest:   ms.LastDest,
	}
	if next.Moves != "" {
		next.Moves += " "
	}
	next.Moves += m.SAN
	if result != "" {
		next.Moves += " " + result
	}
	if m.IsCapture() {
		sq := m.To
		if m.EnPassant {
			sq = board.SquareAt(int(m.To.File()), int(m.From.Rank()))
		}
		next.Captures += string(board.PieceChar(m.Captured, sq))
	}
	if m.Promo != chess.NoPieceType {
		p := promotedPiece(m)
		next.Promotions += string(board.PieceChar(p, m.To))
	}
	return next
}

// promotedPiece builds the piece the pawn turned into, coloured like the
// mover.
func promotedPiece(m board.Move) chess.Piece {
	for p := chess.WhiteKing; p <= chess.BlackPawn; p++ {
		if p.Type() == m.Promo && p.Color() == m.Piece.Color() {
			return p
		}
	}
	return chess.NoPiece
}

// Position is one live node of the frontier: the board reachable by every
// MoveSet attached to it, keyed by its four-field FEN.
type Position struct {
	Key         string
	Board       *board.Board
	CheckFuture bool // future lookahead may still prune successors
	MoveSets    []*MoveSet

	// impossible memoises a negative lookahead verdict within one mark
	// step; such an entry is never read as a position.
	impossible bool
}

// addMoveSets merges newly found paths into the position, keeping at most
// cap+1 so the host can report "at least cap" cooks.
func (p *Position) addMoveSets(sets []*MoveSet, cooks int) {
	for _, ms := range sets {
		if len(p.MoveSets) > cooks {
			return
		}
		p.MoveSets = append(p.MoveSets, ms)
	}
}

// prevDests collects each history's previous own destination square: the
// square the mover's last move landed on, two half-moves back.
func (p *Position) prevDests() []int8 {
	out := make([]int8, len(p.MoveSets))
	for i, ms := range p.MoveSets {
		out[i] = ms.PrevDest
	}
	return out
}
