// Package steno implements the mark language of Steno-Chess puzzles:
// tokenising a steno string into mark entries, screening it for static
// impossibilities, synthesising the constraints implied by future marks,
// and matching candidate moves and bracketed conditions during search.
package steno

import (
	"fmt"
	"strings"

	"github.com/notnil/chess"
)

// Vocabulary selects which marks exist and what each means.
type Vocabulary int

const (
	Classic Vocabulary = iota
	Extended
	PGN
)

func (v Vocabulary) String() string {
	switch v {
	case Classic:
		return "Classic"
	case Extended:
		return "Extended"
	case PGN:
		return "PGN"
	}
	return fmt.Sprintf("Vocabulary(%d)", int(v))
}

// ParseVocabulary accepts a dialect name or its single-letter shorthand.
func ParseVocabulary(s string) (Vocabulary, error) {
	switch strings.ToLower(s) {
	case "classic", "c":
		return Classic, nil
	case "extended", "e":
		return Extended, nil
	case "pgn", "p":
		return PGN, nil
	}
	return Classic, fmt.Errorf("invalid vocabulary %q: want Classic, Extended or PGN", s)
}

const (
	classicMarks  = "abcdefgh12345678PNLRQKnlrqx%oO+=#~"
	extendedMarks = classicMarks + `B|_/\<>^v"-0p`
	pgnMarks      = "abcdefgh12345678PNBRQKx+#=O-/~."
)

// ValidMark reports whether ch is a mark of the dialect.
func (v Vocabulary) ValidMark(ch byte) bool {
	switch v {
	case Classic:
		return strings.IndexByte(classicMarks, ch) >= 0
	case Extended:
		return strings.IndexByte(extendedMarks, ch) >= 0
	default:
		return strings.IndexByte(pgnMarks, ch) >= 0
	}
}

// CastleMark reports whether ch demands a castling move.
func (v Vocabulary) CastleMark(ch byte) bool {
	switch v {
	case Classic:
		return ch == 'o' || ch == 'O'
	case Extended:
		return ch == 'o' || ch == 'O' || ch == '0'
	default:
		return ch == 'O' || ch == '-'
	}
}

// PromotionMark reports whether ch demands a promotion.
func (v Vocabulary) PromotionMark(ch byte) bool {
	switch v {
	case Classic:
		return ch == 'n' || ch == 'l' || ch == 'r' || ch == 'q'
	case Extended:
		return ch == 'n' || ch == 'l' || ch == 'r' || ch == 'q' || ch == 'p'
	default:
		return ch == '='
	}
}

// PromotionTarget returns the promoted-to piece type a promotion mark
// names, or chess.NoPieceType when the mark leaves it open.
func (v Vocabulary) PromotionTarget(ch byte) chess.PieceType {
	if v == PGN {
		return chess.NoPieceType
	}
	switch ch {
	case 'n':
		return chess.Knight
	case 'l':
		return chess.Bishop
	case 'r':
		return chess.Rook
	case 'q':
		return chess.Queen
	}
	return chess.NoPieceType
}

// PawnMark reports whether ch can only be satisfied by a pawn move.
func (v Vocabulary) PawnMark(ch byte) bool {
	if ch == 'P' || ch == '%' {
		return true
	}
	return v.PromotionMark(ch)
}

// CaptureMark reports whether ch demands a capture.
func (v Vocabulary) CaptureMark(ch byte) bool {
	return ch == 'x' || ch == '%'
}

// CheckMark reports whether ch demands a check.
func (v Vocabulary) CheckMark(ch byte) bool {
	return ch == '+' || ch == '#'
}

// DrawMark returns the dialect's forced-draw mark.
func (v Vocabulary) DrawMark() byte {
	if v == PGN {
		return '/'
	}
	return '='
}

// EndgameMark reports whether ch ends the game: mate or a forced draw.
func (v Vocabulary) EndgameMark(ch byte) bool {
	return ch == '#' || ch == v.DrawMark()
}

// DirectionMark reports whether ch constrains the move's geometry.
// Only the Extended dialect has direction marks.
func (v Vocabulary) DirectionMark(ch byte) bool {
	if v != Extended {
		return false
	}
	return strings.IndexByte(`|_/\<>^v"`, ch) >= 0
}

// pieceTypeOf maps an uppercase piece mark to its type. L is the Classic
// bishop letter; B exists in Extended and PGN.
func pieceTypeOf(ch byte) chess.PieceType {
	switch ch {
	case 'P':
		return chess.Pawn
	case 'N':
		return chess.Knight
	case 'B', 'L':
		return chess.Bishop
	case 'R':
		return chess.Rook
	case 'Q':
		return chess.Queen
	case 'K':
		return chess.King
	}
	return chess.NoPieceType
}
