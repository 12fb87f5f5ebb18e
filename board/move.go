package board

import "github.com/notnil/chess"

// CastleSide distinguishes the two castling moves.
type CastleSide int

const (
	NoCastle CastleSide = iota
	KingSide
	QueenSide
)

// Endgame is the classification of a position.
type Endgame int

const (
	Playing Endgame = iota
	Checkmate
	Stalemate
	InsufficientMaterial
)

// Move is one legal move of a position, with everything the mark matcher
// and condition evaluator look at precomputed.
type Move struct {
	From      chess.Square
	To        chess.Square
	Piece     chess.Piece
	Captured  chess.Piece // chess.NoPiece for quiet moves
	Promo     chess.PieceType
	EnPassant bool
	Castle    CastleSide
	Check     bool
	Mate      bool
	SAN       string

	inner *chess.Move
}

// IsCapture reports whether the move takes a piece, en passant included.
func (m Move) IsCapture() bool {
	return m.Captured != chess.NoPiece
}

// ResultToken is the terminal token appended to a move sequence when the
// game ends: 1-0, 0-1 or ½-½. mover is the colour that played the last move.
func ResultToken(eg Endgame, mover chess.Color) string {
	switch eg {
	case Checkmate:
		if mover == chess.White {
			return "1-0"
		}
		return "0-1"
	case Stalemate, InsufficientMaterial:
		return "½-½"
	}
	return ""
}

// LightSquare reports whether sq is a light square: file and rank index
// sum to an odd number.
func LightSquare(sq chess.Square) bool {
	return (int(sq.File())+int(sq.Rank()))%2 == 1
}

// squareAt builds the square on the given file and rank.
func squareAt(f chess.File, r chess.Rank) chess.Square {
	return chess.Square(int(r)*8 + int(f))
}

// SquareAt builds the square on the given file and rank indexes (0-7).
func SquareAt(file, rank int) chess.Square {
	return chess.Square(rank*8 + file)
}

// TypeChar returns the uppercase letter of a piece type, with bishops as B.
func TypeChar(t chess.PieceType) byte {
	switch t {
	case chess.King:
		return 'K'
	case chess.Queen:
		return 'Q'
	case chess.Rook:
		return 'R'
	case chess.Bishop:
		return 'B'
	case chess.Knight:
		return 'N'
	case chess.Pawn:
		return 'P'
	}
	return 0
}

// PieceChar encodes a piece for the capture and promotion multisets:
// uppercase for White, lowercase for Black, and bishops as L or D by the
// colour of the square they stand on (or land on, for promotions).
func PieceChar(p chess.Piece, sq chess.Square) byte {
	var ch byte
	if p.Type() == chess.Bishop {
		if LightSquare(sq) {
			ch = 'L'
		} else {
			ch = 'D'
		}
	} else {
		ch = TypeChar(p.Type())
	}
	if p.Color() == chess.Black {
		ch += 'a' - 'A'
	}
	return ch
}
