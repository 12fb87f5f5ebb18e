// Package board wraps the chess rules library behind the surface the
// steno solver needs: FEN round-trips keyed on the first four fields,
// legal move objects carrying SAN and game-end information, and
// endgame classification with the insufficient-material rule always on.
package board

import (
	"errors"
	"fmt"
	"strings"

	"github.com/notnil/chess"
)

// StartFEN is the FEN string for the standard initial chess position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ErrGameOver reports an attempt to play a move on a finished game.
var ErrGameOver = errors.New("game already over")

// Board is one chess position. Ownership is exclusive: Apply returns a
// fresh Board and never mutates the receiver.
type Board struct {
	pos *chess.Position
}

// FromFEN parses a FEN string into a Board. A four-field position key is
// accepted; the halfmove and fullmove counters then default to 0 and 1.
func FromFEN(fen string) (*Board, error) {
	fields := strings.Fields(fen)
	switch len(fields) {
	case 4:
		fen = strings.Join(fields, " ") + " 0 1"
	case 6:
		fen = strings.Join(fields, " ")
	default:
		return nil, fmt.Errorf("invalid FEN %q: want 4 or 6 fields, have %d", fen, len(fields))
	}
	pos := &chess.Position{}
	if err := pos.UnmarshalText([]byte(fen)); err != nil {
		return nil, fmt.Errorf("invalid FEN %q: %w", fen, err)
	}
	return &Board{pos: pos}, nil
}

// FromKey rebuilds a Board from a position key and a fullmove number.
// Used when loading checkpoints, where the counters are not part of the key.
func FromKey(key string, fullmove int) (*Board, error) {
	if fullmove < 1 {
		fullmove = 1
	}
	return FromFEN(fmt.Sprintf("%s 0 %d", key, fullmove))
}

// FEN returns the full six-field FEN of the position.
func (b *Board) FEN() string {
	return b.pos.String()
}

// Key returns the position key: placement, side to move, castling and
// en-passant fields. Two positions with equal keys transpose.
func (b *Board) Key() string {
	return KeyOf(b.pos.String())
}

// KeyOf truncates a FEN string to its position key.
func KeyOf(fen string) string {
	fields := strings.Fields(fen)
	if len(fields) > 4 {
		fields = fields[:4]
	}
	return strings.Join(fields, " ")
}

// Turn returns the colour to move.
func (b *Board) Turn() chess.Color {
	return b.pos.Turn()
}

// Piece returns the piece on sq, or chess.NoPiece.
func (b *Board) Piece(sq chess.Square) chess.Piece {
	return b.pos.Board().Piece(sq)
}

// CanCastle reports whether the FEN castling field still offers the
// given side to the given colour.
func (b *Board) CanCastle(c chess.Color, side chess.Side) bool {
	return b.pos.CastleRights().CanCastle(c, side)
}

// Draw renders the position as text, rank 8 first.
func (b *Board) Draw() string {
	return b.pos.Board().Draw()
}

var sanNotation = chess.AlgebraicNotation{}

// LegalMoves enumerates the legal moves of the position in the
// generator's order, which is deterministic per position.
func (b *Board) LegalMoves() []Move {
	valid := b.pos.ValidMoves()
	moves := make([]Move, 0, len(valid))
	brd := b.pos.Board()
	for _, m := range valid {
		mv := Move{
			From:  m.S1(),
			To:    m.S2(),
			Piece: brd.Piece(m.S1()),
			Promo: m.Promo(),
			Check: m.HasTag(chess.Check),
			inner: m,
		}
		switch {
		case m.HasTag(chess.EnPassant):
			mv.EnPassant = true
			// The captured pawn sits on the destination file at the origin rank.
			mv.Captured = brd.Piece(squareAt(m.S2().File(), m.S1().Rank()))
		case m.HasTag(chess.Capture):
			mv.Captured = brd.Piece(m.S2())
		}
		if m.HasTag(chess.KingSideCastle) {
			mv.Castle = KingSide
		} else if m.HasTag(chess.QueenSideCastle) {
			mv.Castle = QueenSide
		}
		if mv.Check {
			mv.Mate = b.pos.Update(m).Status() == chess.Checkmate
		}
		mv.SAN = sanNotation.Encode(b.pos, m)
		moves = append(moves, mv)
	}
	return moves
}

// Apply plays m and returns the resulting Board. The position is first
// reloaded from its own FEN; if the fresh copy already reports a finished
// game the move is rejected with ErrGameOver. See the C1 section of
// SPEC_FULL.md.
func (b *Board) Apply(m Move) (*Board, error) {
	if m.inner == nil {
		return nil, fmt.Errorf("move %s was not generated by this board", m.SAN)
	}
	fresh, err := FromFEN(b.pos.String())
	if err != nil {
		return nil, err
	}
	if fresh.Endgame() != Playing {
		return nil, ErrGameOver
	}
	next := fresh.pos.Update(m.inner)
	if next == nil {
		return nil, fmt.Errorf("move %s rejected on %q", m.SAN, b.FEN())
	}
	return &Board{pos: next}, nil
}

// Endgame classifies the position. Insufficient material is always
// checked, matching a board service with the rule auto-enabled.
func (b *Board) Endgame() Endgame {
	switch b.pos.Status() {
	case chess.Checkmate:
		return Checkmate
	case chess.Stalemate:
		return Stalemate
	}
	if insufficientMaterial(b.pos.Board()) {
		return InsufficientMaterial
	}
	return Playing
}

// insufficientMaterial reports the dead positions the solver treats as
// drawn on the spot: bare kings, king and one minor, or bishops that all
// stand on squares of one colour.
func insufficientMaterial(brd *chess.Board) bool {
	knights := 0
	bishopsLight, bishopsDark := 0, 0
	for sq, p := range brd.SquareMap() {
		switch p.Type() {
		case chess.King:
		case chess.Knight:
			knights++
		case chess.Bishop:
			if LightSquare(sq) {
				bishopsLight++
			} else {
				bishopsDark++
			}
		default:
			return false
		}
	}
	bishops := bishopsLight + bishopsDark
	if knights+bishops <= 1 {
		return true
	}
	if knights == 0 && (bishopsLight == 0 || bishopsDark == 0) {
		return true
	}
	return false
}
