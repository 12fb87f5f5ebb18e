package steno

import (
	"testing"

	"github.com/notnil/chess"

	"steno-solver/board"
)

func mustBoard(t *testing.T, fen string) *board.Board {
	t.Helper()
	b, err := board.FromFEN(fen)
	if err != nil {
		t.Fatalf("FromFEN(%q): %v", fen, err)
	}
	return b
}

func findSAN(t *testing.T, b *board.Board, san string) board.Move {
	t.Helper()
	for _, m := range b.LegalMoves() {
		if m.SAN == san {
			return m
		}
	}
	t.Fatalf("no legal move %q on %q", san, b.FEN())
	return board.Move{}
}

func matchText(t *testing.T, v Vocabulary, marks string, b *board.Board, m board.Move) bool {
	t.Helper()
	atoms, err := CompileMarks(v, marks)
	if err != nil {
		t.Fatalf("CompileMarks(%q): %v", marks, err)
	}
	res := MatchMove(v, atoms, &MoveContext{Board: b, Move: m, PrevDests: []int8{-1}})
	return res.Matched
}

func TestMatchFileAndRank(t *testing.T) {
	b := mustBoard(t, board.StartFEN)
	e4 := findSAN(t, b, "e4")
	for marks, want := range map[string]bool{
		"e": true, "a": false, "4": true, "3": false,
		"P": true, "N": false, "~": true, "x": false,
		"!x": true, "!e": false, "e&4": true, "4&e": true, "e&!x": true,
	} {
		if got := matchText(t, Classic, marks, b, e4); got != want {
			t.Fatalf("%q vs e4: got %v want %v", marks, got, want)
		}
	}
}

func TestMatchPolarityLaw(t *testing.T) {
	b := mustBoard(t, board.StartFEN)
	for _, m := range b.LegalMoves() {
		for _, mark := range []string{"e", "N", "x", "|", "^"} {
			pos := matchText(t, Extended, mark, b, m)
			neg := matchText(t, Extended, "!"+mark, b, m)
			if pos == neg {
				t.Fatalf("polarity broken for %q on %s", mark, m.SAN)
			}
		}
	}
}

func TestMatchDirections(t *testing.T) {
	b := mustBoard(t, board.StartFEN)
	e4 := findSAN(t, b, "e4")
	nf3 := findSAN(t, b, "Nf3")
	cases := []struct {
		marks string
		m     board.Move
		want  bool
	}{
		{"|", e4, true},
		{"_", e4, false},
		{"^", e4, true},
		{"v", e4, false},
		{"|", nf3, false},
		{">", nf3, false}, // g1-f3 moves toward the a-file
		{"-", e4, true}, // non-capture
	}
	for _, c := range cases {
		if got := matchText(t, Extended, c.marks, b, c.m); got != c.want {
			t.Fatalf("%q vs %s: got %v want %v", c.marks, c.m.SAN, got, c.want)
		}
	}
}

func TestMatchCastling(t *testing.T) {
	b := mustBoard(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	oo := findSAN(t, b, "O-O")
	ooo := findSAN(t, b, "O-O-O")
	cases := []struct {
		v     Vocabulary
		marks string
		m     board.Move
		want  bool
	}{
		{Classic, "o", oo, true},
		{Classic, "o", ooo, false},
		{Classic, "O", ooo, true},
		{Classic, "O", oo, false},
		{Classic, "g", oo, true}, // the king lands on g1
		{Extended, "0", oo, true},
		{Extended, "0", ooo, true},
		{PGN, "O", oo, true},
		{PGN, "O", ooo, true},
		{PGN, "-", oo, true},
		{PGN, "g", oo, false}, // PGN castling matches only through O and -
		{PGN, "1", oo, false},
	}
	for _, c := range cases {
		if got := matchText(t, c.v, c.marks, b, c.m); got != c.want {
			t.Fatalf("%s %q vs %s: got %v want %v", c.v, c.marks, c.m.SAN, got, c.want)
		}
	}
}

func TestMatchPGNDisambiguation(t *testing.T) {
	b := mustBoard(t, "k7/8/8/8/8/8/8/N1N4K w - - 0 1")
	nab3 := findSAN(t, b, "Nab3")
	if !matchText(t, PGN, "a", b, nab3) {
		t.Fatalf("PGN a must match the disambiguation file of Nab3")
	}
	if !matchText(t, PGN, "b", b, nab3) {
		t.Fatalf("PGN b must match the destination file of Nab3")
	}
	if matchText(t, Classic, "a", b, nab3) {
		t.Fatalf("Classic a must not match Nab3")
	}
}

func TestMatchPGNPawnCaptureFile(t *testing.T) {
	b := mustBoard(t, "k7/8/8/3p4/4P3/8/8/K7 w - - 0 1")
	exd5 := findSAN(t, b, "exd5")
	if !matchText(t, PGN, "e", b, exd5) {
		t.Fatalf("PGN e must match the origin file of exd5")
	}
	if !matchText(t, PGN, "d", b, exd5) {
		t.Fatalf("PGN d must match the destination file of exd5")
	}
	if matchText(t, Classic, "e", b, exd5) {
		t.Fatalf("Classic e must not match exd5")
	}
	if !matchText(t, Classic, "x", b, exd5) {
		t.Fatalf("x must match exd5")
	}
}

func TestMatchPromotion(t *testing.T) {
	b := mustBoard(t, "k7/7P/8/8/8/8/8/K7 w - - 0 1")
	promo := findSAN(t, b, "h8=Q+")
	cases := []struct {
		v     Vocabulary
		marks string
		want  bool
	}{
		{Classic, "q", true},
		{Classic, "r", false},
		{Extended, "p", true},
		{PGN, "=", true},
		{PGN, "Q", true}, // PGN piece letters match the promotion target
		{Classic, "+", false}, // check by promotion is not a + mark
		{PGN, "h", true},
		{PGN, "8", true},
	}
	for _, c := range cases {
		if got := matchText(t, c.v, c.marks, b, promo); got != c.want {
			t.Fatalf("%s %q vs h8=Q+: got %v want %v", c.v, c.marks, got, c.want)
		}
	}
}

func TestMatchRecallMark(t *testing.T) {
	b := mustBoard(t, "k7/8/8/8/4N3/8/8/K7 w - - 0 1")
	m := findSAN(t, b, "Nc5")
	atoms, err := CompileMarks(Extended, `"`)
	if err != nil {
		t.Fatalf("CompileMarks: %v", err)
	}
	res := MatchMove(Extended, atoms, &MoveContext{
		Board:     b,
		Move:      m,
		PrevDests: []int8{int8(chess.E4), -1},
	})
	if !res.Matched {
		t.Fatalf("recall mark must match a move from the previous destination")
	}
	if len(res.Survivors) != 1 || res.Survivors[0] != 0 {
		t.Fatalf("survivors: got %v want [0]", res.Survivors)
	}

	res = MatchMove(Extended, atoms, &MoveContext{
		Board:     b,
		Move:      m,
		PrevDests: []int8{-1},
	})
	if res.Matched {
		t.Fatalf("recall mark must fail with no witnessing history")
	}
}
