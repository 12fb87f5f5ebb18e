package solver

import (
	"errors"
	"strings"
	"testing"

	"steno-solver/board"
	"steno-solver/steno"
)

func TestParseLimit(t *testing.T) {
	cases := []struct {
		in   string
		want int
		err  bool
	}{
		{"1", 1, false},
		{"5K", 5_000, false},
		{"12M", 12_000_000, false},
		{"2B", 2_000_000_000, false},
		{"MAX", LimitMax, false},
		{"max", LimitMax, false},
		{"0", 0, true},
		{"3B", 0, true},
		{"-5", 0, true},
		{"pony", 0, true},
	}
	for _, c := range cases {
		got, err := ParseLimit(c.in)
		if c.err {
			if !errors.Is(err, ErrInvalidLimit) {
				t.Fatalf("ParseLimit(%q): got %v, want ErrInvalidLimit", c.in, err)
			}
			continue
		}
		if err != nil || got != c.want {
			t.Fatalf("ParseLimit(%q): got %d, %v; want %d", c.in, got, err, c.want)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	cfg.MaxSolutions = 1
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidLimit) {
		t.Fatalf("max solutions 1 must be rejected, got %v", err)
	}
	cfg.MaxSolutions = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("max solutions 0 is fine: %v", err)
	}
}

func TestSetStartFEN(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.SetStartFEN(""); err != nil || cfg.StartFEN != board.StartFEN {
		t.Fatalf("empty start: %q, %v", cfg.StartFEN, err)
	}
	if !cfg.StandardStart() {
		t.Fatalf("empty start must be standard")
	}

	if err := cfg.SetStartFEN("k7/8/8/8/8/8/8/K7 w -"); err != nil {
		t.Fatalf("three-field FEN: %v", err)
	}
	if !strings.HasSuffix(cfg.StartFEN, " w - - 0 1") {
		t.Fatalf("defaults not applied: %q", cfg.StartFEN)
	}
	if cfg.StandardStart() {
		t.Fatalf("custom start must not be standard")
	}

	// Fields already present stay; only the missing tail is defaulted.
	if err := cfg.SetStartFEN("k7/8/8/3pP3/8/8/8/K7 w - d6"); err != nil {
		t.Fatalf("four-field FEN: %v", err)
	}
	if !strings.HasSuffix(cfg.StartFEN, " w - d6 0 1") {
		t.Fatalf("four-field defaults wrong: %q", cfg.StartFEN)
	}

	if err := cfg.SetStartFEN("k7/8/8/8/8/8/8/K7 w - - 13"); err != nil {
		t.Fatalf("five-field FEN: %v", err)
	}
	if !strings.HasSuffix(cfg.StartFEN, " w - - 13 1") {
		t.Fatalf("five-field defaults wrong: %q", cfg.StartFEN)
	}

	if err := cfg.SetStartFEN("k7/8/8/8/8/8/8/K7 w - - 13 5"); err != nil {
		t.Fatalf("six-field FEN: %v", err)
	}
	if !strings.HasSuffix(cfg.StartFEN, " w - - 13 5") {
		t.Fatalf("six-field FEN altered: %q", cfg.StartFEN)
	}

	if err := cfg.SetStartFEN("only two"); !errors.Is(err, ErrInvalidFen) {
		t.Fatalf("two fields must fail, got %v", err)
	}
}

func TestSetStartFENChess960(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.SetStartFEN("RNBQKBNR"); err != nil {
		t.Fatalf("standard layout: %v", err)
	}
	if cfg.StartFEN != board.StartFEN {
		t.Fatalf("RNBQKBNR must rebuild the standard start, got %q", cfg.StartFEN)
	}

	if err := cfg.SetStartFEN("BBNNRKQR"); err != nil {
		t.Fatalf("960 layout: %v", err)
	}
	if !strings.Contains(cfg.StartFEN, "bbnnrkqr/pppppppp") || !strings.Contains(cfg.StartFEN, " w - -") {
		t.Fatalf("960 FEN wrong: %q", cfg.StartFEN)
	}
	if _, err := board.FromFEN(cfg.StartFEN); err != nil {
		t.Fatalf("960 FEN unparseable: %v", err)
	}

	if err := cfg.SetStartFEN("RNBQKBNQ"); !errors.Is(err, ErrInvalidFen) {
		t.Fatalf("two queens must fail, got %v", err)
	}
	if err := cfg.SetStartFEN("steno/vocabulary"); err == nil {
		t.Fatalf("junk start must fail")
	}
}

func TestVocabularyShorthand(t *testing.T) {
	for in, want := range map[string]steno.Vocabulary{
		"C": steno.Classic, "e": steno.Extended, "PGN": steno.PGN,
	} {
		got, err := steno.ParseVocabulary(in)
		if err != nil || got != want {
			t.Fatalf("ParseVocabulary(%q): got %v, %v", in, got, err)
		}
	}
	if _, err := steno.ParseVocabulary("klingon"); err == nil {
		t.Fatalf("unknown vocabulary must fail")
	}
}
