package steno

import (
	"strings"
	"testing"
)

func TestSynthesiseGameEnd(t *testing.T) {
	st := mustParse(t, "~~~#", PGN)
	Synthesise(st, true)
	if !strings.Contains(st.Entries[2].MetaMarks, "!#") {
		t.Fatalf("entry 2 misses !#: %q", st.Entries[2].MetaMarks)
	}
	for _, i := range []int{0, 1, 3} {
		if strings.Contains(st.Entries[i].MetaMarks, "!#") {
			t.Fatalf("entry %d must not carry !#", i)
		}
	}

	// From a custom start the rule does not apply.
	st = mustParse(t, "~~~#", PGN)
	Synthesise(st, false)
	if st.Entries[2].MetaMarks != "" {
		t.Fatalf("custom start must not synthesise game-end marks")
	}
}

func TestSynthesiseIdempotent(t *testing.T) {
	st := mustParse(t, "~~~~~~o", Classic)
	Synthesise(st, true)
	var once [8]string
	for i, e := range st.Entries {
		once[i] = e.MetaMarks + "//" + e.MetaConditions
	}
	Synthesise(st, true)
	for i, e := range st.Entries {
		if got := e.MetaMarks + "//" + e.MetaConditions; got != once[i] {
			t.Fatalf("entry %d changed on resynthesis: %q vs %q", i, once[i], got)
		}
	}
}

func TestSynthesiseCastlingSupport(t *testing.T) {
	st := mustParse(t, "~~~~~~o", Classic)
	Synthesise(st, true)

	for _, i := range []int{0, 2, 4} {
		if !strings.Contains(st.Entries[i].MetaMarks, "!K") {
			t.Fatalf("white entry %d misses !K: %q", i, st.Entries[i].MetaMarks)
		}
	}
	if strings.Contains(st.Entries[1].MetaMarks, "!K") {
		t.Fatalf("black entries must not forbid the white king's moves")
	}
	for i := 0; i < 6; i++ {
		if !strings.Contains(st.Entries[i].MetaConditions, "[Rh1]") {
			t.Fatalf("entry %d misses the rook-home condition: %q", i, st.Entries[i].MetaConditions)
		}
	}
	if !strings.Contains(st.Entries[5].MetaMarks, "!+") {
		t.Fatalf("the opponent may not check into a castle: %q", st.Entries[5].MetaMarks)
	}
	for _, i := range []int{4, 5} {
		mc := st.Entries[i].MetaConditions
		if !strings.Contains(mc, "[-f1]") || !strings.Contains(mc, "[-g1]") {
			t.Fatalf("entry %d misses the empty-square conditions: %q", i, mc)
		}
	}
}

func TestSynthesiseQueenSideCastling(t *testing.T) {
	st := mustParse(t, "~~~~~~~~O", Classic)
	Synthesise(st, true)
	prev := st.Entries[7].MetaConditions
	for _, want := range []string{"[-b1]", "[-c1]", "[-d1]"} {
		if !strings.Contains(prev, want) {
			t.Fatalf("entry 7 misses %q: %q", want, prev)
		}
	}
	// Two half-moves out an opposing minor may still sit on b1.
	prev2 := st.Entries[6].MetaConditions
	if !strings.Contains(prev2, "[-b1|nb1|lb1]") {
		t.Fatalf("entry 6 misses the b-file allowance: %q", prev2)
	}
	if strings.Contains(prev2, "[-b1]") {
		t.Fatalf("entry 6 must not demand an empty b1 outright: %q", prev2)
	}
}

func TestSynthesisePromotionSchedule(t *testing.T) {
	st := mustParse(t, "~~~~~~~~q", Classic)
	Synthesise(st, true)
	wants := map[int]string{
		7: "[^7|=Q]",
		6: "[^7|=Q]",
		5: "[^6|=Q]",
		4: "[^6|=Q]",
		3: "[^5|=Q]",
		2: "[^5|=Q]",
		1: "[^4|=Q]",
		0: "[^4|=Q]",
	}
	for i, want := range wants {
		if !strings.Contains(st.Entries[i].MetaConditions, want) {
			t.Fatalf("entry %d misses %q: %q", i, want, st.Entries[i].MetaConditions)
		}
	}
}

func TestForecastExtinction(t *testing.T) {
	st := mustParse(t, "~~~~Q", Classic)
	missingQueen := func(ch byte) bool { return ch == 'Q' }

	if !ForecastExtinction(st, 1, missingQueen) {
		t.Fatalf("extinct queen with a future Q mark must trigger a forecast")
	}
	// Non-PGN: the promotion must land two half-moves before the mark.
	if !strings.Contains(st.Entries[2].MetaConditions, "[=Q]") {
		t.Fatalf("entry 2 misses [=Q]: %q", st.Entries[2].MetaConditions)
	}
	// Idempotent across steps.
	if ForecastExtinction(st, 1, missingQueen) {
		t.Fatalf("a second forecast of the same piece must be a no-op")
	}

	st = mustParse(t, "~~~~Q", Classic)
	if ForecastExtinction(st, 1, func(byte) bool { return false }) {
		t.Fatalf("nothing extinct, nothing to forecast")
	}
}
