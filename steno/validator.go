package steno

import "github.com/notnil/chess"

// Validate screens a parsed steno for static impossibilities before any
// search runs. Only authored marks are inspected; negated atoms demand
// nothing and are not counted. The mate, castling and forced-draw
// minimums additionally assume the standard starting position.
func Validate(st *Steno, standardStart bool) error {
	v := st.Vocab
	last := st.Last()

	type tally struct {
		castles, promotions, enPassants, captures int
	}
	var counts [2]tally

	for _, e := range st.Entries {
		atoms, err := CompileMarks(v, e.Marks)
		if err != nil {
			return err
		}
		side := 0
		if e.Color() == chess.Black {
			side = 1
		}
		for _, a := range atoms {
			if a.Neg {
				continue
			}
			ch := a.Ch
			if v.EndgameMark(ch) && e.Index < last {
				return errAt(-1, "endgame mark %q before the last entry", string(ch))
			}
			if v.CastleMark(ch) {
				counts[side].castles++
				if counts[side].castles > 1 {
					return errAt(-1, "more than one castling mark for %s", e.Color().Name())
				}
			}
			if v.PromotionMark(ch) {
				counts[side].promotions++
				if counts[side].promotions > 8 {
					return errAt(-1, "more than 8 promotions for %s", e.Color().Name())
				}
			}
			if ch == '%' {
				counts[side].enPassants++
				if counts[side].enPassants > 8 {
					return errAt(-1, "more than 8 en-passant marks for %s", e.Color().Name())
				}
			}
			if v.CaptureMark(ch) {
				counts[side].captures++
				if counts[side].captures > 15 {
					return errAt(-1, "more than 15 captures for %s", e.Color().Name())
				}
			}
			if err := validateEarly(v, e, ch); err != nil {
				return err
			}
			if standardStart {
				if err := validateEarlyStandard(v, e, ch); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// validateEarly rejects marks that come too early in the game,
// regardless of the starting position.
func validateEarly(v Vocabulary, e *Entry, ch byte) error {
	i := e.Index
	if ch == '%' && i < 4 {
		return errAt(-1, "en passant is impossible in the first four half-moves")
	}
	if v.PromotionMark(ch) && i < 8 {
		return errAt(-1, "promotion is impossible in the first eight half-moves")
	}
	if i < 2 {
		if v.CaptureMark(ch) || v.CheckMark(ch) {
			return errAt(-1, "capture or check is impossible in the first two half-moves")
		}
		switch ch {
		case '_', '/', '\\', '"':
			if v == Extended {
				return errAt(-1, "direction mark %q is impossible in the first two half-moves", string(ch))
			}
		case 'v':
			if v == Extended && e.Color() == chess.White {
				return errAt(-1, "White cannot move toward its own base on the first half-move")
			}
		case '^':
			if v == Extended && e.Color() == chess.Black {
				return errAt(-1, "Black cannot move toward its own base on the first half-move")
			}
		}
	}
	return nil
}

// validateEarlyStandard rejects marks that come too early for a game from
// the standard starting position specifically.
func validateEarlyStandard(v Vocabulary, e *Entry, ch byte) error {
	i := e.Index
	if ch == '#' && i < 3 {
		return errAt(-1, "mate is impossible before Black's second move")
	}
	if v.CastleMark(ch) {
		// Queen-side castling needs four of the colour's moves first;
		// king-side (and marks that may mean it) only three.
		earliest := 8
		if v == PGN || ch == 'o' || ch == '0' {
			earliest = 6
		}
		if i < earliest {
			return errAt(-1, "castling mark %q is impossible before half-move %d", string(ch), earliest+1)
		}
	}
	if ch == v.DrawMark() && i < 17 {
		return errAt(-1, "a forced draw is impossible before Black's ninth move")
	}
	return nil
}
