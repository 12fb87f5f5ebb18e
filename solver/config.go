package solver

import (
	"fmt"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"steno-solver/board"
	"steno-solver/steno"
)

// LimitMax is the upper bound of the position and cook limits, and the
// value of the MAX sentinel.
const LimitMax = 2_000_000_000

// Config carries everything a solve is parameterised by.
type Config struct {
	Vocab            steno.Vocabulary
	MaxPositions     int  // frontier hard cap per mark
	MaxCooks         int  // MoveSets kept per position, plus one
	MaxTasks         int  // parallel workers
	MaxSolutions     int  // 0, or >1 solutions listed at the end
	DisplayPositions bool // render boards when listing solutions
	ShowMetaMarks    bool // verbose per-entry progress reports
	AllowChunking    bool
	StartFEN         string // normalised full FEN; board.StartFEN by default
	OutputFile       string
}

// DefaultConfig returns the solver defaults: Classic vocabulary, generous
// limits, one worker per CPU.
func DefaultConfig() Config {
	return Config{
		Vocab:         steno.Classic,
		MaxPositions:  LimitMax,
		MaxCooks:      8,
		MaxTasks:      runtime.NumCPU(),
		MaxSolutions:  8,
		AllowChunking: true,
		StartFEN:      board.StartFEN,
	}
}

// Validate checks the numeric ranges of the configuration.
func (c *Config) Validate() error {
	if c.MaxPositions < 1 || c.MaxPositions > LimitMax {
		return fmt.Errorf("%w: max positions %d", ErrInvalidLimit, c.MaxPositions)
	}
	if c.MaxCooks < 1 || c.MaxCooks > LimitMax {
		return fmt.Errorf("%w: max cooks %d", ErrInvalidLimit, c.MaxCooks)
	}
	if c.MaxTasks < 1 {
		return fmt.Errorf("%w: max tasks %d", ErrInvalidLimit, c.MaxTasks)
	}
	if c.MaxSolutions == 1 || c.MaxSolutions < 0 {
		return fmt.Errorf("%w: max solutions must be 0 or above 1", ErrInvalidLimit)
	}
	return nil
}

// StandardStart reports whether the solve runs from the standard
// starting position.
func (c *Config) StandardStart() bool {
	return c.StartFEN == board.StartFEN
}

// ParseLimit reads a decimal with an optional K, M or B suffix, or the
// MAX sentinel. The accepted range is 1..2,000,000,000.
func ParseLimit(s string) (int, error) {
	t := strings.ToUpper(strings.TrimSpace(s))
	if t == "MAX" {
		return LimitMax, nil
	}
	mult := 1
	switch {
	case strings.HasSuffix(t, "K"):
		mult, t = 1_000, t[:len(t)-1]
	case strings.HasSuffix(t, "M"):
		mult, t = 1_000_000, t[:len(t)-1]
	case strings.HasSuffix(t, "B"):
		mult, t = 1_000_000_000, t[:len(t)-1]
	}
	n, err := strconv.Atoi(t)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLimit, s)
	}
	n *= mult
	if n < 1 || n > LimitMax {
		return 0, fmt.Errorf("%w: %d out of range", ErrInvalidLimit, n)
	}
	return n, nil
}

// SetStartFEN normalises a start-position value: empty for the standard
// start, eight piece letters for a Chess960 back rank, or the first three
// to six fields of a FEN with the missing fields defaulted.
func (c *Config) SetStartFEN(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		c.StartFEN = board.StartFEN
		return nil
	}
	if len(s) == 8 && strings.IndexByte(s, '/') < 0 && strings.IndexByte(s, ' ') < 0 {
		fen, err := chess960FEN(strings.ToUpper(s))
		if err != nil {
			return err
		}
		c.StartFEN = fen
		return nil
	}
	fields := strings.Fields(s)
	if len(fields) < 3 || len(fields) > 6 {
		return fmt.Errorf("%w: want 3 to 6 FEN fields, have %d", ErrInvalidFen, len(fields))
	}
	// Default only the trailing fields that are actually missing:
	// en passant, halfmove clock, fullmove number.
	fields = append(fields, []string{"-", "0", "1"}[len(fields)-3:]...)
	fen := strings.Join(fields, " ")
	if _, err := board.FromFEN(fen); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFen, err)
	}
	c.StartFEN = fen
	return nil
}

// chess960FEN expands a back-rank layout into a starting FEN. Only the
// BBKNNQRR piece multiset is accepted. Castling rights are granted only
// when the layout puts the king and rooks on their standard squares;
// other layouts start without castling.
func chess960FEN(layout string) (string, error) {
	sorted := []byte(layout)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	if string(sorted) != "BBKNNQRR" {
		return "", fmt.Errorf("%w: back rank %q is not a BBKNNQRR arrangement", ErrInvalidFen, layout)
	}
	castling := "-"
	if layout[4] == 'K' && layout[0] == 'R' && layout[7] == 'R' {
		castling = "KQkq"
	}
	return fmt.Sprintf("%s/pppppppp/8/8/8/8/PPPPPPPP/%s w %s - 0 1",
		strings.ToLower(layout), layout, castling), nil
}
