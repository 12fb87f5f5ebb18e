// Package solver drives the breadth-first search over chess positions
// that a steno describes: for each successive mark every live position is
// expanded by every legal move matching the mark and its conditions,
// successors are deduplicated by position key, pruned by lookahead, and
// the generating move sequences are kept as cooks.
package solver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"steno-solver/board"
	"steno-solver/steno"
)

// Solver owns the configuration and the checkpoint state across solves.
type Solver struct {
	cfg Config
	rep Reporter

	loadedFrontier map[string]*Position
	loadedPrefix   []*steno.Entry
	checkpoint     []byte
}

// Result is the outcome of a solve: the final frontier and the counters
// the host reports from.
type Result struct {
	Frontier map[string]*Position
	Examined int64
	Aborted  bool
}

// New builds a Solver. A nil reporter drops all messages.
func New(cfg Config, rep Reporter) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rep == nil {
		rep = nopReporter{}
	}
	return &Solver{cfg: cfg, rep: rep}, nil
}

// Checkpoint returns the snapshot taken at the last $ entry, nil if none.
func (s *Solver) Checkpoint() []byte {
	return s.checkpoint
}

// LoadCheckpoint restores a frontier and its consumed mark prefix for a
// subsequent resumed or chunked solve.
func (s *Solver) LoadCheckpoint(blob []byte) error {
	frontier, prefix, err := DecodeCheckpoint(blob)
	if err != nil {
		return err
	}
	s.loadedFrontier, s.loadedPrefix = frontier, prefix
	return nil
}

// Solve parses, screens and runs a steno to its final frontier. Parser
// and validator failures surface as Error messages and leave any loaded
// frontier untouched; cancellation and the position cap surface as Abort.
func (s *Solver) Solve(ctx context.Context, text string) (*Result, error) {
	st, err := steno.Parse(text, s.cfg.Vocab, s.cfg.AllowChunking)
	if err != nil {
		s.rep.Report(Message{Kind: Error, Text: err.Error()})
		return nil, err
	}

	var frontier map[string]*Position
	start := 0
	if st.Resume {
		if s.loadedFrontier == nil {
			s.rep.Report(Message{Kind: Error, Text: ErrNoCheckpoint.Error()})
			return nil, ErrNoCheckpoint
		}
		st = s.resumedSteno(st)
		start = len(s.loadedPrefix)
		frontier = make(map[string]*Position, len(s.loadedFrontier))
		for k, p := range s.loadedFrontier {
			frontier[k] = p
		}
	} else {
		b, err := board.FromFEN(s.cfg.StartFEN)
		if err != nil {
			s.rep.Report(Message{Kind: Error, Text: err.Error()})
			return nil, fmt.Errorf("%w: %v", ErrInvalidFen, err)
		}
		frontier = map[string]*Position{b.Key(): {
			Key:         b.Key(),
			Board:       b,
			CheckFuture: true,
			MoveSets:    []*MoveSet{{LastDest: -1, PrevDest: -1}},
		}}
	}

	if err := steno.Validate(st, s.cfg.StandardStart()); err != nil {
		s.rep.Report(Message{Kind: Error, Text: err.Error()})
		return nil, err
	}
	steno.Synthesise(st, s.cfg.StandardStart())

	if st.MultiChunk() {
		return s.solveChunks(ctx, st, frontier, start)
	}
	return s.run(ctx, st, frontier, start)
}

// resumedSteno stitches the loaded mark prefix in front of the freshly
// parsed entries and renumbers them.
func (s *Solver) resumedSteno(st *steno.Steno) *steno.Steno {
	entries := make([]*steno.Entry, 0, len(s.loadedPrefix)+len(st.Entries))
	for _, e := range s.loadedPrefix {
		entries = append(entries, e)
	}
	for _, e := range st.Entries {
		e.Index = len(entries)
		entries = append(entries, e)
	}
	return &steno.Steno{
		Vocab:      st.Vocab,
		Entries:    entries,
		Resume:     st.Resume,
		ChunkFirst: st.ChunkFirst,
		ChunkLast:  st.ChunkLast,
	}
}

// run consumes entries start..last sequentially, each one expanding the
// whole frontier in parallel.
func (s *Solver) run(ctx context.Context, st *steno.Steno, frontier map[string]*Position, start int) (*Result, error) {
	res := &Result{}
	for i := start; i < len(st.Entries); i++ {
		e := st.Entries[i]
		if s.cfg.ShowMetaMarks {
			s.rep.Report(Message{
				Kind: Status,
				Text: fmt.Sprintf("entry %d: marks %q meta %q conditions %q meta %q",
					i, e.Marks, e.MetaMarks, e.Conditions, e.MetaConditions),
				Positions: len(frontier),
			})
		}

		next, examined, err := s.step(ctx, st, frontier, i)
		res.Examined += examined
		if err != nil {
			res.Aborted = true
			res.Frontier = frontier
			switch {
			case errors.Is(err, ErrPositionLimit):
				s.rep.Report(Message{Kind: Abort, Text: err.Error(), Positions: s.cfg.MaxPositions})
			default:
				s.rep.Report(Message{Kind: Abort, Text: ErrAborted.Error()})
			}
			return res, err
		}
		frontier = next

		if len(frontier) == 0 {
			res.Frontier = frontier
			s.rep.Report(Message{Kind: Success, Text: "no position matches the steno", Positions: 0})
			return res, nil
		}
		if e.Checkpoint {
			blob, err := EncodeCheckpoint(frontier, st.Entries[:i+1])
			if err != nil {
				s.rep.Report(Message{Kind: Error, Text: err.Error()})
				return nil, err
			}
			s.checkpoint = blob
			s.rep.Report(Message{
				Kind:      Status,
				Text:      fmt.Sprintf("checkpoint saved after entry %d", i),
				Positions: len(frontier),
			})
		}
		s.forecast(st, i, frontier)
	}
	res.Frontier = frontier
	s.rep.Report(Message{
		Kind:      Success,
		Text:      fmt.Sprintf("%d position(s) match", len(frontier)),
		Positions: len(frontier),
	})
	return res, nil
}

// nextFrontier is the one structure workers share; the mutex guards the
// map and the insertion counter.
type nextFrontier struct {
	mu       sync.Mutex
	m        map[string]*Position
	inserted int64
}

// step expands every position of the frontier by entry i.
func (s *Solver) step(ctx context.Context, st *steno.Steno, frontier map[string]*Position, i int) (map[string]*Position, int64, error) {
	entry := st.Entries[i]
	atoms, err := steno.CompileMarks(st.Vocab, entry.AllMarks())
	if err != nil {
		return nil, 0, err
	}
	groups, err := steno.CompileConditions(entry.AllConditions())
	if err != nil {
		return nil, 0, err
	}
	needs := computeFutureNeeds(st, i+1)
	inheritCheck := needs.any()

	positions := make([]*Position, 0, len(frontier))
	for _, p := range frontier {
		positions = append(positions, p)
	}
	var examined atomic.Int64
	interval := int64(len(positions) / 1000)
	if interval < 1 {
		interval = 1
	}

	nf := &nextFrontier{m: make(map[string]*Position)}
	workers := s.cfg.MaxTasks
	if workers > len(positions) {
		workers = len(positions)
	}
	if workers < 1 {
		workers = 1
	}
	chunk := (len(positions) + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		lo := w * chunk
		if lo >= len(positions) {
			break
		}
		hi := lo + chunk
		if hi > len(positions) {
			hi = len(positions)
		}
		slice := positions[lo:hi]
		g.Go(func() error {
			for _, p := range slice {
				if gctx.Err() != nil {
					return ErrAborted
				}
				n := examined.Add(1)
				if n%interval == 0 {
					s.rep.Report(Message{
						Kind:      InProgress,
						Text:      fmt.Sprintf("entry %d: %d/%d positions examined", i, n, len(positions)),
						Positions: int(n),
					})
				}
				if err := s.expand(gctx, st, nf, p, atoms, groups, needs, inheritCheck, i); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) {
			err = ErrAborted
		}
		return nil, examined.Load(), err
	}

	next := make(map[string]*Position, len(nf.m))
	for k, p := range nf.m {
		if !p.impossible {
			next[k] = p
		}
	}
	return next, examined.Load(), nil
}

// expand feeds one position's legal moves through the matcher and the
// condition evaluator and merges the accepted successors into nf.
func (s *Solver) expand(ctx context.Context, st *steno.Steno, nf *nextFrontier, p *Position,
	atoms []steno.MarkAtom, groups []steno.CondGroup, needs *futureNeeds, inheritCheck bool, index int) error {

	if p.Board.Endgame() != board.Playing {
		// A finished game cannot satisfy another mark.
		return nil
	}
	prev := p.prevDests()
	mover := p.Board.Turn()

	for _, mv := range p.Board.LegalMoves() {
		if ctx.Err() != nil {
			return ErrAborted
		}
		mres := steno.MatchMove(st.Vocab, atoms, &steno.MoveContext{Board: p.Board, Move: mv, PrevDests: prev})
		if !mres.Matched {
			continue
		}
		sets := p.MoveSets
		if mres.Survivors != nil {
			sets = make([]*MoveSet, 0, len(mres.Survivors))
			for _, idx := range mres.Survivors {
				sets = append(sets, p.MoveSets[idx])
			}
		}

		b2, err := p.Board.Apply(mv)
		if errors.Is(err, board.ErrGameOver) {
			continue
		}
		if err != nil {
			// The board service rejected a move it generated.
			log.Panic().Str("fen", p.Board.FEN()).Str("move", mv.SAN).Err(err).
				Msg("board service failed to apply a legal move")
		}
		eg := b2.Endgame()
		if mres.NeedStalemate && eg != board.Stalemate {
			continue
		}
		if mres.NeedDraw && eg != board.Stalemate && eg != board.InsufficientMaterial {
			continue
		}
		k2 := b2.Key()
		result := board.ResultToken(eg, mover)

		ext := make([]*MoveSet, 0, len(sets))
		for _, ms := range sets {
			ext = append(ext, ms.extend(mv, result))
		}

		// Transposition into a successor found earlier this step: merge
		// the histories, no lookahead, no condition recheck.
		nf.mu.Lock()
		if exist, ok := nf.m[k2]; ok {
			if !exist.impossible {
				exist.addMoveSets(ext, s.cfg.MaxCooks)
			}
			nf.mu.Unlock()
			continue
		}
		nf.mu.Unlock()

		if len(groups) > 0 {
			kept := ext[:0]
			for _, ms := range ext {
				cctx := steno.CondContext{Board: b2, Move: mv, Captures: ms.Captures, Promotions: ms.Promotions}
				if steno.EvalConditions(groups, &cctx) {
					kept = append(kept, ms)
				}
			}
			if len(kept) == 0 {
				continue
			}
			ext = kept
		}

		pos2 := &Position{Key: k2, Board: b2, CheckFuture: inheritCheck}
		if p.CheckFuture && !fenCouldSolve(k2, needs) {
			pos2.impossible = true
		} else {
			pos2.addMoveSets(ext, s.cfg.MaxCooks)
		}

		nf.mu.Lock()
		if exist, ok := nf.m[k2]; ok {
			// Another worker inserted the key meanwhile.
			if !exist.impossible && !pos2.impossible {
				exist.addMoveSets(ext, s.cfg.MaxCooks)
			}
			nf.mu.Unlock()
			continue
		}
		nf.m[k2] = pos2
		var hit bool
		var ins int64
		if !pos2.impossible {
			nf.inserted++
			ins = nf.inserted
			if len(nf.m) >= s.cfg.MaxPositions {
				hit = true
			}
		}
		nf.mu.Unlock()

		if hit {
			return fmt.Errorf("%w: %d positions", ErrPositionLimit, s.cfg.MaxPositions)
		}
		if ins > 0 && ins%1000 == 0 {
			s.rep.Report(Message{
				Kind:      InProgress,
				Text:      fmt.Sprintf("entry %d: %d positions found", index, ins),
				Positions: int(ins),
			})
		}
	}
	return nil
}

// forecast runs the extinction rule: piece characters absent from every
// live FEN can only return by promotion.
func (s *Solver) forecast(st *steno.Steno, i int, frontier map[string]*Position) {
	var present [128]bool
	for k := range frontier {
		for j := 0; j < len(k) && k[j] != ' '; j++ {
			ch := k[j]
			if ch != '/' && (ch < '0' || ch > '9') {
				present[ch] = true
			}
		}
	}
	steno.ForecastExtinction(st, i, func(ch byte) bool { return !present[ch] })
}
