package solver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"steno-solver/board"
	"steno-solver/steno"
)

// Checkpoint wire format: the JSON frontier and the JSON consumed-mark
// prefix joined by a single NUL byte, zstd-compressed. Move strings
// inside each MoveSet are themselves stored compressed.

var (
	zenc, _ = zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
	zdec, _ = zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
)

type ckptMoveSet struct {
	Moves      []byte `json:"m"`
	Captures   string `json:"x,omitempty"`
	Promotions string `json:"p,omitempty"`
	LastDest   int8   `json:"d"`
	PrevDest   int8   `json:"e"`
}

type ckptPosition struct {
	CheckFuture bool          `json:"f"`
	MoveSets    []ckptMoveSet `json:"s"`
}

type ckptEntry struct {
	Marks      string `json:"m"`
	Conditions string `json:"c,omitempty"`
}

// EncodeCheckpoint serialises the frontier and the consumed mark prefix.
// Prefix entries keep only their authored marks and conditions; the
// trailing $ is implicit in the checkpoint itself.
func EncodeCheckpoint(frontier map[string]*Position, prefix []*steno.Entry) ([]byte, error) {
	fm := make(map[string]ckptPosition, len(frontier))
	for k, p := range frontier {
		cp := ckptPosition{CheckFuture: p.CheckFuture, MoveSets: make([]ckptMoveSet, 0, len(p.MoveSets))}
		for _, ms := range p.MoveSets {
			cp.MoveSets = append(cp.MoveSets, ckptMoveSet{
				Moves:      zenc.EncodeAll([]byte(ms.Moves), nil),
				Captures:   ms.Captures,
				Promotions: ms.Promotions,
				LastDest:   ms.LastDest,
				PrevDest:   ms.PrevDest,
			})
		}
		fm[k] = cp
	}
	fj, err := json.Marshal(fm)
	if err != nil {
		return nil, err
	}
	pe := make([]ckptEntry, 0, len(prefix))
	for _, e := range prefix {
		pe = append(pe, ckptEntry{Marks: e.Marks, Conditions: e.Conditions})
	}
	pj, err := json.Marshal(pe)
	if err != nil {
		return nil, err
	}
	blob := make([]byte, 0, len(fj)+len(pj)+1)
	blob = append(blob, fj...)
	blob = append(blob, 0)
	blob = append(blob, pj...)
	return zenc.EncodeAll(blob, nil), nil
}

// DecodeCheckpoint reverses EncodeCheckpoint. Boards are rebuilt from the
// key FEN; the fullmove counter, which the key does not carry, is derived
// from the first MoveSet's length.
func DecodeCheckpoint(blob []byte) (map[string]*Position, []*steno.Entry, error) {
	raw, err := zdec.DecodeAll(blob, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("corrupt checkpoint: %w", err)
	}
	sep := bytes.IndexByte(raw, 0)
	if sep < 0 {
		return nil, nil, fmt.Errorf("corrupt checkpoint: missing separator")
	}
	var fm map[string]ckptPosition
	if err := json.Unmarshal(raw[:sep], &fm); err != nil {
		return nil, nil, fmt.Errorf("corrupt checkpoint frontier: %w", err)
	}
	var pe []ckptEntry
	if err := json.Unmarshal(raw[sep+1:], &pe); err != nil {
		return nil, nil, fmt.Errorf("corrupt checkpoint prefix: %w", err)
	}

	frontier := make(map[string]*Position, len(fm))
	for k, cp := range fm {
		p := &Position{Key: k, CheckFuture: cp.CheckFuture}
		for _, cms := range cp.MoveSets {
			moves, err := zdec.DecodeAll(cms.Moves, nil)
			if err != nil {
				return nil, nil, fmt.Errorf("corrupt checkpoint moves: %w", err)
			}
			p.MoveSets = append(p.MoveSets, &MoveSet{
				Moves:      string(moves),
				Captures:   cms.Captures,
				Promotions: cms.Promotions,
				LastDest:   cms.LastDest,
				PrevDest:   cms.PrevDest,
			})
		}
		if len(p.MoveSets) == 0 {
			return nil, nil, fmt.Errorf("corrupt checkpoint: position %q has no history", k)
		}
		b, err := board.FromKey(k, p.MoveSets[0].Len()/2+1)
		if err != nil {
			return nil, nil, err
		}
		p.Board = b
		frontier[k] = p
	}
	entries := make([]*steno.Entry, 0, len(pe))
	for i, ce := range pe {
		entries = append(entries, &steno.Entry{Index: i, Marks: ce.Marks, Conditions: ce.Conditions})
	}
	return frontier, entries, nil
}

// solveChunks slices the loaded frontier into fixed-size chunks by sorted
// key and solves each in turn as an independent resumed run, merging the
// final frontiers.
func (s *Solver) solveChunks(ctx context.Context, st *steno.Steno, frontier map[string]*Position, start int) (*Result, error) {
	keys := maps.Keys(frontier)
	slices.Sort(keys)
	chunks := (len(keys) + steno.ChunkSize - 1) / steno.ChunkSize
	if st.ChunkFirst > chunks {
		err := fmt.Errorf("%w: chunk %d of %d", ErrInvalidCheckpointChunk, st.ChunkFirst, chunks)
		s.rep.Report(Message{Kind: Error, Text: err.Error()})
		return nil, err
	}
	last := st.ChunkLast
	if last > chunks {
		last = chunks
	}

	total := &Result{Frontier: map[string]*Position{}}
	for cn := st.ChunkFirst; cn <= last; cn++ {
		lo := (cn - 1) * steno.ChunkSize
		hi := lo + steno.ChunkSize
		if hi > len(keys) {
			hi = len(keys)
		}
		sub := make(map[string]*Position, hi-lo)
		for _, k := range keys[lo:hi] {
			sub[k] = frontier[k]
		}
		s.rep.Report(Message{
			Kind:      Status,
			Text:      fmt.Sprintf("chunk %d/%d: %d positions", cn, chunks, len(sub)),
			Positions: len(sub),
		})
		res, err := s.run(ctx, st, sub, start)
		if err != nil {
			return total, err
		}
		total.Examined += res.Examined
		for k, p := range res.Frontier {
			if exist, ok := total.Frontier[k]; ok {
				exist.addMoveSets(p.MoveSets, s.cfg.MaxCooks)
			} else {
				total.Frontier[k] = p
			}
		}
	}
	return total, nil
}

// SortedKeys returns the frontier's position keys in lexicographic order.
func (r *Result) SortedKeys() []string {
	keys := maps.Keys(r.Frontier)
	slices.Sort(keys)
	return keys
}

// ListSolutions renders up to max cooked move sequences, ordered by
// position key, optionally with the final board drawn under each
// position. max 0 lists nothing.
func (r *Result) ListSolutions(max int, showBoards bool) []string {
	if max == 0 {
		return nil
	}
	var out []string
	for _, k := range r.SortedKeys() {
		p := r.Frontier[k]
		for i, ms := range p.MoveSets {
			if len(out) >= max {
				return out
			}
			line := ms.Moves
			if i >= len(p.MoveSets)-1 && len(p.MoveSets) > 1 {
				line += fmt.Sprintf(" (%d cooks at least)", len(p.MoveSets))
			}
			if showBoards && i == 0 {
				line += "\n" + p.Board.Draw()
			}
			out = append(out, line)
		}
	}
	return out
}
