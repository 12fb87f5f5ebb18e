package solver

import "errors"

// Error kinds surfaced to the host. Parser and validator errors abort the
// solve cleanly before the frontier is touched; the position limit and
// user cancellation abort mid-search; a move application the board service
// rejects is an internal invariant violation and panics.
var (
	ErrInvalidVocabulary      = errors.New("invalid vocabulary")
	ErrInvalidLimit           = errors.New("invalid limit")
	ErrInvalidFile            = errors.New("invalid file")
	ErrInvalidFen             = errors.New("invalid FEN")
	ErrInvalidCheckpointChunk = errors.New("invalid checkpoint chunk")
	ErrPositionLimit          = errors.New("position limit reached")
	ErrAborted                = errors.New("solve aborted")
	ErrNoCheckpoint           = errors.New("no checkpoint loaded")
)
