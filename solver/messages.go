package solver

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// MessageKind classifies a message to the host UI.
type MessageKind int

const (
	Status MessageKind = iota
	InProgress
	Success
	Error
	Abort
)

func (k MessageKind) String() string {
	switch k {
	case Status:
		return "Status"
	case InProgress:
		return "InProgress"
	case Success:
		return "Success"
	case Error:
		return "Error"
	case Abort:
		return "Abort"
	}
	return fmt.Sprintf("MessageKind(%d)", int(k))
}

// Message is one report to the host: progress, the final verdict, or an
// abort with its cause.
type Message struct {
	Kind      MessageKind
	Text      string
	Positions int
}

// Reporter receives solver messages. Implementations must be safe for
// concurrent use: workers report progress in parallel.
type Reporter interface {
	Report(Message)
}

// LogReporter logs messages through zerolog and appends Status messages
// to an optional output file.
type LogReporter struct {
	out *os.File
}

// NewLogReporter opens the optional output file for appending.
func NewLogReporter(outputFile string) (*LogReporter, error) {
	r := &LogReporter{}
	if outputFile != "" {
		f, err := os.OpenFile(outputFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
		}
		r.out = f
	}
	return r, nil
}

// Close releases the output file, if any.
func (r *LogReporter) Close() error {
	if r.out == nil {
		return nil
	}
	return r.out.Close()
}

func (r *LogReporter) Report(m Message) {
	var ev *zerolog.Event
	switch m.Kind {
	case Error:
		ev = log.Error()
	case Abort:
		ev = log.Warn()
	case InProgress:
		ev = log.Debug()
	default:
		ev = log.Info()
	}
	ev.Str("kind", m.Kind.String()).Int("positions", m.Positions).Msg(m.Text)
	if m.Kind == Status && r.out != nil {
		fmt.Fprintln(r.out, m.Text)
	}
}

// nopReporter drops everything; used when the caller passes nil.
type nopReporter struct{}

func (nopReporter) Report(Message) {}
