// Package logging provides leveled logging and step tracing for
// shockchain. It offers two complementary outputs:
//   - A leveled slog.Logger for stderr (operational output)
//   - A StepTracer for structured JSONL traces of per-step draws
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/driftworks/shockchain/internal/chain"
)

// LevelTrace is a custom slog level below Debug for per-draw logging.
const LevelTrace = slog.LevelDebug - 4

// ParseLevel maps a string level name to a slog.Level.
// Supported values: "info", "debug", "trace" (case-insensitive).
// Unknown values default to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "trace":
		return LevelTrace
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a leveled slog.Logger writing to w.
func NewLogger(level string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Label the custom trace level
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// StepTracer writes one JSONL line per simulation step, recording the
// uniform draw, whether the shock matrix fired, and the transition
// taken. A nil StepTracer is safe to use; all methods are no-ops on a
// nil receiver.
type StepTracer struct {
	mu   sync.Mutex
	file *os.File
}

// NewStepTracer creates a tracer appending to the file at path.
func NewStepTracer(path string) (*StepTracer, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("opening trace file: %w", err)
	}
	return &StepTracer{file: f}, nil
}

// Observe records one step event as a single JSONL line. It satisfies
// the chain observer signature. Safe to call on nil receiver.
func (st *StepTracer) Observe(e chain.StepEvent) {
	if st == nil || st.file == nil {
		return
	}

	entry := map[string]any{
		"time":    time.Now().UTC().Format(time.RFC3339Nano),
		"step":    e.Step,
		"u":       e.U,
		"shocked": e.Shocked,
		"from":    e.From,
		"to":      e.To,
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	data = append(data, '\n')
	_, _ = st.file.Write(data)
}

// Close closes the underlying file. Safe to call on nil receiver.
func (st *StepTracer) Close() {
	if st == nil || st.file == nil {
		return
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	st.file.Close()
	st.file = nil
}
