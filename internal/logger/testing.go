package logger

import (
	"bytes"
	"io"
	"log/slog"
	"sync"
)

// NewSlogLogger returns a Logger writing text records to w at the given level.
func NewSlogLogger(w io.Writer, level LogLevel) Logger {
	slogLevel := parseLogLevel(string(level))
	return &moduleLogger{
		logger: slog.New(newTextHandler(w, slogLevel, nil)),
		level:  slogLevel,
	}
}

// NewNopLogger returns a Logger that discards everything.
func NewNopLogger() Logger {
	return NewSlogLogger(io.Discard, LogLevelError)
}

// BufferLogger captures output for assertions in tests.
type BufferLogger struct {
	Logger
	buf *syncBuffer
}

// NewBufferLogger returns a debug-level logger backed by an in-memory buffer.
func NewBufferLogger() *BufferLogger {
	buf := &syncBuffer{}
	return &BufferLogger{Logger: NewSlogLogger(buf, LogLevelTrace), buf: buf}
}

// String returns everything logged so far.
func (b *BufferLogger) String() string {
	return b.buf.String()
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}
