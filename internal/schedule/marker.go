package schedule

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/tphakala/plasma-spotlight/internal/errors"
)

// ErrNoMarker is returned by MarkerStore.Read when no run was recorded.
var ErrNoMarker = errors.NewStd("no run marker")

// MarkerStore persists the last successful run time.
type MarkerStore interface {
	Read() (time.Time, error)
	Write(t time.Time) error
}

// naiveLayouts are accepted for markers written without a zone; they are read as UTC.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
}

// ParseMarker parses a marker line. RFC 3339 and ISO 8601 with a space
// separator are both accepted; a timestamp without a zone is taken as UTC.
func ParseMarker(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New(fmt.Errorf("unrecognized marker timestamp %q", s)).
		Component("schedule").
		Category(errors.CategoryMarker).
		Build()
}

// FormatMarker renders t the way FileStore writes it.
func FormatMarker(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// FileStore keeps the marker as a one-line text file.
type FileStore struct {
	Path string
}

// NewFileStore returns a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (f *FileStore) Read() (time.Time, error) {
	data, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return time.Time{}, ErrNoMarker
	}
	if err != nil {
		return time.Time{}, errors.New(err).
			Component("schedule").
			Category(errors.CategoryMarker).
			FileContext(f.Path).
			Build()
	}
	return ParseMarker(string(data))
}

// Write replaces the marker atomically so a crash never leaves a partial line.
func (f *FileStore) Write(t time.Time) error {
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return markerWriteError(err, f.Path)
	}
	tmp, err := os.CreateTemp(dir, ".last_run.*.tmp")
	if err != nil {
		return markerWriteError(err, f.Path)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.WriteString(FormatMarker(t) + "\n"); err != nil {
		_ = tmp.Close()
		return markerWriteError(err, f.Path)
	}
	if err := tmp.Close(); err != nil {
		return markerWriteError(err, f.Path)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return markerWriteError(err, f.Path)
	}
	if err := os.Rename(tmpName, f.Path); err != nil {
		return markerWriteError(err, f.Path)
	}
	committed = true
	return nil
}

func markerWriteError(err error, path string) error {
	return errors.New(err).
		Component("schedule").
		Category(errors.CategoryMarker).
		FileContext(path).
		Context("operation", "write_marker").
		Build()
}

// MemoryStore is an in-process MarkerStore.
type MemoryStore struct {
	mu  sync.Mutex
	t   time.Time
	set bool
	// WriteErr, when set, is returned by Write.
	WriteErr error
}

func (m *MemoryStore) Read() (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return time.Time{}, ErrNoMarker
	}
	return m.t, nil
}

func (m *MemoryStore) Write(t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.t, m.set = t, true
	return nil
}
