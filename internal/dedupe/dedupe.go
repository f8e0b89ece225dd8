// Package dedupe decides whether a feed image still needs to be fetched.
//
// The filesystem is the index: a file at the canonical path means the image
// was processed on an earlier run. Within a single run, SeenSet additionally
// suppresses the same Bing image surfacing in several markets.
package dedupe

import (
	"io/fs"
	"os"

	"github.com/patrickmn/go-cache"
)

// Gate checks canonical paths against the filesystem.
type Gate struct {
	stat func(string) (fs.FileInfo, error)
}

// NewGate returns a Gate backed by os.Stat.
func NewGate() *Gate {
	return &Gate{stat: os.Stat}
}

// IsNew reports whether nothing exists at path. Stat errors other than
// "not exist" count as present so an unreadable entry is never overwritten.
func (g *Gate) IsNew(path string) bool {
	_, err := g.stat(path)
	return os.IsNotExist(err)
}

// SeenSet is a run-scoped set of identifiers. Create a new one per run.
type SeenSet struct {
	items *cache.Cache
}

// NewSeenSet returns an empty set.
func NewSeenSet() *SeenSet {
	return &SeenSet{items: cache.New(cache.NoExpiration, 0)}
}

// Add records id and reports true if it was not already present.
func (s *SeenSet) Add(id string) bool {
	return s.items.Add(id, struct{}{}, cache.NoExpiration) == nil
}

// Contains reports whether id was added.
func (s *SeenSet) Contains(id string) bool {
	_, found := s.items.Get(id)
	return found
}

// Len returns the number of distinct ids.
func (s *SeenSet) Len() int {
	return s.items.ItemCount()
}
