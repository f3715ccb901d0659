package movie

import "fmt"

// Store exposes catalog retrieval for the catalog service.
type Store interface {
	List() []Summary
	FindByID(id string) (Movie, bool)
	Len() int
}

// MemoryStore implements Store over a fixed, ordered set of entries.
// It is never mutated after construction, so concurrent reads need no locking.
type MemoryStore struct {
	order []string
	items map[string]Movie
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied entries.
// Every entry needs a non-empty id, title and description, and ids must be unique.
func NewMemoryStore(entries []Entry) (*MemoryStore, error) {
	s := &MemoryStore{
		order: make([]string, 0, len(entries)),
		items: make(map[string]Movie, len(entries)),
	}
	for i, entry := range entries {
		switch {
		case entry.ID == "":
			return nil, fmt.Errorf("movie entry %d: empty id", i)
		case entry.Movie.Title == "":
			return nil, fmt.Errorf("movie %q: empty title", entry.ID)
		case entry.Movie.Description == "":
			return nil, fmt.Errorf("movie %q: empty description", entry.ID)
		}
		if _, exists := s.items[entry.ID]; exists {
			return nil, fmt.Errorf("movie %q: duplicate id", entry.ID)
		}
		s.order = append(s.order, entry.ID)
		s.items[entry.ID] = entry.Movie
	}
	return s, nil
}

// MustNewMemoryStore is like NewMemoryStore but panics on invalid entries.
// Use it for compile-time literals such as Seed.
func MustNewMemoryStore(entries []Entry) *MemoryStore {
	s, err := NewMemoryStore(entries)
	if err != nil {
		panic(err)
	}
	return s
}

// List returns id/title pairs in catalog order.
func (s *MemoryStore) List() []Summary {
	summaries := make([]Summary, 0, len(s.order))
	for _, id := range s.order {
		summaries = append(summaries, Summary{Title: s.items[id].Title, ID: id})
	}
	return summaries
}

// FindByID looks up a movie by identifier.
func (s *MemoryStore) FindByID(id string) (Movie, bool) {
	m, ok := s.items[id]
	return m, ok
}

// Len returns the number of movies in the catalog.
func (s *MemoryStore) Len() int {
	return len(s.order)
}
