package server

import (
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/glimpse-data/glimpse/internal/dataset"
)

// Store keeps uploaded datasets in memory for the lifetime of a session.
// Entries expire after the configured TTL; nothing is persisted.
type Store struct {
	cache *gocache.Cache
}

// NewStore creates a dataset store with the given TTL.
func NewStore(ttl time.Duration) *Store {
	cleanup := ttl / 2
	if cleanup < time.Minute {
		cleanup = time.Minute
	}
	return &Store{cache: gocache.New(ttl, cleanup)}
}

// Put registers a dataset and returns its id.
func (s *Store) Put(d *dataset.Dataset) string {
	id := uuid.NewString()
	s.cache.Set(id, d, gocache.DefaultExpiration)
	return id
}

// Get retrieves a dataset by id.
func (s *Store) Get(id string) (*dataset.Dataset, bool) {
	if val, found := s.cache.Get(id); found {
		return val.(*dataset.Dataset), true
	}
	return nil, false
}

// Delete removes a dataset.
func (s *Store) Delete(id string) {
	s.cache.Delete(id)
}
