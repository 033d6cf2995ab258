// Package poststore holds the current normalized posts per user.
package poststore

import (
	"errors"
	"sort"
	"sync"

	"github.com/moodlens/aura-tracker/internal/models"
)

// ErrNotFound is returned by Get when nothing was ever stored for a user
var ErrNotFound = errors.New("no posts stored for user")

// Store is the single source of truth for a user's current posts. Put replaces the
// user's posts wholesale; there is no merge.
type Store interface {
	Get(username string) ([]models.Post, error)
	Put(username string, posts []models.Post)
	Invalidate(username string)
	Users() []string
}

// MemoryStore is an in-process Store safe for concurrent use
type MemoryStore struct {
	mu    sync.RWMutex
	posts map[string][]models.Post
}

// Ensure MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{posts: make(map[string][]models.Post)}
}

// Get returns a copy of the user's posts
func (s *MemoryStore) Get(username string) ([]models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	posts, ok := s.posts[username]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]models.Post, len(posts))
	copy(out, posts)
	return out, nil
}

// Put replaces the user's posts
func (s *MemoryStore) Put(username string, posts []models.Post) {
	stored := make([]models.Post, len(posts))
	copy(stored, posts)

	s.mu.Lock()
	s.posts[username] = stored
	s.mu.Unlock()
}

// Invalidate drops the user's posts
func (s *MemoryStore) Invalidate(username string) {
	s.mu.Lock()
	delete(s.posts, username)
	s.mu.Unlock()
}

// Users lists users with stored posts, sorted
func (s *MemoryStore) Users() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]string, 0, len(s.posts))
	for u := range s.posts {
		users = append(users, u)
	}
	sort.Strings(users)
	return users
}
