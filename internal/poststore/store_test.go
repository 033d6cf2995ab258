package poststore

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/moodlens/aura-tracker/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	now := time.Now().UTC()

	t.Run("Get unknown user", func(t *testing.T) {
		s := NewMemoryStore()
		_, err := s.Get("nobody")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Put replaces wholesale", func(t *testing.T) {
		s := NewMemoryStore()
		s.Put("alice", []models.Post{{ID: "1", Created: now}, {ID: "2", Created: now}})
		s.Put("alice", []models.Post{{ID: "3", Created: now}})

		posts, err := s.Get("alice")
		require.NoError(t, err)
		require.Len(t, posts, 1)
		assert.Equal(t, "3", posts[0].ID)
	})

	t.Run("Empty put is distinct from never fetched", func(t *testing.T) {
		s := NewMemoryStore()
		s.Put("bob", nil)

		posts, err := s.Get("bob")
		require.NoError(t, err)
		assert.Empty(t, posts)
	})

	t.Run("Returned slices are copies", func(t *testing.T) {
		s := NewMemoryStore()
		in := []models.Post{{ID: "1"}}
		s.Put("carol", in)
		in[0].ID = "mutated"

		posts, _ := s.Get("carol")
		posts[0].Title = "changed"

		again, _ := s.Get("carol")
		assert.Equal(t, "1", again[0].ID)
		assert.Empty(t, again[0].Title)
	})

	t.Run("Invalidate and Users", func(t *testing.T) {
		s := NewMemoryStore()
		s.Put("zed", nil)
		s.Put("amy", nil)
		assert.Equal(t, []string{"amy", "zed"}, s.Users())

		s.Invalidate("zed")
		assert.Equal(t, []string{"amy"}, s.Users())
		_, err := s.Get("zed")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestMemoryStore_Concurrent(t *testing.T) {
	s := NewMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := fmt.Sprintf("user%d", i%4)
			s.Put(user, []models.Post{{ID: fmt.Sprint(i)}})
			_, _ = s.Get(user)
			_ = s.Users()
		}(i)
	}
	wg.Wait()

	assert.Len(t, s.Users(), 4)
}
