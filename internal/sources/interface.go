package sources

import (
	"context"
	"errors"
	"strings"

	"github.com/moodlens/aura-tracker/internal/models"
)

// ErrSourceDisabled is returned when a source is asked to fetch without its credentials
var ErrSourceDisabled = errors.New("source disabled")

// DeletedAuthor replaces missing or removed author names
const DeletedAuthor = "deleted"

// Listing is a subreddit ordering
type Listing string

const (
	ListingTop    Listing = "top"
	ListingHot    Listing = "hot"
	ListingNew    Listing = "new"
	ListingRising Listing = "rising"
)

// Source returns a user's most recent posts, newest first
type Source interface {
	GetName() string
	IsEnabled() bool
	FetchUserPosts(ctx context.Context, username string, limit int) ([]models.RawPost, error)
}

// SubredditSource can also page through subreddit listings
type SubredditSource interface {
	Source
	FetchListing(ctx context.Context, subreddit string, listing Listing, limit int) ([]models.RawPost, error)
}

func authorOrDeleted(author string) string {
	author = strings.TrimSpace(author)
	if author == "" || author == "[deleted]" {
		return DeletedAuthor
	}
	return author
}
