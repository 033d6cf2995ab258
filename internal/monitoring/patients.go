package monitoring

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/moodlens/aura-tracker/internal/emotions"
	"github.com/moodlens/aura-tracker/internal/models"
	"github.com/moodlens/aura-tracker/internal/nlp"
	"github.com/moodlens/aura-tracker/internal/sources"
	"github.com/sirupsen/logrus"
)

// maxEmotionPosts bounds classifier calls per author in a patient search
const maxEmotionPosts = 20

// PatientSearch groups the cached scrape by author for the therapist browser. Rows match
// when their content contains query (case-insensitive; empty matches all). Authors are
// ordered by post count, then name, and capped at limit when limit > 0.
func (s *Service) PatientSearch(ctx context.Context, query string, limit int) ([]models.PatientSummary, error) {
	snapshot, err := s.scraper.LoadCached(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load scrape snapshot: %w", err)
	}

	patients := groupByAuthor(snapshot.Posts, query)
	if limit > 0 && len(patients) > limit {
		patients = patients[:limit]
	}

	byAuthor := make(map[string][]models.ScrapedPost)
	for _, row := range snapshot.Posts {
		byAuthor[row.Author] = append(byAuthor[row.Author], row)
	}

	for i := range patients {
		patients[i].DominantEmotion = s.dominantEmotion(ctx, byAuthor[patients[i].Author], query)
	}

	return patients, nil
}

type patientGroup struct {
	summary    models.PatientSummary
	sum        float64
	subreddits map[string]bool
}

func groupByAuthor(rows []models.ScrapedPost, query string) []models.PatientSummary {
	q := strings.ToLower(strings.TrimSpace(query))
	groups := make(map[string]*patientGroup)

	for _, row := range rows {
		if isDeleted(row.Author) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(row.Content), q) {
			continue
		}

		g, ok := groups[row.Author]
		if !ok {
			g = &patientGroup{
				summary:    models.PatientSummary{Author: row.Author},
				subreddits: make(map[string]bool),
			}
			groups[row.Author] = g
		}
		g.summary.PostCount++
		g.sum += row.VaderCompound
		if row.CreatedAt.After(g.summary.LastPostAt) {
			g.summary.LastPostAt = row.CreatedAt
		}
		if row.Subreddit != "" && !g.subreddits[row.Subreddit] {
			g.subreddits[row.Subreddit] = true
			g.summary.Subreddits = append(g.summary.Subreddits, row.Subreddit)
		}
	}

	patients := make([]models.PatientSummary, 0, len(groups))
	for _, g := range groups {
		g.summary.AvgCompound = g.sum / float64(g.summary.PostCount)
		sort.Strings(g.summary.Subreddits)
		patients = append(patients, g.summary)
	}

	sort.Slice(patients, func(i, j int) bool {
		if patients[i].PostCount != patients[j].PostCount {
			return patients[i].PostCount > patients[j].PostCount
		}
		return patients[i].Author < patients[j].Author
	})

	return patients
}

func isDeleted(author string) bool {
	return author == "" || author == sources.DeletedAuthor || author == "[deleted]"
}

// dominantEmotion classifies the author's newest matching posts. A classifier failure
// leaves the emotion empty.
func (s *Service) dominantEmotion(ctx context.Context, rows []models.ScrapedPost, query string) string {
	q := strings.ToLower(strings.TrimSpace(query))

	var matching []models.ScrapedPost
	for _, row := range rows {
		if q == "" || strings.Contains(strings.ToLower(row.Content), q) {
			matching = append(matching, row)
		}
	}
	sort.SliceStable(matching, func(i, j int) bool { return matching[i].CreatedAt.After(matching[j].CreatedAt) })
	if len(matching) > maxEmotionPosts {
		matching = matching[:maxEmotionPosts]
	}

	posts := make([]models.Post, 0, len(matching))
	for _, row := range matching {
		posts = append(posts, models.Post{
			Title:   row.Title,
			Created: row.CreatedAt,
			Text:    nlp.Normalize(row.Content),
		})
	}

	dist, err := s.emotions.Analyze(ctx, posts)
	if err != nil {
		logrus.Warnf("Failed to classify emotions for %s: %v", rows[0].Author, err)
		s.recorder.ExternalError("classifier")
		return ""
	}

	label, _ := emotions.Dominant(dist)
	return label
}
