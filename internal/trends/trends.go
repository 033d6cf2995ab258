// Package trends rolls per-post sentiment up into daily series and flags low-mood days.
package trends

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/moodlens/aura-tracker/internal/models"
)

// AlertMessage is attached to every alert
const AlertMessage = "Significant drop in mood"

const dateLayout = "2006-01-02"

// Scorer maps normalized text to sentiment scores
type Scorer interface {
	Score(text string) models.SentimentScore
}

// Clock returns the current time; tests replace it to pin the window.
type Clock func() time.Time

// Aggregator buckets sentiment by UTC calendar day
type Aggregator struct {
	scorer Scorer
	now    Clock
}

// NewAggregator creates an aggregator. A nil clock means time.Now.
func NewAggregator(scorer Scorer, clock Clock) *Aggregator {
	if clock == nil {
		clock = time.Now
	}
	return &Aggregator{scorer: scorer, now: clock}
}

// DailyMood scores every post and averages compound sentiment per day over the trailing
// window of days. Posts created strictly before the cutoff are dropped. Days without posts
// are absent rather than zero-filled; the result is sorted by date ascending.
func (a *Aggregator) DailyMood(posts []models.Post, days int) []models.TrendPoint {
	if len(posts) == 0 {
		return []models.TrendPoint{}
	}

	cutoff := a.now().UTC().AddDate(0, 0, -days)

	type bucket struct {
		sum   float64
		count int
	}
	buckets := make(map[string]*bucket)
	for _, p := range posts {
		created := p.Created.UTC()
		if created.Before(cutoff) {
			continue
		}
		day := created.Format(dateLayout)
		b, ok := buckets[day]
		if !ok {
			b = &bucket{}
			buckets[day] = b
		}
		b.sum += a.scorer.Score(p.Text).Compound
		b.count++
	}

	trend := make([]models.TrendPoint, 0, len(buckets))
	for day, b := range buckets {
		trend = append(trend, models.TrendPoint{
			Date:        day,
			AvgCompound: b.sum / float64(b.count),
			Count:       b.count,
		})
	}
	sort.Slice(trend, func(i, j int) bool { return trend[i].Date < trend[j].Date })

	return trend
}

// AlertGenerator flags days of the fixed lookback window whose mood falls below a threshold
type AlertGenerator struct {
	aggregator   *Aggregator
	lookbackDays int
}

// NewAlertGenerator creates an alert generator that always looks back lookbackDays,
// independent of the window a caller charts.
func NewAlertGenerator(aggregator *Aggregator, lookbackDays int) *AlertGenerator {
	return &AlertGenerator{aggregator: aggregator, lookbackDays: lookbackDays}
}

// Alerts recomputes the lookback trend and emits one alert per qualifying day
func (g *AlertGenerator) Alerts(posts []models.Post, threshold float64) []models.Alert {
	return FromTrend(g.aggregator.DailyMood(posts, g.lookbackDays), threshold)
}

// FromTrend emits an alert for every point with avg_compound strictly below threshold.
// Consecutive qualifying days each get their own alert.
func FromTrend(trend []models.TrendPoint, threshold float64) []models.Alert {
	alerts := []models.Alert{}
	for _, point := range trend {
		if point.AvgCompound < threshold {
			alerts = append(alerts, models.Alert{
				ID:          uuid.NewString(),
				Date:        point.Date,
				Message:     AlertMessage,
				AvgCompound: point.AvgCompound,
			})
		}
	}
	return alerts
}
