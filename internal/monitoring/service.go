package monitoring

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/moodlens/aura-tracker/internal/aura"
	"github.com/moodlens/aura-tracker/internal/config"
	"github.com/moodlens/aura-tracker/internal/emotions"
	"github.com/moodlens/aura-tracker/internal/ingest"
	"github.com/moodlens/aura-tracker/internal/metrics"
	"github.com/moodlens/aura-tracker/internal/nlp"
	"github.com/moodlens/aura-tracker/internal/notifications"
	"github.com/moodlens/aura-tracker/internal/personality"
	"github.com/moodlens/aura-tracker/internal/poststore"
	"github.com/moodlens/aura-tracker/internal/sources"
	"github.com/moodlens/aura-tracker/internal/storage"
	"github.com/moodlens/aura-tracker/internal/trends"
)

// Service runs the mood pipeline for users and the bulk subreddit scrape
type Service struct {
	config              *config.Config
	analysis            *config.Analysis
	notificationService notifications.NotificationInterface

	store           poststore.Store
	userSource      sources.Source
	subredditSource sources.SubredditSource
	embedder        aura.Embedder
	classifier      emotions.Classifier
	recorder        *metrics.Recorder
	now             trends.Clock
	scrapePause     time.Duration

	scorer      *nlp.SentimentScorer
	aggregator  *trends.Aggregator
	alerts      *trends.AlertGenerator
	auraEngine  *aura.Engine
	emotions    *emotions.Analyzer
	personality *personality.Estimator
	scraper     *ingest.Scraper

	metrics *Metrics
	mu      sync.RWMutex
}

// Metrics holds run statistics served as JSON
type Metrics struct {
	TotalFetches       int       `json:"total_fetches"`
	FailedFetches      int       `json:"failed_fetches"`
	LastFetch          time.Time `json:"last_fetch"`
	LastScrape         time.Time `json:"last_scrape"`
	LastScrapeDuration string    `json:"last_scrape_duration"`
	SnapshotPosts      int       `json:"snapshot_posts"`
	LastAlertCheck     time.Time `json:"last_alert_check"`
	AlertsSent         int       `json:"alerts_sent"`
	ErrorCount         int       `json:"error_count"`
	CachedUsers        int       `json:"cached_users"`
}

// Option overrides a collaborator of the service
type Option func(*Service)

// WithUserSource sets the source used for per-user fetches
func WithUserSource(src sources.Source) Option {
	return func(s *Service) { s.userSource = src }
}

// WithSubredditSource sets the source used by the bulk scrape
func WithSubredditSource(src sources.SubredditSource) Option {
	return func(s *Service) { s.subredditSource = src }
}

// WithEmbedder sets the embedding service
func WithEmbedder(e aura.Embedder) Option {
	return func(s *Service) { s.embedder = e }
}

// WithClassifier sets the emotion classifier service
func WithClassifier(c emotions.Classifier) Option {
	return func(s *Service) { s.classifier = c }
}

// WithStore sets the post store
func WithStore(store poststore.Store) Option {
	return func(s *Service) { s.store = store }
}

// WithRecorder sets the Prometheus recorder
func WithRecorder(r *metrics.Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithClock pins the time used for trend windows
func WithClock(clock trends.Clock) Option {
	return func(s *Service) { s.now = clock }
}

// WithScrapePause sets the delay between subreddits during a scrape
func WithScrapePause(d time.Duration) Option {
	return func(s *Service) { s.scrapePause = d }
}

// NewService creates the pipeline service. Collaborators not supplied through options are
// built from configuration.
func NewService(cfg *config.Config, analysis *config.Analysis, cache storage.ContentCache, notificationService notifications.NotificationInterface, opts ...Option) *Service {
	s := &Service{
		config:              cfg,
		analysis:            analysis,
		notificationService: notificationService,
		scrapePause:         time.Second,
		now:                 time.Now,
		metrics:             &Metrics{},
	}

	for _, opt := range opts {
		opt(s)
	}

	s.initializeDefaults()

	s.scorer = nlp.NewSentimentScorer()
	s.aggregator = trends.NewAggregator(s.scorer, s.now)
	s.alerts = trends.NewAlertGenerator(s.aggregator, analysis.AlertLookbackDays)
	s.auraEngine = aura.NewEngine(s.embedder, nlp.NewTopicDetector(analysis.Topics), aura.KMeans{
		K:        analysis.ClusterCount,
		Seed:     analysis.ClusterSeed,
		Restarts: analysis.ClusterRestarts,
		MaxIter:  analysis.ClusterMaxIter,
		Tol:      1e-4,
	})
	s.emotions = emotions.NewAnalyzer(s.classifier, analysis.EmotionMaxChars)
	s.personality = personality.NewEstimator(analysis.Lexicons, analysis.Traits)
	s.scraper = ingest.NewScraper(s.subredditSource, s.scorer, cache, s.scrapePause)

	return s
}

func (s *Service) initializeDefaults() {
	reddit := sources.NewRedditSource(s.config.RedditClientID, s.config.RedditClientSecret, s.config.RedditUserAgent)
	rss := sources.NewRedditRSSSource("", s.config.RedditUserAgent)

	if s.subredditSource == nil {
		if reddit.IsEnabled() {
			s.subredditSource = reddit
		} else {
			s.subredditSource = rss
		}
	}

	if s.userSource == nil {
		switch s.config.ContentSource {
		case "hackernews":
			s.userSource = sources.NewHackerNewsSource("")
		case "reddit-rss":
			s.userSource = rss
		case "reddit":
			s.userSource = reddit
		default:
			s.userSource = s.subredditSource
		}
	}

	if s.embedder == nil {
		s.embedder = aura.NewOllamaEmbedder(s.config.EmbedURL, s.config.EmbedModel)
	}
	if s.classifier == nil {
		s.classifier = emotions.NewHFClassifier(s.config.ClassifierURL, s.config.ClassifierToken)
	}
	if s.store == nil {
		s.store = poststore.NewMemoryStore()
	}
	if s.recorder == nil {
		s.recorder = metrics.New()
	}
}

// Recorder returns the Prometheus recorder used by the service
func (s *Service) Recorder() *metrics.Recorder {
	return s.recorder
}

// SourceName names the source used for user fetches
func (s *Service) SourceName() string {
	return s.userSource.GetName()
}

// GetMetrics returns current run statistics as JSON
func (s *Service) GetMetrics() string {
	s.mu.RLock()
	snapshot := *s.metrics
	s.mu.RUnlock()

	snapshot.CachedUsers = len(s.store.Users())
	data, _ := json.MarshalIndent(snapshot, "", "  ")
	return string(data)
}

func (s *Service) updateMetrics(update func(m *Metrics)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	update(s.metrics)
}
