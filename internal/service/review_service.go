// Package service hosts the catalog for concurrent callers.  ReviewService
// serializes every catalog operation behind one mutex and hands out
// snapshots, never live catalog entities.  Side effects of writes (metrics,
// events, report cache purges) run after the lock is released and never fail
// the write itself.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/review-catalog/internal/catalog"
	"github.com/iliyamo/review-catalog/internal/logging"
	"github.com/iliyamo/review-catalog/internal/metrics"
	"github.com/iliyamo/review-catalog/internal/queue"
)

// sideEffectTimeout bounds event publishing and cache purges after a write.
const sideEffectTimeout = 3 * time.Second

// UserSummary is a point-in-time view of a user.
type UserSummary struct {
	ID          catalog.UserID `json:"id"`
	Name        string         `json:"name"`
	ReviewCount int            `json:"review_count"`
	Tier        catalog.Tier   `json:"tier"`
}

// MovieSummary is a point-in-time view of a movie.
type MovieSummary struct {
	ID          catalog.MovieID `json:"id"`
	Title       string          `json:"title"`
	ReleaseDate string          `json:"release_date"`
	Average     float64         `json:"average"`
	RatingCount int             `json:"rating_count"`
}

// ReviewResult reports the outcome of SubmitReview.  Accepted is false for a
// duplicate review; User and Movie reflect the state after the attempt.
type ReviewResult struct {
	Accepted bool         `json:"accepted"`
	User     UserSummary  `json:"user"`
	Movie    MovieSummary `json:"movie"`
}

// DateLayout is the release date format used in summaries and requests.
const DateLayout = "2006-01-02"

func summarizeUser(u *catalog.User) UserSummary {
	return UserSummary{ID: u.ID(), Name: u.Name(), ReviewCount: u.ReviewCount(), Tier: u.EngagementTier()}
}

func summarizeMovie(m *catalog.Movie) MovieSummary {
	return MovieSummary{
		ID:          m.ID(),
		Title:       m.Title(),
		ReleaseDate: m.ReleaseDate().Format(DateLayout),
		Average:     m.AverageRating(),
		RatingCount: m.RatingCount(),
	}
}

// ReviewService guards one Catalog.  publisher and cache may be nil.
type ReviewService struct {
	mu      sync.Mutex
	catalog *catalog.Catalog

	publisher Publisher
	cache     CacheInvalidator
	now       func() time.Time
	log       zerolog.Logger
}

// NewReviewService wraps c.  A nil publisher disables events and a nil cache
// disables report cache purges.
func NewReviewService(c *catalog.Catalog, publisher Publisher, cache CacheInvalidator) *ReviewService {
	if c == nil {
		panic("nil catalog passed to NewReviewService")
	}
	return &ReviewService{
		catalog:   c,
		publisher: publisher,
		cache:     cache,
		now:       time.Now,
		log:       logging.With().Str("component", "review-service").Logger(),
	}
}

// RegisterUser adds a user with no reviews.
func (s *ReviewService) RegisterUser(ctx context.Context, name string) UserSummary {
	s.mu.Lock()
	u := s.catalog.RegisterUser(name)
	out := summarizeUser(u)
	count := len(s.catalog.Users())
	s.mu.Unlock()

	metrics.CatalogUsers.Set(float64(count))
	s.log.Info().Str("user_id", out.ID.String()).Str("name", name).Msg("user registered")
	s.invalidate(ctx)
	return out
}

// RegisterMovie adds a movie with no ratings.
func (s *ReviewService) RegisterMovie(ctx context.Context, title string, releaseDate time.Time) MovieSummary {
	s.mu.Lock()
	m := s.catalog.RegisterMovie(title, releaseDate)
	out := summarizeMovie(m)
	count := len(s.catalog.Movies())
	s.mu.Unlock()

	metrics.CatalogMovies.Set(float64(count))
	s.log.Info().Str("movie_id", out.ID.String()).Str("title", title).Str("release_date", out.ReleaseDate).Msg("movie registered")
	s.invalidate(ctx)
	return out
}

// Users lists users in registration order.
func (s *ReviewService) Users() []UserSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := s.catalog.Users()
	out := make([]UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, summarizeUser(u))
	}
	return out
}

// Movies lists movies in registration order.
func (s *ReviewService) Movies() []MovieSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return summarizeMovies(s.catalog.Movies())
}

func summarizeMovies(movies []*catalog.Movie) []MovieSummary {
	out := make([]MovieSummary, 0, len(movies))
	for _, m := range movies {
		out = append(out, summarizeMovie(m))
	}
	return out
}

// User looks up one user; the error is catalog.ErrUserNotFound.
func (s *ReviewService) User(id catalog.UserID) (UserSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, err := s.catalog.UserByID(id)
	if err != nil {
		return UserSummary{}, err
	}
	return summarizeUser(u), nil
}

// Movie looks up one movie; the error is catalog.ErrMovieNotFound.
func (s *ReviewService) Movie(id catalog.MovieID) (MovieSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.catalog.MovieByID(id)
	if err != nil {
		return MovieSummary{}, err
	}
	return summarizeMovie(m), nil
}

// SubmitReview records userID's review of movieID.
//
// Unknown ids return catalog.ErrUserNotFound or catalog.ErrMovieNotFound.  An
// out-of-range score returns an error wrapping catalog.ErrInvalidRating.  A
// second review of the same movie is not an error: the result has Accepted
// false and nothing changes.
func (s *ReviewService) SubmitReview(ctx context.Context, userID catalog.UserID, movieID catalog.MovieID, score int, text string) (ReviewResult, error) {
	s.mu.Lock()
	u, err := s.catalog.UserByID(userID)
	if err != nil {
		s.mu.Unlock()
		return ReviewResult{}, err
	}
	m, err := s.catalog.MovieByID(movieID)
	if err != nil {
		s.mu.Unlock()
		return ReviewResult{}, err
	}
	accepted, err := u.SubmitReview(m, score, text)
	res := ReviewResult{Accepted: accepted, User: summarizeUser(u), Movie: summarizeMovie(m)}
	s.mu.Unlock()

	log := s.log.With().Str("user_id", userID.String()).Str("movie_id", movieID.String()).Logger()
	switch {
	case err != nil:
		metrics.RecordReview(metrics.OutcomeInvalid)
		log.Warn().Err(err).Int("score", score).Msg("review rejected")
		return ReviewResult{}, err
	case !accepted:
		metrics.RecordReview(metrics.OutcomeDuplicate)
		log.Info().Msg("user already reviewed this movie")
		return res, nil
	}

	metrics.RecordReview(metrics.OutcomeAccepted)
	log.Info().Int("score", score).Float64("movie_average", res.Movie.Average).Str("tier", string(res.User.Tier)).Msg("review accepted")
	s.publish(ctx, queue.ReviewSubmittedEvent{
		UserID:       res.User.ID.String(),
		UserName:     res.User.Name,
		MovieID:      res.Movie.ID.String(),
		MovieTitle:   res.Movie.Title,
		Score:        score,
		Text:         text,
		MovieAverage: res.Movie.Average,
		ReviewCount:  res.User.ReviewCount,
		Tier:         string(res.User.Tier),
		SubmittedAt:  s.now().UTC().Format(time.RFC3339),
	})
	s.invalidate(ctx)
	return res, nil
}

// RankedCritics returns users ranked by catalog.Catalog.RankedCritics.
func (s *ReviewService) RankedCritics() []UserSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	ranked := s.catalog.RankedCritics()
	out := make([]UserSummary, 0, len(ranked))
	for _, u := range ranked {
		out = append(out, summarizeUser(u))
	}
	return out
}

// TopMovies returns up to n movies, highest average first.
func (s *ReviewService) TopMovies(n int) []MovieSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return summarizeMovies(s.catalog.TopMovies(n))
}

// AverageForPeriod averages ratings of movies released in [start, end].
func (s *ReviewService) AverageForPeriod(start, end time.Time) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.AverageForPeriod(start, end)
}

// AverageForTitle averages the first movie titled title, ignoring case.
func (s *ReviewService) AverageForTitle(title string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.AverageForTitle(title)
}

func (s *ReviewService) publish(ctx context.Context, ev queue.ReviewSubmittedEvent) {
	if s.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()
	err := s.publisher.PublishReviewSubmitted(ctx, ev)
	metrics.RecordPublish(err)
	if err != nil {
		s.log.Warn().Err(err).Str("queue", queue.ReviewQueueName).Msg("publish review event failed")
	}
}

func (s *ReviewService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("report cache purge failed")
	}
}
