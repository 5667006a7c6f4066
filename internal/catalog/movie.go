package catalog

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Score bounds accepted by RecordRating.
const (
	MinScore = 1
	MaxScore = 5
)

// MovieID is the immutable identity of a Movie.  Users key their reviews by
// MovieID so that a movie's changing ratings never affect map lookups.
type MovieID = uuid.UUID

// Movie is a registered title with its release date and the ratings
// submitted for it, in submission order.
type Movie struct {
	id          MovieID
	title       string
	releaseDate time.Time
	ratings     []int
}

func newMovie(title string, releaseDate time.Time) *Movie {
	return &Movie{
		id:          uuid.New(),
		title:       title,
		releaseDate: DateOf(releaseDate),
	}
}

// ID returns the movie's identity.
func (m *Movie) ID() MovieID { return m.id }

// Title returns the title as registered.
func (m *Movie) Title() string { return m.title }

// ReleaseDate returns the release date at UTC midnight.
func (m *Movie) ReleaseDate() time.Time { return m.releaseDate }

// Ratings returns a copy of the ratings in submission order.
func (m *Movie) Ratings() []int {
	out := make([]int, len(m.ratings))
	copy(out, m.ratings)
	return out
}

// RatingCount returns how many ratings have been recorded.
func (m *Movie) RatingCount() int { return len(m.ratings) }

// RecordRating appends score when it lies in [MinScore, MaxScore].  Any other
// score returns an error wrapping ErrInvalidRating and leaves the movie untouched.
func (m *Movie) RecordRating(score int) error {
	if score < MinScore || score > MaxScore {
		return fmt.Errorf("%w: got %d", ErrInvalidRating, score)
	}
	m.ratings = append(m.ratings, score)
	return nil
}

// AverageRating returns the arithmetic mean of the ratings, or 0 when there
// are none.
func (m *Movie) AverageRating() float64 {
	return mean(m.ratings)
}

func mean(scores []int) float64 {
	if len(scores) == 0 {
		return 0
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	return float64(sum) / float64(len(scores))
}

// DateOf truncates t to its calendar date at UTC midnight.  The date is taken
// in t's own location, so 2020-01-01T23:00-03:00 stays on 2020-01-01.
func DateOf(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

// Date builds a calendar date at UTC midnight.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
