package catalog

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

// DefaultTopN is the length of the top movies report when callers do not
// choose one.
const DefaultTopN = 5

// Catalog owns every registered user and movie, in registration order.
// Names and titles are not required to be unique.
type Catalog struct {
	users  []*User
	movies []*Movie
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{}
}

// RegisterUser creates a user with no reviews and appends it to the catalog.
func (c *Catalog) RegisterUser(name string) *User {
	u := newUser(name)
	c.users = append(c.users, u)
	return u
}

// RegisterMovie creates a movie with no ratings and appends it to the catalog.
// Only the calendar date of releaseDate is kept.
func (c *Catalog) RegisterMovie(title string, releaseDate time.Time) *Movie {
	m := newMovie(title, releaseDate)
	c.movies = append(c.movies, m)
	return m
}

// Users returns the registered users in registration order.
func (c *Catalog) Users() []*User { return slices.Clone(c.users) }

// Movies returns the registered movies in registration order.
func (c *Catalog) Movies() []*Movie { return slices.Clone(c.movies) }

// UserByID finds a registered user.
func (c *Catalog) UserByID(id UserID) (*User, error) {
	for _, u := range c.users {
		if u.id == id {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

// MovieByID finds a registered movie.
func (c *Catalog) MovieByID(id MovieID) (*Movie, error) {
	for _, m := range c.movies {
		if m.id == id {
			return m, nil
		}
	}
	return nil, ErrMovieNotFound
}

// MovieByTitle returns the first movie, in registration order, whose title
// equals title ignoring case.
func (c *Catalog) MovieByTitle(title string) (*Movie, error) {
	for _, m := range c.movies {
		if strings.EqualFold(m.title, title) {
			return m, nil
		}
	}
	return nil, ErrMovieNotFound
}

// RankedCritics orders users by engagement tier and then review count, both
// descending.  Tiers compare by display name ("Consumer" < "Critic" <
// "Viewer"), not by how engaged they are, so Viewers rank above Critics.
// Users with equal keys keep registration order.
func (c *Catalog) RankedCritics() []*User {
	out := slices.Clone(c.users)
	slices.SortStableFunc(out, func(a, b *User) int {
		if n := cmp.Compare(b.EngagementTier(), a.EngagementTier()); n != 0 {
			return n
		}
		return cmp.Compare(b.ReviewCount(), a.ReviewCount())
	})
	return out
}

// TopMovies returns up to n movies ordered by average rating, highest first.
// Movies with equal averages keep registration order.
func (c *Catalog) TopMovies(n int) []*Movie {
	if n <= 0 {
		return []*Movie{}
	}
	out := slices.Clone(c.movies)
	slices.SortStableFunc(out, func(a, b *Movie) int {
		return cmp.Compare(b.AverageRating(), a.AverageRating())
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// AverageForPeriod averages every rating of every movie released between
// start and end, both dates included.  It returns 0 when no rating qualifies.
func (c *Catalog) AverageForPeriod(start, end time.Time) float64 {
	from, to := DateOf(start), DateOf(end)
	var scores []int
	for _, m := range c.movies {
		if m.releaseDate.Before(from) || m.releaseDate.After(to) {
			continue
		}
		scores = append(scores, m.ratings...)
	}
	return mean(scores)
}

// AverageForTitle returns the average rating of the first movie titled title
// (ignoring case), or 0 when there is none.
func (c *Catalog) AverageForTitle(title string) float64 {
	m, err := c.MovieByTitle(title)
	if err != nil {
		return 0
	}
	return m.AverageRating()
}
