// Package seed loads a YAML description of movies, users and reviews and
// replays it through the review service at startup.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/iliyamo/review-catalog/internal/catalog"
	"github.com/iliyamo/review-catalog/internal/logging"
	"github.com/iliyamo/review-catalog/internal/service"
)

// File mirrors the seed document.
type File struct {
	Movies  []Movie  `yaml:"movies"`
	Users   []User   `yaml:"users"`
	Reviews []Review `yaml:"reviews"`
}

type Movie struct {
	Title       string `yaml:"title"`
	ReleaseDate string `yaml:"release_date"`
}

type User struct {
	Name string `yaml:"name"`
}

// Review refers to its user by name and its movie by title.
type Review struct {
	User  string `yaml:"user"`
	Movie string `yaml:"movie"`
	Score int    `yaml:"score"`
	Text  string `yaml:"text"`
}

// Stats counts what Apply did.
type Stats struct {
	Movies     int
	Users      int
	Reviews    int
	Duplicates int
}

// Load reads and parses a seed file.  Unknown keys are rejected.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed: %w", err)
	}
	defer f.Close()

	out, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("parse seed %s: %w", path, err)
	}
	return out, nil
}

// Parse decodes a seed document held in memory, with the same rules as Load.
func Parse(data []byte) (*File, error) {
	out, err := decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	return out, nil
}

// decode reads one YAML document.  An empty document is an empty seed.
func decode(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var out File
	if err := dec.Decode(&out); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &out, nil
}

// Apply registers the movies, then the users, then submits the reviews, each
// in file order.  A duplicate review is logged and skipped.  An invalid score
// or a reference to an unknown user or movie stops the run; whatever was
// applied before stays applied.
func Apply(ctx context.Context, svc *service.ReviewService, f *File) (Stats, error) {
	log := logging.With().Str("component", "seed").Logger()
	var st Stats

	for i, m := range f.Movies {
		released, err := time.Parse(service.DateLayout, m.ReleaseDate)
		if err != nil {
			return st, fmt.Errorf("movie %d (%q): release_date %q is not YYYY-MM-DD", i, m.Title, m.ReleaseDate)
		}
		svc.RegisterMovie(ctx, m.Title, released)
		st.Movies++
	}
	for _, u := range f.Users {
		svc.RegisterUser(ctx, u.Name)
		st.Users++
	}

	for i, r := range f.Reviews {
		userID, ok := findUser(svc, r.User)
		if !ok {
			return st, fmt.Errorf("review %d: %w: %q", i, catalog.ErrUserNotFound, r.User)
		}
		movieID, ok := findMovie(svc, r.Movie)
		if !ok {
			return st, fmt.Errorf("review %d: %w: %q", i, catalog.ErrMovieNotFound, r.Movie)
		}
		res, err := svc.SubmitReview(ctx, userID, movieID, r.Score, r.Text)
		if err != nil {
			if errors.Is(err, catalog.ErrInvalidRating) {
				return st, fmt.Errorf("review %d (%s on %s): %w", i, r.User, r.Movie, err)
			}
			return st, err
		}
		if !res.Accepted {
			st.Duplicates++
			log.Warn().Str("user", r.User).Str("movie", r.Movie).Msg("skipping duplicate review")
			continue
		}
		st.Reviews++
	}

	log.Info().
		Int("movies", st.Movies).
		Int("users", st.Users).
		Int("reviews", st.Reviews).
		Int("duplicates", st.Duplicates).
		Msg("seed applied")
	return st, nil
}

// findUser returns the first user registered under name.
func findUser(svc *service.ReviewService, name string) (catalog.UserID, bool) {
	for _, u := range svc.Users() {
		if u.Name == name {
			return u.ID, true
		}
	}
	return catalog.UserID{}, false
}

// findMovie returns the first movie whose title matches, ignoring case.
func findMovie(svc *service.ReviewService, title string) (catalog.MovieID, bool) {
	for _, m := range svc.Movies() {
		if strings.EqualFold(m.Title, title) {
			return m.ID, true
		}
	}
	return catalog.MovieID{}, false
}
