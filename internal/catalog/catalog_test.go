package catalog

import (
	"errors"
	"testing"
	"time"
)

func TestRecordRating_Bounds(t *testing.T) {
	for score := -2; score <= 8; score++ {
		m := newMovie("Bounds", Date(2020, 1, 1))
		err := m.RecordRating(score)
		valid := score >= MinScore && score <= MaxScore
		if valid && err != nil {
			t.Fatalf("score %d: unexpected error %v", score, err)
		}
		if !valid {
			if !errors.Is(err, ErrInvalidRating) {
				t.Fatalf("score %d: expected ErrInvalidRating, got %v", score, err)
			}
			if m.RatingCount() != 0 {
				t.Fatalf("score %d: ratings changed to %v", score, m.Ratings())
			}
		}
	}
}

func TestAverageRating(t *testing.T) {
	m := newMovie("Avg", Date(2020, 1, 1))
	if got := m.AverageRating(); got != 0 {
		t.Fatalf("empty average = %v, want 0", got)
	}
	for _, s := range []int{5, 4, 3} {
		if err := m.RecordRating(s); err != nil {
			t.Fatalf("record %d: %v", s, err)
		}
	}
	if got := m.AverageRating(); got != 4.0 {
		t.Fatalf("average = %v, want 4.0", got)
	}
}

func TestRatingsReturnsCopy(t *testing.T) {
	m := newMovie("Copy", Date(2020, 1, 1))
	_ = m.RecordRating(3)
	r := m.Ratings()
	r[0] = 1
	if m.Ratings()[0] != 3 {
		t.Fatalf("Ratings exposed internal slice")
	}
}

func TestSubmitReview_Duplicate(t *testing.T) {
	c := New()
	u := c.RegisterUser("Ana")
	m := c.RegisterMovie("Dup", Date(2021, 3, 3))

	ok, err := u.SubmitReview(m, 4, "good")
	if err != nil || !ok {
		t.Fatalf("first review: ok=%v err=%v", ok, err)
	}
	if u.ReviewCount() != 1 {
		t.Fatalf("review count = %d, want 1", u.ReviewCount())
	}

	ok, err = u.SubmitReview(m, 2, "changed my mind")
	if err != nil {
		t.Fatalf("duplicate review returned error %v", err)
	}
	if ok {
		t.Fatalf("duplicate review accepted")
	}
	if u.ReviewCount() != 1 {
		t.Fatalf("review count = %d after duplicate, want 1", u.ReviewCount())
	}
	if got := m.Ratings(); len(got) != 1 || got[0] != 4 {
		t.Fatalf("ratings = %v after duplicate, want [4]", got)
	}
	if text, _ := u.Review(m.ID()); text != "good" {
		t.Fatalf("review text = %q, want %q", text, "good")
	}
}

func TestSubmitReview_InvalidScoreIsAtomic(t *testing.T) {
	c := New()
	u := c.RegisterUser("Ana")
	m := c.RegisterMovie("Bad", Date(2021, 3, 3))

	ok, err := u.SubmitReview(m, 6, "too much")
	if ok || !errors.Is(err, ErrInvalidRating) {
		t.Fatalf("ok=%v err=%v, want false and ErrInvalidRating", ok, err)
	}
	if u.ReviewCount() != 0 || u.HasReviewed(m.ID()) {
		t.Fatalf("review stored despite invalid score")
	}
	if m.RatingCount() != 0 {
		t.Fatalf("rating stored despite invalid score")
	}

	// the user may still review the movie with a valid score
	ok, err = u.SubmitReview(m, 5, "fixed")
	if !ok || err != nil {
		t.Fatalf("retry: ok=%v err=%v", ok, err)
	}
}

func TestEngagementTier(t *testing.T) {
	tests := []struct {
		reviews int
		want    Tier
	}{
		{0, TierConsumer},
		{1, TierViewer},
		{2, TierViewer},
		{3, TierViewer},
		{4, TierCritic},
		{7, TierCritic},
	}
	for _, tt := range tests {
		c := New()
		u := c.RegisterUser("u")
		for i := 0; i < tt.reviews; i++ {
			m := c.RegisterMovie("m", Date(2020, 1, 1))
			if ok, err := u.SubmitReview(m, 3, ""); !ok || err != nil {
				t.Fatalf("review %d: ok=%v err=%v", i, ok, err)
			}
		}
		if got := u.EngagementTier(); got != tt.want {
			t.Errorf("%d reviews: tier = %s, want %s", tt.reviews, got, tt.want)
		}
	}
}

func reviewMany(t *testing.T, c *Catalog, u *User, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		m := c.RegisterMovie("filler", Date(2000, 1, 1))
		if ok, err := u.SubmitReview(m, 3, ""); !ok || err != nil {
			t.Fatalf("review: ok=%v err=%v", ok, err)
		}
	}
}

func TestRankedCritics_OrdersByTierNameThenCount(t *testing.T) {
	c := New()
	consumer := c.RegisterUser("consumer")
	critic := c.RegisterUser("critic")
	viewerOne := c.RegisterUser("viewer-1")
	viewerThree := c.RegisterUser("viewer-3")
	bigCritic := c.RegisterUser("critic-6")

	reviewMany(t, c, critic, 4)
	reviewMany(t, c, viewerOne, 1)
	reviewMany(t, c, viewerThree, 3)
	reviewMany(t, c, bigCritic, 6)

	got := c.RankedCritics()
	want := []*User{viewerThree, viewerOne, bigCritic, critic, consumer}
	if len(got) != len(want) {
		t.Fatalf("got %d users, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: got %s, want %s", i, got[i].Name(), want[i].Name())
		}
	}
}

func TestRankedCritics_StableForTies(t *testing.T) {
	c := New()
	a := c.RegisterUser("a")
	b := c.RegisterUser("b")
	d := c.RegisterUser("d")
	reviewMany(t, c, a, 2)
	reviewMany(t, c, b, 2)

	got := c.RankedCritics()
	if got[0] != a || got[1] != b || got[2] != d {
		t.Fatalf("order = %s,%s,%s; want a,b,d", got[0].Name(), got[1].Name(), got[2].Name())
	}
	// the catalog's own order is untouched
	if users := c.Users(); users[0] != a || users[1] != b || users[2] != d {
		t.Fatalf("RankedCritics reordered the catalog")
	}
}

func rated(t *testing.T, c *Catalog, title string, released time.Time, scores ...int) *Movie {
	t.Helper()
	m := c.RegisterMovie(title, released)
	for _, s := range scores {
		if err := m.RecordRating(s); err != nil {
			t.Fatalf("record %d: %v", s, err)
		}
	}
	return m
}

func TestTopMovies(t *testing.T) {
	c := New()
	four := rated(t, c, "four", Date(2020, 1, 1), 4)
	five := rated(t, c, "five", Date(2020, 1, 1), 5)
	three := rated(t, c, "three", Date(2020, 1, 1), 3)

	got := c.TopMovies(DefaultTopN)
	want := []*Movie{five, four, three}
	if len(got) != len(want) {
		t.Fatalf("got %d movies, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: got %s, want %s", i, got[i].Title(), want[i].Title())
		}
	}
}

func TestTopMovies_TruncatesAndKeepsTieOrder(t *testing.T) {
	c := New()
	var all []*Movie
	for i := 0; i < 7; i++ {
		all = append(all, rated(t, c, "tie", Date(2020, 1, 1), 4))
	}
	best := rated(t, c, "best", Date(2020, 1, 1), 5)

	got := c.TopMovies(5)
	if len(got) != 5 {
		t.Fatalf("got %d movies, want 5", len(got))
	}
	if got[0] != best {
		t.Fatalf("first = %s, want best", got[0].Title())
	}
	for i := 1; i < 5; i++ {
		if got[i] != all[i-1] {
			t.Fatalf("tie at %d out of registration order", i)
		}
	}
	if n := len(c.TopMovies(0)); n != 0 {
		t.Fatalf("TopMovies(0) returned %d movies", n)
	}
}

func TestAverageForPeriod_Inclusive(t *testing.T) {
	c := New()
	rated(t, c, "on start", Date(2020, 1, 1), 2)
	rated(t, c, "on end", Date(2020, 12, 31), 4)
	rated(t, c, "before", Date(2019, 12, 31), 5)
	rated(t, c, "after", Date(2021, 1, 1), 5)

	if got := c.AverageForPeriod(Date(2020, 1, 1), Date(2020, 12, 31)); got != 3.0 {
		t.Fatalf("average = %v, want 3.0", got)
	}
	// bounds with a time of day still include the whole day
	start := time.Date(2020, 1, 1, 18, 30, 0, 0, time.UTC)
	end := time.Date(2020, 12, 31, 0, 0, 1, 0, time.UTC)
	if got := c.AverageForPeriod(start, end); got != 3.0 {
		t.Fatalf("average with times = %v, want 3.0", got)
	}
	if got := c.AverageForPeriod(Date(1990, 1, 1), Date(1990, 12, 31)); got != 0 {
		t.Fatalf("empty period average = %v, want 0", got)
	}
}

func TestAverageForPeriod_UnratedMoviesContributeNothing(t *testing.T) {
	c := New()
	rated(t, c, "rated", Date(2020, 5, 5), 5, 3)
	rated(t, c, "unrated", Date(2020, 6, 6))
	if got := c.AverageForPeriod(Date(2020, 1, 1), Date(2020, 12, 31)); got != 4.0 {
		t.Fatalf("average = %v, want 4.0", got)
	}
}

func TestAverageForTitle(t *testing.T) {
	c := New()
	rated(t, c, "Dune", Date(2021, 10, 22), 5)
	rated(t, c, "dune", Date(1984, 12, 14), 2)
	rated(t, c, "Unrated", Date(2000, 1, 1))

	if got := c.AverageForTitle("DUNE"); got != 5.0 {
		t.Fatalf("first match average = %v, want 5.0", got)
	}
	if got := c.AverageForTitle("Unrated"); got != 0 {
		t.Fatalf("unrated average = %v, want 0", got)
	}
	if got := c.AverageForTitle("missing"); got != 0 {
		t.Fatalf("missing average = %v, want 0", got)
	}
	if got := c.AverageForTitle("Dun"); got != 0 {
		t.Fatalf("partial title matched, average = %v", got)
	}
}

func TestLookups(t *testing.T) {
	c := New()
	u := c.RegisterUser("Ana")
	m := c.RegisterMovie("Alien", Date(1979, 5, 25))

	if got, err := c.UserByID(u.ID()); err != nil || got != u {
		t.Fatalf("UserByID: %v %v", got, err)
	}
	if got, err := c.MovieByID(m.ID()); err != nil || got != m {
		t.Fatalf("MovieByID: %v %v", got, err)
	}
	if _, err := c.UserByID(m.ID()); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("UserByID unknown: %v", err)
	}
	if _, err := c.MovieByTitle("aliens"); !errors.Is(err, ErrMovieNotFound) {
		t.Fatalf("MovieByTitle unknown: %v", err)
	}
}

func TestEndToEndScenario(t *testing.T) {
	c := New()
	joao := c.RegisterUser("João")
	maria := c.RegisterUser("Maria")
	pedro := c.RegisterUser("Pedro")

	a := c.RegisterMovie("Filme A", Date(2020, 1, 1))
	b := c.RegisterMovie("Filme B", Date(2021, 6, 15))
	cc := c.RegisterMovie("Filme C", Date(2019, 12, 25))

	for _, r := range []struct {
		u     *User
		m     *Movie
		score int
	}{{joao, a, 5}, {maria, b, 4}, {pedro, cc, 3}} {
		if ok, err := r.u.SubmitReview(r.m, r.score, "review"); !ok || err != nil {
			t.Fatalf("%s review: ok=%v err=%v", r.u.Name(), ok, err)
		}
	}

	if got := c.AverageForTitle("filme a"); got != 5.0 {
		t.Fatalf("title average = %v, want 5.0", got)
	}
	if got := c.AverageForPeriod(Date(2020, 1, 1), Date(2022, 12, 31)); got != 4.5 {
		t.Fatalf("period average = %v, want 4.5", got)
	}
	top := c.TopMovies(DefaultTopN)
	if len(top) != 3 || top[0] != a || top[1] != b || top[2] != cc {
		t.Fatalf("top movies out of order")
	}
	critics := c.RankedCritics()
	if critics[0] != joao || critics[1] != maria || critics[2] != pedro {
		t.Fatalf("critics = %s,%s,%s; want registration order", critics[0].Name(), critics[1].Name(), critics[2].Name())
	}
}
