// Package demo runs the sample review session used by `server demo` and
// renders the catalog reports as plain text.
package demo

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/iliyamo/review-catalog/internal/catalog"
	"github.com/iliyamo/review-catalog/internal/service"
)

// PeriodStart and PeriodEnd bound the period report printed by Report.
var (
	PeriodStart = catalog.Date(2020, time.January, 1)
	PeriodEnd   = catalog.Date(2022, time.December, 31)
)

// TitleQuery is the title whose average Report prints.
const TitleQuery = "Filme A"

// Populate registers three movies and three users and submits one review
// per user.
func Populate(ctx context.Context, svc *service.ReviewService) error {
	a := svc.RegisterMovie(ctx, "Filme A", catalog.Date(2020, time.January, 1))
	b := svc.RegisterMovie(ctx, "Filme B", catalog.Date(2021, time.June, 15))
	c := svc.RegisterMovie(ctx, "Filme C", catalog.Date(2019, time.December, 25))

	joao := svc.RegisterUser(ctx, "João")
	maria := svc.RegisterUser(ctx, "Maria")
	pedro := svc.RegisterUser(ctx, "Pedro")

	reviews := []struct {
		user  catalog.UserID
		movie catalog.MovieID
		score int
		text  string
	}{
		{joao.ID, a.ID, 5, "Ótimo filme!"},
		{maria.ID, b.ID, 4, "Muito bom!"},
		{pedro.ID, c.ID, 3, "Bom, mas poderia ser melhor."},
	}
	for _, r := range reviews {
		if _, err := svc.SubmitReview(ctx, r.user, r.movie, r.score, r.text); err != nil {
			return fmt.Errorf("submit review: %w", err)
		}
	}
	return nil
}

// Report writes the four catalog reports to w.
func Report(w io.Writer, svc *service.ReviewService) error {
	ew := &errWriter{w: w}

	ew.printf("Top critics:\n")
	for _, u := range svc.RankedCritics() {
		ew.printf("%s - %s\n", u.Name, u.Tier)
	}

	ew.printf("\nTop %d movies:\n", catalog.DefaultTopN)
	for _, m := range svc.TopMovies(catalog.DefaultTopN) {
		ew.printf("%s - average: %.1f\n", m.Title, m.Average)
	}

	ew.printf("\nAverage rating of movies released between %s and %s: %.1f\n",
		PeriodStart.Format(service.DateLayout), PeriodEnd.Format(service.DateLayout),
		svc.AverageForPeriod(PeriodStart, PeriodEnd))
	ew.printf("\nAverage rating of %q: %.1f\n", TitleQuery, svc.AverageForTitle(TitleQuery))
	return ew.err
}

// errWriter keeps the first write error and drops later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
