package catalog

import "github.com/google/uuid"

// UserID is the immutable identity of a User.
type UserID = uuid.UUID

// Tier labels how engaged a user is, derived from the number of reviews.
type Tier string

const (
	TierConsumer Tier = "Consumer" // no reviews
	TierViewer   Tier = "Viewer"   // 1 to 3 reviews
	TierCritic   Tier = "Critic"   // 4 or more
)

// viewerMaxReviews is the last review count still labelled Viewer.
const viewerMaxReviews = 3

// TierFor classifies a review count.
func TierFor(reviewCount int) Tier {
	switch {
	case reviewCount <= 0:
		return TierConsumer
	case reviewCount <= viewerMaxReviews:
		return TierViewer
	default:
		return TierCritic
	}
}

// User is a registered reviewer.  Reviews hold a non-owning reference to the
// movie through its MovieID; the Catalog owns the Movie itself.
type User struct {
	id      UserID
	name    string
	reviews map[MovieID]string
	order   []MovieID // reviewed movies, oldest first
}

func newUser(name string) *User {
	return &User{
		id:      uuid.New(),
		name:    name,
		reviews: make(map[MovieID]string),
	}
}

// ID returns the user's identity.
func (u *User) ID() UserID { return u.id }

// Name returns the name as registered.
func (u *User) Name() string { return u.name }

// ReviewCount returns the number of movies this user has reviewed.
func (u *User) ReviewCount() int { return len(u.reviews) }

// EngagementTier returns TierFor(u.ReviewCount()).
func (u *User) EngagementTier() Tier { return TierFor(u.ReviewCount()) }

// HasReviewed reports whether the user already reviewed the movie.
func (u *User) HasReviewed(id MovieID) bool {
	_, ok := u.reviews[id]
	return ok
}

// Review returns the review text written for the movie, if any.
func (u *User) Review(id MovieID) (string, bool) {
	text, ok := u.reviews[id]
	return text, ok
}

// ReviewedMovies returns the ids of reviewed movies in the order reviewed.
func (u *User) ReviewedMovies() []MovieID {
	out := make([]MovieID, len(u.order))
	copy(out, u.order)
	return out
}

// SubmitReview records score on m and stores text as this user's review of it.
//
// A second review of the same movie is not an error: it returns false and
// changes nothing.  An invalid score returns the ErrInvalidRating failure from
// Movie.RecordRating and no review is stored, so the rating and the text are
// always recorded together or not at all.
func (u *User) SubmitReview(m *Movie, score int, text string) (bool, error) {
	if u.HasReviewed(m.ID()) {
		return false, nil
	}
	if err := m.RecordRating(score); err != nil {
		return false, err
	}
	u.reviews[m.ID()] = text
	u.order = append(u.order, m.ID())
	return true, nil
}
