// Package catalog holds the in-memory movie and user catalog together with the
// report queries computed over it: ranked critics, top movies and average
// ratings by release period or by title.
//
// Nothing in this package is safe for concurrent use.  Hosts that share a
// Catalog across goroutines must serialize access themselves (see
// service.ReviewService).
package catalog

import "errors"

// ErrInvalidRating is returned when a score falls outside [MinScore, MaxScore].
// Callers decide whether to retry with a corrected score.
var ErrInvalidRating = errors.New("rating must be between 1 and 5")

// ErrMovieNotFound is returned by movie lookups that match nothing.
var ErrMovieNotFound = errors.New("movie not found")

// ErrUserNotFound is returned by user lookups that match nothing.
var ErrUserNotFound = errors.New("user not found")
