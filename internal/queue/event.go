package queue

// ReviewQueueName is the durable queue review events are published to.
const ReviewQueueName = "review.submitted"

// ReviewSubmittedEvent is published after a review is accepted.  It carries
// the reviewer's resulting tier and the movie's new average so downstream
// consumers can log or notify without querying the catalog.
type ReviewSubmittedEvent struct {
	UserID       string  `json:"user_id"`
	UserName     string  `json:"user_name"`
	MovieID      string  `json:"movie_id"`
	MovieTitle   string  `json:"movie_title"`
	Score        int     `json:"score"`
	Text         string  `json:"text"`
	MovieAverage float64 `json:"movie_average"`
	ReviewCount  int     `json:"review_count"`
	Tier         string  `json:"tier"`
	SubmittedAt  string  `json:"submitted_at"`
}
