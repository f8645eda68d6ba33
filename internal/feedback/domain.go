package feedback

import "time"

// Feedback is a rating and comment left by one participant about another
// within a session.
type Feedback struct {
	ID         int64
	SessionID  int64
	FromUserID int64
	ToUserID   int64
	Rating     int
	Comment    string
	CreatedAt  time.Time
}

// NewFeedback carries fields required to record feedback.
type NewFeedback struct {
	SessionID  int64
	FromUserID int64
	ToUserID   int64
	Rating     int
	Comment    string
}

// Summary aggregates feedback for a session.
type Summary struct {
	SessionID int64
	Count     int
	MeanScore float64
}
