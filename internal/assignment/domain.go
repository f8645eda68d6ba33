package assignment

import "time"

// Assignment is coursework attached to a session.
type Assignment struct {
	ID           int64
	SessionID    int64
	Title        string
	Description  string
	ReferenceURL string
	DueDate      time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Submission records a candidate handing in work for an assignment.
type Submission struct {
	ID            int64
	AssignmentID  int64
	UserID        int64
	UserName      string
	SubmissionURL string
	Note          string
	CompletedOn   time.Time
}

// NewAssignment carries fields required to create coursework.
type NewAssignment struct {
	SessionID    int64
	Title        string
	Description  string
	ReferenceURL string
	DueDate      time.Time
}

// NewSubmission carries the candidate's hand-in.
type NewSubmission struct {
	AssignmentID  int64
	UserID        int64
	SubmissionURL string
	Note          string
}
