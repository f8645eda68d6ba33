package assignment

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/praxis-hq/praxis/internal/shared"
)

// RepositoryPort defines data access methods for assignments.
type RepositoryPort interface {
	ListAll(ctx context.Context) ([]Assignment, error)
	ListBySession(ctx context.Context, sessionID int64) ([]Assignment, error)
	GetByID(ctx context.Context, id int64) (Assignment, error)
	Create(ctx context.Context, input NewAssignment) (Assignment, error)
	Update(ctx context.Context, id int64, input NewAssignment) (Assignment, error)
	Delete(ctx context.Context, id int64) error
	Submit(ctx context.Context, input NewSubmission) (Submission, error)
	ListSubmissions(ctx context.Context, assignmentID int64) ([]Submission, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const assignmentColumns = `id, session_id, title, description, reference_url, due_date, created_at, updated_at`

// ListAll returns every assignment across all sessions.
func (r *Repository) ListAll(ctx context.Context) ([]Assignment, error) {
	return r.query(ctx, `SELECT `+assignmentColumns+` FROM assignments ORDER BY due_date, id`)
}

// ListBySession returns assignments for one session.
func (r *Repository) ListBySession(ctx context.Context, sessionID int64) ([]Assignment, error) {
	return r.query(ctx, `SELECT `+assignmentColumns+` FROM assignments WHERE session_id = $1 ORDER BY due_date, id`, sessionID)
}

// GetByID fetches one assignment.
func (r *Repository) GetByID(ctx context.Context, id int64) (Assignment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+assignmentColumns+` FROM assignments WHERE id = $1`, id)
	return scanAssignment(row)
}

// Create inserts an assignment under a session.
func (r *Repository) Create(ctx context.Context, input NewAssignment) (Assignment, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO assignments (session_id, title, description, reference_url, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		RETURNING `+assignmentColumns,
		input.SessionID, input.Title, input.Description, input.ReferenceURL, input.DueDate)
	return scanAssignment(row)
}

// Update patches an assignment.
func (r *Repository) Update(ctx context.Context, id int64, input NewAssignment) (Assignment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE assignments SET title = $2, description = $3, reference_url = $4, due_date = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+assignmentColumns,
		id, input.Title, input.Description, input.ReferenceURL, input.DueDate)
	return scanAssignment(row)
}

// Delete removes an assignment; submissions cascade.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM assignments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Submit records a hand-in, replacing any earlier one by the same user.
func (r *Repository) Submit(ctx context.Context, input NewSubmission) (Submission, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO assignment_submissions (assignment_id, user_id, submission_url, note, completed_on)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (assignment_id, user_id) DO UPDATE
			SET submission_url = EXCLUDED.submission_url, note = EXCLUDED.note, completed_on = EXCLUDED.completed_on
		RETURNING id, assignment_id, user_id, submission_url, note, completed_on`,
		input.AssignmentID, input.UserID, input.SubmissionURL, input.Note)
	var sub Submission
	if err := row.Scan(&sub.ID, &sub.AssignmentID, &sub.UserID, &sub.SubmissionURL, &sub.Note, &sub.CompletedOn); err != nil {
		return Submission{}, err
	}
	return sub, nil
}

// ListSubmissions returns all hand-ins for an assignment with user names.
func (r *Repository) ListSubmissions(ctx context.Context, assignmentID int64) ([]Submission, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT s.id, s.assignment_id, s.user_id, u.name, s.submission_url, s.note, s.completed_on
		FROM assignment_submissions s
		JOIN users u ON u.id = s.user_id
		WHERE s.assignment_id = $1
		ORDER BY s.completed_on`, assignmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Submission
	for rows.Next() {
		var sub Submission
		if err := rows.Scan(&sub.ID, &sub.AssignmentID, &sub.UserID, &sub.UserName, &sub.SubmissionURL, &sub.Note, &sub.CompletedOn); err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (r *Repository) query(ctx context.Context, sql string, args ...any) ([]Assignment, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAssignment(row pgx.Row) (Assignment, error) {
	var a Assignment
	err := row.Scan(&a.ID, &a.SessionID, &a.Title, &a.Description, &a.ReferenceURL, &a.DueDate, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Assignment{}, shared.ErrNotFound
		}
		return Assignment{}, err
	}
	return a, nil
}

var _ RepositoryPort = (*Repository)(nil)
