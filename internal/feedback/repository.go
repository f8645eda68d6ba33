package feedback

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryPort defines data access methods for feedback.
type RepositoryPort interface {
	Create(ctx context.Context, input NewFeedback) (Feedback, error)
	ListBySession(ctx context.Context, sessionID int64) ([]Feedback, error)
	SummaryBySession(ctx context.Context, sessionID int64) (Summary, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a feedback record.
func (r *Repository) Create(ctx context.Context, input NewFeedback) (Feedback, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO feedbacks (session_id, from_user_id, to_user_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
		RETURNING id, session_id, from_user_id, to_user_id, rating, comment, created_at`,
		input.SessionID, input.FromUserID, input.ToUserID, input.Rating, input.Comment)
	var fb Feedback
	if err := row.Scan(&fb.ID, &fb.SessionID, &fb.FromUserID, &fb.ToUserID, &fb.Rating, &fb.Comment, &fb.CreatedAt); err != nil {
		return Feedback{}, err
	}
	return fb, nil
}

// ListBySession returns all feedback left within a session.
func (r *Repository) ListBySession(ctx context.Context, sessionID int64) ([]Feedback, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, session_id, from_user_id, to_user_id, rating, comment, created_at
		FROM feedbacks WHERE session_id = $1 ORDER BY created_at`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Feedback
	for rows.Next() {
		var fb Feedback
		if err := rows.Scan(&fb.ID, &fb.SessionID, &fb.FromUserID, &fb.ToUserID, &fb.Rating, &fb.Comment, &fb.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, fb)
	}
	return out, rows.Err()
}

// SummaryBySession aggregates count and mean rating for a session.
func (r *Repository) SummaryBySession(ctx context.Context, sessionID int64) (Summary, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(AVG(rating), 0)
		FROM feedbacks WHERE session_id = $1`, sessionID)
	summary := Summary{SessionID: sessionID}
	if err := row.Scan(&summary.Count, &summary.MeanScore); err != nil {
		return Summary{}, err
	}
	return summary, nil
}

var _ RepositoryPort = (*Repository)(nil)
