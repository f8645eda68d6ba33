package session

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/praxis-hq/praxis/internal/authz"
	"github.com/praxis-hq/praxis/internal/platform/db"
	"github.com/praxis-hq/praxis/internal/shared"
)

// RepositoryPort defines data access methods for sessions.
type RepositoryPort interface {
	List(ctx context.Context) ([]Session, error)
	ListUpcoming(ctx context.Context) ([]Session, error)
	ListToday(ctx context.Context) ([]Session, error)
	ListByUser(ctx context.Context, userID int64) ([]Session, error)
	GetByID(ctx context.Context, id int64) (Session, error)
	Create(ctx context.Context, input NewSession) (Session, error)
	Update(ctx context.Context, id int64, input NewSession) (Session, error)
	Delete(ctx context.Context, id int64) error
	AddAssignees(ctx context.Context, sessionID int64, assignees []AssigneeInput) error
	RemoveAssignees(ctx context.Context, sessionID int64, userIDs []int64) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const sessionColumns = `id, training_id, title, description, session_date, start_time, end_time, status, created_at, updated_at`

// List returns all sessions ordered by date.
func (r *Repository) List(ctx context.Context) ([]Session, error) {
	return r.query(ctx, `SELECT `+sessionColumns+` FROM sessions ORDER BY session_date, id`)
}

// ListUpcoming returns sessions scheduled from tomorrow on.
func (r *Repository) ListUpcoming(ctx context.Context) ([]Session, error) {
	return r.query(ctx, `
		SELECT `+sessionColumns+` FROM sessions
		WHERE session_date > current_date AND status IN ('scheduled', 'in_progress')
		ORDER BY session_date, id`)
}

// ListToday returns sessions scheduled for the current day.
func (r *Repository) ListToday(ctx context.Context) ([]Session, error) {
	return r.query(ctx, `
		SELECT `+sessionColumns+` FROM sessions
		WHERE session_date = current_date AND status IN ('scheduled', 'in_progress')
		ORDER BY start_time, id`)
}

// ListByUser returns sessions the user is assigned to in any role.
func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]Session, error) {
	return r.query(ctx, `
		SELECT DISTINCT s.id, s.training_id, s.title, s.description, s.session_date, s.start_time, s.end_time, s.status, s.created_at, s.updated_at
		FROM sessions s
		JOIN user_sessions us ON us.session_id = s.id
		WHERE us.user_id = $1
		ORDER BY s.session_date, s.id`, userID)
}

// GetByID fetches one session with its role assignments.
func (r *Repository) GetByID(ctx context.Context, id int64) (Session, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id)
	sess, err := scanSession(row)
	if err != nil {
		return Session{}, err
	}
	assignments, err := r.loadAssignments(ctx, id)
	if err != nil {
		return Session{}, err
	}
	sess.Assignments = assignments
	return sess, nil
}

// Create schedules a new session.
func (r *Repository) Create(ctx context.Context, input NewSession) (Session, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO sessions (training_id, title, description, session_date, start_time, end_time, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		RETURNING `+sessionColumns,
		input.TrainingID, input.Title, input.Description, input.Date, input.StartTime, input.EndTime, string(input.Status))
	return scanSession(row)
}

// Update patches a session.
func (r *Repository) Update(ctx context.Context, id int64, input NewSession) (Session, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE sessions
		SET training_id = $2, title = $3, description = $4, session_date = $5, start_time = $6, end_time = $7, status = $8, updated_at = now()
		WHERE id = $1
		RETURNING `+sessionColumns,
		id, input.TrainingID, input.Title, input.Description, input.Date, input.StartTime, input.EndTime, string(input.Status))
	return scanSession(row)
}

// Delete removes a session; assignments cascade.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// AddAssignees upserts per-session role assignments.
func (r *Repository) AddAssignees(ctx context.Context, sessionID int64, assignees []AssigneeInput) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, a := range assignees {
			role := authz.ParseRole(a.Role)
			switch role {
			case authz.RoleTrainer, authz.RoleModerator, authz.RoleCandidate:
			default:
				return errors.New("session: unknown assignment role")
			}
			if _, err := tx.Exec(ctx, `
				INSERT INTO user_sessions (session_id, user_id, role, created_at)
				VALUES ($1, $2, $3, now())
				ON CONFLICT (session_id, user_id) DO UPDATE SET role = EXCLUDED.role`,
				sessionID, a.UserID, role.String()); err != nil {
				return err
			}
		}
		return nil
	})
}

// RemoveAssignees deletes per-session role assignments.
func (r *Repository) RemoveAssignees(ctx context.Context, sessionID int64, userIDs []int64) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM user_sessions WHERE session_id = $1 AND user_id = ANY($2)`,
		sessionID, userIDs)
	return err
}

func (r *Repository) query(ctx context.Context, sql string, args ...any) ([]Session, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

func (r *Repository) loadAssignments(ctx context.Context, sessionID int64) ([]Assignment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT us.user_id, u.name, us.role
		FROM user_sessions us
		JOIN users u ON u.id = us.user_id
		WHERE us.session_id = $1
		ORDER BY us.user_id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var assignments []Assignment
	for rows.Next() {
		var a Assignment
		var role string
		if err := rows.Scan(&a.UserID, &a.UserName, &role); err != nil {
			return nil, err
		}
		a.Role = authz.ParseRole(role)
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

func scanSession(row pgx.Row) (Session, error) {
	var sess Session
	var status string
	err := row.Scan(&sess.ID, &sess.TrainingID, &sess.Title, &sess.Description, &sess.Date, &sess.StartTime, &sess.EndTime, &status, &sess.CreatedAt, &sess.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Session{}, shared.ErrNotFound
		}
		return Session{}, err
	}
	sess.Status = ParseStatus(status)
	return sess, nil
}

var _ RepositoryPort = (*Repository)(nil)
