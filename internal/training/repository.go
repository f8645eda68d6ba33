package training

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/praxis-hq/praxis/internal/authz"
	"github.com/praxis-hq/praxis/internal/platform/db"
	"github.com/praxis-hq/praxis/internal/shared"
)

// RepositoryPort defines data access methods for trainings.
type RepositoryPort interface {
	List(ctx context.Context) ([]Training, error)
	ListByUser(ctx context.Context, userID int64) ([]Training, error)
	GetByID(ctx context.Context, id int64) (Training, error)
	Create(ctx context.Context, input NewTraining) (Training, error)
	Update(ctx context.Context, id int64, input NewTraining) (Training, error)
	Delete(ctx context.Context, id int64) error
	AddMembers(ctx context.Context, trainingID int64, members []MemberInput) error
	RemoveMembers(ctx context.Context, trainingID int64, userIDs []int64) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const trainingColumns = `id, title, description, start_date, end_date, created_at, updated_at`

// List returns all trainings with their member rosters.
func (r *Repository) List(ctx context.Context) ([]Training, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+trainingColumns+` FROM trainings ORDER BY start_date, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list, err := collectTrainings(rows)
	if err != nil {
		return nil, err
	}
	return r.attachMembers(ctx, list)
}

// ListByUser returns trainings the user is a member of.
func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]Training, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT t.id, t.title, t.description, t.start_date, t.end_date, t.created_at, t.updated_at
		FROM trainings t
		JOIN training_users tu ON tu.training_id = t.id
		WHERE tu.user_id = $1
		ORDER BY t.start_date, t.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list, err := collectTrainings(rows)
	if err != nil {
		return nil, err
	}
	return r.attachMembers(ctx, list)
}

// GetByID fetches one training with its roster.
func (r *Repository) GetByID(ctx context.Context, id int64) (Training, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+trainingColumns+` FROM trainings WHERE id = $1`, id)
	tr, err := scanTraining(row)
	if err != nil {
		return Training{}, err
	}
	members, err := r.loadMembers(ctx, id)
	if err != nil {
		return Training{}, err
	}
	tr.Members = members
	return tr, nil
}

// Create inserts a new program.
func (r *Repository) Create(ctx context.Context, input NewTraining) (Training, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO trainings (title, description, start_date, end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		RETURNING `+trainingColumns,
		input.Title, input.Description, input.StartDate, input.EndDate)
	return scanTraining(row)
}

// Update patches a program.
func (r *Repository) Update(ctx context.Context, id int64, input NewTraining) (Training, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE trainings SET title = $2, description = $3, start_date = $4, end_date = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+trainingColumns,
		id, input.Title, input.Description, input.StartDate, input.EndDate)
	return scanTraining(row)
}

// Delete removes a program; memberships and sessions cascade.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM trainings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// AddMembers upserts roster entries for a training.
func (r *Repository) AddMembers(ctx context.Context, trainingID int64, members []MemberInput) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, m := range members {
			role := authz.ParseRole(m.Role)
			if role == authz.RoleUnknown {
				return errors.New("training: unknown member role")
			}
			if _, err := tx.Exec(ctx, `
				INSERT INTO training_users (training_id, user_id, role, created_at)
				VALUES ($1, $2, $3, now())
				ON CONFLICT (training_id, user_id) DO UPDATE SET role = EXCLUDED.role`,
				trainingID, m.UserID, role.String()); err != nil {
				return err
			}
		}
		return nil
	})
}

// RemoveMembers deletes roster entries for a training.
func (r *Repository) RemoveMembers(ctx context.Context, trainingID int64, userIDs []int64) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM training_users WHERE training_id = $1 AND user_id = ANY($2)`,
		trainingID, userIDs)
	return err
}

func (r *Repository) attachMembers(ctx context.Context, list []Training) ([]Training, error) {
	for i := range list {
		members, err := r.loadMembers(ctx, list[i].ID)
		if err != nil {
			return nil, err
		}
		list[i].Members = members
	}
	return list, nil
}

func (r *Repository) loadMembers(ctx context.Context, trainingID int64) ([]Membership, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT tu.user_id, u.name, tu.role
		FROM training_users tu
		JOIN users u ON u.id = tu.user_id
		WHERE tu.training_id = $1
		ORDER BY tu.user_id`, trainingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var members []Membership
	for rows.Next() {
		var m Membership
		var role string
		if err := rows.Scan(&m.UserID, &m.UserName, &role); err != nil {
			return nil, err
		}
		m.Role = authz.ParseRole(role)
		members = append(members, m)
	}
	return members, rows.Err()
}

func collectTrainings(rows pgx.Rows) ([]Training, error) {
	var out []Training
	for rows.Next() {
		var tr Training
		if err := rows.Scan(&tr.ID, &tr.Title, &tr.Description, &tr.StartDate, &tr.EndDate, &tr.CreatedAt, &tr.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanTraining(row pgx.Row) (Training, error) {
	var tr Training
	err := row.Scan(&tr.ID, &tr.Title, &tr.Description, &tr.StartDate, &tr.EndDate, &tr.CreatedAt, &tr.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Training{}, shared.ErrNotFound
		}
		return Training{}, err
	}
	return tr, nil
}

var _ RepositoryPort = (*Repository)(nil)
