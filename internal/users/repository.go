package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/praxis-hq/praxis/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	List(ctx context.Context) ([]User, error)
	ListAdmins(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, id int64) (User, error)
	Create(ctx context.Context, user NewUser, passwordHash string) (User, error)
	Update(ctx context.Context, id int64, update UserUpdate) (User, error)
	SetAdmin(ctx context.Context, id int64, isAdmin bool) (User, error)
	Delete(ctx context.Context, id int64) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, name, username, email, is_admin, created_at, updated_at`

// List returns all users ordered by id.
func (r *Repository) List(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

// ListAdmins returns users carrying the global admin flag.
func (r *Repository) ListAdmins(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE is_admin ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

// GetByID fetches a single user.
func (r *Repository) GetByID(ctx context.Context, id int64) (User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// Create inserts a new account.
func (r *Repository) Create(ctx context.Context, user NewUser, passwordHash string) (User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (name, username, email, password_hash, is_admin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, false, now(), now())
		RETURNING `+userColumns,
		user.Name, user.Username, user.Email, passwordHash)
	created, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, shared.ErrConflict
		}
		return User{}, err
	}
	return created, nil
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (class 23505), possibly wrapped.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Update patches mutable profile fields.
func (r *Repository) Update(ctx context.Context, id int64, update UserUpdate) (User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users SET name = $2, email = $3, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		id, update.Name, update.Email)
	return scanUser(row)
}

// SetAdmin flips the global admin flag.
func (r *Repository) SetAdmin(ctx context.Context, id int64, isAdmin bool) (User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users SET is_admin = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		id, isAdmin)
	return scanUser(row)
}

// Delete removes an account.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func collectUsers(rows pgx.Rows) ([]User, error) {
	var out []User
	for rows.Next() {
		var user User
		if err := rows.Scan(&user.ID, &user.Name, &user.Username, &user.Email, &user.IsAdmin, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanUser(row pgx.Row) (User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Name, &user.Username, &user.Email, &user.IsAdmin, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

var _ RepositoryPort = (*Repository)(nil)
