package mysqlrepo

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/allclear/internal/model"
	"github.com/iliyamo/allclear/internal/repository"
)

// UserRepo mirrors the 'users' table.
type UserRepo struct{ db *sql.DB }

const userCols = "id,first_name,last_name,email,password_hash,is_active,last_login,created_at,updated_at"

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var (
		u         model.User
		id        uint64
		lastLogin sql.NullTime
	)
	err := row.Scan(&id, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.IsActive, &lastLogin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, translate(err)
	}
	u.ID = formatID(id)
	if lastLogin.Valid {
		u.LastLogin = lastLogin.Time
	}
	return u, nil
}

// Create inserts the user and returns its ID through u.ID.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO users (first_name,last_name,email,password_hash,is_active,created_at,updated_at) VALUES (?,?,?,?,?,?,?)",
		u.FirstName, u.LastName, u.Email, u.PasswordHash, u.IsActive, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = formatID(uint64(id))
	return nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	n, ok := parseID(id)
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return scanUser(r.db.QueryRowContext(ctx, "SELECT "+userCols+" FROM users WHERE id=? LIMIT 1", n))
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, "SELECT "+userCols+" FROM users WHERE email=? LIMIT 1", email))
}

// Update writes name and email.
func (r *UserRepo) Update(ctx context.Context, u model.User) error {
	n, ok := parseID(u.ID)
	if !ok {
		return repository.ErrNotFound
	}
	res, err := r.db.ExecContext(ctx,
		"UPDATE users SET first_name=?, last_name=?, email=?, updated_at=? WHERE id=?",
		u.FirstName, u.LastName, u.Email, u.UpdatedAt, n)
	if err != nil {
		return translate(err)
	}
	return affected(res)
}

// UpdatePassword replaces the stored hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id, hash string, at time.Time) error {
	n, ok := parseID(id)
	if !ok {
		return repository.ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, "UPDATE users SET password_hash=?, updated_at=? WHERE id=?", hash, at, n)
	if err != nil {
		return translate(err)
	}
	return affected(res)
}

// TouchLogin records a successful sign-in.
func (r *UserRepo) TouchLogin(ctx context.Context, id string, at time.Time) error {
	n, ok := parseID(id)
	if !ok {
		return repository.ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, "UPDATE users SET last_login=? WHERE id=?", at, n)
	if err != nil {
		return translate(err)
	}
	return affected(res)
}

// Delete removes the account row.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	n, ok := parseID(id)
	if !ok {
		return repository.ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id=?", n)
	if err != nil {
		return translate(err)
	}
	return affected(res)
}
