package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// Role names form a closed enumeration. A user may hold several roles at
// once through the user_roles table.
const (
	RoleAdmin    = "ADMIN"
	RoleManager  = "MANAGER"
	RoleSalesRep = "SALES_REP"
	RoleUser     = "USER"
)

// DefaultRole is assigned at signup when the caller supplies no roles.
const DefaultRole = RoleSalesRep

// ValidRole reports whether name is one of the known role names.
func ValidRole(name string) bool {
	switch name {
	case RoleAdmin, RoleManager, RoleSalesRep, RoleUser:
		return true
	}
	return false
}

// User mirrors the 'users' table. PasswordHash never serializes.
type User struct {
	ID           uint64    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// CreateWithRoles inserts the user row and its role assignments in one
// transaction, so a user is never left without any role. On success the
// generated ID is written back onto u.
func (r *UserRepo) CreateWithRoles(ctx context.Context, u *User, roles []string) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO users (email, username, first_name, last_name, password_hash) VALUES (?,?,?,?,?)",
		u.Email, u.Username, u.FirstName, u.LastName, u.PasswordHash)
	if err != nil {
		if isDuplicate(err) {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)

	for _, role := range roles {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO user_roles (user_id, role) VALUES (?,?)", u.ID, role); err != nil {
			return err
		}
	}

	if err := tx.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM users WHERE id=?", u.ID).
		Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
		return err
	}
	return tx.Commit()
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,username,first_name,last_name,password_hash,created_at,updated_at FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Email, &u.Username, &u.FirstName, &u.LastName, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return u, ErrNotFound
	}
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (User, error) {
	var u User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,username,first_name,last_name,password_hash,created_at,updated_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Email, &u.Username, &u.FirstName, &u.LastName, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return u, ErrNotFound
	}
	return u, err
}

// RolesByUser returns the current role names assigned to a user. The
// result reflects live database state, which is what makes role
// revocation effective at the next token refresh.
func (r *UserRepo) RolesByUser(ctx context.Context, id uint64) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT role FROM user_roles WHERE user_id=? ORDER BY role", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// List returns all users without their role sets.
func (r *UserRepo) List(ctx context.Context) ([]User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,email,username,first_name,last_name,password_hash,created_at,updated_at FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.Username, &u.FirstName, &u.LastName, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateProfile updates the mutable profile columns of a user.
func (r *UserRepo) UpdateProfile(ctx context.Context, u *User) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET username=?, first_name=?, last_name=? WHERE id=?",
		u.Username, u.FirstName, u.LastName, u.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// RowsAffected is 0 both for a missing row and for a no-op update,
		// so double check existence before reporting not found.
		if _, err := r.GetByID(ctx, u.ID); err != nil {
			return err
		}
	}
	return nil
}

// ReplaceRoles swaps a user's role assignments wholesale inside a
// transaction: existing rows are removed and the new set inserted.
func (r *UserRepo) ReplaceRoles(ctx context.Context, id uint64, roles []string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM user_roles WHERE user_id=?", id); err != nil {
		return err
	}
	for _, role := range roles {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO user_roles (user_id, role) VALUES (?,?)", id, role); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Delete removes a user and all of their role assignments in one
// transaction, so no orphan role rows survive a user deletion.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM user_roles WHERE user_id=?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}
