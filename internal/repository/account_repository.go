// This file defines the Account model and repository. An account is a
// customer organization tracked by the CRM; it references a primary contact
// and the sales rep who owns the relationship. The category letter (A–D)
// ranks the account and drives follow-up scheduling.
package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// Account categories rank customers from most (A) to least (D) important.
const (
	CategoryA = "A"
	CategoryB = "B"
	CategoryC = "C"
	CategoryD = "D"
)

// DefaultCategory is used when a create request names no category.
const DefaultCategory = CategoryC

// ValidCategory reports whether s is a known account category.
func ValidCategory(s string) bool {
	switch s {
	case CategoryA, CategoryB, CategoryC, CategoryD:
		return true
	}
	return false
}

// Account mirrors the 'accounts' table. ContactID and SalesRepID are
// pointers because the columns are nullable.
type Account struct {
	ID         uint64    `json:"id"`
	Name       string    `json:"name"`
	Industry   string    `json:"industry,omitempty"`
	Category   string    `json:"category"`
	ContactID  *uint64   `json:"contactId"`
	SalesRepID *uint64   `json:"salesRepId"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type AccountRepo struct{ DB *sql.DB }

func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{DB: db} }

const accountCols = "id,name,industry,category,contact_id,sales_rep_id,created_at,updated_at"

func scanAccount(row interface{ Scan(...any) error }, a *Account) error {
	var industry sql.NullString
	err := row.Scan(&a.ID, &a.Name, &industry, &a.Category, &a.ContactID, &a.SalesRepID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return err
	}
	a.Industry = industry.String
	return nil
}

// Create inserts a new account. On success the generated ID and the
// database-assigned timestamps are populated on a.
func (r *AccountRepo) Create(ctx context.Context, a *Account) error {
	a.Name = strings.TrimSpace(a.Name)
	if a.Category == "" {
		a.Category = DefaultCategory
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO accounts (name, industry, category, contact_id, sales_rep_id) VALUES (?,?,?,?,?)",
		a.Name, nullStr(a.Industry), a.Category, a.ContactID, a.SalesRepID)
	if err != nil {
		if isDuplicate(err) {
			return ErrNameExists
		}
		if isBadReference(err) {
			return ErrBadReference
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return scanAccount(r.DB.QueryRowContext(ctx,
		"SELECT "+accountCols+" FROM accounts WHERE id=?", a.ID), a)
}

// GetByID fetches an account by id.
func (r *AccountRepo) GetByID(ctx context.Context, id uint64) (Account, error) {
	var a Account
	err := scanAccount(r.DB.QueryRowContext(ctx,
		"SELECT "+accountCols+" FROM accounts WHERE id=? LIMIT 1", id), &a)
	if err == sql.ErrNoRows {
		return a, ErrNotFound
	}
	return a, err
}

// CategoryByID returns just the category letter for an account. Used by
// follow-up scheduling, which only needs the ranking.
func (r *AccountRepo) CategoryByID(ctx context.Context, id uint64) (string, error) {
	var cat string
	err := r.DB.QueryRowContext(ctx,
		"SELECT category FROM accounts WHERE id=? LIMIT 1", id).Scan(&cat)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return cat, err
}

// List returns all accounts.
func (r *AccountRepo) List(ctx context.Context) ([]Account, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+accountCols+" FROM accounts ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Account
	for rows.Next() {
		var a Account
		if err := scanAccount(rows, &a); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

// Update overwrites the mutable columns of an account.
func (r *AccountRepo) Update(ctx context.Context, a *Account) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE accounts SET name=?, industry=?, category=?, contact_id=?, sales_rep_id=? WHERE id=?",
		a.Name, nullStr(a.Industry), a.Category, a.ContactID, a.SalesRepID, a.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrNameExists
		}
		if isBadReference(err) {
			return ErrBadReference
		}
		return err
	}
	return scanAccount(r.DB.QueryRowContext(ctx,
		"SELECT "+accountCols+" FROM accounts WHERE id=?", a.ID), a)
}

// Delete removes an account and its follow-ups in one transaction, so an
// account deletion never strands dependent follow-up rows.
func (r *AccountRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM followups WHERE account_id=?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM accounts WHERE id=?", id)
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

// nullStr maps an empty string to SQL NULL.
func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
