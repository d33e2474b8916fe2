package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// Contact mirrors the 'contacts' table. A contact is a person at a
// customer organization; AccountID is nullable because contacts may be
// captured before the account exists.
type Contact struct {
	ID        uint64    `json:"id"`
	AccountID *uint64   `json:"accountId"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ContactRepo struct{ DB *sql.DB }

func NewContactRepo(db *sql.DB) *ContactRepo { return &ContactRepo{DB: db} }

const contactCols = "id,account_id,first_name,last_name,email,phone,created_at,updated_at"

func scanContact(row interface{ Scan(...any) error }, c *Contact) error {
	var phone sql.NullString
	err := row.Scan(&c.ID, &c.AccountID, &c.FirstName, &c.LastName, &c.Email, &phone, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return err
	}
	c.Phone = phone.String
	return nil
}

// Create inserts a new contact and populates the generated ID and
// timestamps. A duplicate email maps to ErrEmailExists.
func (r *ContactRepo) Create(ctx context.Context, c *Contact) error {
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO contacts (account_id, first_name, last_name, email, phone) VALUES (?,?,?,?,?)",
		c.AccountID, c.FirstName, c.LastName, c.Email, nullStr(c.Phone))
	if err != nil {
		if isDuplicate(err) {
			return ErrEmailExists
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
	c.ID = uint64(id)
	return scanContact(r.DB.QueryRowContext(ctx,
		"SELECT "+contactCols+" FROM contacts WHERE id=?", c.ID), c)
}

// GetByID fetches a contact by id.
func (r *ContactRepo) GetByID(ctx context.Context, id uint64) (Contact, error) {
	var c Contact
	err := scanContact(r.DB.QueryRowContext(ctx,
		"SELECT "+contactCols+" FROM contacts WHERE id=? LIMIT 1", id), &c)
	if err == sql.ErrNoRows {
		return c, ErrNotFound
	}
	return c, err
}

// List returns all contacts.
func (r *ContactRepo) List(ctx context.Context) ([]Contact, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+contactCols+" FROM contacts ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Contact
	for rows.Next() {
		var c Contact
		if err := scanContact(rows, &c); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// Update overwrites the mutable columns of a contact.
func (r *ContactRepo) Update(ctx context.Context, c *Contact) error {
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	_, err := r.DB.ExecContext(ctx,
		"UPDATE contacts SET account_id=?, first_name=?, last_name=?, email=?, phone=? WHERE id=?",
		c.AccountID, c.FirstName, c.LastName, c.Email, nullStr(c.Phone), c.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrEmailExists
		}
		if isBadReference(err) {
			return ErrBadReference
		}
		return err
	}
	return scanContact(r.DB.QueryRowContext(ctx,
		"SELECT "+contactCols+" FROM contacts WHERE id=?", c.ID), c)
}

// Delete removes a contact by id.
func (r *ContactRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM contacts WHERE id=?", id)
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
	return nil
}
