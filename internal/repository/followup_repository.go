package repository

import (
	"context"
	"database/sql"
	"time"
)

// Follow-up statuses.
const (
	FollowUpPending   = "PENDING"
	FollowUpCompleted = "COMPLETED"
	FollowUpOverdue   = "OVERDUE"
)

// ValidFollowUpStatus reports whether s is a known follow-up status.
func ValidFollowUpStatus(s string) bool {
	switch s {
	case FollowUpPending, FollowUpCompleted, FollowUpOverdue:
		return true
	}
	return false
}

// FollowUpDelayDays returns how many days after creation a follow-up is
// due, based on the owning account's category. Better-ranked accounts get
// earlier follow-ups. Unknown categories fall back to the C delay.
func FollowUpDelayDays(category string) int {
	switch category {
	case CategoryA:
		return 2
	case CategoryB:
		return 3
	case CategoryC:
		return 4
	case CategoryD:
		return 5
	default:
		return 4
	}
}

// FollowUp mirrors the 'followups' table. SalesRepID is nullable; the
// due date is computed at creation from the account category rather than
// supplied by the client.
type FollowUp struct {
	ID           uint64    `json:"id"`
	AccountID    uint64    `json:"accountId"`
	SalesRepID   *uint64   `json:"salesRepId"`
	FollowUpDate time.Time `json:"followUpDate"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type FollowUpRepo struct{ DB *sql.DB }

func NewFollowUpRepo(db *sql.DB) *FollowUpRepo { return &FollowUpRepo{DB: db} }

const followUpCols = "id,account_id,sales_rep_id,follow_up_date,status,created_at,updated_at"

func scanFollowUp(row interface{ Scan(...any) error }, f *FollowUp) error {
	return row.Scan(&f.ID, &f.AccountID, &f.SalesRepID, &f.FollowUpDate, &f.Status, &f.CreatedAt, &f.UpdatedAt)
}

// Create inserts a new follow-up and populates the generated ID and
// timestamps.
func (r *FollowUpRepo) Create(ctx context.Context, f *FollowUp) error {
	if f.Status == "" {
		f.Status = FollowUpPending
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO followups (account_id, sales_rep_id, follow_up_date, status) VALUES (?,?,?,?)",
		f.AccountID, f.SalesRepID, f.FollowUpDate, f.Status)
	if err != nil {
		if isBadReference(err) {
			return ErrBadReference
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	f.ID = uint64(id)
	return scanFollowUp(r.DB.QueryRowContext(ctx,
		"SELECT "+followUpCols+" FROM followups WHERE id=?", f.ID), f)
}

// GetByID fetches a follow-up by id.
func (r *FollowUpRepo) GetByID(ctx context.Context, id uint64) (FollowUp, error) {
	var f FollowUp
	err := scanFollowUp(r.DB.QueryRowContext(ctx,
		"SELECT "+followUpCols+" FROM followups WHERE id=? LIMIT 1", id), &f)
	if err == sql.ErrNoRows {
		return f, ErrNotFound
	}
	return f, err
}

// List returns all follow-ups.
func (r *FollowUpRepo) List(ctx context.Context) ([]FollowUp, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+followUpCols+" FROM followups ORDER BY follow_up_date, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []FollowUp
	for rows.Next() {
		var f FollowUp
		if err := scanFollowUp(rows, &f); err != nil {
			return nil, err
		}
		items = append(items, f)
	}
	return items, rows.Err()
}

// Update overwrites the mutable columns of a follow-up.
func (r *FollowUpRepo) Update(ctx context.Context, f *FollowUp) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE followups SET sales_rep_id=?, follow_up_date=?, status=? WHERE id=?",
		f.SalesRepID, f.FollowUpDate, f.Status, f.ID)
	if err != nil {
		if isBadReference(err) {
			return ErrBadReference
		}
		return err
	}
	return scanFollowUp(r.DB.QueryRowContext(ctx,
		"SELECT "+followUpCols+" FROM followups WHERE id=?", f.ID), f)
}

// Delete removes a follow-up by id.
func (r *FollowUpRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM followups WHERE id=?", id)
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
