package repository

import (
	"context"
	"database/sql"
	"time"
)

// Subscription plans and statuses.
const (
	PlanBasic   = "BASIC"
	PlanPremium = "PREMIUM"

	SubscriptionActive    = "ACTIVE"
	SubscriptionExpired   = "EXPIRED"
	SubscriptionCancelled = "CANCELLED"
)

// ValidPlan reports whether s is a known subscription plan.
func ValidPlan(s string) bool {
	return s == PlanBasic || s == PlanPremium
}

// ValidSubscriptionStatus reports whether s is a known subscription status.
func ValidSubscriptionStatus(s string) bool {
	switch s {
	case SubscriptionActive, SubscriptionExpired, SubscriptionCancelled:
		return true
	}
	return false
}

// Subscription mirrors the 'subscriptions' table.
type Subscription struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"userId"`
	Plan      string    `json:"plan"`
	Status    string    `json:"status"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type SubscriptionRepo struct{ DB *sql.DB }

func NewSubscriptionRepo(db *sql.DB) *SubscriptionRepo { return &SubscriptionRepo{DB: db} }

const subscriptionCols = "id,user_id,plan,status,start_date,end_date,created_at,updated_at"

func scanSubscription(row interface{ Scan(...any) error }, s *Subscription) error {
	return row.Scan(&s.ID, &s.UserID, &s.Plan, &s.Status, &s.StartDate, &s.EndDate, &s.CreatedAt, &s.UpdatedAt)
}

// HasActive reports whether the user already holds an ACTIVE subscription.
func (r *SubscriptionRepo) HasActive(ctx context.Context, userID uint64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM subscriptions WHERE user_id=? AND status=? LIMIT 1",
		userID, SubscriptionActive).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Create inserts a new subscription and populates the generated ID and
// timestamps.
func (r *SubscriptionRepo) Create(ctx context.Context, s *Subscription) error {
	if s.Status == "" {
		s.Status = SubscriptionActive
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO subscriptions (user_id, plan, status, start_date, end_date) VALUES (?,?,?,?,?)",
		s.UserID, s.Plan, s.Status, s.StartDate, s.EndDate)
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
	s.ID = uint64(id)
	return scanSubscription(r.DB.QueryRowContext(ctx,
		"SELECT "+subscriptionCols+" FROM subscriptions WHERE id=?", s.ID), s)
}

// GetByID fetches a subscription by id.
func (r *SubscriptionRepo) GetByID(ctx context.Context, id uint64) (Subscription, error) {
	var s Subscription
	err := scanSubscription(r.DB.QueryRowContext(ctx,
		"SELECT "+subscriptionCols+" FROM subscriptions WHERE id=? LIMIT 1", id), &s)
	if err == sql.ErrNoRows {
		return s, ErrNotFound
	}
	return s, err
}

// List returns all subscriptions.
func (r *SubscriptionRepo) List(ctx context.Context) ([]Subscription, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+subscriptionCols+" FROM subscriptions ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Subscription
	for rows.Next() {
		var s Subscription
		if err := scanSubscription(rows, &s); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

// Update overwrites the mutable columns of a subscription.
func (r *SubscriptionRepo) Update(ctx context.Context, s *Subscription) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE subscriptions SET plan=?, status=?, end_date=? WHERE id=?",
		s.Plan, s.Status, s.EndDate, s.ID)
	if err != nil {
		return err
	}
	return scanSubscription(r.DB.QueryRowContext(ctx,
		"SELECT "+subscriptionCols+" FROM subscriptions WHERE id=?", s.ID), s)
}

// Delete removes a subscription by id.
func (r *SubscriptionRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM subscriptions WHERE id=?", id)
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
