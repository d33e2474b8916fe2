package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/crm-api/internal/repository"
)

func newSubscriptionHandler(t *testing.T) (*SubscriptionHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewSubscriptionHandler(repository.NewSubscriptionRepo(db)), mock
}

func postSubscription(t *testing.T, h *SubscriptionHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/subscriptions", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h.CreateSubscription(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec
}

func TestCreateSubscriptionRejectsSecondActive(t *testing.T) {
	h, mock := newSubscriptionHandler(t)

	// The user already holds an ACTIVE subscription, so a second one is
	// rejected before any insert happens.
	mock.ExpectQuery("SELECT 1 FROM subscriptions").
		WithArgs(7, repository.SubscriptionActive).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	rec := postSubscription(t, h, `{"userId":7,"plan":"BASIC","endDate":"2026-12-31"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "active subscription") {
		t.Errorf("body = %s, want active-subscription message", rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected database activity: %v", err)
	}
}

func TestCreateSubscriptionFirstActive(t *testing.T) {
	h, mock := newSubscriptionHandler(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT 1 FROM subscriptions").
		WithArgs(7, repository.SubscriptionActive).
		WillReturnRows(sqlmock.NewRows([]string{"1"})) // no active subscription
	mock.ExpectExec("INSERT INTO subscriptions").
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectQuery("SELECT (.+) FROM subscriptions WHERE id").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "user_id", "plan", "status", "start_date", "end_date", "created_at", "updated_at"}).
			AddRow(11, 7, repository.PlanBasic, repository.SubscriptionActive, now, now.AddDate(0, 1, 0), now, now))

	rec := postSubscription(t, h, `{"userId":7,"plan":"BASIC","endDate":"2026-12-31"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCreateSubscriptionInactiveAllowedAlongsideActive(t *testing.T) {
	h, mock := newSubscriptionHandler(t)
	now := time.Now().UTC()

	// Only a second ACTIVE subscription violates the rule; recording an
	// already-cancelled one next to an active one is allowed.
	mock.ExpectQuery("SELECT 1 FROM subscriptions").
		WithArgs(7, repository.SubscriptionActive).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectExec("INSERT INTO subscriptions").
		WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectQuery("SELECT (.+) FROM subscriptions WHERE id").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "user_id", "plan", "status", "start_date", "end_date", "created_at", "updated_at"}).
			AddRow(12, 7, repository.PlanPremium, repository.SubscriptionCancelled, now, now.AddDate(0, 1, 0), now, now))

	rec := postSubscription(t, h, `{"userId":7,"plan":"PREMIUM","status":"CANCELLED","endDate":"2026-12-31"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
