package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/crm-api/internal/config"
	"github.com/iliyamo/crm-api/internal/repository"
	"github.com/iliyamo/crm-api/internal/service"
	"github.com/iliyamo/crm-api/internal/utils"
)

// staticUserStore serves a single fixed user for refresh lookups.
type staticUserStore struct {
	user  repository.User
	roles []string
}

func (s staticUserStore) CreateWithRoles(context.Context, *repository.User, []string) error {
	return nil
}

func (s staticUserStore) GetByEmail(_ context.Context, email string) (repository.User, error) {
	if email == s.user.Email {
		return s.user, nil
	}
	return repository.User{}, repository.ErrNotFound
}

func (s staticUserStore) GetByID(_ context.Context, id uint64) (repository.User, error) {
	if id == s.user.ID {
		return s.user, nil
	}
	return repository.User{}, repository.ErrNotFound
}

func (s staticUserStore) RolesByUser(context.Context, uint64) ([]string, error) {
	return s.roles, nil
}

var testCfg = config.Config{
	Env:            "test",
	AccessSecret:   "mw-access-secret",
	RefreshSecret:  "mw-refresh-secret",
	AccessTTLMin:   15,
	RefreshTTLDays: 7,
	BcryptCost:     4,
}

func newTestSession() *service.Session {
	store := staticUserStore{
		user:  repository.User{ID: 5, Email: "gate@example.com"},
		roles: []string{repository.RoleSalesRep},
	}
	return service.NewSession(testCfg, store)
}

// okHandler records the identity JWTAuth placed in the context.
func okHandler(gotID *uint64, gotRoles *[]string) echo.HandlerFunc {
	return func(c echo.Context) error {
		if id, ok := c.Get("user_id").(uint64); ok {
			*gotID = id
		}
		if roles, ok := c.Get("roles").([]string); ok {
			*gotRoles = roles
		}
		return c.NoContent(http.StatusOK)
	}
}

func doRequest(t *testing.T, sess *service.Session, req *http.Request) (*httptest.ResponseRecorder, uint64, []string) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var gotID uint64
	var gotRoles []string
	h := JWTAuth(sess)(okHandler(&gotID, &gotRoles))
	if err := h(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec, gotID, gotRoles
}

func TestJWTAuthValidToken(t *testing.T) {
	sess := newTestSession()
	tok, err := utils.NewToken(testCfg.AccessSecret, 5, "gate@example.com", []string{repository.RoleSalesRep}, time.Minute)
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/accounts", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Raw)

	rec, gotID, gotRoles := doRequest(t, sess, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotID != 5 {
		t.Errorf("user_id = %d, want 5", gotID)
	}
	if len(gotRoles) != 1 || gotRoles[0] != repository.RoleSalesRep {
		t.Errorf("roles = %v, want [SALES_REP]", gotRoles)
	}
}

func TestJWTAuthMissingToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/accounts", nil)
	rec, _, _ := doRequest(t, newTestSession(), req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestJWTAuthInvalidToken(t *testing.T) {
	sess := newTestSession()

	// A token signed with the wrong secret must be rejected outright even
	// when a perfectly valid refresh token is available: only expiry opens
	// the refresh path.
	bad, err := utils.NewToken("some-other-secret", 5, "gate@example.com", nil, time.Minute)
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}
	refresh, err := utils.NewToken(testCfg.RefreshSecret, 5, "gate@example.com", nil, time.Hour)
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/accounts", nil)
	req.Header.Set("Authorization", "Bearer "+bad.Raw)
	req.AddCookie(&http.Cookie{Name: utils.RefreshCookieName, Value: refresh.Raw})

	rec, _, _ := doRequest(t, sess, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if rec.Header().Get("X-Access-Token") != "" {
		t.Error("refresh was attempted for a non-expired failure")
	}
}

func TestJWTAuthTransparentRefresh(t *testing.T) {
	sess := newTestSession()

	expired, err := utils.NewToken(testCfg.AccessSecret, 5, "gate@example.com", []string{repository.RoleSalesRep}, -time.Minute)
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}
	refresh, err := utils.NewToken(testCfg.RefreshSecret, 5, "gate@example.com", []string{repository.RoleSalesRep}, time.Hour)
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/accounts", nil)
	req.Header.Set("Authorization", "Bearer "+expired.Raw)
	req.AddCookie(&http.Cookie{Name: utils.RefreshCookieName, Value: refresh.Raw})

	rec, gotID, _ := doRequest(t, sess, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (transparent refresh)", rec.Code)
	}
	if gotID != 5 {
		t.Errorf("user_id = %d, want 5", gotID)
	}

	newAccess := rec.Header().Get("X-Access-Token")
	if newAccess == "" {
		t.Fatal("X-Access-Token header not set after refresh")
	}
	if newAccess == expired.Raw {
		t.Error("X-Access-Token carries the expired token")
	}
	if _, err := sess.VerifyAccess(newAccess); err != nil {
		t.Errorf("rotated access token failed verification: %v", err)
	}

	var rotated bool
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == utils.RefreshCookieName && ck.Value != "" && ck.Value != refresh.Raw {
			rotated = true
		}
	}
	if !rotated {
		t.Error("refresh cookie was not rotated")
	}
}

func TestJWTAuthRefreshHeaderFallback(t *testing.T) {
	sess := newTestSession()

	expired, err := utils.NewToken(testCfg.AccessSecret, 5, "gate@example.com", nil, -time.Minute)
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}
	refresh, err := utils.NewToken(testCfg.RefreshSecret, 5, "gate@example.com", nil, time.Hour)
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}

	// Non-browser clients send the refresh token in a header instead of a
	// cookie.
	req := httptest.NewRequest(http.MethodGet, "/v1/accounts", nil)
	req.Header.Set("Authorization", "Bearer "+expired.Raw)
	req.Header.Set("X-Refresh-Token", refresh.Raw)

	rec, _, _ := doRequest(t, sess, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("X-Access-Token") == "" {
		t.Error("X-Access-Token header not set after refresh")
	}
}

func TestJWTAuthExpiredWithoutRefresh(t *testing.T) {
	sess := newTestSession()
	expired, err := utils.NewToken(testCfg.AccessSecret, 5, "gate@example.com", nil, -time.Minute)
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/accounts", nil)
	req.Header.Set("Authorization", "Bearer "+expired.Raw)

	rec, _, _ := doRequest(t, sess, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestJWTAuthExpiredRefresh(t *testing.T) {
	sess := newTestSession()

	expired, err := utils.NewToken(testCfg.AccessSecret, 5, "gate@example.com", nil, -time.Minute)
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}
	deadRefresh, err := utils.NewToken(testCfg.RefreshSecret, 5, "gate@example.com", nil, -time.Minute)
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/accounts", nil)
	req.Header.Set("Authorization", "Bearer "+expired.Raw)
	req.AddCookie(&http.Cookie{Name: utils.RefreshCookieName, Value: deadRefresh.Raw})

	rec, _, _ := doRequest(t, sess, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
