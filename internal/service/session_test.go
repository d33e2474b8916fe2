package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iliyamo/crm-api/internal/config"
	"github.com/iliyamo/crm-api/internal/repository"
	"github.com/iliyamo/crm-api/internal/utils"
)

// fakeUserStore is an in-memory UserStore so session logic can be tested
// without a database.
type fakeUserStore struct {
	nextID uint64
	users  map[uint64]repository.User
	roles  map[uint64][]string
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		nextID: 1,
		users:  map[uint64]repository.User{},
		roles:  map[uint64][]string{},
	}
}

func (f *fakeUserStore) CreateWithRoles(_ context.Context, u *repository.User, roles []string) error {
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	u.ID = f.nextID
	f.nextID++
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	f.users[u.ID] = *u
	f.roles[u.ID] = append([]string(nil), roles...)
	return nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (repository.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return repository.User{}, repository.ErrNotFound
}

func (f *fakeUserStore) GetByID(_ context.Context, id uint64) (repository.User, error) {
	u, ok := f.users[id]
	if !ok {
		return repository.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStore) RolesByUser(_ context.Context, id uint64) ([]string, error) {
	return append([]string(nil), f.roles[id]...), nil
}

func testConfig() config.Config {
	return config.Config{
		Env:            "test",
		AccessSecret:   "access-secret",
		RefreshSecret:  "refresh-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 7,
		BcryptCost:     4, // bcrypt.MinCost keeps tests fast
	}
}

func TestRegisterThenLogin(t *testing.T) {
	store := newFakeUserStore()
	sess := NewSession(testConfig(), store)
	ctx := context.Background()

	ident, pair, err := sess.Register(ctx, RegisterInput{
		Email:    "rep@example.com",
		Password: "secret1",
		Username: "rep",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if len(ident.Roles) != 1 || ident.Roles[0] != repository.DefaultRole {
		t.Errorf("roles = %v, want [%s]", ident.Roles, repository.DefaultRole)
	}
	if pair.Access.Raw == "" || pair.Refresh.Raw == "" {
		t.Fatal("register returned an empty token")
	}

	// The access token verifies against the access secret and carries the
	// registered identity.
	claims, err := sess.VerifyAccess(pair.Access.Raw)
	if err != nil {
		t.Fatalf("VerifyAccess: %v", err)
	}
	if claims.Email != "rep@example.com" {
		t.Errorf("claims email = %q", claims.Email)
	}

	ident2, _, err := sess.Login(ctx, "rep@example.com", "secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if ident2.User.ID != ident.User.ID {
		t.Errorf("login user id = %d, want %d", ident2.User.ID, ident.User.ID)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := newFakeUserStore()
	sess := NewSession(testConfig(), store)
	ctx := context.Background()

	in := RegisterInput{Email: "dup@example.com", Password: "secret1"}
	if _, _, err := sess.Register(ctx, in); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if _, _, err := sess.Register(ctx, in); !errors.Is(err, ErrEmailInUse) {
		t.Errorf("err = %v, want ErrEmailInUse", err)
	}
}

func TestRegisterUnknownRole(t *testing.T) {
	sess := NewSession(testConfig(), newFakeUserStore())
	_, _, err := sess.Register(context.Background(), RegisterInput{
		Email:    "x@example.com",
		Password: "secret1",
		Roles:    []string{"SUPERUSER"},
	})
	if !errors.Is(err, ErrBadRole) {
		t.Errorf("err = %v, want ErrBadRole", err)
	}
}

func TestLoginFailuresIndistinguishable(t *testing.T) {
	store := newFakeUserStore()
	sess := NewSession(testConfig(), store)
	ctx := context.Background()

	if _, _, err := sess.Register(ctx, RegisterInput{Email: "a@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	// Unknown email and wrong password must yield the same error.
	_, _, errMissing := sess.Login(ctx, "nobody@example.com", "secret1")
	_, _, errWrong := sess.Login(ctx, "a@example.com", "wrong-password")
	if !errors.Is(errMissing, ErrInvalidCredentials) {
		t.Errorf("missing user err = %v, want ErrInvalidCredentials", errMissing)
	}
	if !errors.Is(errWrong, ErrInvalidCredentials) {
		t.Errorf("wrong password err = %v, want ErrInvalidCredentials", errWrong)
	}
}

func TestRefreshRotatesPair(t *testing.T) {
	store := newFakeUserStore()
	sess := NewSession(testConfig(), store)
	ctx := context.Background()

	ident, pair, err := sess.Register(ctx, RegisterInput{Email: "r@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	ident2, pair2, err := sess.Refresh(ctx, pair.Refresh.Raw)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if ident2.User.ID != ident.User.ID {
		t.Errorf("refresh user id = %d, want %d", ident2.User.ID, ident.User.ID)
	}
	if pair2.Access.Raw == pair.Access.Raw || pair2.Refresh.Raw == pair.Refresh.Raw {
		t.Error("refresh did not rotate the token pair")
	}
	if _, err := sess.VerifyAccess(pair2.Access.Raw); err != nil {
		t.Errorf("rotated access token failed verification: %v", err)
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	store := newFakeUserStore()
	sess := NewSession(testConfig(), store)
	ctx := context.Background()

	_, pair, err := sess.Register(ctx, RegisterInput{Email: "s@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	// An access token presented at the refresh endpoint must fail: the
	// secrets differ, so the signature check rejects it.
	if _, _, err := sess.Refresh(ctx, pair.Access.Raw); !errors.Is(err, ErrInvalidRefresh) {
		t.Errorf("err = %v, want ErrInvalidRefresh", err)
	}
}

func TestVerifyAccessRejectsRefreshToken(t *testing.T) {
	store := newFakeUserStore()
	sess := NewSession(testConfig(), store)

	_, pair, err := sess.Register(context.Background(), RegisterInput{Email: "iso@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	// The secret split works in both directions: a refresh token never
	// passes as an access token.
	if _, err := sess.VerifyAccess(pair.Refresh.Raw); !errors.Is(err, utils.ErrTokenInvalid) {
		t.Errorf("err = %v, want ErrTokenInvalid", err)
	}
}

func TestRefreshVanishedUser(t *testing.T) {
	store := newFakeUserStore()
	sess := NewSession(testConfig(), store)
	ctx := context.Background()

	ident, pair, err := sess.Register(ctx, RegisterInput{Email: "gone@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	delete(store.users, ident.User.ID)

	if _, _, err := sess.Refresh(ctx, pair.Refresh.Raw); !errors.Is(err, ErrInvalidRefresh) {
		t.Errorf("err = %v, want ErrInvalidRefresh", err)
	}
}

func TestRefreshPicksUpRoleChanges(t *testing.T) {
	store := newFakeUserStore()
	sess := NewSession(testConfig(), store)
	ctx := context.Background()

	ident, pair, err := sess.Register(ctx, RegisterInput{
		Email:    "promo@example.com",
		Password: "secret1",
		Roles:    []string{repository.RoleSalesRep},
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	// Roles are re-read from the store on refresh, so a role change takes
	// effect on the next rotation without reissuing credentials manually.
	store.roles[ident.User.ID] = []string{repository.RoleManager}

	ident2, _, err := sess.Refresh(ctx, pair.Refresh.Raw)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if len(ident2.Roles) != 1 || ident2.Roles[0] != repository.RoleManager {
		t.Errorf("roles after refresh = %v, want [MANAGER]", ident2.Roles)
	}
}

func TestVerifyAccessExpired(t *testing.T) {
	cfg := testConfig()
	sess := NewSession(cfg, newFakeUserStore())

	tok, err := utils.NewToken(cfg.AccessSecret, 9, "e@example.com", nil, -time.Minute)
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}
	if _, err := sess.VerifyAccess(tok.Raw); !errors.Is(err, utils.ErrTokenExpired) {
		t.Errorf("err = %v, want ErrTokenExpired", err)
	}
}
