// Package service holds business logic shared between HTTP handlers and
// middleware. session.go implements the session lifecycle: registration,
// login, and token refresh over a stateless JWT pair.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/crm-api/internal/config"
	"github.com/iliyamo/crm-api/internal/repository"
	"github.com/iliyamo/crm-api/internal/utils"
)

// Domain errors surfaced by session operations. Login failures are
// deliberately indistinguishable: a missing user and a wrong password both
// yield ErrInvalidCredentials. Refresh failures likewise collapse into
// ErrInvalidRefresh regardless of cause, forcing the client back to login.
var (
	ErrEmailInUse         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRefresh     = errors.New("invalid or expired refresh token")
	ErrBadRole            = errors.New("unknown role")
)

// UserStore is the slice of the user repository the session logic needs.
// repository.UserRepo satisfies it; tests provide an in-memory fake.
type UserStore interface {
	CreateWithRoles(ctx context.Context, u *repository.User, roles []string) error
	GetByEmail(ctx context.Context, email string) (repository.User, error)
	GetByID(ctx context.Context, id uint64) (repository.User, error)
	RolesByUser(ctx context.Context, id uint64) ([]string, error)
}

// TokenPair bundles a freshly issued access and refresh token. Both are
// reissued together on every login and refresh (refresh token rotation).
type TokenPair struct {
	Access  utils.Token
	Refresh utils.Token
}

// Identity is the authenticated user plus their current role set.
type Identity struct {
	User  repository.User
	Roles []string
}

// RegisterInput carries the signup fields. Roles may be empty, in which
// case the default role is assigned.
type RegisterInput struct {
	Email     string
	Password  string
	Username  string
	FirstName string
	LastName  string
	Roles     []string
}

// Session orchestrates login, registration and refresh. Dependencies are
// passed in explicitly; there is no ambient state.
type Session struct {
	cfg   config.Config
	users UserStore
}

func NewSession(cfg config.Config, users UserStore) *Session {
	return &Session{cfg: cfg, users: users}
}

// Register creates a user with hashed password and role assignments, then
// issues a token pair for immediate login. User and role rows are written
// in a single transaction by the store, so a partial registration cannot
// leave a user without any role.
func (s *Session) Register(ctx context.Context, in RegisterInput) (Identity, TokenPair, error) {
	roles := in.Roles
	if len(roles) == 0 {
		roles = []string{repository.DefaultRole}
	}
	for i, r := range roles {
		roles[i] = strings.ToUpper(strings.TrimSpace(r))
		if !repository.ValidRole(roles[i]) {
			return Identity{}, TokenPair{}, ErrBadRole
		}
	}

	hash, err := utils.HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return Identity{}, TokenPair{}, err
	}

	u := repository.User{
		Email:        in.Email,
		Username:     in.Username,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: hash,
	}
	if err := s.users.CreateWithRoles(ctx, &u, roles); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return Identity{}, TokenPair{}, ErrEmailInUse
		}
		return Identity{}, TokenPair{}, err
	}

	pair, err := s.issuePair(u.ID, u.Email, roles)
	if err != nil {
		return Identity{}, TokenPair{}, err
	}
	return Identity{User: u, Roles: roles}, pair, nil
}

// Login verifies credentials and issues a fresh token pair. The user
// lookup and the password comparison fail identically so the response
// never reveals which one was wrong.
func (s *Session) Login(ctx context.Context, email, password string) (Identity, TokenPair, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Identity{}, TokenPair{}, ErrInvalidCredentials
		}
		return Identity{}, TokenPair{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return Identity{}, TokenPair{}, ErrInvalidCredentials
	}

	roles, err := s.users.RolesByUser(ctx, u.ID)
	if err != nil {
		return Identity{}, TokenPair{}, err
	}
	pair, err := s.issuePair(u.ID, u.Email, roles)
	if err != nil {
		return Identity{}, TokenPair{}, err
	}
	return Identity{User: u, Roles: roles}, pair, nil
}

// Refresh verifies a refresh token against the refresh secret, re-fetches
// the user and their current roles, and rotates the pair. Re-fetching is
// what makes role revocation (and user deletion) take effect at the next
// refresh rather than never. Every failure — bad signature, expiry,
// vanished user — surfaces as ErrInvalidRefresh.
func (s *Session) Refresh(ctx context.Context, refreshRaw string) (Identity, TokenPair, error) {
	claims, err := utils.ParseToken(refreshRaw, s.cfg.RefreshSecret)
	if err != nil {
		return Identity{}, TokenPair{}, ErrInvalidRefresh
	}
	id, err := claims.UserID()
	if err != nil {
		return Identity{}, TokenPair{}, ErrInvalidRefresh
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return Identity{}, TokenPair{}, ErrInvalidRefresh
	}
	roles, err := s.users.RolesByUser(ctx, u.ID)
	if err != nil {
		return Identity{}, TokenPair{}, err
	}

	pair, err := s.issuePair(u.ID, u.Email, roles)
	if err != nil {
		return Identity{}, TokenPair{}, err
	}
	return Identity{User: u, Roles: roles}, pair, nil
}

// VerifyAccess checks an access token against the access secret. Exposed
// for the request gate, which needs the expiry/invalid distinction from
// utils.ParseToken to decide whether a refresh attempt is warranted.
func (s *Session) VerifyAccess(raw string) (*utils.Claims, error) {
	return utils.ParseToken(raw, s.cfg.AccessSecret)
}

// CookieSecure reports whether refresh cookies should carry the Secure
// attribute for this deployment.
func (s *Session) CookieSecure() bool {
	return s.cfg.Env == "prod"
}

func (s *Session) issuePair(userID uint64, email string, roles []string) (TokenPair, error) {
	access, err := utils.NewToken(s.cfg.AccessSecret, userID, email, roles,
		time.Duration(s.cfg.AccessTTLMin)*time.Minute)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := utils.NewToken(s.cfg.RefreshSecret, userID, email, roles,
		time.Duration(s.cfg.RefreshTTLDays)*24*time.Hour)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}
