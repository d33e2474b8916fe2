package handler

import (
    "context"  // provides context with cancellation for DB calls
    "errors"   // sentinel matching for session errors
    "net/http" // HTTP status codes and primitives
    "strings"  // string manipulation utilities
    "time"     // timeouts for DB calls

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing

    "github.com/iliyamo/crm-api/internal/service" // session controller
    "github.com/iliyamo/crm-api/internal/utils"   // cookie helpers
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Sessions *service.Session
}

func NewAuthHandler(sessions *service.Session) *AuthHandler {
	return &AuthHandler{Sessions: sessions}
}

// ----- DTOs -----

type signupReq struct {
	Email     string   `json:"email"`
	Password  string   `json:"password"`
	Username  string   `json:"username"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Roles     []string `json:"roles"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

type userPart struct {
	ID        uint64   `json:"id"`
	Email     string   `json:"email"`
	Username  string   `json:"username"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Roles     []string `json:"roles"`
}
type authResp struct {
	User         userPart `json:"user"`
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
}

func toUserPart(ident service.Identity) userPart {
	return userPart{
		ID:        ident.User.ID,
		Email:     ident.User.Email,
		Username:  ident.User.Username,
		FirstName: ident.User.FirstName,
		LastName:  ident.User.LastName,
		Roles:     ident.Roles,
	}
}

// Signup: create user with role assignments and return tokens immediately.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "email/password required"})
	}
	if len(req.Password) < 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "password must be at least 6 characters"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ident, pair, err := h.Sessions.Register(ctx, service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		Username:  strings.TrimSpace(req.Username),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Roles:     req.Roles,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailInUse):
			return c.JSON(http.StatusConflict, echo.Map{"success": false, "message": "email already in use"})
		case errors.Is(err, service.ErrBadRole):
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "unknown role"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "signup failed"})
	}

	c.SetCookie(utils.NewRefreshCookie(pair.Refresh.Raw, pair.Refresh.Exp, h.Sessions.CookieSecure()))
	return c.JSON(http.StatusCreated, authResp{
		User:         toUserPart(ident),
		AccessToken:  pair.Access.Raw,
		RefreshToken: pair.Refresh.Raw,
	})
}

// Login: verify credentials and return a fresh pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ident, pair, err := h.Sessions.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "login failed"})
	}

	c.SetCookie(utils.NewRefreshCookie(pair.Refresh.Raw, pair.Refresh.Exp, h.Sessions.CookieSecure()))
	return c.JSON(http.StatusOK, authResp{
		User:         toUserPart(ident),
		AccessToken:  pair.Access.Raw,
		RefreshToken: pair.Refresh.Raw,
	})
}

// RefreshToken: exchange a valid refresh token for a rotated pair. The
// token is read from the JSON body, falling back to the refresh cookie so
// browser clients need not handle the value at all.
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)
	raw := strings.TrimSpace(req.RefreshToken)
	if raw == "" {
		if ck, err := c.Cookie(utils.RefreshCookieName); err == nil {
			raw = ck.Value
		}
	}
	if raw == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "refreshToken required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	_, pair, err := h.Sessions.Refresh(ctx, raw)
	if err != nil {
		// One class for every refresh failure; the client restarts login.
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "invalid or expired refresh token"})
	}

	c.SetCookie(utils.NewRefreshCookie(pair.Refresh.Raw, pair.Refresh.Exp, h.Sessions.CookieSecure()))
	return c.JSON(http.StatusOK, echo.Map{
		"accessToken":  pair.Access.Raw,
		"refreshToken": pair.Refresh.Raw,
	})
}

// Logout clears the refresh cookie. Tokens are stateless and there is no
// server-side revocation list, so clearing the client copy is the whole
// operation; an already-issued pair stays valid until it expires.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(utils.ExpiredRefreshCookie(h.Sessions.CookieSecure()))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "logged out"})
}

// Me: simple protected endpoint returning the request's identity claims.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"user_id": c.Get("user_id"),
		"email":   c.Get("email"),
		"roles":   c.Get("roles"),
	})
}
