package handler

import (
    "errors"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/crm-api/internal/repository"
    "github.com/iliyamo/crm-api/internal/utils"
)

// UserHandler exposes user management endpoints. Listing and profile
// reads are available to any authenticated caller; create, role update
// and delete are gated behind the ADMIN role by the router.
type UserHandler struct {
    Users      *repository.UserRepo
    BcryptCost int
}

func NewUserHandler(users *repository.UserRepo, bcryptCost int) *UserHandler {
    if users == nil {
        panic("nil repository passed to NewUserHandler")
    }
    return &UserHandler{Users: users, BcryptCost: bcryptCost}
}

// userResp is a user together with their role names.
type userResp struct {
    repository.User
    Roles []string `json:"roles"`
}

// AdminPanel handles GET /v1/users/admin, a trivial ADMIN-gated probe.
func (h *UserHandler) AdminPanel(c echo.Context) error {
    return c.JSON(http.StatusOK, echo.Map{"message": "Welcome, Admin"})
}

// ListUsers handles GET /v1/users.
func (h *UserHandler) ListUsers(c echo.Context) error {
    ctx := c.Request().Context()
    users, err := h.Users.List(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "db error"})
    }
    items := make([]userResp, 0, len(users))
    for _, u := range users {
        roles, err := h.Users.RolesByUser(ctx, u.ID)
        if err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "db error"})
        }
        items = append(items, userResp{User: u, Roles: roles})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Profile handles GET /v1/users/profile for the authenticated caller.
func (h *UserHandler) Profile(c echo.Context) error {
    id, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "unauthorized"})
    }
    return h.respondUser(c, id)
}

// GetUser handles GET /v1/users/:id.
func (h *UserHandler) GetUser(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid id"})
    }
    return h.respondUser(c, id)
}

func (h *UserHandler) respondUser(c echo.Context, id uint64) error {
    ctx := c.Request().Context()
    u, err := h.Users.GetByID(ctx, id)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "user not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "db error"})
    }
    roles, err := h.Users.RolesByUser(ctx, u.ID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "db error"})
    }
    return c.JSON(http.StatusOK, userResp{User: u, Roles: roles})
}

type createUserReq struct {
    Email     string   `json:"email"`
    Password  string   `json:"password"`
    Username  string   `json:"username"`
    FirstName string   `json:"firstName"`
    LastName  string   `json:"lastName"`
    Roles     []string `json:"roles"`
}

// CreateUser handles POST /v1/users (ADMIN only). Unlike signup, no
// tokens are issued; an admin is provisioning an account for someone
// else. Admin-created users default to the USER role.
func (h *UserHandler) CreateUser(c echo.Context) error {
    var body createUserReq
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid body"})
    }
    email := strings.ToLower(strings.TrimSpace(body.Email))
    if email == "" || body.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "email/password required"})
    }
    if len(body.Password) < 6 {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "password must be at least 6 characters"})
    }
    roles := body.Roles
    if len(roles) == 0 {
        roles = []string{repository.RoleUser}
    }
    for i, r := range roles {
        roles[i] = strings.ToUpper(strings.TrimSpace(r))
        if !repository.ValidRole(roles[i]) {
            return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "unknown role"})
        }
    }

    hash, err := utils.HashPassword(body.Password, h.BcryptCost)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "could not create user"})
    }
    u := repository.User{
        Email:        email,
        Username:     strings.TrimSpace(body.Username),
        FirstName:    strings.TrimSpace(body.FirstName),
        LastName:     strings.TrimSpace(body.LastName),
        PasswordHash: hash,
    }
    if err := h.Users.CreateWithRoles(c.Request().Context(), &u, roles); err != nil {
        if errors.Is(err, repository.ErrEmailExists) {
            return c.JSON(http.StatusConflict, echo.Map{"success": false, "message": "email already in use"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "could not create user"})
    }
    return c.JSON(http.StatusCreated, userResp{User: u, Roles: roles})
}

type updateUserReq struct {
    Username  string   `json:"username"`
    FirstName string   `json:"firstName"`
    LastName  string   `json:"lastName"`
    Roles     []string `json:"roles"`
}

// UpdateUser handles PUT /v1/users/:id (ADMIN only). Profile fields are
// patched individually; a non-nil roles list replaces the role set
// wholesale.
func (h *UserHandler) UpdateUser(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid id"})
    }
    ctx := c.Request().Context()
    u, err := h.Users.GetByID(ctx, id)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "user not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "db error"})
    }

    var body updateUserReq
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid body"})
    }
    if v := strings.TrimSpace(body.Username); v != "" {
        u.Username = v
    }
    if v := strings.TrimSpace(body.FirstName); v != "" {
        u.FirstName = v
    }
    if v := strings.TrimSpace(body.LastName); v != "" {
        u.LastName = v
    }
    if err := h.Users.UpdateProfile(ctx, &u); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "update failed"})
    }

    if body.Roles != nil {
        if len(body.Roles) == 0 {
            return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "roles must not be empty"})
        }
        for i, r := range body.Roles {
            body.Roles[i] = strings.ToUpper(strings.TrimSpace(r))
            if !repository.ValidRole(body.Roles[i]) {
                return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "unknown role"})
            }
        }
        if err := h.Users.ReplaceRoles(ctx, id, body.Roles); err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "role update failed"})
        }
    }

    roles, err := h.Users.RolesByUser(ctx, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "db error"})
    }
    return c.JSON(http.StatusOK, userResp{User: u, Roles: roles})
}

// DeleteUser handles DELETE /v1/users/:id (ADMIN only). Role assignments
// are removed in the same transaction as the user row.
func (h *UserHandler) DeleteUser(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid id"})
    }
    if err := h.Users.Delete(c.Request().Context(), id); err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "user not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "delete failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "user and role assignments deleted"})
}
