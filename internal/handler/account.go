package handler // handler package contains account CRUD handlers

import (
    "errors"   // errors matches repository sentinels
    "net/http" // http provides status code constants
    "strings"  // strings offers trimming utilities

    "github.com/labstack/echo/v4" // echo is the web framework used for handlers

    "github.com/iliyamo/crm-api/internal/repository" // repository holds database models
)

// AccountHandler bundles the account repository for CRUD endpoints.
type AccountHandler struct {
    Accounts *repository.AccountRepo
}

func NewAccountHandler(accounts *repository.AccountRepo) *AccountHandler {
    if accounts == nil {
        panic("nil repository passed to NewAccountHandler")
    }
    return &AccountHandler{Accounts: accounts}
}

type accountReq struct {
    Name       string  `json:"name"`
    Industry   string  `json:"industry"`
    Category   string  `json:"category"`
    ContactID  *uint64 `json:"contactId"`
    SalesRepID *uint64 `json:"salesRepId"`
}

// ListAccounts handles GET /v1/accounts.
func (h *AccountHandler) ListAccounts(c echo.Context) error {
    items, err := h.Accounts.List(c.Request().Context())
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "db error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetAccount handles GET /v1/accounts/:id.
func (h *AccountHandler) GetAccount(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid id"})
    }
    a, err := h.Accounts.GetByID(c.Request().Context(), id)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "account not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "db error"})
    }
    return c.JSON(http.StatusOK, a)
}

// CreateAccount handles POST /v1/accounts. Category defaults to C when
// omitted; the account name must be unique.
func (h *AccountHandler) CreateAccount(c echo.Context) error {
    var body accountReq
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid body"})
    }
    name := strings.TrimSpace(body.Name)
    if name == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "name is required"})
    }
    category := strings.ToUpper(strings.TrimSpace(body.Category))
    if category != "" && !repository.ValidCategory(category) {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "category must be one of A, B, C, D"})
    }

    a := &repository.Account{
        Name:       name,
        Industry:   strings.TrimSpace(body.Industry),
        Category:   category,
        ContactID:  body.ContactID,
        SalesRepID: body.SalesRepID,
    }
    if err := h.Accounts.Create(c.Request().Context(), a); err != nil {
        switch {
        case errors.Is(err, repository.ErrNameExists):
            return c.JSON(http.StatusConflict, echo.Map{"success": false, "message": "account name already in use"})
        case errors.Is(err, repository.ErrBadReference):
            return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "contact or sales rep does not exist"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "could not create account"})
    }
    return c.JSON(http.StatusCreated, a)
}

// UpdateAccount handles PUT /v1/accounts/:id. Absent fields keep their
// current values.
func (h *AccountHandler) UpdateAccount(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid id"})
    }
    a, err := h.Accounts.GetByID(c.Request().Context(), id)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "account not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "db error"})
    }

    var body accountReq
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid body"})
    }
    if name := strings.TrimSpace(body.Name); name != "" {
        a.Name = name
    }
    if body.Industry != "" {
        a.Industry = strings.TrimSpace(body.Industry)
    }
    if cat := strings.ToUpper(strings.TrimSpace(body.Category)); cat != "" {
        if !repository.ValidCategory(cat) {
            return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "category must be one of A, B, C, D"})
        }
        a.Category = cat
    }
    if body.ContactID != nil {
        a.ContactID = body.ContactID
    }
    if body.SalesRepID != nil {
        a.SalesRepID = body.SalesRepID
    }

    if err := h.Accounts.Update(c.Request().Context(), &a); err != nil {
        switch {
        case errors.Is(err, repository.ErrNameExists):
            return c.JSON(http.StatusConflict, echo.Map{"success": false, "message": "account name already in use"})
        case errors.Is(err, repository.ErrBadReference):
            return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "contact or sales rep does not exist"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "update failed"})
    }
    return c.JSON(http.StatusOK, a)
}

// DeleteAccount handles DELETE /v1/accounts/:id. Related follow-ups are
// removed together with the account.
func (h *AccountHandler) DeleteAccount(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid id"})
    }
    if err := h.Accounts.Delete(c.Request().Context(), id); err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "account not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "delete failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "account and related follow-ups deleted"})
}
