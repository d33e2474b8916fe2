package handler

import (
    "errors"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/crm-api/internal/repository"
)

// ContactHandler bundles the contact repository for CRUD endpoints.
type ContactHandler struct {
    Contacts *repository.ContactRepo
}

func NewContactHandler(contacts *repository.ContactRepo) *ContactHandler {
    if contacts == nil {
        panic("nil repository passed to NewContactHandler")
    }
    return &ContactHandler{Contacts: contacts}
}

type contactReq struct {
    AccountID *uint64 `json:"accountId"`
    FirstName string  `json:"firstName"`
    LastName  string  `json:"lastName"`
    Email     string  `json:"email"`
    Phone     string  `json:"phone"`
}

// ListContacts handles GET /v1/contacts.
func (h *ContactHandler) ListContacts(c echo.Context) error {
    items, err := h.Contacts.List(c.Request().Context())
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "db error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetContact handles GET /v1/contacts/:id.
func (h *ContactHandler) GetContact(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid id"})
    }
    ct, err := h.Contacts.GetByID(c.Request().Context(), id)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "contact not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "db error"})
    }
    return c.JSON(http.StatusOK, ct)
}

// CreateContact handles POST /v1/contacts. Email must be unique.
func (h *ContactHandler) CreateContact(c echo.Context) error {
    var body contactReq
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid body"})
    }
    first := strings.TrimSpace(body.FirstName)
    last := strings.TrimSpace(body.LastName)
    email := strings.ToLower(strings.TrimSpace(body.Email))
    if first == "" || last == "" || email == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "firstName/lastName/email required"})
    }

    ct := &repository.Contact{
        AccountID: body.AccountID,
        FirstName: first,
        LastName:  last,
        Email:     email,
        Phone:     strings.TrimSpace(body.Phone),
    }
    if err := h.Contacts.Create(c.Request().Context(), ct); err != nil {
        switch {
        case errors.Is(err, repository.ErrEmailExists):
            return c.JSON(http.StatusConflict, echo.Map{"success": false, "message": "a contact with this email already exists"})
        case errors.Is(err, repository.ErrBadReference):
            return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "account does not exist"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "could not create contact"})
    }
    return c.JSON(http.StatusCreated, ct)
}

// UpdateContact handles PUT /v1/contacts/:id.
func (h *ContactHandler) UpdateContact(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid id"})
    }
    ct, err := h.Contacts.GetByID(c.Request().Context(), id)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "contact not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "db error"})
    }

    var body contactReq
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid body"})
    }
    if v := strings.TrimSpace(body.FirstName); v != "" {
        ct.FirstName = v
    }
    if v := strings.TrimSpace(body.LastName); v != "" {
        ct.LastName = v
    }
    if v := strings.ToLower(strings.TrimSpace(body.Email)); v != "" {
        ct.Email = v
    }
    if v := strings.TrimSpace(body.Phone); v != "" {
        ct.Phone = v
    }
    if body.AccountID != nil {
        ct.AccountID = body.AccountID
    }

    if err := h.Contacts.Update(c.Request().Context(), &ct); err != nil {
        switch {
        case errors.Is(err, repository.ErrEmailExists):
            return c.JSON(http.StatusConflict, echo.Map{"success": false, "message": "a contact with this email already exists"})
        case errors.Is(err, repository.ErrBadReference):
            return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "account does not exist"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "update failed"})
    }
    return c.JSON(http.StatusOK, ct)
}

// DeleteContact handles DELETE /v1/contacts/:id.
func (h *ContactHandler) DeleteContact(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid id"})
    }
    if err := h.Contacts.Delete(c.Request().Context(), id); err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "contact not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "delete failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "contact deleted"})
}
