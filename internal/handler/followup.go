package handler

import (
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/crm-api/internal/queue"
    "github.com/iliyamo/crm-api/internal/repository"
    "github.com/iliyamo/crm-api/internal/service"
)

// FollowUpHandler bundles the repositories needed by follow-up endpoints.
// The account repository supplies the category that drives due-date
// computation.
type FollowUpHandler struct {
    FollowUps *repository.FollowUpRepo
    Accounts  *repository.AccountRepo
}

func NewFollowUpHandler(followUps *repository.FollowUpRepo, accounts *repository.AccountRepo) *FollowUpHandler {
    if followUps == nil || accounts == nil {
        panic("nil repository passed to NewFollowUpHandler")
    }
    return &FollowUpHandler{FollowUps: followUps, Accounts: accounts}
}

type followUpReq struct {
    AccountID  uint64  `json:"accountId"`
    SalesRepID *uint64 `json:"salesRepId"`
    Status     string  `json:"status"`
}

// ListFollowUps handles GET /v1/followups.
func (h *FollowUpHandler) ListFollowUps(c echo.Context) error {
    items, err := h.FollowUps.List(c.Request().Context())
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "db error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetFollowUp handles GET /v1/followups/:id.
func (h *FollowUpHandler) GetFollowUp(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid id"})
    }
    f, err := h.FollowUps.GetByID(c.Request().Context(), id)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "follow-up not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "db error"})
    }
    return c.JSON(http.StatusOK, f)
}

// CreateFollowUp handles POST /v1/followups. The due date is not supplied
// by the client: it is computed from the owning account's category (A=2,
// B=3, C=4, D=5 days from now). A followup.created event is published for
// downstream consumers; publish failures never fail the request.
func (h *FollowUpHandler) CreateFollowUp(c echo.Context) error {
    var body followUpReq
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid body"})
    }
    if body.AccountID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "accountId required"})
    }
    status := strings.ToUpper(strings.TrimSpace(body.Status))
    if status != "" && !repository.ValidFollowUpStatus(status) {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "status must be PENDING, COMPLETED or OVERDUE"})
    }

    ctx := c.Request().Context()
    category, err := h.Accounts.CategoryByID(ctx, body.AccountID)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "account not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "db error"})
    }

    due := time.Now().UTC().AddDate(0, 0, repository.FollowUpDelayDays(category))
    f := &repository.FollowUp{
        AccountID:    body.AccountID,
        SalesRepID:   body.SalesRepID,
        FollowUpDate: due,
        Status:       status,
    }
    if err := h.FollowUps.Create(ctx, f); err != nil {
        if errors.Is(err, repository.ErrBadReference) {
            return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "sales rep does not exist"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "could not create follow-up"})
    }

    ev := queue.FollowUpCreatedEvent{
        FollowUpID:      f.ID,
        AccountID:       f.AccountID,
        AccountCategory: category,
        FollowUpDate:    f.FollowUpDate.Format(time.RFC3339),
        Status:          f.Status,
        CreatedAt:       f.CreatedAt.Format(time.RFC3339),
    }
    if a, err := h.Accounts.GetByID(ctx, f.AccountID); err == nil {
        ev.AccountName = a.Name
    }
    if f.SalesRepID != nil {
        ev.SalesRepID = *f.SalesRepID
    }
    _ = service.PublishFollowUpCreated(ctx, ev) // best effort, errors logged inside

    return c.JSON(http.StatusCreated, f)
}

// UpdateFollowUp handles PUT /v1/followups/:id. Status and sales rep may
// change; the computed due date may be moved explicitly via followUpDate.
func (h *FollowUpHandler) UpdateFollowUp(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid id"})
    }
    f, err := h.FollowUps.GetByID(c.Request().Context(), id)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "follow-up not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "db error"})
    }

    var body struct {
        SalesRepID   *uint64    `json:"salesRepId"`
        Status       string     `json:"status"`
        FollowUpDate *time.Time `json:"followUpDate"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid body"})
    }
    if body.SalesRepID != nil {
        f.SalesRepID = body.SalesRepID
    }
    if s := strings.ToUpper(strings.TrimSpace(body.Status)); s != "" {
        if !repository.ValidFollowUpStatus(s) {
            return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "status must be PENDING, COMPLETED or OVERDUE"})
        }
        f.Status = s
    }
    if body.FollowUpDate != nil {
        f.FollowUpDate = body.FollowUpDate.UTC()
    }

    if err := h.FollowUps.Update(c.Request().Context(), &f); err != nil {
        if errors.Is(err, repository.ErrBadReference) {
            return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "sales rep does not exist"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "update failed"})
    }
    return c.JSON(http.StatusOK, f)
}

// DeleteFollowUp handles DELETE /v1/followups/:id.
func (h *FollowUpHandler) DeleteFollowUp(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid id"})
    }
    if err := h.FollowUps.Delete(c.Request().Context(), id); err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "follow-up not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "delete failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "follow-up deleted"})
}
