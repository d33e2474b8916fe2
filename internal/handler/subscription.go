package handler

import (
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/crm-api/internal/repository"
)

// SubscriptionHandler bundles the subscription repository for CRUD endpoints.
type SubscriptionHandler struct {
    Subscriptions *repository.SubscriptionRepo
}

func NewSubscriptionHandler(subscriptions *repository.SubscriptionRepo) *SubscriptionHandler {
    if subscriptions == nil {
        panic("nil repository passed to NewSubscriptionHandler")
    }
    return &SubscriptionHandler{Subscriptions: subscriptions}
}

type subscriptionReq struct {
    UserID  uint64 `json:"userId"`
    Plan    string `json:"plan"`
    Status  string `json:"status"`
    EndDate string `json:"endDate"` // YYYY-MM-DD
}

// ListSubscriptions handles GET /v1/subscriptions.
func (h *SubscriptionHandler) ListSubscriptions(c echo.Context) error {
    items, err := h.Subscriptions.List(c.Request().Context())
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "db error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetSubscription handles GET /v1/subscriptions/:id.
func (h *SubscriptionHandler) GetSubscription(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid id"})
    }
    s, err := h.Subscriptions.GetByID(c.Request().Context(), id)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "subscription not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "db error"})
    }
    return c.JSON(http.StatusOK, s)
}

// CreateSubscription handles POST /v1/subscriptions. A user may hold at
// most one ACTIVE subscription; the start date is now and the status
// defaults to ACTIVE.
func (h *SubscriptionHandler) CreateSubscription(c echo.Context) error {
    var body subscriptionReq
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid body"})
    }
    if body.UserID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "userId required"})
    }
    plan := strings.ToUpper(strings.TrimSpace(body.Plan))
    if !repository.ValidPlan(plan) {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "plan must be BASIC or PREMIUM"})
    }
    status := strings.ToUpper(strings.TrimSpace(body.Status))
    if status != "" && !repository.ValidSubscriptionStatus(status) {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "status must be ACTIVE, EXPIRED or CANCELLED"})
    }
    endDate, err := time.Parse("2006-01-02", strings.TrimSpace(body.EndDate))
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "endDate must be YYYY-MM-DD"})
    }

    ctx := c.Request().Context()
    active, err := h.Subscriptions.HasActive(ctx, body.UserID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "db error"})
    }
    if active && (status == "" || status == repository.SubscriptionActive) {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "user already has an active subscription"})
    }

    s := &repository.Subscription{
        UserID:    body.UserID,
        Plan:      plan,
        Status:    status,
        StartDate: time.Now().UTC(),
        EndDate:   endDate,
    }
    if err := h.Subscriptions.Create(ctx, s); err != nil {
        if errors.Is(err, repository.ErrBadReference) {
            return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "user does not exist"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "could not create subscription"})
    }
    return c.JSON(http.StatusCreated, s)
}

// UpdateSubscription handles PUT /v1/subscriptions/:id.
func (h *SubscriptionHandler) UpdateSubscription(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid id"})
    }
    s, err := h.Subscriptions.GetByID(c.Request().Context(), id)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "subscription not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "db error"})
    }

    var body subscriptionReq
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid body"})
    }
    if plan := strings.ToUpper(strings.TrimSpace(body.Plan)); plan != "" {
        if !repository.ValidPlan(plan) {
            return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "plan must be BASIC or PREMIUM"})
        }
        s.Plan = plan
    }
    if status := strings.ToUpper(strings.TrimSpace(body.Status)); status != "" {
        if !repository.ValidSubscriptionStatus(status) {
            return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "status must be ACTIVE, EXPIRED or CANCELLED"})
        }
        s.Status = status
    }
    if body.EndDate != "" {
        endDate, err := time.Parse("2006-01-02", strings.TrimSpace(body.EndDate))
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "endDate must be YYYY-MM-DD"})
        }
        s.EndDate = endDate
    }

    if err := h.Subscriptions.Update(c.Request().Context(), &s); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "update failed"})
    }
    return c.JSON(http.StatusOK, s)
}

// DeleteSubscription handles DELETE /v1/subscriptions/:id.
func (h *SubscriptionHandler) DeleteSubscription(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid id"})
    }
    if err := h.Subscriptions.Delete(c.Request().Context(), id); err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "subscription not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "delete failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "subscription deleted"})
}
