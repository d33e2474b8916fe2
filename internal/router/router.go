package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/crm-api/internal/config"
	"github.com/iliyamo/crm-api/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/crm-api/internal/middleware" // import middleware for JWT authentication and role enforcement
	"github.com/iliyamo/crm-api/internal/repository"
	"github.com/iliyamo/crm-api/internal/service"
)

// Handlers collects every resource handler wired at startup.  main builds
// the repositories, assembles this struct, and hands it to Register.
type Handlers struct {
	Auth          *handler.AuthHandler
	Accounts      *handler.AccountHandler
	Contacts      *handler.ContactHandler
	FollowUps     *handler.FollowUpHandler
	Subscriptions *handler.SubscriptionHandler
	Users         *handler.UserHandler
}

// NewHandlers constructs the full handler set from the shared dependencies.
func NewHandlers(cfg config.Config, sess *service.Session,
	users *repository.UserRepo, accounts *repository.AccountRepo,
	contacts *repository.ContactRepo, followUps *repository.FollowUpRepo,
	subscriptions *repository.SubscriptionRepo) *Handlers {
	return &Handlers{
		Auth:          handler.NewAuthHandler(sess),
		Accounts:      handler.NewAccountHandler(accounts),
		Contacts:      handler.NewContactHandler(contacts),
		FollowUps:     handler.NewFollowUpHandler(followUps, accounts),
		Subscriptions: handler.NewSubscriptionHandler(subscriptions),
		Users:         handler.NewUserHandler(users, cfg.BcryptCost),
	}
}

// Register wires every route of the API onto the provided Echo instance.
//
// Layout:
//   /healthz                      – public liveness probe
//   /v1/auth/*                    – signup/login/refresh/logout, no JWT required
//   /v1/*                         – everything else behind the JWT request gate;
//                                   the gate transparently refreshes expired
//                                   access tokens from the refresh cookie
//   /v1/users (write operations)  – additionally behind RequireRole(ADMIN)
func Register(e *echo.Echo, cfg config.Config, sess *service.Session, h *Handlers, rdb *redis.Client) {
	// Liveness probe for load balancers and monitoring systems.
	e.GET("/healthz", handler.Health)

	// Unauthenticated session operations.  Each of these handlers is
	// responsible for generating or exchanging tokens.
	auth := e.Group("/v1/auth")
	auth.POST("/signup", h.Auth.Signup)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh-token", h.Auth.RefreshToken)
	auth.POST("/logout", h.Auth.Logout)

	// The token bucket keys on IP/route by default and runs globally, so
	// the auth endpoints are covered against brute force. A user-based key
	// strategy only sees an identity after the request gate has run, so
	// such a limiter attaches to the protected group instead.
	rlCfg := config.LoadRateLimitConfig()
	limiter := middleware.NewTokenBucket(rlCfg, rdb)
	gate := []echo.MiddlewareFunc{middleware.JWTAuth(sess)}
	if rlCfg.IdentityAware() {
		gate = append(gate, limiter)
	} else {
		e.Use(limiter)
	}

	// Everything below runs the JWT request gate before the handler.
	v1 := e.Group("/v1", gate...)
	v1.GET("/me", h.Auth.Me)

	// Response caching applies only to the resource collections: their
	// responses are identical for every authenticated caller, unlike /me
	// or /users/profile, which must never be served from a shared cache.
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	accounts := v1.Group("/accounts", cache)
	accounts.GET("", h.Accounts.ListAccounts)
	accounts.GET("/:id", h.Accounts.GetAccount)
	accounts.POST("", h.Accounts.CreateAccount)
	accounts.PUT("/:id", h.Accounts.UpdateAccount)
	accounts.DELETE("/:id", h.Accounts.DeleteAccount)

	contacts := v1.Group("/contacts", cache)
	contacts.GET("", h.Contacts.ListContacts)
	contacts.GET("/:id", h.Contacts.GetContact)
	contacts.POST("", h.Contacts.CreateContact)
	contacts.PUT("/:id", h.Contacts.UpdateContact)
	contacts.DELETE("/:id", h.Contacts.DeleteContact)

	followups := v1.Group("/followups", cache)
	followups.GET("", h.FollowUps.ListFollowUps)
	followups.GET("/:id", h.FollowUps.GetFollowUp)
	followups.POST("", h.FollowUps.CreateFollowUp)
	followups.PUT("/:id", h.FollowUps.UpdateFollowUp)
	followups.DELETE("/:id", h.FollowUps.DeleteFollowUp)

	subscriptions := v1.Group("/subscriptions", cache)
	subscriptions.GET("", h.Subscriptions.ListSubscriptions)
	subscriptions.GET("/:id", h.Subscriptions.GetSubscription)
	subscriptions.POST("", h.Subscriptions.CreateSubscription)
	subscriptions.PUT("/:id", h.Subscriptions.UpdateSubscription)
	subscriptions.DELETE("/:id", h.Subscriptions.DeleteSubscription)

	// User reads are open to any authenticated caller; user management is
	// ADMIN-only.  Static routes are registered before /:id so Echo does
	// not treat "profile" or "admin" as an id.
	users := v1.Group("/users")
	users.GET("", h.Users.ListUsers)
	users.GET("/profile", h.Users.Profile)
	users.GET("/admin", h.Users.AdminPanel, middleware.RequireRole(repository.RoleAdmin))
	users.GET("/:id", h.Users.GetUser)

	admin := users.Group("", middleware.RequireRole(repository.RoleAdmin))
	admin.POST("", h.Users.CreateUser)
	admin.PUT("/:id", h.Users.UpdateUser)
	admin.DELETE("/:id", h.Users.DeleteUser)
}
