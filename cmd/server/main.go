package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/crm-api/internal/config"
	"github.com/iliyamo/crm-api/internal/database"
	"github.com/iliyamo/crm-api/internal/queue"
	"github.com/iliyamo/crm-api/internal/repository"
	"github.com/iliyamo/crm-api/internal/router"
	"github.com/iliyamo/crm-api/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	defer db.Close()

	// Redis is optional: a nil client disables response caching and rate
	// limiting instead of failing startup.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Print("redis unavailable; cache and rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	accounts := repository.NewAccountRepo(db)
	contacts := repository.NewContactRepo(db)
	followUps := repository.NewFollowUpRepo(db)
	subscriptions := repository.NewSubscriptionRepo(db)

	sess := service.NewSession(cfg, users)
	handlers := router.NewHandlers(cfg, sess, users, accounts, contacts, followUps, subscriptions)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{echo.GET, echo.POST, echo.PUT, echo.DELETE},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization, "X-Refresh-Token"},
		ExposeHeaders:    []string{"X-Access-Token"},
		AllowCredentials: true,
	}))
	// The Redis token bucket is attached by the router: globally for
	// IP-keyed strategies, behind the request gate for user-keyed ones.
	router.Register(e, cfg, sess, handlers, rdb)

	// Background consumer for followup.created events; runs its own
	// reconnect loop and never takes the server down.
	go func() {
		if err := queue.StartFollowUpConsumer(); err != nil {
			log.Printf("followup consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
