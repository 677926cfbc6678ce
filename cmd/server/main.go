package main

import (
	"context"
	"log"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"promptforge.app/server/internal/config"
	"promptforge.app/server/internal/crypto"
	"promptforge.app/server/internal/database"
	"promptforge.app/server/internal/handler"
	"promptforge.app/server/internal/middleware"
	"promptforge.app/server/internal/migrate"
	"promptforge.app/server/internal/queue"
	"promptforge.app/server/internal/repository"
	"promptforge.app/server/internal/router"
)

func main() {
	cfg := config.Load()

	keys, err := config.LoadOrCreateKeys(cfg.EnvFile)
	if err != nil {
		log.Fatalf("key provisioning failed: %v", err)
	}
	cipher, err := crypto.New(keys.EncryptionKey)
	if err != nil {
		log.Fatalf("cipher init failed: %v", err)
	}

	db, err := database.Open(cfg.DataDir)
	if err != nil {
		log.Fatalf("database open failed: %v", err)
	}
	defer db.Close()

	// One-shot legacy import; it no-ops forever once done and is retried on
	// later startups while no user exists yet.
	if err := migrate.MigrateLegacyPrompts(db, cfg.DataDir); err != nil {
		log.Printf("legacy prompt migration failed: %v", err)
	}

	users := repository.NewUserRepo(db)
	sessions := repository.NewSessionRepo(db)
	apiKeys := repository.NewAPIKeyRepo(db)
	prompts := repository.NewPromptRepo(db)

	if err := sessions.DeleteExpired(context.Background()); err != nil {
		log.Printf("session cleanup failed: %v", err)
	}

	rdb := config.NewRedisClient() // nil disables rate limiting and caching
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and community cache disabled")
	}

	events := queue.NewPublisher(cfg.AMQPURL)
	if cfg.AMQPURL != "" {
		go func() {
			if err := queue.StartActivityConsumer(cfg.AMQPURL); err != nil {
				log.Printf("activity consumer stopped: %v", err)
			}
		}()
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{"http://localhost:5173"}, // Vite dev server
		AllowCredentials: true,
	}))

	sessionMW := middleware.SessionAuth(keys.SessionSecret, sessions)
	limiterMW := middleware.RateLimit(config.LoadRateLimitConfig(), rdb)

	auth := handler.NewAuthHandler(cfg, keys, users, sessions, events)
	keyHandler := handler.NewAPIKeyHandler(cipher, apiKeys)
	promptHandler := handler.NewPromptHandler(prompts, events, rdb, config.LoadCacheConfig())
	completions := handler.NewCompletionHandler(cipher, apiKeys)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, auth, sessionMW, limiterMW)
	router.RegisterAPI(e, sessionMW, keyHandler, promptHandler, completions)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
