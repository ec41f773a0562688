package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meezypos/backend/internal/cache"
	"meezypos/backend/internal/config"
	"meezypos/backend/internal/httpapi"
	"meezypos/backend/internal/receipt"
	"meezypos/backend/internal/service"
	"meezypos/backend/internal/shopify"
	"meezypos/backend/internal/store"
	"meezypos/backend/internal/store/memory"
	pgstore "meezypos/backend/internal/store/postgres"
)

func main() {
	cfg := config.Load()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	remote, err := shopify.New(shopify.Config{
		ShopURL:     cfg.ShopifyShopURL,
		AccessToken: cfg.ShopifyAccessToken,
		APIVersion:  cfg.ShopifyAPIVersion,
	})
	if err != nil {
		log.Fatalf("shopify client: %v", err)
	}

	var repo store.Repository
	closers := make([]func() error, 0, 2)

	if cfg.DatabaseURL != "" {
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("postgres unavailable (%v) and DATABASE_URL is set; refusing to start with in-memory fallback", err)
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatalf("schema bootstrap: %v", err)
		}
		repo = pg
		closers = append(closers, pg.Close)
		log.Println("repository: postgres")
	} else {
		repo = memory.NewSeeded()
		log.Println("repository: in-memory")
	}

	reportCache := cache.ReportCache(cache.NoopReportCache{})
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisReportCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisCache.Ping(ctx); err != nil {
			log.Printf("redis unavailable (%v), using noop cache", err)
		} else {
			reportCache = redisCache
			closers = append(closers, redisCache.Close)
			log.Println("cache: redis")
		}
	} else {
		log.Println("cache: noop")
	}

	svc := service.New(
		repo,
		remote,
		receipt.NewGenerator(cfg.ReceiptDir),
		reportCache,
		time.Duration(cfg.TodayTTLSeconds)*time.Second,
		time.Duration(cfg.ReportTTLSeconds)*time.Second,
	)

	auth := httpapi.NewAuthManager(cfg.AuthSecret, time.Duration(cfg.AccessTokenTTLMinutes)*time.Minute, cfg.AdminUsername, cfg.AdminPassword)
	if auth == nil {
		log.Println("auth: disabled (set AUTH_SECRET, ADMIN_USERNAME and ADMIN_PASSWORD to enable)")
	}
	if cfg.ShopifyWebhookSecret == "" {
		log.Println("webhooks: signature verification disabled (set SHOPIFY_WEBHOOK_SECRET to enable)")
	}

	api := httpapi.New(svc, auth, cfg.AllowedOrigin, cfg.ShopifyWebhookSecret)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("POS backend listening on %s", cfg.Address())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Printf("close error: %v", err)
		}
	}

	log.Println("server stopped")
}
