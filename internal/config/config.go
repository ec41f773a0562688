package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	AllowedOrigin string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	ShopifyShopURL       string
	ShopifyAccessToken   string
	ShopifyAPIVersion    string
	ShopifyWebhookSecret string

	AuthSecret            string
	AdminUsername         string
	AdminPassword         string
	AccessTokenTTLMinutes int

	ReceiptDir       string
	TodayTTLSeconds  int
	ReportTTLSeconds int
}

// Load reads configuration from the environment, after loading a .env file
// when one exists next to the binary.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[config] WARN: could not load .env: %v", err)
	}

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	tokenTTL, err := strconv.Atoi(getEnv("ACCESS_TOKEN_TTL_MINUTES", "480"))
	if err != nil || tokenTTL < 1 {
		tokenTTL = 480
	}
	todayTTL, err := strconv.Atoi(getEnv("TODAY_STATS_TTL_SECONDS", "60"))
	if err != nil || todayTTL < 1 {
		todayTTL = 60
	}
	reportTTL, err := strconv.Atoi(getEnv("REPORT_TTL_SECONDS", "300"))
	if err != nil || reportTTL < 1 {
		reportTTL = 300
	}

	cfg := Config{
		Port:          getEnv("PORT", "8080"),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "http://127.0.0.1:3000"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,

		ShopifyShopURL:       strings.TrimSpace(os.Getenv("SHOPIFY_SHOP_URL")),
		ShopifyAccessToken:   strings.TrimSpace(os.Getenv("SHOPIFY_ACCESS_TOKEN")),
		ShopifyAPIVersion:    strings.TrimSpace(os.Getenv("SHOPIFY_API_VERSION")),
		ShopifyWebhookSecret: strings.TrimSpace(os.Getenv("SHOPIFY_WEBHOOK_SECRET")),

		AuthSecret:            strings.TrimSpace(os.Getenv("AUTH_SECRET")),
		AdminUsername:         strings.TrimSpace(os.Getenv("ADMIN_USERNAME")),
		AdminPassword:         strings.TrimSpace(os.Getenv("ADMIN_PASSWORD")),
		AccessTokenTTLMinutes: tokenTTL,

		ReceiptDir:       getEnv("RECEIPT_DIR", "receipts"),
		TodayTTLSeconds:  todayTTL,
		ReportTTLSeconds: reportTTL,
	}

	return cfg
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}
