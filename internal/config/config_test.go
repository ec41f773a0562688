package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "ALLOWED_ORIGIN", "DATABASE_URL", "REDIS_ADDR",
		"SHOPIFY_SHOP_URL", "SHOPIFY_ACCESS_TOKEN", "ACCESS_TOKEN_TTL_MINUTES",
		"TODAY_STATS_TTL_SECONDS", "REPORT_TTL_SECONDS", "RECEIPT_DIR",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Port != "8080" {
		t.Errorf("port = %q", cfg.Port)
	}
	if cfg.Address() != ":8080" {
		t.Errorf("address = %q", cfg.Address())
	}
	if cfg.AccessTokenTTLMinutes != 480 {
		t.Errorf("token ttl = %d", cfg.AccessTokenTTLMinutes)
	}
	if cfg.TodayTTLSeconds != 60 || cfg.ReportTTLSeconds != 300 {
		t.Errorf("cache ttls = %d/%d", cfg.TodayTTLSeconds, cfg.ReportTTLSeconds)
	}
	if cfg.ReceiptDir != "receipts" {
		t.Errorf("receipt dir = %q", cfg.ReceiptDir)
	}
	if cfg.DatabaseURL != "" || cfg.RedisAddr != "" {
		t.Errorf("optional backends should default to empty: %q %q", cfg.DatabaseURL, cfg.RedisAddr)
	}
	if cfg.AuthSecret != "" || cfg.AdminUsername != "" {
		t.Errorf("auth must stay unset without env: %q %q", cfg.AuthSecret, cfg.AdminUsername)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SHOPIFY_SHOP_URL", "  example.myshopify.com  ")
	t.Setenv("ACCESS_TOKEN_TTL_MINUTES", "not-a-number")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Errorf("port = %q", cfg.Port)
	}
	if cfg.ShopifyShopURL != "example.myshopify.com" {
		t.Errorf("shop url not trimmed: %q", cfg.ShopifyShopURL)
	}
	if cfg.AccessTokenTTLMinutes != 480 {
		t.Errorf("bad ttl should fall back: %d", cfg.AccessTokenTTLMinutes)
	}
}
