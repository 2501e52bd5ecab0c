package config

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
)

func TestLoad_ConfigYAML(t *testing.T) {
	path := filepath.Join("..", "..", "config.yaml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Database.Host == "" {
		t.Fatalf("expected database.host to be set")
	}
	if cfg.RabbitMQ.Port == 0 {
		t.Fatalf("expected rabbitmq.port to be set")
	}
	if cfg.Restaurant.Name == "" {
		t.Fatalf("expected restaurant.name to be set")
	}
	if !cfg.Pricing.TaxRate.Equal(decimal.NewFromFloat(0.15)) {
		t.Fatalf("expected pricing.tax_rate 0.15, got %s", cfg.Pricing.TaxRate)
	}
	if !cfg.Loyalty.SilverThreshold.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected loyalty.silver_threshold 100, got %s", cfg.Loyalty.SilverThreshold)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("POS_DB_PASSWORD", "override-secret")

	path := filepath.Join("..", "..", "config.yaml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Database.Password != "override-secret" {
		t.Fatalf("expected env override for database password, got %q", cfg.Database.Password)
	}
}
