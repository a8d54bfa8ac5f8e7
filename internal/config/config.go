// Package config loads runtime settings from a .env file and the process
// environment; the environment wins.
package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	ServiceName string
	Env         string
	Addr        string

	// DataDir holds the flat-file documents: products.json, inventory.json,
	// sales_log.json and config.json.
	DataDir    string
	ReceiptDir string

	Currency          string
	LowStockThreshold decimal.Decimal
}

func Load() Config {
	// Missing .env is fine; the environment alone is enough.
	_ = godotenv.Load()

	cfg := Config{
		ServiceName: getenv("SERVICE_NAME", "grocery-pos"),
		Env:         getenv("ENV", "dev"),
		Addr:        getenv("HTTP_ADDR", ":8080"),
		DataDir:     getenv("DATA_DIR", "."),
		ReceiptDir:  getenv("RECEIPT_DIR", "receipts"),
		Currency:    getenv("CURRENCY", "Rs."),
	}

	cfg.LowStockThreshold = decimal.NewFromInt(20)
	if raw := os.Getenv("LOW_STOCK_THRESHOLD"); raw != "" {
		if t, err := decimal.NewFromString(raw); err == nil && !t.IsNegative() {
			cfg.LowStockThreshold = t
		}
	}

	return cfg
}

func (c Config) ProductsPath() string { return filepath.Join(c.DataDir, "products.json") }
func (c Config) StockPath() string    { return filepath.Join(c.DataDir, "inventory.json") }
func (c Config) JournalPath() string  { return filepath.Join(c.DataDir, "sales_log.json") }
func (c Config) SettingsPath() string { return filepath.Join(c.DataDir, "config.json") }

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
