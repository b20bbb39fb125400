package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	DBDSN           string
	Domain          string // public base URL, used for payment callback links
	Currency        string
	StripeSecretKey string
	LogFile         string
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] no .env file, using environment")
	}

	cfg := Config{
		Port:            getenv("PORT", "8080"),
		DBDSN:           getenv("DB_DSN", "storefront.db"),
		Domain:          getenv("DOMAIN", "http://localhost:8080"),
		Currency:        getenv("CURRENCY", "usd"),
		StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),
		LogFile:         getenv("LOG_FILE", "./storefront.log"),
	}
	log.Printf("[config] PORT=%s DB_DSN=%s DOMAIN=%s CURRENCY=%s", cfg.Port, cfg.DBDSN, cfg.Domain, cfg.Currency)
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
