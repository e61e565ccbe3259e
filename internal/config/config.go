package config

import (
	"errors"
	"fmt"
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTP         HTTPServer
	Log          Log
	DBDSN        string `env:"DB_DSN" envDefault:"storefront.db"`
	CookieSecure bool   `env:"COOKIE_SECURE" envDefault:"false"`

	Payment Payment `envPrefix:"PAYMENT_"`
	Invoice Invoice `envPrefix:"INVOICE_"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}

func (h HTTPServer) Addr() string { return h.Host + ":" + h.Port }

type Log struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
	File  string `env:"LOG_FILE"`
}

// Payment configures the optional gateway. When Enabled is false the
// storefront runs without one and payment confirmation takes the caller's word.
type Payment struct {
	Enabled    bool   `env:"ENABLED" envDefault:"false"`
	BaseApiURL string `env:"BASE_API_URL" envDefault:"https://api.razorpay.com"`
	KeyID      string `env:"KEY_ID"`
	KeySecret  string `env:"KEY_SECRET"`
	Currency   string `env:"CURRENCY" envDefault:"INR"`
}

type Invoice struct {
	StoreName string `env:"STORE_NAME" envDefault:"Storefront"`
	Font      string `env:"FONT" envDefault:"Helvetica"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("[config] no .env file loaded (ok in prod)")
	}
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	log.Printf("[config] HTTP=%s DB_DSN=%s LOG_FILE=%s PAYMENT_ENABLED=%t",
		cfg.HTTP.Addr(), cfg.DBDSN, cfg.Log.File, cfg.Payment.Enabled)
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Payment.Enabled && (c.Payment.KeyID == "" || c.Payment.KeySecret == "") {
		return errors.New("PAYMENT_ENABLED requires PAYMENT_KEY_ID and PAYMENT_KEY_SECRET")
	}
	if c.DBDSN == "" {
		return errors.New("DB_DSN must not be empty")
	}
	return nil
}
