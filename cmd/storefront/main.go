package main

import (
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	httpserver "storefront/internal/http"
	applog "storefront/internal/log"
	"storefront/internal/payment"
	"storefront/internal/repos"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// Optional file logging
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.Log.File, err)
		} else {
			defer f.Close()
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
			applog.SetOutput(mw)
		}
	}
	if err := applog.SetLevel(cfg.Log.Level); err != nil {
		log.Printf("[warn] bad LOG_LEVEL %q: %v", cfg.Log.Level, err)
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	var gw payment.Gateway
	if cfg.Payment.Enabled {
		gw = payment.NewClient(&cfg.Payment)
		log.Printf("[payment] gateway %s enabled (%s)", cfg.Payment.BaseApiURL, cfg.Payment.Currency)
	} else {
		log.Printf("[payment] gateway disabled, payments are confirmed without a provider")
	}

	app := httpserver.New(cfg, db, gw, httpserver.DefaultLimits)

	addr := cfg.HTTP.Addr()
	log.Println("Starting HTTP server on", addr)
	go func() {
		if err := app.Listen(addr); err != nil {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Println("Signal received, starting graceful shutdown...")

	if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
		log.Fatalf("HTTP server shutdown error: %v", err)
	}
}
