package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"avroute/internal/api"
	"avroute/internal/config"
)

func main() {
	// .env is a dev convenience; absence is not an error
	_ = godotenv.Load()

	cfgPath := flag.String("config", os.Getenv("CONFIG_FILE"), "path to YAML config")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	srvDeps, err := api.NewServer(cfg)
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	mux := srvDeps.Routes()

	addr := cfg.ListenAddr
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	var handler http.Handler = mux
	handler = api.RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst)(handler)
	handler = api.LogMiddleware(handler)

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	janitor := srvDeps.NewJanitor()
	janitor.Start()
	defer janitor.Stop()

	log.Printf("API listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
