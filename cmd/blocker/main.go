package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/focusplus/backend/internal/blocker"
)

func main() {
	log.Println("🚀 Starting Focus+ app blocker...")

	godotenv.Load()

	apiURL := getEnvOrDefault("BLOCKER_API_URL", "http://localhost:8080")
	token := os.Getenv("BLOCKER_TOKEN")
	if token == "" {
		log.Fatal("✗ BLOCKER_TOKEN is not set")
	}

	interval := 5 * time.Second
	if raw := os.Getenv("BLOCKER_INTERVAL"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			interval = parsed
		}
	}

	b := blocker.New(blocker.Config{
		APIBaseURL: apiURL,
		Token:      token,
		CacheFile:  getEnvOrDefault("BLOCKER_CACHE_FILE", "blocked_apps.json"),
		Interval:   interval,
	}, blocker.NewSystem())

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Println("Shutting down...")
		cancel()
	}()

	log.Printf("✓ Blocker polling %s every %s", apiURL, interval)
	b.Run(ctx)
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}
