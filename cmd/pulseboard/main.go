package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/pulseboard-dev/pulseboard/db"
	"github.com/pulseboard-dev/pulseboard/internal/pagerduty"
	"github.com/pulseboard-dev/pulseboard/internal/router"
	pdsync "github.com/pulseboard-dev/pulseboard/internal/sync"
)

func main() {
	var err error

	err = godotenv.Load()

	if err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	dsn := os.Getenv("DATABASE_DSN")

	if dsn == "" {
		log.Fatal("DATABASE_DSN not set")
	}

	if err = db.ConnectDatabase(dsn); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err = db.MigrateDatabase(db.DB); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	apiURL := os.Getenv("PAGERDUTY_API_URL")
	apiKey := os.Getenv("PAGERDUTY_API_KEY")

	if apiURL == "" || apiKey == "" {
		log.Fatal("PAGERDUTY_API_URL and PAGERDUTY_API_KEY must be set")
	}

	client := pagerduty.NewClient(apiURL, apiKey)
	syncer := pdsync.NewSyncer(db.DB, client)

	// Snapshot the account before serving. A failed pass leaves a stale
	// mirror behind the API rather than taking the process down.
	log.Println("Fetching and storing PagerDuty data...")

	if summary, err := syncer.Run(context.Background()); err != nil {
		log.Printf("Startup sync failed, serving existing mirror: %v", err)
	} else {
		log.Printf("Sync complete: %d teams, %d escalation policies, %d services, %d incidents",
			summary.Teams, summary.EscalationPolicies, summary.Services, summary.Incidents)
	}

	r := router.NewRouter(syncer)

	var port string

	if port = os.Getenv("PORT"); port == "" {
		port = "3000"
		log.Println("PORT not set, defaulting to 3000")
	}

	if err = r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
