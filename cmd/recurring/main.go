// Command recurring runs one pass of recurring-invoice generation.
// Intended to be run from cron once a day.
package main

import (
	"context"
	"log"
	"time"

	"ledgerlite/internal/core"
	"ledgerlite/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	executor := core.NewRecurrenceService(pool)
	generated, err := executor.GenerateDue(ctx, time.Now())
	if err != nil {
		log.Fatalf("generate recurring invoices: %v", err)
	}
	log.Printf("generated %d recurring invoice(s)", len(generated))
}
