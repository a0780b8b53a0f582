package main

import (
	"context"
	"log"
	"net/http"
	"os"

	webAdapter "ledgerlite/internal/adapters/web"
	"ledgerlite/internal/app"
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

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable not set")
	}

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Println("Warning: OPENAI_API_KEY is not set, invoice drafting disabled")
	}

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "uploads/receipts"
	}

	a, err := app.New(pool, app.Config{
		OpenAIKey:       apiKey,
		UploadDir:       uploadDir,
		UploadURLPrefix: "/uploads/receipts",
	})
	if err != nil {
		log.Fatalf("app: %v", err)
	}

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(a, allowedOrigins, jwtSecret, uploadDir)

	log.Printf("server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
