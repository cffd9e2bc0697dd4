package main

import (
	"log"

	"github.com/devcrm/auth-service/internal/auth/app"
)

func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	worker, err := app.NewMailWorker(cfg)
	if err != nil {
		log.Fatalf("failed to initialize mail worker: %v", err)
	}

	if err := worker.Run(); err != nil {
		log.Fatalf("mail worker error: %v", err)
	}
}
