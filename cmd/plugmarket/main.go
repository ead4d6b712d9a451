package main

import (
	"log"

	"github.com/plugmarket/plugmarket/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ plugmarket failed to start: %v", err)
	}
}
