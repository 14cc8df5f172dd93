package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/umlchat/umlchat-backend/internal/app"
)

func main() {
	// Optional; real deployments inject env directly.
	_ = godotenv.Load()

	a, err := app.New()
	if err != nil {
		fmt.Printf("Failed to init app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := a.Run(); err != nil {
		a.Log.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}
