package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/genasnewdar/lever-stg/internal/app"
)

func main() {
	// .env is for local development; deployed environments inject real
	// variables.
	_ = godotenv.Load()

	application, err := app.New()
	if err != nil {
		fmt.Printf("Failed to init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	application.Start()

	addr := ":" + application.Cfg.Port
	application.Log.Info("Server listening", "addr", addr)
	if err := application.Run(addr); err != nil {
		application.Log.Error("Server failed", "error", err)
	}
}
