package main

import (
	"github.com/joho/godotenv"
	"research/internal/cli"
)

func main() {
	// API keys may come from a local .env file.
	_ = godotenv.Load()
	cli.Execute()
}
