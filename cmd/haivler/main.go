package main

import (
	"github.com/joho/godotenv"

	"github.com/haivler/haivler-cli/cmd/haivler/cmd"
)

func main() {
	// Optional .env for local development; missing file is fine.
	_ = godotenv.Load()

	cmd.Execute()
}
