package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/verdict-systems/clausewise/internal/adapters/driving/cli"
)

func main() {
	// Best effort: a missing .env is fine.
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
