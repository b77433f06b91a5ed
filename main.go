package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/planair/planair/cmd"
)

func main() {
	// A missing .env is fine; the rc file and real environment still apply.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
