package main

import (
	// Load .env into the process environment before anything reads it.
	_ "github.com/joho/godotenv/autoload"

	"github.com/promptlab/aoai/cmd"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
