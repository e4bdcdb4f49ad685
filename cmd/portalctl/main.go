package main

import (
	"fmt"
	"os"

	"github.com/estatedesk/portal/internal/cli"
	"github.com/estatedesk/portal/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	_ = godotenv.Load()
	// stdout carries command output
	logger.Init("warn", "json")
	logger.SetOutput(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})

	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
