package main

import (
	"context"
	"fmt"
	"os"

	"github.com/finsight/dashis/pkg/runtime/terminal"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	_ = godotenv.Load()

	level := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(os.Getenv("DASHIS_LOG_LEVEL")); err == nil && parsed != zerolog.NoLevel {
		level = parsed
	}
	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	cli := terminal.NewCLI(terminal.Options{
		Output: os.Stdout,
		Plain:  os.Getenv("DASHIS_PLAIN_OUTPUT") == "1",
	})

	ctx := logger.WithContext(context.Background())
	if err := cli.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
