package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

type CLI struct {
	Serve    ServeCommand    `cmd:"serve" help:"Start the copy generation server."`
	Index    IndexCommand    `cmd:"index" help:"Index a single published copy."`
	Import   ImportCommand   `cmd:"import" help:"Bulk-import published copy from a YAML file."`
	Generate GenerateCommand `cmd:"generate" help:"Generate social media copy for an article URL."`
	Similar  SimilarCommand  `cmd:"similar" help:"Find the most similar indexed copy for a piece of text."`
	Version  VersionCommand  `cmd:"version" help:"Print the version of the server."`
}

func main() {
	_ = godotenv.Load()
	var cli CLI
	ctx := context.Background()
	kctx := kong.Parse(&cli, kong.UsageOnError(), kong.BindTo(ctx, (*context.Context)(nil)))
	if err := kctx.Run(); err != nil {
		log := getLogger("error")
		log.Error("error", slog.Any("error", err))
		os.Exit(1)
	}
}

func getLogger(level string) *slog.Logger {
	ll := slog.LevelInfo
	switch level {
	case "debug":
		ll = slog.LevelDebug
	case "info":
		ll = slog.LevelInfo
	case "warn":
		ll = slog.LevelWarn
	case "error":
		ll = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: ll,
	}))
}
