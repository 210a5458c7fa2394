package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/hyperhue-studio/news-copy-backend/client"
	"github.com/hyperhue-studio/news-copy-backend/models"
	"gopkg.in/yaml.v3"
)

type ImportCommand struct {
	ServerURL string `help:"The URL of the copy server." env:"COPY_SERVER_URL" default:"http://localhost:9030"`
	File      string `help:"Path to a YAML file containing a list of {noticia, copy} entries." required:""`
	DryRun    bool   `help:"Do not actually import the entries." env:"DRY_RUN" default:"false"`
	LogLevel  string `help:"The log level to use." env:"LOG_LEVEL" default:"info"`
}

func (c ImportCommand) Run(ctx context.Context) (err error) {
	log := getLogger(c.LogLevel)

	f, err := os.Open(c.File)
	if err != nil {
		return fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()

	entries, err := parseEntries(f)
	if err != nil {
		return fmt.Errorf("failed to parse import file: %w", err)
	}

	nc := client.New(c.ServerURL)
	for i, entry := range entries {
		log.Info("importing copy", slog.Int("index", i), slog.String("copy", entry.Copy))
		if c.DryRun {
			log.Info("skipping import in dry run mode", slog.Int("index", i))
			continue
		}
		if _, err = nc.IndexPost(ctx, entry); err != nil {
			return fmt.Errorf("failed to import entry %d: %w", i, err)
		}
	}
	log.Info("import complete", slog.Int("entries", len(entries)))
	return nil
}

func parseEntries(r io.Reader) (entries []models.IndexPostRequest, err error) {
	if err = yaml.NewDecoder(r).Decode(&entries); err != nil {
		return nil, err
	}
	for i, entry := range entries {
		if strings.TrimSpace(entry.Noticia) == "" || strings.TrimSpace(entry.Copy) == "" {
			return nil, fmt.Errorf("entry %d is missing noticia or copy", i)
		}
	}
	return entries, nil
}
