package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/hyperhue-studio/news-copy-backend/client"
	"github.com/hyperhue-studio/news-copy-backend/models"
)

type GenerateCommand struct {
	ServerURL string `help:"The URL of the copy server." env:"COPY_SERVER_URL" default:"http://localhost:9030"`
	URL       string `help:"The URL of the news article." required:""`
	Pretty    bool   `help:"Pretty print the JSON output." default:"true"`
}

func (c GenerateCommand) Run(ctx context.Context) (err error) {
	nc := client.New(c.ServerURL)
	resp, err := nc.CopiesPost(ctx, models.CopiesPostRequest{
		URL: c.URL,
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	if c.Pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(resp)
}
