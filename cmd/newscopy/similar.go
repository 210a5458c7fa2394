package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/hyperhue-studio/news-copy-backend/client"
	"github.com/hyperhue-studio/news-copy-backend/models"
)

type SimilarCommand struct {
	ServerURL string `help:"The URL of the copy server." env:"COPY_SERVER_URL" default:"http://localhost:9030"`
	Texto     string `help:"The text to find similar copy for." required:""`
	Pretty    bool   `help:"Pretty print the JSON output." default:"true"`
}

func (c SimilarCommand) Run(ctx context.Context) (err error) {
	nc := client.New(c.ServerURL)
	resp, err := nc.SimilarPost(ctx, models.SimilarPostRequest{
		Texto: c.Texto,
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
