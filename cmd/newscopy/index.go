package main

import (
	"context"
	"fmt"

	"github.com/hyperhue-studio/news-copy-backend/client"
	"github.com/hyperhue-studio/news-copy-backend/models"
)

type IndexCommand struct {
	ServerURL string `help:"The URL of the copy server." env:"COPY_SERVER_URL" default:"http://localhost:9030"`
	Noticia   string `help:"The news article text." required:""`
	Copy      string `help:"The published copy for the article." required:""`
}

func (c IndexCommand) Run(ctx context.Context) (err error) {
	nc := client.New(c.ServerURL)
	resp, err := nc.IndexPost(ctx, models.IndexPostRequest{
		Noticia: c.Noticia,
		Copy:    c.Copy,
	})
	if err != nil {
		return fmt.Errorf("failed to index copy: %w", err)
	}
	fmt.Println(resp.Message)
	return nil
}
