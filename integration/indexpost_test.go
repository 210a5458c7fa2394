package integration

import (
	"context"
	"testing"

	"github.com/hyperhue-studio/news-copy-backend/client"
	"github.com/hyperhue-studio/news-copy-backend/models"
)

func TestIndexPost(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	c := client.New("http://localhost:9030")
	resp, err := c.IndexPost(context.Background(), models.IndexPostRequest{
		Noticia: "A test article about local news.",
		Copy:    "Local news you can't miss today!",
	})
	if err != nil {
		t.Fatalf("failed to index copy: %v", err)
	}
	if resp.Message == "" {
		t.Error("expected a message in the response")
	}
}
