package post

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-h/respond"
	"github.com/hyperhue-studio/news-copy-backend/models"
	"github.com/hyperhue-studio/news-copy-backend/store"
)

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Querier interface {
	Query(ctx context.Context, vector []float32, topK int) ([]store.Match, error)
}

func New(log *slog.Logger, embedder Embedder, entries Querier) Handler {
	return Handler{
		log:      log,
		embedder: embedder,
		entries:  entries,
	}
}

type Handler struct {
	log      *slog.Logger
	embedder Embedder
	entries  Querier
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req models.SimilarPostRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		h.log.Error("failed to decode body", slog.Any("error", err))
		respond.WithError(w, "failed to decode body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Texto) == "" {
		respond.WithError(w, "texto is required", http.StatusBadRequest)
		return
	}

	vector, err := h.embedder.Embed(r.Context(), req.Texto)
	if err != nil {
		h.log.Error("failed to embed texto", slog.Any("error", err))
		respond.WithError(w, "failed to embed texto", http.StatusInternalServerError)
		return
	}

	matches, err := h.entries.Query(r.Context(), vector, 1)
	if err != nil {
		h.log.Error("failed to query similar copy", slog.Any("error", err))
		respond.WithError(w, "failed to query similar copy", http.StatusInternalServerError)
		return
	}
	if len(matches) == 0 {
		respond.WithError(w, "no similar copy found", http.StatusNotFound)
		return
	}

	best := matches[0]
	respond.WithJSON(w, models.SimilarPostResponse{
		ID:    best.ID,
		Score: best.Score,
		Metadata: models.SimilarMetadata{
			Noticia: best.Noticia,
			Copy:    best.Copy,
		},
	}, http.StatusOK)
}
