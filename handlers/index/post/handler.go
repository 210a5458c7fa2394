package post

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/respond"
	"github.com/google/uuid"
	"github.com/hyperhue-studio/news-copy-backend/models"
	"github.com/hyperhue-studio/news-copy-backend/store"
)

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Upserter interface {
	Upsert(ctx context.Context, e store.Entry) error
}

func New(log *slog.Logger, embedder Embedder, entries Upserter) Handler {
	return Handler{
		log:      log,
		embedder: embedder,
		entries:  entries,
	}
}

type Handler struct {
	log      *slog.Logger
	embedder Embedder
	entries  Upserter
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req models.IndexPostRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		h.log.Error("failed to decode body", slog.Any("error", err))
		respond.WithError(w, "failed to decode body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Noticia) == "" || strings.TrimSpace(req.Copy) == "" {
		respond.WithError(w, "noticia and copy are required", http.StatusBadRequest)
		return
	}

	vector, err := h.embedder.Embed(r.Context(), req.Noticia)
	if err != nil {
		h.log.Error("failed to embed noticia", slog.Any("error", err))
		respond.WithError(w, "failed to embed noticia", http.StatusInternalServerError)
		return
	}

	entry := store.Entry{
		ID:        uuid.NewString(),
		Vector:    vector,
		Noticia:   req.Noticia,
		Copy:      req.Copy,
		CreatedAt: time.Now().UTC(),
	}
	if err = h.entries.Upsert(r.Context(), entry); err != nil {
		h.log.Error("failed to store copy", slog.Any("error", err), slog.String("id", entry.ID))
		respond.WithError(w, "failed to store copy", http.StatusInternalServerError)
		return
	}

	h.log.Info("copy indexed", slog.String("id", entry.ID))
	respond.WithJSON(w, models.IndexPostResponse{Message: "copy indexed"}, http.StatusOK)
}
