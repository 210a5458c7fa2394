package post

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/a-h/respond"
	"github.com/hyperhue-studio/news-copy-backend/copygen"
	"github.com/hyperhue-studio/news-copy-backend/models"
	"github.com/hyperhue-studio/news-copy-backend/prompt"
	"github.com/hyperhue-studio/news-copy-backend/scrape"
	"github.com/hyperhue-studio/news-copy-backend/store"
)

type Extractor interface {
	Extract(ctx context.Context, url string) (scrape.Content, error)
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Querier interface {
	Query(ctx context.Context, vector []float32, topK int) ([]store.Match, error)
}

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Shortener interface {
	Shorten(ctx context.Context, longURL string) (string, error)
}

type Options struct {
	// TopK is the number of reference examples retrieved per request.
	TopK int

	// EmbedDescription includes the article description in the embedded text.
	EmbedDescription bool

	// PartialResults substitutes the placeholder for platforms whose
	// generation call failed, instead of failing the whole request.
	PartialResults bool
}

func New(log *slog.Logger, extractor Extractor, embedder Embedder, entries Querier, composer prompt.Composer, generator Generator, shortener Shortener, opts Options) Handler {
	return Handler{
		log:       log,
		extractor: extractor,
		embedder:  embedder,
		entries:   entries,
		composer:  composer,
		generator: generator,
		shortener: shortener,
		opts:      opts,
	}
}

type Handler struct {
	log       *slog.Logger
	extractor Extractor
	embedder  Embedder
	entries   Querier
	composer  prompt.Composer
	generator Generator
	// shortener is nil when no provider is configured.
	shortener Shortener
	opts      Options
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req models.CopiesPostRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		h.log.Error("failed to decode body", slog.Any("error", err))
		respond.WithError(w, "failed to decode body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		respond.WithError(w, "url is required", http.StatusBadRequest)
		return
	}

	content, err := h.extractor.Extract(r.Context(), req.URL)
	if err != nil {
		h.log.Error("failed to extract content", slog.Any("error", err), slog.String("url", req.URL))
		respond.WithError(w, "failed to extract content", http.StatusInternalServerError)
		return
	}

	text := content.Title
	if h.opts.EmbedDescription && content.Description != "" {
		text = content.Title + "\n" + content.Description
	}
	vector, err := h.embedder.Embed(r.Context(), text)
	if err != nil {
		h.log.Error("failed to embed content", slog.Any("error", err))
		respond.WithError(w, "failed to embed content", http.StatusInternalServerError)
		return
	}

	matches, err := h.entries.Query(r.Context(), vector, h.opts.TopK)
	if err != nil {
		h.log.Error("failed to query reference copy", slog.Any("error", err))
		respond.WithError(w, "failed to query reference copy", http.StatusInternalServerError)
		return
	}

	refs := make([]prompt.Reference, len(matches))
	for i, m := range matches {
		refs[i] = prompt.Reference{
			Noticia: m.Noticia,
			Copy:    m.Copy,
		}
	}

	texts, err := h.generate(r.Context(), []string{
		h.composer.Facebook(content.Title, content.Description, refs),
		h.composer.Twitter(content.Title, content.Description, refs),
		h.composer.WPP(content.Title, content.Description, refs),
	})
	if err != nil {
		h.log.Error("failed to generate copy", slog.Any("error", err))
		respond.WithError(w, "failed to generate copy", http.StatusInternalServerError)
		return
	}

	resp := models.CopiesPostResponse{
		Facebook: texts[0],
		Twitter:  texts[1],
		WPP:      texts[2],
	}
	if h.shortener != nil {
		short, err := h.shortener.Shorten(r.Context(), req.URL)
		if err != nil {
			h.log.Warn("failed to shorten URL, leaving copy untouched", slog.Any("error", err))
		} else {
			resp.Twitter = resp.Twitter + "\n" + short
		}
	}
	for _, m := range matches {
		resp.FoundCopies = append(resp.FoundCopies, models.FoundCopy{
			ID:      m.ID,
			Score:   m.Score,
			Noticia: m.Noticia,
			Copy:    m.Copy,
		})
	}

	respond.WithJSON(w, resp, http.StatusOK)
}

// generate runs the platform prompts concurrently. Each result stays bound
// to its prompt's index, so completion order doesn't matter.
func (h Handler) generate(ctx context.Context, prompts []string) ([]string, error) {
	texts := make([]string, len(prompts))
	errs := make([]error, len(prompts))
	var wg sync.WaitGroup
	wg.Add(len(prompts))
	for i := range prompts {
		go func(i int) {
			defer wg.Done()
			texts[i], errs[i] = h.generator.Generate(ctx, prompts[i])
		}(i)
	}
	wg.Wait()
	err := errors.Join(errs...)
	if err == nil {
		return texts, nil
	}
	if !h.opts.PartialResults {
		return nil, err
	}
	for i, genErr := range errs {
		if genErr != nil {
			h.log.Warn("substituting placeholder for failed generation", slog.Any("error", genErr))
			texts[i] = copygen.Placeholder
		}
	}
	return texts, nil
}
