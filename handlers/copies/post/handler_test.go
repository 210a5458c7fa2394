package post

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/hyperhue-studio/news-copy-backend/copygen"
	"github.com/hyperhue-studio/news-copy-backend/models"
	"github.com/hyperhue-studio/news-copy-backend/prompt"
	"github.com/hyperhue-studio/news-copy-backend/scrape"
	"github.com/hyperhue-studio/news-copy-backend/store"
)

type fakeExtractor struct {
	content scrape.Content
	err     error
	calls   atomic.Int32
}

func (f *fakeExtractor) Extract(ctx context.Context, url string) (scrape.Content, error) {
	f.calls.Add(1)
	return f.content, f.err
}

type fakeEmbedder struct {
	vector []float32
	err    error
	calls  atomic.Int32
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls.Add(1)
	return f.vector, f.err
}

type fakeQuerier struct {
	matches []store.Match
	err     error
	calls   atomic.Int32
	topK    int
}

func (f *fakeQuerier) Query(ctx context.Context, vector []float32, topK int) ([]store.Match, error) {
	f.calls.Add(1)
	f.topK = topK
	return f.matches, f.err
}

// promptGenerator answers each prompt with a fixed text chosen by which
// platform instruction the prompt carries, and staggers completion so the
// slowest call is launched first.
type promptGenerator struct {
	failOn string
	calls  atomic.Int32
}

func (g *promptGenerator) Generate(ctx context.Context, p string) (string, error) {
	g.calls.Add(1)
	switch {
	case strings.Contains(p, "Facebook"):
		time.Sleep(30 * time.Millisecond)
		if g.failOn == "facebook" {
			return "", copygen.Error{Err: errors.New("model down")}
		}
		return "facebook text", nil
	case strings.Contains(p, "tweet"):
		time.Sleep(10 * time.Millisecond)
		if g.failOn == "twitter" {
			return "", copygen.Error{Err: errors.New("model down")}
		}
		return "twitter text", nil
	default:
		if g.failOn == "wpp" {
			return "", copygen.Error{Err: errors.New("model down")}
		}
		return "wpp text", nil
	}
}

type fakeShortener struct {
	short string
	err   error
}

func (f *fakeShortener) Shorten(ctx context.Context, longURL string) (string, error) {
	return f.short, f.err
}

func newLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func defaultOptions() Options {
	return Options{TopK: 3}
}

func newHandler(extractor *fakeExtractor, embedder *fakeEmbedder, entries *fakeQuerier, generator Generator, shortener Shortener, opts Options) Handler {
	return New(newLog(), extractor, embedder, entries, prompt.New(prompt.ReferenceBoth), generator, shortener, opts)
}

func post(t *testing.T, h Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/generar_copy", strings.NewReader(body)))
	return w
}

func TestHandlerValidation(t *testing.T) {
	h := newHandler(&fakeExtractor{}, &fakeEmbedder{}, &fakeQuerier{}, &promptGenerator{}, nil, defaultOptions())
	w := post(t, h, `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if body.Error == "" {
		t.Error("expected an error field in the response")
	}
}

func TestHandlerGeneratesCopySet(t *testing.T) {
	extractor := &fakeExtractor{content: scrape.Content{Title: "A title", Description: "A description"}}
	embedder := &fakeEmbedder{vector: []float32{0.1, 0.2}}
	entries := &fakeQuerier{matches: []store.Match{
		{ID: "id-1", Score: 0.9, Noticia: "Past article", Copy: "Past copy"},
	}}
	generator := &promptGenerator{}
	h := newHandler(extractor, embedder, entries, generator, nil, defaultOptions())

	w := post(t, h, `{"url": "https://example.com/article"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp models.CopiesPostResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	// Completion order is staggered by the fake; each text must still land
	// under its own platform key.
	expected := models.CopiesPostResponse{
		Facebook: "facebook text",
		Twitter:  "twitter text",
		WPP:      "wpp text",
		FoundCopies: []models.FoundCopy{
			{ID: "id-1", Score: 0.9, Noticia: "Past article", Copy: "Past copy"},
		},
	}
	if diff := cmp.Diff(expected, resp); diff != "" {
		t.Errorf("unexpected response: %v", diff)
	}
	if got := generator.calls.Load(); got != 3 {
		t.Errorf("expected 3 generation calls, got %d", got)
	}
	if entries.topK != 3 {
		t.Errorf("expected topK of 3, got %d", entries.topK)
	}
}

func TestHandlerFailsFastOnExtraction(t *testing.T) {
	extractor := &fakeExtractor{err: scrape.ExtractionError{URL: "https://example.com", Err: errors.New("boom")}}
	embedder := &fakeEmbedder{vector: []float32{1}}
	entries := &fakeQuerier{}
	generator := &promptGenerator{}
	h := newHandler(extractor, embedder, entries, generator, nil, defaultOptions())

	w := post(t, h, `{"url": "https://example.com/article"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", w.Code)
	}
	if got := embedder.calls.Load(); got != 0 {
		t.Errorf("expected no embedding calls, got %d", got)
	}
	if got := entries.calls.Load(); got != 0 {
		t.Errorf("expected no store calls, got %d", got)
	}
	if got := generator.calls.Load(); got != 0 {
		t.Errorf("expected no generation calls, got %d", got)
	}
}

func TestHandlerGenerationFailurePolicy(t *testing.T) {
	t.Run("whole request fails by default", func(t *testing.T) {
		extractor := &fakeExtractor{content: scrape.Content{Title: "A title"}}
		h := newHandler(extractor, &fakeEmbedder{vector: []float32{1}}, &fakeQuerier{}, &promptGenerator{failOn: "twitter"}, nil, defaultOptions())

		w := post(t, h, `{"url": "https://example.com/article"}`)
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status 500, got %d", w.Code)
		}
	})
	t.Run("partial results substitute the placeholder", func(t *testing.T) {
		extractor := &fakeExtractor{content: scrape.Content{Title: "A title"}}
		opts := defaultOptions()
		opts.PartialResults = true
		h := newHandler(extractor, &fakeEmbedder{vector: []float32{1}}, &fakeQuerier{}, &promptGenerator{failOn: "twitter"}, nil, opts)

		w := post(t, h, `{"url": "https://example.com/article"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", w.Code)
		}
		var resp models.CopiesPostResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Twitter != copygen.Placeholder {
			t.Errorf("expected the placeholder under twitter, got %q", resp.Twitter)
		}
		if resp.Facebook != "facebook text" || resp.WPP != "wpp text" {
			t.Errorf("expected the other platforms to succeed, got %+v", resp)
		}
	})
}

func TestHandlerEmptyStoreStillGenerates(t *testing.T) {
	extractor := &fakeExtractor{content: scrape.Content{Title: "A title"}}
	h := newHandler(extractor, &fakeEmbedder{vector: []float32{1}}, &fakeQuerier{}, &promptGenerator{}, nil, defaultOptions())

	w := post(t, h, `{"url": "https://example.com/article"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200 with an empty store, got %d", w.Code)
	}
	var resp models.CopiesPostResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.FoundCopies) != 0 {
		t.Errorf("expected no found copies, got %d", len(resp.FoundCopies))
	}
}

func TestHandlerShortener(t *testing.T) {
	t.Run("short link is appended to the twitter copy", func(t *testing.T) {
		extractor := &fakeExtractor{content: scrape.Content{Title: "A title"}}
		shortener := &fakeShortener{short: "https://sho.rt/abc"}
		h := newHandler(extractor, &fakeEmbedder{vector: []float32{1}}, &fakeQuerier{}, &promptGenerator{}, shortener, defaultOptions())

		w := post(t, h, `{"url": "https://example.com/article"}`)
		var resp models.CopiesPostResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Twitter != "twitter text\nhttps://sho.rt/abc" {
			t.Errorf("expected the short link appended, got %q", resp.Twitter)
		}
		if resp.Facebook != "facebook text" {
			t.Errorf("expected facebook copy untouched, got %q", resp.Facebook)
		}
	})
	t.Run("shortener failure leaves the copy untouched", func(t *testing.T) {
		extractor := &fakeExtractor{content: scrape.Content{Title: "A title"}}
		shortener := &fakeShortener{err: errors.New("shortener down")}
		h := newHandler(extractor, &fakeEmbedder{vector: []float32{1}}, &fakeQuerier{}, &promptGenerator{}, shortener, defaultOptions())

		w := post(t, h, `{"url": "https://example.com/article"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", w.Code)
		}
		var resp models.CopiesPostResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Twitter != "twitter text" {
			t.Errorf("expected the twitter copy untouched, got %q", resp.Twitter)
		}
	})
}
