package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"log/slog"

	copiespost "github.com/hyperhue-studio/news-copy-backend/handlers/copies/post"
	indexpost "github.com/hyperhue-studio/news-copy-backend/handlers/index/post"
	similarpost "github.com/hyperhue-studio/news-copy-backend/handlers/similar/post"

	"github.com/hyperhue-studio/news-copy-backend/copygen"
	"github.com/hyperhue-studio/news-copy-backend/embedding"
	"github.com/hyperhue-studio/news-copy-backend/prompt"
	"github.com/hyperhue-studio/news-copy-backend/scrape"
	"github.com/hyperhue-studio/news-copy-backend/shorten"
	"github.com/hyperhue-studio/news-copy-backend/store"
	"github.com/rqlite/gorqlite"
	"github.com/rs/cors"
	"github.com/tmc/langchaingo/llms/openai"
)

type ServeCommand struct {
	RqliteURL        string        `help:"The URL of the rqlite server." env:"RQLITE_URL" default:"http://localhost:4001"`
	EmbeddingAPIURL  string        `help:"The base URL of the feature-extraction API." env:"EMBEDDING_API_URL" default:""`
	EmbeddingAPIKey  string        `help:"The API key for the feature-extraction API." env:"EMBEDDING_API_KEY" default:""`
	EmbeddingModel   string        `help:"The model to use for embeddings." env:"EMBEDDING_MODEL" default:"sentence-transformers/all-MiniLM-L6-v2"`
	OpenAIAPIKey     string        `help:"The API key for the generative model provider." env:"OPENAI_API_KEY" default:""`
	GenerationModel  string        `help:"The model to generate copy with." env:"GENERATION_MODEL" default:"gpt-4o-mini"`
	ShortenerURL     string        `help:"The URL of the link shortener endpoint. Shortening is skipped when empty." env:"SHORTENER_URL" default:""`
	ShortenerAPIKey  string        `help:"The API key for the link shortener." env:"SHORTENER_API_KEY" default:""`
	UTMSource        string        `help:"The utm_source value tagged onto shortened links." env:"UTM_SOURCE" default:"newscopy"`
	TopK             int           `help:"The number of reference examples to retrieve per request (1 to 3)." env:"TOP_K" default:"3"`
	ReferenceFields  string        `help:"Which fields of retrieved examples go into the prompt." env:"REFERENCE_FIELDS" enum:"noticia,copy,both" default:"both"`
	EmbedDescription bool          `help:"Include the article description in the embedded text." env:"EMBED_DESCRIPTION" default:"false"`
	PartialResults   bool          `help:"Return placeholder copy for platforms whose generation failed instead of failing the request." env:"PARTIAL_RESULTS" default:"false"`
	RequestTimeout   time.Duration `help:"Deadline applied to each request, cancelling all in-flight outbound calls." env:"REQUEST_TIMEOUT" default:"60s"`
	ListenAddr       string        `help:"The address to listen on." env:"LISTEN_ADDR" default:"localhost:9030"`
	TLSCertFile      string        `help:"The TLS certificate file." env:"TLS_CERT_FILE" default:""`
	TLSKeyFile       string        `help:"The TLS key file." env:"TLS_KEY_FILE" default:""`
	LogLevel         string        `help:"The log level to use." env:"LOG_LEVEL" default:"info"`
}

func (c ServeCommand) Run(ctx context.Context) (err error) {
	log := getLogger(c.LogLevel)
	if c.TopK < 1 || c.TopK > 3 {
		return fmt.Errorf("top-k must be between 1 and 3, got %d", c.TopK)
	}

	log.Info("connecting to database", slog.String("url", c.RqliteURL))
	databaseURL, err := store.ParseRqliteURL(c.RqliteURL)
	if err != nil {
		return fmt.Errorf("failed to parse rqlite URL: %w", err)
	}
	conn, err := gorqlite.Open(databaseURL.DataSourceName())
	if err != nil {
		return fmt.Errorf("failed to open connection: %w", err)
	}
	defer conn.Close()
	entries := store.New(conn)

	log.Info("migrating database schema", slog.String("url", databaseURL.MigrateDatabaseURL()))
	if err = store.Migrate(databaseURL); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info("creating clients")
	httpClient := &http.Client{}
	embedder := embedding.New(httpClient, c.EmbeddingAPIURL, c.EmbeddingModel, c.EmbeddingAPIKey)
	extractor := scrape.New(httpClient)

	llm, err := openai.New(
		openai.WithModel(c.GenerationModel),
		openai.WithToken(c.OpenAIAPIKey),
		openai.WithHTTPClient(httpClient))
	if err != nil {
		return fmt.Errorf("failed to create LLM: %w", err)
	}
	generator := copygen.New(llm)

	var shortener copiespost.Shortener
	if c.ShortenerURL != "" {
		shortener = shorten.New(httpClient, c.ShortenerURL, c.ShortenerAPIKey, c.UTMSource)
	}

	composer := prompt.New(prompt.ReferenceFields(c.ReferenceFields))

	mux := http.NewServeMux()

	iph := indexpost.New(log, embedder, entries)
	mux.Handle("POST /indexar", iph)

	cph := copiespost.New(log, extractor, embedder, entries, composer, generator, shortener, copiespost.Options{
		TopK:             c.TopK,
		EmbedDescription: c.EmbedDescription,
		PartialResults:   c.PartialResults,
	})
	mux.Handle("POST /generar_copy", cph)

	sph := similarpost.New(log, embedder, entries)
	mux.Handle("POST /buscar_similar", sph)

	withCORSMux := cors.AllowAll().Handler(mux)
	withTimeoutMux := withRequestTimeout(withCORSMux, c.RequestTimeout)

	log.Info("Listening", slog.String("addr", c.ListenAddr))
	s := &http.Server{
		Addr:    c.ListenAddr,
		Handler: withTimeoutMux,
	}
	if c.TLSCertFile != "" && c.TLSKeyFile != "" {
		log.Info("Enabling TLS mode")
		var cert tls.Certificate
		cert, err = tls.LoadX509KeyPair(c.TLSCertFile, c.TLSKeyFile)
		if err != nil {
			return fmt.Errorf("failed to load cert: %w", err)
		}
		s.TLSConfig = &tls.Config{
			MinVersion:   tls.VersionTLS12,
			Certificates: []tls.Certificate{cert},
		}
		return s.ListenAndServeTLS(c.TLSCertFile, c.TLSKeyFile)
	}
	return s.ListenAndServe()
}

// withRequestTimeout bounds every outbound call made during a request. When
// one of the concurrent generation calls fails, cancelling the shared context
// stops its siblings too.
func withRequestTimeout(next http.Handler, d time.Duration) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), d)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
