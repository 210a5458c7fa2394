package scrape

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractionError is returned when the article page can't be fetched, or no
// usable title can be found in it.
type ExtractionError struct {
	URL string
	Err error
}

func (e ExtractionError) Error() string {
	return fmt.Sprintf("scrape: failed to extract %s: %v", e.URL, e.Err)
}

func (e ExtractionError) Unwrap() error {
	return e.Err
}

// Content is the article metadata extracted from a page. Description may be
// empty, since not every page carries one.
type Content struct {
	Title       string
	Description string
}

func New(client *http.Client) Extractor {
	return Extractor{
		client: client,
	}
}

type Extractor struct {
	client *http.Client
}

func (e Extractor) Extract(ctx context.Context, url string) (c Content, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return c, ExtractionError{URL: url, Err: err}
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return c, ExtractionError{URL: url, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c, ExtractionError{URL: url, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return c, ExtractionError{URL: url, Err: err}
	}

	// Prefer the og:title metadata, fall back to the page title.
	c.Title = strings.TrimSpace(doc.Find(`meta[property="og:title"]`).AttrOr("content", ""))
	if c.Title == "" {
		c.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if c.Title == "" {
		return Content{}, ExtractionError{URL: url, Err: errors.New("no usable title found")}
	}

	c.Description = strings.TrimSpace(doc.Find(`meta[property="og:description"]`).AttrOr("content", ""))
	if c.Description == "" {
		c.Description = strings.TrimSpace(doc.Find(`meta[name="description"]`).AttrOr("content", ""))
	}
	return c, nil
}
