// Package shorten tags article URLs with UTM parameters and shortens them
// via an external provider.
package shorten

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

func New(client *http.Client, baseURL, apiKey, utmSource string) *Client {
	return &Client{
		client:    client,
		baseURL:   baseURL,
		apiKey:    apiKey,
		utmSource: utmSource,
	}
}

type Client struct {
	client    *http.Client
	baseURL   string
	apiKey    string
	utmSource string
}

type shortenRequest struct {
	URL string `json:"url"`
}

type shortenResponse struct {
	ShortURL string `json:"short_url"`
}

// Shorten tags the URL with UTM parameters and returns the shortened link.
func (c *Client) Shorten(ctx context.Context, longURL string) (string, error) {
	tagged, err := AddUTM(longURL, c.utmSource)
	if err != nil {
		return "", fmt.Errorf("shorten: failed to tag URL: %w", err)
	}
	body, err := json.Marshal(shortenRequest{URL: tagged})
	if err != nil {
		return "", fmt.Errorf("shorten: failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("shorten: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("shorten: failed to send request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("shorten: unexpected status %d", resp.StatusCode)
	}
	var sr shortenResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return "", fmt.Errorf("shorten: failed to decode response: %w", err)
	}
	if sr.ShortURL == "" {
		return "", fmt.Errorf("shorten: provider returned no short URL")
	}
	return sr.ShortURL, nil
}

// AddUTM appends utm_source and utm_medium parameters to the URL.
func AddUTM(rawURL, source string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("utm_source", source)
	q.Set("utm_medium", "social")
	u.RawQuery = q.Encode()
	return u.String(), nil
}
