// Package embedding calls an external feature-extraction API to convert text
// into fixed-length vectors.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const DefaultBaseURL = "https://api-inference.huggingface.co/pipeline/feature-extraction/"

// Error wraps a transport failure or a malformed embedding response.
type Error struct {
	Err error
}

func (e Error) Error() string {
	return fmt.Sprintf("embedding: %v", e.Err)
}

func (e Error) Unwrap() error {
	return e.Err
}

func New(client *http.Client, baseURL, model, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		client:  client,
		baseURL: baseURL,
		model:   model,
		apiKey:  apiKey,
	}
}

type Client struct {
	client  *http.Client
	baseURL string
	model   string
	apiKey  string
}

type embedRequest struct {
	Inputs  string       `json:"inputs"`
	Options embedOptions `json:"options"`
}

type embedOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

// Embed returns the embedding vector for the given text. Every call is a
// fresh round trip, there is no caching.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embedRequest{
		Inputs:  text,
		Options: embedOptions{WaitForModel: true},
	})
	if err != nil {
		return nil, Error{Err: fmt.Errorf("failed to marshal request: %w", err)}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.model, bytes.NewReader(body))
	if err != nil {
		return nil, Error{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, Error{Err: fmt.Errorf("failed to send request: %w", err)}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, Error{Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Error{Err: fmt.Errorf("failed to read response: %w", err)}
	}
	return parseVector(respBody)
}

// parseVector accepts the two shapes the provider returns: a flat vector, or
// a matrix of which the first row is the vector.
func parseVector(data []byte) ([]float32, error) {
	var vector []float32
	if err := json.Unmarshal(data, &vector); err == nil {
		if len(vector) == 0 {
			return nil, Error{Err: fmt.Errorf("empty embedding returned")}
		}
		return vector, nil
	}
	var matrix [][]float32
	if err := json.Unmarshal(data, &matrix); err != nil {
		return nil, Error{Err: fmt.Errorf("response is not a numeric vector: %w", err)}
	}
	if len(matrix) == 0 || len(matrix[0]) == 0 {
		return nil, Error{Err: fmt.Errorf("empty embedding returned")}
	}
	return matrix[0], nil
}
