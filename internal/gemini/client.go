// Package gemini wraps the Generative Language REST API for the three
// operations the app delegates to the model: text-to-image generation,
// streaming image remix, and chat-based logo critique.
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	imageModel = "gemini-2.5-flash-image"
	remixModel = "gemini-3-pro-image-preview"
	chatModel  = "gemini-2.5-flash"
)

// ErrQuotaExceeded distinguishes the free-tier rate limit from other
// upstream failures so routes can answer 429 instead of 500.
var ErrQuotaExceeded = errors.New("gemini API quota exceeded")

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type generateContentRequest struct {
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	Contents          []content         `json:"contents"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Turn is one prior message of a critique conversation.
type Turn struct {
	Role string
	Text string
}

// Image is raw image bytes plus their mime type.
type Image struct {
	Data     []byte
	MimeType string
}

func (c *Client) modelURL(model, method string) string {
	return strings.TrimSuffix(c.baseURL, "/") + "/models/" + model + ":" + method
}

func (c *Client) post(ctx context.Context, url string, reqBody generateContentRequest) (*http.Response, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-goog-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		resp.Body.Close()
		return nil, ErrQuotaExceeded
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("gemini request failed: status %d, body: %s", resp.StatusCode, string(body))
	}
	return resp, nil
}

func (c *Client) generateContent(ctx context.Context, model string, reqBody generateContentRequest) (*generateContentResponse, error) {
	resp, err := c.post(ctx, c.modelURL(model, "generateContent"), reqBody)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result generateContentResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}

// GenerateImage produces a single image for a text prompt.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (*Image, error) {
	result, err := c.generateContent(ctx, imageModel, generateContentRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return nil, err
	}

	for _, cand := range result.Candidates {
		for _, p := range cand.Content.Parts {
			if p.InlineData == nil || p.InlineData.Data == "" {
				continue
			}
			data, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
			if err != nil {
				return nil, fmt.Errorf("failed to decode image data: %w", err)
			}
			mimeType := p.InlineData.MimeType
			if mimeType == "" {
				mimeType = "image/png"
			}
			return &Image{Data: data, MimeType: mimeType}, nil
		}
	}
	return nil, fmt.Errorf("no image data received from gemini")
}

// RetryWithBackoff executes a function with exponential backoff retry logic.
// Quota errors are not retried; waiting seconds does not clear them.
func (c *Client) RetryWithBackoff(fn func() error, maxRetries int) error {
	backoffs := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrQuotaExceeded) || errors.Is(err, context.Canceled) {
			return err
		}

		lastErr = err
		if i < len(backoffs) {
			time.Sleep(backoffs[i])
		}
	}

	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}
