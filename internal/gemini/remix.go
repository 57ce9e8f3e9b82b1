package gemini

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Remix sends up to five local images plus a prompt to the image model and
// streams the response, writing every returned inline image into outputDir.
// Returns the filenames written. The context is checked before the call and
// at each streamed chunk; on cancellation or any mid-stream failure every
// file written by this invocation is removed before returning.
func (c *Client) Remix(ctx context.Context, imagePaths []string, prompt, outputDir string) (saved []string, err error) {
	defer func() {
		if err != nil {
			for _, name := range saved {
				os.Remove(filepath.Join(outputDir, name))
			}
			saved = nil
		}
	}()

	if err = ctx.Err(); err != nil {
		return nil, err
	}

	parts := []part{{Text: prompt}}
	for _, imagePath := range imagePaths {
		data, readErr := os.ReadFile(imagePath)
		if readErr != nil {
			return nil, fmt.Errorf("failed to read input image %s: %w", imagePath, readErr)
		}
		parts = append(parts, part{InlineData: &inlineData{
			MimeType: MimeTypeForFile(imagePath),
			Data:     base64.StdEncoding.EncodeToString(data),
		}})
	}

	reqBody := generateContentRequest{
		Contents:         []content{{Role: "user", Parts: parts}},
		GenerationConfig: &generationConfig{ResponseModalities: []string{"IMAGE", "TEXT"}},
	}

	resp, err := c.post(ctx, c.modelURL(remixModel, "streamGenerateContent")+"?alt=sse", reqBody)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 32*1024*1024)
	for scanner.Scan() {
		if err = ctx.Err(); err != nil {
			return nil, err
		}

		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		payload := strings.TrimPrefix(line, "data: ")
		if payload == "[DONE]" {
			break
		}

		var chunk generateContentResponse
		if jsonErr := json.Unmarshal([]byte(payload), &chunk); jsonErr != nil {
			continue
		}

		for _, cand := range chunk.Candidates {
			for _, p := range cand.Content.Parts {
				if p.InlineData == nil || p.InlineData.Data == "" {
					continue
				}
				name, writeErr := writeInlineImage(outputDir, p.InlineData)
				if writeErr != nil {
					err = writeErr
					return nil, err
				}
				saved = append(saved, name)
			}
		}
	}
	if scanErr := scanner.Err(); scanErr != nil {
		// A cancelled request surfaces here as a closed body.
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
			return nil, err
		}
		err = fmt.Errorf("failed to read stream: %w", scanErr)
		return nil, err
	}

	return saved, nil
}

func writeInlineImage(outputDir string, data *inlineData) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(data.Data)
	if err != nil {
		return "", fmt.Errorf("failed to decode image chunk: %w", err)
	}

	ext := "png"
	if parts := strings.SplitN(data.MimeType, "/", 2); len(parts) == 2 && parts[1] != "" {
		ext = parts[1]
	}
	name := fmt.Sprintf("remixed_image_%s.%s", uuid.New().String(), ext)

	if err := os.WriteFile(filepath.Join(outputDir, name), raw, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image file: %w", err)
	}
	return name, nil
}

// MimeTypeForFile guesses an image mime type from the file extension.
func MimeTypeForFile(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	default:
		return "image/jpeg"
	}
}
