package gemini

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
)

const consultantPersona = `You are a professional Design Consultant and Logo Expert.
Your goal is to critique and improve user logos.
Analyze the uploaded image. Provide constructive feedback on shape, color, typography, and scalability.

Do not provide any numerical scores or JSON output. Just provide helpful, professional text analysis.`

// AnalyzeChat replays the prior conversation into a chat request with the
// design-consultant persona, attaches the image and the latest user
// message, and returns the model's free-text critique. The provider rejects
// histories that open with a model turn, so the caller filters the welcome
// message out before calling.
func (c *Client) AnalyzeChat(ctx context.Context, image Image, history []Turn, message string) (string, error) {
	if len(image.Data) == 0 {
		return "", fmt.Errorf("no image data to analyze")
	}

	mimeType := image.MimeType
	if mimeType == "" {
		mimeType = "image/png"
	}
	if message == "" {
		message = "Analyze this logo."
	}

	contents := make([]content, 0, len(history)+1)
	for _, turn := range history {
		contents = append(contents, content{
			Role:  turn.Role,
			Parts: []part{{Text: turn.Text}},
		})
	}
	contents = append(contents, content{
		Role: "user",
		Parts: []part{
			{InlineData: &inlineData{
				MimeType: mimeType,
				Data:     base64.StdEncoding.EncodeToString(image.Data),
			}},
			{Text: message},
		},
	})

	result, err := c.generateContent(ctx, chatModel, generateContentRequest{
		SystemInstruction: &content{Parts: []part{{Text: consultantPersona}}},
		Contents:          contents,
	})
	if err != nil {
		return "", err
	}

	var analysis strings.Builder
	for _, cand := range result.Candidates {
		for _, p := range cand.Content.Parts {
			analysis.WriteString(p.Text)
		}
	}
	if analysis.Len() == 0 {
		return "", fmt.Errorf("no analysis text received from gemini")
	}
	return analysis.String(), nil
}
