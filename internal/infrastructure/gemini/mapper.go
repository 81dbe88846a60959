package gemini

import (
	"fmt"
	"strings"

	"github.com/prodscan/backend/internal/domain"
)

// generateContentRequest is the body of models/{model}:generateContent
type generateContentRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

// part carries either text or an inline image
type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateContentResponse struct {
	Candidates []candidate `json:"candidates"`
	Error      *apiError   `json:"error,omitempty"`
}

type candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// newTextRequest builds a single-turn text-only request
func newTextRequest(prompt string) generateContentRequest {
	return generateContentRequest{
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: prompt}},
		}},
	}
}

// newImageRequest builds a single-turn request with the prompt followed by the inline image
func newImageRequest(prompt string, image domain.Image) generateContentRequest {
	return generateContentRequest{
		Contents: []content{{
			Role: "user",
			Parts: []part{
				{Text: prompt},
				{InlineData: &inlineData{MIMEType: image.MIMEType, Data: image.Base64()}},
			},
		}},
	}
}

// firstCandidateText returns candidates[0].content.parts[0].text.
// Any missing step is reported as domain.ErrUnexpectedResponse.
func firstCandidateText(resp *generateContentResponse) (string, error) {
	if resp.Error != nil {
		return "", fmt.Errorf("%w: %s (%s)", domain.ErrUnexpectedResponse, resp.Error.Message, resp.Error.Status)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates", domain.ErrUnexpectedResponse)
	}

	parts := resp.Candidates[0].Content.Parts
	if len(parts) == 0 {
		return "", fmt.Errorf("%w: candidate has no parts (finish reason %q)",
			domain.ErrUnexpectedResponse, resp.Candidates[0].FinishReason)
	}

	text := parts[0].Text
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty text part", domain.ErrUnexpectedResponse)
	}

	return text, nil
}
