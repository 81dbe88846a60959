package openai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"

	"github.com/prodscan/backend/internal/domain"
)

// Client is a vision client backed by any OpenAI-compatible chat completions API
type Client struct {
	client openai.Client
	model  string
}

// NewClient creates a new chat completions vision client.
// The SDK's own retries are disabled; a failed scan is reported immediately.
func NewClient(apiKey, baseURL, model string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithRequestTimeout(timeout),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &Client{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

// DescribeImage implements domain.VisionClient
func (c *Client) DescribeImage(ctx context.Context, image domain.Image, prompt string) (domain.ProductDescription, error) {
	log.Printf("[OPENAI] DescribeImage called with %s image (%d bytes)", image.MIMEType, len(image.Data))

	text, err := c.complete(ctx, openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart(prompt),
		openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: image.DataURL(),
		}),
	}))
	if err != nil {
		return "", err
	}

	return domain.ProductDescription(text), nil
}

// Ask implements domain.TextAsker
func (c *Client) Ask(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, openai.UserMessage(prompt))
}

func (c *Client) complete(ctx context.Context, message openai.ChatCompletionMessageParamUnion) (string, error) {
	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{message},
		Model:    shared.ChatModel(c.model),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			log.Printf("[OPENAI] API error - Status: %d", apiErr.StatusCode)
			return "", fmt.Errorf("%w: status %d", domain.ErrVisionUnavailable, apiErr.StatusCode)
		}
		log.Printf("[OPENAI] Request error: %v", err)
		return "", fmt.Errorf("%w: %v", domain.ErrVisionUnavailable, err)
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", domain.ErrUnexpectedResponse)
	}

	text := completion.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty message content", domain.ErrUnexpectedResponse)
	}

	return text, nil
}
