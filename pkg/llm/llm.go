// Package llm wraps the reasoning-engine API (an OpenAI-compatible chat
// endpoint) behind a small completion interface. The client is a shared,
// immutable service handle: stateless beyond its credential, safe for
// concurrent scans.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ca-risken/common/pkg/logging"
	openai "github.com/sashabaranov/go-openai"
)

// CompletionClient sends one system instruction plus user content to a named
// model tier and returns the completion text.
type CompletionClient interface {
	Complete(ctx context.Context, model, instruction, content string) (string, error)
	// CompleteJSON requests structured JSON output from the model.
	CompleteJSON(ctx context.Context, model, instruction, content string) (string, error)
}

type groqClient struct {
	client  *openai.Client
	timeout time.Duration
	logger  logging.Logger
}

func NewClient(apiKey, baseURL string, timeout time.Duration, logger logging.Logger) CompletionClient {
	conf := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		conf.BaseURL = baseURL
	}
	return &groqClient{
		client:  openai.NewClientWithConfig(conf),
		timeout: timeout,
		logger:  logger,
	}
}

func (c *groqClient) Complete(ctx context.Context, model, instruction, content string) (string, error) {
	return c.chat(ctx, model, instruction, content, false)
}

func (c *groqClient) CompleteJSON(ctx context.Context, model, instruction, content string) (string, error) {
	return c.chat(ctx, model, instruction, content, true)
}

func (c *groqClient) chat(ctx context.Context, model, instruction, content string, jsonMode bool) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: instruction},
			{Role: openai.ChatMessageRoleUser, Content: content},
		},
	}
	if jsonMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: model=%s, err=%w", model, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned: model=%s", model)
	}
	c.logger.Debugf(ctx, "Success completion, model=%s, prompt_tokens=%d, completion_tokens=%d",
		model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	return resp.Choices[0].Message.Content, nil
}

// IsRecoverable reports whether err is a rate-limit or bad-request class
// error from the completion service. Only those trigger the one-shot
// fallback to the lower-capability tier; everything else is fatal.
func IsRecoverable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode == http.StatusBadRequest
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode == http.StatusBadRequest
	}
	return false
}
