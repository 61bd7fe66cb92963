package enrich

import (
	"context"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Oracle is the external estimation service. Its answer is free text that is
// expected, but never guaranteed, to be a JSON array.
type Oracle interface {
	Estimate(ctx context.Context, prompt string) (string, error)
}

// OpenAIOracle asks a chat-completion model for product estimates. Every call
// carries an explicit timeout so a hung request degrades like any other
// failed batch instead of stalling the run.
type OpenAIOracle struct {
	client  *openai.Client
	timeout time.Duration
}

func NewOpenAIOracle(apiKey string, timeout time.Duration) *OpenAIOracle {
	return &OpenAIOracle{
		client:  openai.NewClient(apiKey),
		timeout: timeout,
	}
}

func (o *OpenAIOracle) Estimate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       openai.GPT4oMini,
		Temperature: 0.3,
		Messages: []openai.ChatCompletionMessage{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	return resp.Choices[0].Message.Content, nil
}
