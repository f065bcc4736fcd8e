// Package claims turns a transcript into discrete factual claims and rates
// each claim's plausibility against search evidence, one completion call
// per operation.
package claims

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// ChatClient is the slice of the provider client these components need;
// satisfied by *openai.Client and by test fakes.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// transcriptLimit bounds the prompt size for extraction; anything past the
// first 3000 characters is not analyzed.
const transcriptLimit = 3000

type Extractor struct {
	client ChatClient
	model  string
}

func NewExtractor(client ChatClient, model string) *Extractor {
	return &Extractor{client: client, model: model}
}

const extractPrompt = `Extract all distinct factual claims from the following text. Return ONLY a valid JSON array of strings, no other text.

Text: "%s"

Return format: ["claim 1", "claim 2", ...]`

// Extract asks the model for a JSON array of claim strings and parses the
// response leniently. Zero claims is a valid outcome.
func (e *Extractor) Extract(ctx context.Context, transcript string) ([]string, error) {
	if len(transcript) > transcriptLimit {
		transcript = transcript[:transcriptLimit]
	}

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(extractPrompt, transcript)},
		},
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("claims: extraction: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("claims: extraction: empty response")
	}

	list, err := ParseClaimList(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	return list, nil
}
