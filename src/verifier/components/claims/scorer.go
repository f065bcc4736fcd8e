package claims

import (
	"context"
	"fmt"
	"log"

	openai "github.com/sashabaranov/go-openai"
)

type Scorer struct {
	client ChatClient
	model  string
}

func NewScorer(client ChatClient, model string) *Scorer {
	return &Scorer{client: client, model: model}
}

const scorePrompt = `Based on the search results below, rate this claim from 0 (completely false) to 10 (completely true).
Return ONLY a single integer between 0 and 10, nothing else.

Claim: "%s"
Search results:
%s`

// Score rates one claim against its evidence snippets. Failures inside the
// scoring sub-phase are absorbed: a provider error or an unparseable
// response yields the neutral 5 rather than failing the run.
func (s *Scorer) Score(ctx context.Context, claim, snippets string) int {
	if snippets == "" {
		snippets = "No search results available"
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(scorePrompt, claim, snippets)},
		},
		Temperature: 0,
	})
	if err != nil {
		log.Printf("claims: scoring %q: %v", claim, err)
		return 5
	}
	if len(resp.Choices) == 0 {
		return 5
	}
	return ParseScore(resp.Choices[0].Message.Content)
}
