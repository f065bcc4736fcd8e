// Package transcribe sends extracted audio to a Whisper endpoint and
// returns plain transcript text. Groq exposes Whisper behind the OpenAI
// audio API, so the shared go-openai client handle is reused here.
package transcribe

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// AudioClient is the slice of the provider client this component needs;
// satisfied by *openai.Client and by test fakes.
type AudioClient interface {
	CreateTranscription(ctx context.Context, req openai.AudioRequest) (openai.AudioResponse, error)
}

type Transcriber struct {
	client AudioClient
	model  string
}

func New(client AudioClient, model string) *Transcriber {
	if model == "" {
		model = "whisper-large-v3"
	}
	return &Transcriber{client: client, model: model}
}

// Transcribe streams the audio file at path to the provider and returns the
// transcript text. Provider errors are fatal for the request; a blank
// transcript is returned as-is for the caller to classify.
func (t *Transcriber) Transcribe(ctx context.Context, path string) (string, error) {
	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		FilePath: path,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}
