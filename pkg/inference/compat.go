package inference

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/ssestream"

	"storynexus/pkg/schema"
)

// StructuredCompleter is implemented by providers that can run a
// non-streaming completion constrained by an OpenAI structured-output
// response format.
type StructuredCompleter interface {
	CompleteStructured(ctx context.Context, system, user, modelID string, format openai.ChatCompletionNewParamsResponseFormatUnion) (string, error)
}

// compatProvider implements Provider over any OpenAI-compatible chat
// completion API. The hosted OpenAI, OpenRouter and local backends all
// share this wire shape; they differ only in base URL, capabilities and
// which sampling knobs ride along as body extension fields.
type compatProvider struct {
	client       *openai.Client
	name         string
	defaultModel string
	caps         ParamSet
	sendExtras   bool
}

func (p *compatProvider) Name() string           { return p.name }
func (p *compatProvider) Capabilities() ParamSet { return p.caps }

func (p *compatProvider) FetchModels(ctx context.Context) ([]schema.AIModel, error) {
	page, err := p.client.Models.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list models: %w", p.name, err)
	}
	models := make([]schema.AIModel, 0, len(page.Data))
	for _, m := range page.Data {
		models = append(models, schema.AIModel{ID: m.ID, Name: m.ID, Provider: p.name})
	}
	return models, nil
}

func (p *compatProvider) Generate(ctx context.Context, messages []schema.PromptMessage, modelID string, params schema.GenerationParams) (Stream, error) {
	body := p.buildParams(messages, modelID, params)
	stream := p.client.Chat.Completions.NewStreaming(ctx, body, p.extraOptions(params)...)
	return &chunkStream{stream: stream}, nil
}

func (p *compatProvider) buildParams(messages []schema.PromptMessage, modelID string, params schema.GenerationParams) openai.ChatCompletionNewParams {
	body := openai.ChatCompletionNewParams{
		Model:    cmp.Or(modelID, p.defaultModel),
		Messages: chatMessages(messages),
	}
	if p.caps.Temperature && params.Temperature != 0 {
		body.Temperature = openai.Float(params.Temperature)
	}
	if p.caps.MaxTokens && params.MaxTokens != 0 {
		body.MaxCompletionTokens = openai.Int(int64(params.MaxTokens))
	}
	if p.caps.TopP && params.TopP != 0 {
		body.TopP = openai.Float(params.TopP)
	}
	return body
}

// extraOptions injects the sampling knobs the OpenAI SDK has no field
// for. OpenRouter and most local backends honor them as body extensions.
func (p *compatProvider) extraOptions(params schema.GenerationParams) []option.RequestOption {
	if !p.sendExtras {
		return nil
	}
	var opts []option.RequestOption
	if params.TopK != 0 {
		opts = append(opts, option.WithJSONSet("top_k", params.TopK))
	}
	if params.RepetitionPenalty != 0 {
		opts = append(opts, option.WithJSONSet("repetition_penalty", params.RepetitionPenalty))
	}
	if params.MinP != 0 {
		opts = append(opts, option.WithJSONSet("min_p", params.MinP))
	}
	return opts
}

// CompleteStructured runs a non-streaming completion with a structured
// outputs response format and returns the raw JSON content.
func (p *compatProvider) CompleteStructured(ctx context.Context, system, user, modelID string, format openai.ChatCompletionNewParamsResponseFormatUnion) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: cmp.Or(modelID, p.defaultModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		ResponseFormat: format,
	})
	if err != nil {
		return "", fmt.Errorf("%s: completion failed: %w", p.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices returned")
	}
	if resp.Choices[0].Message.Content == "" {
		return "", errors.New("empty completion content")
	}
	return resp.Choices[0].Message.Content, nil
}

func chatMessages(messages []schema.PromptMessage) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case schema.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case schema.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

// chunkStream adapts the SDK's SSE chunk stream to the token Stream
// contract: content deltas in arrival order, io.EOF at natural end.
type chunkStream struct {
	stream *ssestream.Stream[openai.ChatCompletionChunk]
}

func (c *chunkStream) Recv() (string, error) {
	for c.stream.Next() {
		chunk := c.stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		if delta := chunk.Choices[0].Delta.Content; delta != "" {
			return delta, nil
		}
	}
	if err := c.stream.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (c *chunkStream) Close() error {
	return c.stream.Close()
}
