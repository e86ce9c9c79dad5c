package inference

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"iter"
	"strings"

	"google.golang.org/genai"

	"storynexus/pkg/schema"
)

type geminiProvider struct {
	client       *genai.Client
	defaultModel string
}

// NewGemini returns the Google Gemini provider.
func NewGemini(apiKey, model string) (Provider, error) {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &geminiProvider{
		client:       client,
		defaultModel: cmp.Or(model, "gemini-2.5-flash"),
	}, nil
}

func (p *geminiProvider) Name() string { return ProviderGemini }

func (p *geminiProvider) Capabilities() ParamSet {
	return ParamSet{
		Temperature: true,
		MaxTokens:   true,
		TopP:        true,
		TopK:        true,
	}
}

func (p *geminiProvider) FetchModels(ctx context.Context) ([]schema.AIModel, error) {
	var models []schema.AIModel
	for m, err := range p.client.Models.All(ctx) {
		if err != nil {
			return nil, fmt.Errorf("gemini: failed to list models: %w", err)
		}
		models = append(models, schema.AIModel{
			ID:       strings.TrimPrefix(m.Name, "models/"),
			Name:     cmp.Or(m.DisplayName, m.Name),
			Provider: ProviderGemini,
		})
	}
	return models, nil
}

func (p *geminiProvider) Generate(ctx context.Context, messages []schema.PromptMessage, modelID string, params schema.GenerationParams) (Stream, error) {
	config := &genai.GenerateContentConfig{}
	if params.Temperature != 0 {
		config.Temperature = genai.Ptr(float32(params.Temperature))
	}
	if params.MaxTokens != 0 {
		config.MaxOutputTokens = int32(params.MaxTokens)
	}
	if params.TopP != 0 {
		config.TopP = genai.Ptr(float32(params.TopP))
	}
	if params.TopK != 0 {
		config.TopK = genai.Ptr(float32(params.TopK))
	}

	var contents []*genai.Content
	var system []string
	for _, m := range messages {
		switch m.Role {
		case schema.RoleSystem:
			system = append(system, m.Content)
		case schema.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	if len(system) > 0 {
		config.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleModel)
	}

	seq := p.client.Models.GenerateContentStream(ctx, cmp.Or(modelID, p.defaultModel), contents, config)
	next, stop := iter.Pull2(seq)
	return &geminiStream{next: next, stop: stop}, nil
}

// geminiStream adapts the SDK's response iterator to the token Stream
// contract.
type geminiStream struct {
	next func() (*genai.GenerateContentResponse, error, bool)
	stop func()
}

func (g *geminiStream) Recv() (string, error) {
	for {
		resp, err, ok := g.next()
		if !ok {
			return "", io.EOF
		}
		if err != nil {
			return "", err
		}
		if text := resp.Text(); text != "" {
			return text, nil
		}
	}
}

func (g *geminiStream) Close() error {
	g.stop()
	return nil
}
