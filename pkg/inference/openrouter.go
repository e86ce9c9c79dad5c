package inference

import (
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// NewOpenRouter returns the OpenRouter provider. OpenRouter speaks the
// OpenAI wire format and passes the extended sampling knobs through to
// whichever upstream serves the model.
func NewOpenRouter(apiKey string) Provider {
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(openRouterBaseURL),
	)
	return &compatProvider{
		client:     &client,
		name:       ProviderOpenRouter,
		caps:       FullParamSet(),
		sendExtras: true,
	}
}
