package inference

import (
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// NewOpenAI returns the hosted OpenAI provider. The hosted API rejects
// the extended sampling knobs, so only temperature and max tokens are
// advertised.
func NewOpenAI(apiKey string) Provider {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &compatProvider{
		client:       &client,
		name:         ProviderOpenAI,
		defaultModel: "gpt-4o",
		caps: ParamSet{
			Temperature: true,
			MaxTokens:   true,
		},
	}
}
