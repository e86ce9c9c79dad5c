package inference

import (
	"cmp"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const defaultLocalBaseURL = "http://localhost:1234/v1"

// NewLocal returns a provider for an OpenAI-compatible local backend
// such as LM Studio or llama.cpp. Local servers honor every sampling
// knob and need no API key.
func NewLocal(baseURL string) Provider {
	client := openai.NewClient(
		option.WithBaseURL(cmp.Or(baseURL, defaultLocalBaseURL)),
		option.WithAPIKey("local"),
	)
	return &compatProvider{
		client:     &client,
		name:       ProviderLocal,
		caps:       FullParamSet(),
		sendExtras: true,
	}
}
