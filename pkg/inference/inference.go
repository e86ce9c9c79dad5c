// Package inference adapts AI providers to one streaming generation
// interface and routes requests to them by name.
package inference

import (
	"context"
	"fmt"
	"slices"
	"time"

	"storynexus/pkg/flight"
	"storynexus/pkg/schema"
)

// Provider names the dispatcher routes on.
const (
	ProviderLocal      = "local"
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
)

// Stream is a provider-agnostic token stream. Recv returns the next
// content fragment, io.EOF at natural end of stream, or the transport
// error that terminated it.
type Stream interface {
	Recv() (string, error)
	Close() error
}

// Provider is one AI backend.
type Provider interface {
	Name() string
	FetchModels(ctx context.Context) ([]schema.AIModel, error)
	Generate(ctx context.Context, messages []schema.PromptMessage, modelID string, params schema.GenerationParams) (Stream, error)
	Capabilities() ParamSet
}

// ParamSet declares which sampling parameters a provider honors, so
// callers can warn about knobs that would otherwise silently vanish.
type ParamSet struct {
	Temperature       bool
	MaxTokens         bool
	TopP              bool
	TopK              bool
	RepetitionPenalty bool
	MinP              bool
}

// FullParamSet covers every sampling parameter we model.
func FullParamSet() ParamSet {
	return ParamSet{
		Temperature:       true,
		MaxTokens:         true,
		TopP:              true,
		TopK:              true,
		RepetitionPenalty: true,
		MinP:              true,
	}
}

// Unsupported returns the names of parameters set in p that this set
// does not honor.
func (s ParamSet) Unsupported(p schema.GenerationParams) []string {
	var out []string
	if p.Temperature != 0 && !s.Temperature {
		out = append(out, "temperature")
	}
	if p.MaxTokens != 0 && !s.MaxTokens {
		out = append(out, "max_tokens")
	}
	if p.TopP != 0 && !s.TopP {
		out = append(out, "top_p")
	}
	if p.TopK != 0 && !s.TopK {
		out = append(out, "top_k")
	}
	if p.RepetitionPenalty != 0 && !s.RepetitionPenalty {
		out = append(out, "repetition_penalty")
	}
	if p.MinP != 0 && !s.MinP {
		out = append(out, "min_p")
	}
	return out
}

// UnknownProviderError reports a generation request naming a provider
// that is not registered.
type UnknownProviderError struct {
	Provider string
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("unknown AI provider %q", e.Provider)
}

// Dispatcher routes generation requests to registered providers.
type Dispatcher struct {
	providers map[string]Provider
	order     []string
	models    flight.Cache[string, []schema.AIModel]
}

func NewDispatcher(providers ...Provider) *Dispatcher {
	d := &Dispatcher{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		d.providers[p.Name()] = p
		d.order = append(d.order, p.Name())
	}
	d.models = flight.NewCache(func(name string) ([]schema.AIModel, error) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return d.providers[name].FetchModels(ctx)
	})
	d.models.Expiry(10 * time.Minute)
	return d
}

// Names lists registered provider names in registration order.
func (d *Dispatcher) Names() []string {
	return slices.Clone(d.order)
}

// Provider looks up a registered provider by name.
func (d *Dispatcher) Provider(name string) (Provider, error) {
	p, ok := d.providers[name]
	if !ok {
		return nil, &UnknownProviderError{Provider: name}
	}
	return p, nil
}

// Generate forwards the request to the named provider.
func (d *Dispatcher) Generate(ctx context.Context, provider string, messages []schema.PromptMessage, modelID string, params schema.GenerationParams) (Stream, error) {
	p, err := d.Provider(provider)
	if err != nil {
		return nil, err
	}
	return p.Generate(ctx, messages, modelID, params)
}

// Unsupported reports which of the given parameters the named provider
// would ignore.
func (d *Dispatcher) Unsupported(provider string, params schema.GenerationParams) ([]string, error) {
	p, err := d.Provider(provider)
	if err != nil {
		return nil, err
	}
	return p.Capabilities().Unsupported(params), nil
}

// Models aggregates the model catalogs of every registered provider.
// Catalogs are cached per provider; a provider that cannot be reached
// contributes nothing rather than failing the whole listing.
func (d *Dispatcher) Models() []schema.AIModel {
	var all []schema.AIModel
	for _, name := range d.order {
		models, err := d.models.Get(name)
		if err != nil {
			continue
		}
		all = append(all, models...)
	}
	return all
}
