package inference

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"

	"storynexus/pkg/schema"
)

type fakeProvider struct {
	name    string
	caps    ParamSet
	models  []schema.AIModel
	fetches atomic.Int32
	err     error
}

func (f *fakeProvider) Name() string           { return f.name }
func (f *fakeProvider) Capabilities() ParamSet { return f.caps }

func (f *fakeProvider) FetchModels(ctx context.Context) ([]schema.AIModel, error) {
	f.fetches.Add(1)
	return f.models, f.err
}

func (f *fakeProvider) Generate(ctx context.Context, messages []schema.PromptMessage, modelID string, params schema.GenerationParams) (Stream, error) {
	return &emptyStream{}, nil
}

type emptyStream struct{}

func (*emptyStream) Recv() (string, error) { return "", io.EOF }
func (*emptyStream) Close() error          { return nil }

func TestDispatcherUnknownProvider(t *testing.T) {
	d := NewDispatcher(&fakeProvider{name: ProviderLocal, caps: FullParamSet()})

	_, err := d.Generate(context.Background(), "mystery", nil, "", schema.GenerationParams{})
	var unknown *UnknownProviderError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownProviderError, got %v", err)
	}
	if unknown.Provider != "mystery" {
		t.Fatalf("unexpected provider in error: %q", unknown.Provider)
	}
}

func TestDispatcherRoutesByName(t *testing.T) {
	local := &fakeProvider{name: ProviderLocal, caps: FullParamSet()}
	d := NewDispatcher(local)

	src, err := d.Generate(context.Background(), ProviderLocal, nil, "m1", schema.GenerationParams{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := src.Recv(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF from empty stream, got %v", err)
	}
}

func TestUnsupportedParams(t *testing.T) {
	hosted := ParamSet{Temperature: true, MaxTokens: true}
	params := schema.GenerationParams{
		Temperature: 0.7,
		MaxTokens:   512,
		TopK:        40,
		MinP:        0.05,
	}

	got := hosted.Unsupported(params)
	if len(got) != 2 || got[0] != "top_k" || got[1] != "min_p" {
		t.Fatalf("unexpected unsupported list: %v", got)
	}
	if rest := FullParamSet().Unsupported(params); len(rest) != 0 {
		t.Fatalf("full set should support everything, got %v", rest)
	}
}

func TestUnsupportedIgnoresUnsetParams(t *testing.T) {
	none := ParamSet{}
	if got := none.Unsupported(schema.GenerationParams{}); len(got) != 0 {
		t.Fatalf("unset params should never be reported, got %v", got)
	}
}

func TestDispatcherModelsAggregatesAndCaches(t *testing.T) {
	a := &fakeProvider{name: ProviderLocal, models: []schema.AIModel{{ID: "m1", Provider: ProviderLocal}}}
	b := &fakeProvider{name: ProviderOpenAI, models: []schema.AIModel{{ID: "m2", Provider: ProviderOpenAI}}}
	d := NewDispatcher(a, b)

	models := d.Models()
	if len(models) != 2 || models[0].ID != "m1" || models[1].ID != "m2" {
		t.Fatalf("unexpected aggregate: %+v", models)
	}

	d.Models()
	if a.fetches.Load() != 1 || b.fetches.Load() != 1 {
		t.Fatalf("expected cached catalogs, got %d/%d fetches", a.fetches.Load(), b.fetches.Load())
	}
}

func TestDispatcherModelsSkipsFailingProvider(t *testing.T) {
	ok := &fakeProvider{name: ProviderLocal, models: []schema.AIModel{{ID: "m1", Provider: ProviderLocal}}}
	down := &fakeProvider{name: ProviderOpenAI, err: errors.New("unreachable")}
	d := NewDispatcher(ok, down)

	models := d.Models()
	if len(models) != 1 || models[0].ID != "m1" {
		t.Fatalf("expected the healthy provider's models only, got %+v", models)
	}
}
