package prompt

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"

	"storynexus/pkg/schema"
	"storynexus/pkg/utils"
)

// variableRX matches {{name}} and {{name:arg}} placeholders.
var variableRX = regexp.MustCompile(`\{\{\s*([a-zA-Z][a-zA-Z0-9_]*)\s*(?::([^}]*))?\}\}`)

// ParsedPrompt is the outcome of a parse: a ready-to-send message list,
// or an error string. It never carries both an empty message list and an
// empty error.
type ParsedPrompt struct {
	Messages   []schema.PromptMessage  `json:"messages"`
	Error      string                  `json:"error,omitempty"`
	Params     schema.GenerationParams `json:"params"`
	TokenCount int                     `json:"tokenCount,omitempty"`
}

// OK reports whether parsing produced messages.
func (p ParsedPrompt) OK() bool { return p.Error == "" }

// Parser expands prompt templates against freshly built contexts.
type Parser struct {
	builder   *Builder
	prompts   PromptSource
	resolvers *Registry
}

func NewParser(builder *Builder, prompts PromptSource, resolvers *Registry) *Parser {
	return &Parser{builder: builder, prompts: prompts, resolvers: resolvers}
}

// Parse builds a context, loads the template named by the config and
// substitutes every placeholder. Resolution failures come back inside
// the ParsedPrompt, never as a returned error; the returned error is
// reserved for context-build and template-load failures, which leave no
// usable result at all.
func (p *Parser) Parse(ctx context.Context, cfg ParserConfig) (ParsedPrompt, error) {
	pc, err := p.builder.Build(ctx, cfg)
	if err != nil {
		return ParsedPrompt{}, err
	}

	tmpl, err := p.prompts.PromptByID(ctx, cfg.PromptID)
	if err != nil {
		return ParsedPrompt{}, fmt.Errorf("failed to load prompt template: %w", err)
	}

	messages := make([]schema.PromptMessage, 0, len(tmpl.Messages))
	for _, msg := range tmpl.Messages {
		body, err := p.expand(ctx, pc, msg.Content)
		if err != nil {
			log.Debug("prompt parse failed", "prompt", tmpl.ID, "error", err)
			return ParsedPrompt{Error: err.Error(), Params: tmpl.Params}, nil
		}
		messages = append(messages, schema.PromptMessage{Role: msg.Role, Content: body})
	}

	return ParsedPrompt{
		Messages:   messages,
		Params:     tmpl.Params,
		TokenCount: countTokens(messages),
	}, nil
}

// expand substitutes every placeholder in body. Each occurrence resolves
// independently: the same variable may appear with different arguments,
// so results are never cached within a parse.
func (p *Parser) expand(ctx context.Context, pc *Context, body string) (string, error) {
	matches := variableRX.FindAllStringSubmatchIndex(body, -1)
	if len(matches) == 0 {
		return body, nil
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(body[last:m[0]])

		name := body[m[2]:m[3]]
		arg := ""
		if m[4] >= 0 {
			arg = strings.TrimSpace(body[m[4]:m[5]])
		}

		resolve, ok := p.resolvers.Lookup(name)
		if !ok {
			return "", fmt.Errorf("unknown prompt variable %q", name)
		}
		value, err := resolve(ctx, pc, arg)
		if err != nil {
			return "", fmt.Errorf("failed to resolve %q: %w", name, err)
		}
		b.WriteString(value)
		last = m[1]
	}
	b.WriteString(body[last:])
	return b.String(), nil
}

func countTokens(messages []schema.PromptMessage) int {
	var b strings.Builder
	for _, msg := range messages {
		b.WriteString(msg.Content)
		b.WriteByte('\n')
	}
	n, err := utils.CountTokens(b.String())
	if err != nil {
		return 0
	}
	return n
}
