package schema

import (
	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go/v3"
)

func generateSchema[T any]() any {
	r := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return r.Reflect(v)
}

// EntrySuggestions is the structured-output payload for AI-proposed
// lorebook entries extracted from chapter text.
type EntrySuggestions struct {
	Entries []EntrySuggestion `json:"entries" jsonschema_description:"Lorebook entries worth recording from the analyzed text"`
}

type EntrySuggestion struct {
	Name        string   `json:"name" jsonschema_description:"Canonical name of the character, place, item, event or concept"`
	Category    string   `json:"category" jsonschema:"enum=character,enum=location,enum=item,enum=event,enum=concept" jsonschema_description:"Entry category"`
	Description string   `json:"description" jsonschema_description:"Concise description suitable as AI context, drawn only from the text"`
	Tags        []string `json:"tags" jsonschema_description:"Alternative names, aliases and keywords that should trigger this entry"`
	Importance  string   `json:"importance,omitempty" jsonschema:"enum=major,enum=minor,enum=background" jsonschema_description:"How central this entry is to the story"`
}

var EntrySuggestionsSchema = generateSchema[EntrySuggestions]()

// SuggestionResponseFormat builds the strict structured-outputs response
// format for lorebook entry suggestion.
func SuggestionResponseFormat() openai.ChatCompletionNewParamsResponseFormatUnion {
	p := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "lorebook_suggestions",
		Description: openai.String("World-building entries extracted from fiction text"),
		Schema:      EntrySuggestionsSchema,
		Strict:      openai.Bool(true),
	}
	return openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: p},
	}
}
