package utils

import (
	"github.com/pkoukk/tiktoken-go"
)

// CountTokens estimates the token footprint of text using the gpt-4
// encoding. The estimate is close enough across providers for budget
// logging and context-window warnings.
func CountTokens(text string) (int, error) {
	tkm, err := tiktoken.EncodingForModel("gpt-4-0613")
	if err != nil {
		return 0, err
	}

	return len(tkm.Encode(text, nil, nil)), nil
}
