package server

import (
	"cmp"
	"context"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"

	"storynexus/pkg/inference"
	"storynexus/pkg/prompt"
	"storynexus/pkg/schema"
	"storynexus/pkg/utils"
)

type chatRequest struct {
	Provider string                  `json:"provider"`
	ModelID  string                  `json:"modelId,omitempty"`
	PromptID string                  `json:"promptId,omitempty"`
	StoryID  string                  `json:"storyId,omitempty"`
	Messages []schema.ChatMessage    `json:"messages"`
	Params   schema.GenerationParams `json:"params,omitempty"`
}

// handleChat streams a brainstorming reply. The conversation rides in as
// chat history; the latest user message doubles as the user input the
// template can reference separately.
func (s *Server) handleChat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(req.Messages) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "messages are required")
	}

	cfg := prompt.ParserConfig{
		StoryID:  req.StoryID,
		PromptID: cmp.Or(req.PromptID, "default-chat"),
		Additional: prompt.Additional{
			ChatHistory: req.Messages,
		},
	}
	if last := req.Messages[len(req.Messages)-1]; last.Role == schema.RoleUser {
		cfg.SceneBeat = last.Content
	}

	parsed, code, err := s.parsePrompt(c, generateRequest{ParserConfig: cfg})
	if err != nil {
		return echo.NewHTTPError(code, err.Error())
	}
	if !parsed.OK() {
		return c.JSON(http.StatusUnprocessableEntity, utils.ErrJSON(parsed.Error))
	}

	run, err := s.Session.Start(c.Request().Context(), func(ctx context.Context) (inference.Stream, error) {
		return s.Dispatcher.Generate(ctx, req.Provider, parsed.Messages, req.ModelID, parsed.Params.Merged(req.Params))
	})
	if err != nil {
		var unknown *inference.UnknownProviderError
		if errors.As(err, &unknown) {
			return echo.NewHTTPError(http.StatusBadRequest, unknown.Error())
		}
		log.Error("failed to start chat generation", "provider", req.Provider, "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "generation failed")
	}
	return streamRun(c, run)
}
