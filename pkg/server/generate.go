package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"

	"storynexus/pkg/inference"
	"storynexus/pkg/lorebook"
	"storynexus/pkg/prompt"
	"storynexus/pkg/schema"
	"storynexus/pkg/store"
	"storynexus/pkg/stream"
	"storynexus/pkg/utils"
)

type generateRequest struct {
	prompt.ParserConfig
	Provider string                  `json:"provider"`
	ModelID  string                  `json:"modelId,omitempty"`
	Params   schema.GenerationParams `json:"params,omitempty"`
}

// handleGenerate parses the requested prompt and streams the completion
// as SSE events: token fragments, then a single complete event carrying
// the full text. A failed run ends with an error event instead; an
// aborted run ends with neither.
func (s *Server) handleGenerate(c echo.Context) error {
	var req generateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	parsed, code, err := s.parsePrompt(c, req)
	if err != nil {
		return echo.NewHTTPError(code, err.Error())
	}
	if !parsed.OK() {
		return c.JSON(http.StatusUnprocessableEntity, utils.ErrJSON(parsed.Error))
	}

	params := parsed.Params.Merged(req.Params)
	if unsupported, err := s.Dispatcher.Unsupported(req.Provider, params); err == nil && len(unsupported) > 0 {
		log.Warn("provider ignores parameters", "provider", req.Provider, "params", unsupported)
	}
	log.Debug("dispatching generation",
		"provider", req.Provider,
		"model", req.ModelID,
		"messages", len(parsed.Messages),
		"tokens", parsed.TokenCount)

	run, err := s.Session.Start(c.Request().Context(), func(ctx context.Context) (inference.Stream, error) {
		return s.Dispatcher.Generate(ctx, req.Provider, parsed.Messages, req.ModelID, params)
	})
	if err != nil {
		var unknown *inference.UnknownProviderError
		if errors.As(err, &unknown) {
			return echo.NewHTTPError(http.StatusBadRequest, unknown.Error())
		}
		log.Error("failed to start generation", "provider", req.Provider, "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "generation failed")
	}
	return streamRun(c, run)
}

// handleAbort cancels the active run. Always 204, whether or not a run
// was streaming.
func (s *Server) handleAbort(c echo.Context) error {
	if s.Session.Abort() {
		log.Debug("generation aborted")
	}
	return c.NoContent(http.StatusNoContent)
}

type parseResponse struct {
	prompt.ParsedPrompt
	Warnings []string `json:"warnings,omitempty"`
}

// handleParse runs the prompt pipeline without dispatching, so clients
// can preview the exact messages and spot unresolvable variables.
func (s *Server) handleParse(c echo.Context) error {
	var req generateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	parsed, code, err := s.parsePrompt(c, req)
	if err != nil {
		return echo.NewHTTPError(code, err.Error())
	}

	resp := parseResponse{ParsedPrompt: parsed}
	if req.Provider != "" {
		if unsupported, err := s.Dispatcher.Unsupported(req.Provider, parsed.Params.Merged(req.Params)); err == nil {
			resp.Warnings = unsupported
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// parsePrompt matches lorebook entries against the request text when the
// caller did not supply its own set, then runs the parser. The returned
// int is the HTTP status to use when err is non-nil.
func (s *Server) parsePrompt(c echo.Context, req generateRequest) (prompt.ParsedPrompt, int, error) {
	ctx := c.Request().Context()

	if req.MatchedEntries == nil && req.StoryID != "" {
		entries, err := s.Store.Lorebook.EntriesByStory(ctx, req.StoryID)
		if err != nil {
			log.Warn("failed to load lorebook entries", "story", req.StoryID, "error", err)
		} else {
			text := req.SceneBeat + "\n" + req.Additional.PlainTextContent
			req.MatchedEntries = lorebook.BuildTagMap(entries, text)
		}
	}

	parsed, err := s.Parser.Parse(ctx, req.ParserConfig)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return prompt.ParsedPrompt{}, http.StatusNotFound, err
		}
		log.Error("failed to parse prompt", "prompt", req.PromptID, "error", err)
		return prompt.ParsedPrompt{}, http.StatusInternalServerError, errors.New("failed to parse prompt")
	}
	return parsed, 0, nil
}

// streamRun relays run events to the client as SSE. An aborted run ends
// the stream silently.
func streamRun(c echo.Context, run *stream.Run) error {
	sse := utils.NewSSEWriter(c)
	defer sse.Close()

	for ev := range run.Events() {
		switch ev.Kind {
		case stream.EventToken:
			if err := sse.Event("token", map[string]string{"token": ev.Token}); err != nil {
				run.Abort()
			}
		case stream.EventComplete:
			_ = sse.Event("complete", map[string]string{"text": ev.Text})
		case stream.EventError:
			log.Error("generation failed", "error", ev.Err)
			_ = sse.Event("error", utils.ErrJSON("generation failed"))
		}
	}
	return nil
}
