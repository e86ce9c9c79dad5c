package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"

	"storynexus/pkg/inference"
	"storynexus/pkg/schema"
)

const suggestSystemPrompt = `You are a story analyst. Extract lorebook entries from the provided text: characters, locations, items, events and concepts worth recording for future AI context. Use only information present in the text. Prefer fewer, well-described entries over many thin ones.`

type suggestRequest struct {
	Provider  string `json:"provider"`
	ModelID   string `json:"modelId,omitempty"`
	ChapterID string `json:"chapterId,omitempty"`
	Text      string `json:"text,omitempty"`
}

// handleSuggestEntries asks a provider for structured lorebook entry
// suggestions extracted from chapter text. A chapter id may stand in for
// the raw text.
func (s *Server) handleSuggestEntries(c echo.Context) error {
	var req suggestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	ctx := c.Request().Context()

	text := strings.TrimSpace(req.Text)
	if text == "" && req.ChapterID != "" {
		ch, err := s.Store.Chapters.ChapterByID(ctx, req.ChapterID)
		if err != nil {
			return echo.NewHTTPError(http.StatusNotFound, "chapter not found")
		}
		text = ch.Content
	}
	if text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "text or chapterId is required")
	}

	provider, err := s.Dispatcher.Provider(req.Provider)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	completer, ok := provider.(inference.StructuredCompleter)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "provider does not support structured outputs")
	}

	raw, err := completer.CompleteStructured(ctx, suggestSystemPrompt, text, req.ModelID, schema.SuggestionResponseFormat())
	if err != nil {
		log.Error("suggestion request failed", "provider", req.Provider, "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "suggestion failed")
	}

	var suggestions schema.EntrySuggestions
	if err := json.Unmarshal([]byte(raw), &suggestions); err != nil {
		log.Error("malformed suggestion payload", "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "suggestion failed")
	}
	return c.JSON(http.StatusOK, suggestions)
}
