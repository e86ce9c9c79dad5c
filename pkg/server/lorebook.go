package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"storynexus/pkg/lorebook"
	"storynexus/pkg/schema"
	"storynexus/pkg/store"
)

func (s *Server) handleListEntries(c echo.Context) error {
	ctx := c.Request().Context()

	if storyID := c.QueryParam("storyId"); storyID != "" {
		entries, err := s.Store.Lorebook.EntriesByStory(ctx, storyID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to list lorebook entries")
		}
		return c.JSON(http.StatusOK, entries)
	}

	scope := schema.EntryScope(c.QueryParam("scope"))
	if scope == "" {
		scope = schema.ScopeGlobal
	}
	entries, err := s.Store.Lorebook.Entries(ctx, scope, c.QueryParam("scopeId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list lorebook entries")
	}
	return c.JSON(http.StatusOK, entries)
}

func (s *Server) handleCreateEntry(c echo.Context) error {
	var e schema.LorebookEntry
	if err := c.Bind(&e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := s.Store.Lorebook.Create(c.Request().Context(), &e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, e)
}

func (s *Server) handleGetEntry(c echo.Context) error {
	e, err := s.Store.Lorebook.ByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load lorebook entry")
	}
	return c.JSON(http.StatusOK, e)
}

func (s *Server) handleUpdateEntry(c echo.Context) error {
	var e schema.LorebookEntry
	if err := c.Bind(&e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	e.ID = c.Param("id")
	if err := s.Store.Lorebook.Update(c.Request().Context(), &e); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update lorebook entry")
	}
	return c.JSON(http.StatusOK, e)
}

func (s *Server) handleDeleteEntry(c echo.Context) error {
	if err := s.Store.Lorebook.Delete(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete lorebook entry")
	}
	return c.NoContent(http.StatusNoContent)
}

type matchRequest struct {
	StoryID string `json:"storyId"`
	Text    string `json:"text"`
}

// handleMatchEntries runs the tag matcher over the supplied text and
// returns the entries it would hand to the prompt pipeline.
func (s *Server) handleMatchEntries(c echo.Context) error {
	var req matchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.StoryID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "storyId is required")
	}

	entries, err := s.Store.Lorebook.EntriesByStory(c.Request().Context(), req.StoryID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load lorebook entries")
	}
	return c.JSON(http.StatusOK, lorebook.BuildTagMap(entries, req.Text))
}
