package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"storynexus/pkg/schema"
	"storynexus/pkg/store"
)

func (s *Server) handleListStories(c echo.Context) error {
	stories, err := s.Store.Stories.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list stories")
	}
	return c.JSON(http.StatusOK, stories)
}

func (s *Server) handleCreateStory(c echo.Context) error {
	var story schema.Story
	if err := c.Bind(&story); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if story.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}
	if err := s.Store.Stories.Create(c.Request().Context(), &story); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create story")
	}
	return c.JSON(http.StatusCreated, story)
}

func (s *Server) handleGetStory(c echo.Context) error {
	story, err := s.Store.Stories.ByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load story")
	}
	return c.JSON(http.StatusOK, story)
}

func (s *Server) handleUpdateStory(c echo.Context) error {
	var story schema.Story
	if err := c.Bind(&story); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	story.ID = c.Param("id")
	if err := s.Store.Stories.Update(c.Request().Context(), &story); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update story")
	}
	return c.JSON(http.StatusOK, story)
}

func (s *Server) handleDeleteStory(c echo.Context) error {
	if err := s.Store.Stories.Delete(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete story")
	}
	return c.NoContent(http.StatusNoContent)
}
