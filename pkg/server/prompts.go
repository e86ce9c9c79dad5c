package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"storynexus/pkg/schema"
	"storynexus/pkg/store"
)

func (s *Server) handleListPrompts(c echo.Context) error {
	prompts, err := s.Store.Prompts.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list prompts")
	}
	return c.JSON(http.StatusOK, prompts)
}

func (s *Server) handleCreatePrompt(c echo.Context) error {
	var p schema.Prompt
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(p.Messages) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "messages are required")
	}
	if err := s.Store.Prompts.Create(c.Request().Context(), &p); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create prompt")
	}
	return c.JSON(http.StatusCreated, p)
}

func (s *Server) handleGetPrompt(c echo.Context) error {
	p, err := s.Store.Prompts.PromptByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load prompt")
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) handleUpdatePrompt(c echo.Context) error {
	var p schema.Prompt
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p.ID = c.Param("id")
	if err := s.Store.Prompts.Update(c.Request().Context(), &p); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update prompt")
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) handleDeletePrompt(c echo.Context) error {
	if err := s.Store.Prompts.Delete(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete prompt")
	}
	return c.NoContent(http.StatusNoContent)
}
