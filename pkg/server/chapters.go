package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"storynexus/pkg/schema"
	"storynexus/pkg/store"
)

func (s *Server) handleListChapters(c echo.Context) error {
	chapters, err := s.Store.Chapters.ChaptersByStory(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list chapters")
	}
	return c.JSON(http.StatusOK, chapters)
}

func (s *Server) handleCreateChapter(c echo.Context) error {
	var ch schema.Chapter
	if err := c.Bind(&ch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	ch.StoryID = c.Param("id")
	if err := s.Store.Chapters.Create(c.Request().Context(), &ch); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create chapter")
	}
	return c.JSON(http.StatusCreated, ch)
}

func (s *Server) handleGetChapter(c echo.Context) error {
	ch, err := s.Store.Chapters.ChapterByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load chapter")
	}
	return c.JSON(http.StatusOK, ch)
}

func (s *Server) handleUpdateChapter(c echo.Context) error {
	var ch schema.Chapter
	if err := c.Bind(&ch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	ch.ID = c.Param("id")
	if err := s.Store.Chapters.Update(c.Request().Context(), &ch); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update chapter")
	}
	return c.JSON(http.StatusOK, ch)
}

func (s *Server) handleDeleteChapter(c echo.Context) error {
	if err := s.Store.Chapters.Delete(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete chapter")
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleGetOutline(c echo.Context) error {
	outline, err := s.Store.Chapters.Outline(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load outline")
	}
	return c.JSON(http.StatusOK, map[string]string{"content": outline})
}

func (s *Server) handleSaveOutline(c echo.Context) error {
	var body struct {
		Content string `json:"content"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	outline := schema.ChapterOutline{
		ChapterID: c.Param("id"),
		Content:   body.Content,
		UpdatedAt: time.Now(),
	}
	if err := s.Store.Chapters.SaveOutline(c.Request().Context(), &outline); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to save outline")
	}
	return c.JSON(http.StatusOK, outline)
}
