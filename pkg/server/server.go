// Package server exposes the writing assistant over HTTP: CRUD for
// stories, chapters, lorebook and prompts, plus the SSE generation
// endpoints.
package server

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"storynexus/pkg/inference"
	"storynexus/pkg/prompt"
	"storynexus/pkg/store"
	"storynexus/pkg/stream"
)

type Server struct {
	Echo       *echo.Echo
	Store      *store.Store
	Dispatcher *inference.Dispatcher
	Parser     *prompt.Parser
	Session    *stream.Session
}

func NewServer(st *store.Store, dispatcher *inference.Dispatcher, parser *prompt.Parser) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.CORS())

	s := &Server{
		Echo:       e,
		Store:      st,
		Dispatcher: dispatcher,
		Parser:     parser,
		Session:    stream.NewSession(),
	}

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.Echo.GET("/", s.handleGetRoot)

	api := s.Echo.Group("/api")

	api.GET("/models", s.handleGetModels)
	api.POST("/generate", s.handleGenerate)
	api.POST("/generate/abort", s.handleAbort)
	api.POST("/parse", s.handleParse)
	api.POST("/chat", s.handleChat)

	api.GET("/stories", s.handleListStories)
	api.POST("/stories", s.handleCreateStory)
	api.GET("/stories/:id", s.handleGetStory)
	api.PUT("/stories/:id", s.handleUpdateStory)
	api.DELETE("/stories/:id", s.handleDeleteStory)

	api.GET("/stories/:id/chapters", s.handleListChapters)
	api.POST("/stories/:id/chapters", s.handleCreateChapter)
	api.GET("/chapters/:id", s.handleGetChapter)
	api.PUT("/chapters/:id", s.handleUpdateChapter)
	api.DELETE("/chapters/:id", s.handleDeleteChapter)
	api.GET("/chapters/:id/outline", s.handleGetOutline)
	api.PUT("/chapters/:id/outline", s.handleSaveOutline)

	api.GET("/lorebook", s.handleListEntries)
	api.POST("/lorebook", s.handleCreateEntry)
	api.GET("/lorebook/:id", s.handleGetEntry)
	api.PUT("/lorebook/:id", s.handleUpdateEntry)
	api.DELETE("/lorebook/:id", s.handleDeleteEntry)
	api.POST("/lorebook/match", s.handleMatchEntries)
	api.POST("/lorebook/suggest", s.handleSuggestEntries)

	api.GET("/prompts", s.handleListPrompts)
	api.POST("/prompts", s.handleCreatePrompt)
	api.GET("/prompts/:id", s.handleGetPrompt)
	api.PUT("/prompts/:id", s.handleUpdatePrompt)
	api.DELETE("/prompts/:id", s.handleDeletePrompt)
}

func (s *Server) Start(addr string) error {
	log.Info("server listening", "addr", addr)
	return s.Echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Info("shutting down server")
	s.Session.Abort()
	if err := s.Echo.Shutdown(ctx); err != nil {
		return err
	}
	return s.Store.Close()
}

func (s *Server) handleGetRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"service":   "storynexus",
		"providers": s.Dispatcher.Names(),
	})
}

func (s *Server) handleGetModels(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Dispatcher.Models())
}
