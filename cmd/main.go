package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	_ "github.com/joho/godotenv/autoload"
	gommonlog "github.com/labstack/gommon/log"

	"storynexus/pkg/inference"
	"storynexus/pkg/prompt"
	"storynexus/pkg/server"
	"storynexus/pkg/store"
)

func main() {
	ctx, done := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer done()

	if level, err := log.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(level)
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "storynexus.db"
	}
	st, err := store.Open(dbPath)
	if err != nil {
		log.Fatal("failed to open store", "path", dbPath, "error", err)
	}

	providers := []inference.Provider{
		inference.NewLocal(os.Getenv("LOCAL_API_URL")),
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		providers = append(providers, inference.NewOpenAI(key))
	}
	if key := os.Getenv("OPENROUTER_API_KEY"); key != "" {
		providers = append(providers, inference.NewOpenRouter(key))
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		gemini, err := inference.NewGemini(key, os.Getenv("GEMINI_MODEL"))
		if err != nil {
			log.Warn("gemini provider unavailable", "error", err)
		} else {
			providers = append(providers, gemini)
		}
	}
	dispatcher := inference.NewDispatcher(providers...)

	builder := prompt.NewBuilder(st.Chapters)
	resolvers := prompt.NewRegistry(prompt.NewResolvers(st.Chapters, st.Lorebook))
	parser := prompt.NewParser(builder, st.Prompts, resolvers)

	srv := server.NewServer(st, dispatcher, parser)
	srv.Echo.Logger.SetLevel(gommonlog.INFO)

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	finishedShutDown := make(chan struct{})
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown failed", "error", err)
		}
		close(finishedShutDown)
	}()

	if err := srv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server stopped", "error", err)
	}
	<-finishedShutDown
}
