package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/medbot-ai/medbot-backend/internal/api"
	"github.com/medbot-ai/medbot-backend/internal/config"
	"github.com/medbot-ai/medbot-backend/internal/core"
	"github.com/medbot-ai/medbot-backend/internal/llm"
	"github.com/medbot-ai/medbot-backend/internal/ocr"
	"github.com/medbot-ai/medbot-backend/internal/sentiment"
	"github.com/medbot-ai/medbot-backend/internal/store"
)

func main() {
	// Load configuration
	config.LoadConfig()

	// Setup logging
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if config.AppConfig.LogLevel == "DEBUG" {
		log.Println("Service starting in DEBUG mode")
	}

	// Initialize database store
	dbStore, err := store.NewSQLiteStore(config.AppConfig.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer dbStore.Close()

	// Initialize model collaborators
	chatClient := llm.NewGroqClient(config.AppConfig.GroqAPIKey, config.AppConfig.GroqBaseURL)
	embedder, err := llm.NewGeminiEmbedder(context.Background(), config.AppConfig.GeminiAPIKey)
	if err != nil {
		log.Fatalf("Failed to initialize embedder: %v", err)
	}
	defer embedder.Close()

	sentimentClient := sentiment.NewClient(config.AppConfig.SentimentAPIURL)

	// Assemble the conversation lifecycle engine
	contextService := core.NewContextService(dbStore)
	ragService := core.NewRAGService(contextService, embedder, chatClient)
	summarizer := core.NewSummarizerService(chatClient, sentimentClient, dbStore)
	tracker := core.NewTracker()
	chatService := core.NewChatService(tracker, ragService, summarizer)

	// Initialize API Handler and Router
	apiHandler := api.NewAPIHandler(chatService, dbStore, ocr.NewPlainTextExtractor())
	router := api.NewRouter(apiHandler)

	// Start HTTP server
	serverAddr := fmt.Sprintf(":%s", config.AppConfig.HTTPPort)

	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // LLM calls can take time
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		log.Printf("Starting server on %s. Press Ctrl+C to quit.", serverAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", serverAddr, err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give active connections time to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting gracefully")
}
