package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/medbot-ai/medbot-backend/internal/llm"
)

const (
	// NumRelevantChunks is how many history chunks are retrieved per query.
	NumRelevantChunks = 5

	chatTemperature = 0.7
	chatMaxTokens   = 500
)

// RAGService builds the retrieval-augmented prompt for a chat turn and gets
// the model's answer. The vector index is transient: the user's medical
// history is re-chunked and re-embedded on every request.
type RAGService struct {
	contextService *ContextService
	embedder       llm.Embedder
	chatClient     llm.ChatClient
}

func NewRAGService(contextService *ContextService, embedder llm.Embedder, chatClient llm.ChatClient) *RAGService {
	return &RAGService{
		contextService: contextService,
		embedder:       embedder,
		chatClient:     chatClient,
	}
}

// Answer handles one chat turn. When the user has no medical data at all it
// returns NoMedicalDataMessage without touching the embedder or the LLM.
// Retrieval failures degrade to an unaugmented prompt; only an LLM failure is
// returned as an error, and the HTTP layer renders it as a bot message.
func (s *RAGService) Answer(ctx context.Context, email, query string) (string, error) {
	medicalHistory, err := s.contextService.BuildMedicalHistory(email)
	if err != nil {
		if errors.Is(err, ErrNoMedicalData) {
			return NoMedicalDataMessage, nil
		}
		return "", fmt.Errorf("failed to build medical context: %w", err)
	}

	retrievedContext := s.retrieveContext(ctx, medicalHistory, query)

	prompt := RenderChatPrompt(medicalHistory, retrievedContext, query)
	answer, err := s.chatClient.Complete(ctx, prompt, llm.CompletionOptions{
		Temperature: chatTemperature,
		MaxTokens:   chatMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to get chat completion: %w", err)
	}
	return answer, nil
}

// retrieveContext chunks the history, indexes it and pulls the top-k chunks
// for the query. Any failure degrades to an empty context: the prompt still
// carries the full history, so the turn can proceed without retrieval.
func (s *RAGService) retrieveContext(ctx context.Context, medicalHistory, query string) string {
	chunks := SplitText(medicalHistory, ChunkSize, ChunkOverlap)
	if len(chunks) == 0 {
		return ""
	}

	index := NewVectorIndex(s.embedder)
	if err := index.Index(ctx, chunks); err != nil {
		log.Printf("Failed to index medical history, proceeding without retrieval: %v", err)
		return ""
	}

	retrieved, err := index.Query(ctx, query, NumRelevantChunks)
	if err != nil {
		log.Printf("Failed to retrieve relevant chunks, proceeding without retrieval: %v", err)
		return ""
	}

	parts := make([]string, 0, len(retrieved))
	for _, chunk := range retrieved {
		parts = append(parts, chunk.Content)
	}
	return strings.Join(parts, "\n\n")
}
