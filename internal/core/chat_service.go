package core

import (
	"context"
	"log"
)

// ChatService orchestrates the conversation lifecycle: each chat turn goes
// through the RAG pipeline and is recorded in the tracker; ending a session
// drains the tracker and runs summarization with the sentiment gate.
type ChatService struct {
	tracker    *Tracker
	ragService *RAGService
	summarizer *SummarizerService
}

func NewChatService(tracker *Tracker, rag *RAGService, summarizer *SummarizerService) *ChatService {
	return &ChatService{
		tracker:    tracker,
		ragService: rag,
		summarizer: summarizer,
	}
}

// HandleQuery answers one chat turn and records it. A failed LLM call is
// rendered as an in-conversation bot message, never as an error: the caller
// always gets an answer string to return to the user.
func (s *ChatService) HandleQuery(ctx context.Context, email, query string) string {
	answer, err := s.ragService.Answer(ctx, email, query)
	if err != nil {
		log.Printf("Error generating answer for %s: %v", email, err)
		answer = ChatFallbackMessage
	}

	s.tracker.RecordTurn(email, query, answer)
	return answer
}

// EndSession atomically takes the user's tracked conversation and, if any
// turns were recorded, produces and persists the session summary. The second
// return value reports whether there was a conversation to summarize.
func (s *ChatService) EndSession(ctx context.Context, email string) (string, bool) {
	conversation, queries, turns := s.tracker.Drain(email)
	if turns == 0 {
		log.Printf("No conversation history found for %s", email)
		return "", false
	}

	log.Printf("Generating summary for %s's session (%d turns, %d queries)", email, turns, len(queries))
	return s.summarizer.Summarize(ctx, email, conversation), true
}
