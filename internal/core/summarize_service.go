package core

import (
	"context"
	"log"
	"strings"

	"github.com/medbot-ai/medbot-backend/internal/llm"
	"github.com/medbot-ai/medbot-backend/internal/sentiment"
	"github.com/medbot-ai/medbot-backend/internal/store"
)

const (
	// The distress rule: among the last distressWindowSize summaries, at least
	// distressThreshold must be labeled "high" for escalation, and the window
	// must be completely full. Three "high" records out of three do not fire.
	distressWindowSize = 4
	distressThreshold  = 3
	distressLabel      = "high"

	summaryTemperature = 0.3
)

// SentimentAnalyzer scores a summary for emotional distress.
type SentimentAnalyzer interface {
	Analyze(ctx context.Context, text string) (sentiment.Result, error)
}

// UserSummaryStore is the slice of the store the summarizer writes through.
type UserSummaryStore interface {
	GetUserByEmail(email string) (*store.User, error)
	AppendConversationSummary(userID int64, summary, sentimentLabel string, sentimentConfidence float64) error
	GetRecentSummaries(userID int64, n int) ([]store.ConversationSummaryRecord, error)
	AddDistressUser(userID int64) error
}

// SummarizerService turns a finished session into a stored summary record and
// applies the sentiment-based distress escalation rule.
type SummarizerService struct {
	chatClient llm.ChatClient
	analyzer   SentimentAnalyzer
	store      UserSummaryStore
}

func NewSummarizerService(chatClient llm.ChatClient, analyzer SentimentAnalyzer, summaryStore UserSummaryStore) *SummarizerService {
	return &SummarizerService{
		chatClient: chatClient,
		analyzer:   analyzer,
		store:      summaryStore,
	}
}

// Summarize produces the session summary and always returns a usable string,
// no matter which of the downstream steps failed. Only the LLM call is fatal,
// and its fallback is a fixed substitute summary.
func (s *SummarizerService) Summarize(ctx context.Context, email, conversation string) string {
	summary, err := s.chatClient.Complete(ctx, RenderSummaryPrompt(conversation), llm.CompletionOptions{
		Temperature: summaryTemperature,
	})
	if err != nil {
		log.Printf("Failed to summarize conversation for %s: %v", email, err)
		return SummaryFallbackMessage
	}

	result, err := s.analyzer.Analyze(ctx, summary)
	if err != nil {
		log.Printf("Sentiment analysis failed for %s, defaulting to neutral: %v", email, err)
		result = sentiment.Neutral()
	}

	user, err := s.store.GetUserByEmail(email)
	if err != nil {
		log.Printf("Failed to load user %s, summary not persisted: %v", email, err)
		return summary
	}
	if user == nil {
		log.Printf("User %s not found, summary not persisted", email)
		return summary
	}

	if err := s.store.AppendConversationSummary(user.ID, summary, result.Label, result.Confidence); err != nil {
		log.Printf("Failed to persist summary for %s: %v", email, err)
		return summary
	}

	s.evaluateDistressRule(user)

	return summary
}

// evaluateDistressRule flags the user for admin review when the rolling
// sentiment window crosses the threshold. Escalation failures are logged
// only; the end user never sees them.
func (s *SummarizerService) evaluateDistressRule(user *store.User) {
	recent, err := s.store.GetRecentSummaries(user.ID, distressWindowSize)
	if err != nil {
		log.Printf("Failed to load recent summaries for %s: %v", user.Email, err)
		return
	}
	if len(recent) < distressWindowSize {
		// The rule does not fire on partial history.
		return
	}

	highCount := 0
	for _, rec := range recent {
		if strings.TrimSpace(strings.ToLower(rec.SentimentLabel)) == distressLabel {
			highCount++
		}
	}
	if highCount < distressThreshold {
		return
	}

	log.Printf("ALERT: user %s has %d high-distress sessions in the last %d", user.Email, highCount, distressWindowSize)
	if err := s.store.AddDistressUser(user.ID); err != nil {
		log.Printf("Failed to add %s to the distress list: %v", user.Email, err)
	}
}
