package core

import (
	"context"
	"errors"

	"github.com/medbot-ai/medbot-backend/internal/llm"
	"github.com/medbot-ai/medbot-backend/internal/sentiment"
	"github.com/medbot-ai/medbot-backend/internal/store"
)

// fakeMedicalStore serves canned prescription and profile data.
type fakeMedicalStore struct {
	prescriptions map[string][]store.PrescriptionRecord
	profiles      map[string]*store.MedicalProfile
	failReads     bool
}

func newFakeMedicalStore() *fakeMedicalStore {
	return &fakeMedicalStore{
		prescriptions: make(map[string][]store.PrescriptionRecord),
		profiles:      make(map[string]*store.MedicalProfile),
	}
}

func (f *fakeMedicalStore) GetPrescriptionsByEmail(email string) ([]store.PrescriptionRecord, error) {
	if f.failReads {
		return nil, errors.New("store unavailable")
	}
	return f.prescriptions[email], nil
}

func (f *fakeMedicalStore) GetMedicalProfileByEmail(email string) (*store.MedicalProfile, error) {
	if f.failReads {
		return nil, errors.New("store unavailable")
	}
	return f.profiles[email], nil
}

// fakeChatClient records prompts and returns a canned completion.
type fakeChatClient struct {
	response string
	err      error
	prompts  []string
	calls    int
}

func (f *fakeChatClient) Complete(ctx context.Context, prompt string, opts llm.CompletionOptions) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

// fakeEmbedder produces deterministic vectors from text length so retrieval
// ranking is reproducible without a remote model.
type fakeEmbedder struct {
	err   error
	calls int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return embedText(text), nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	vectors := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vectors = append(vectors, embedText(text))
	}
	return vectors, nil
}

func embedText(text string) []float32 {
	vec := make([]float32, 8)
	for i, r := range text {
		vec[i%8] += float32(r % 31)
	}
	vec[0] += float32(len(text))
	return vec
}

// fakeAnalyzer returns a fixed sentiment result or error.
type fakeAnalyzer struct {
	result sentiment.Result
	err    error
	calls  int
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, text string) (sentiment.Result, error) {
	f.calls++
	if f.err != nil {
		return sentiment.Result{}, f.err
	}
	return f.result, nil
}

// fakeSummaryStore implements UserSummaryStore in memory with the same
// sliding-window semantics as the SQLite store.
type fakeSummaryStore struct {
	users        map[string]*store.User
	summaries    map[int64][]store.ConversationSummaryRecord
	distress     map[int64]int
	appendErr    error
	lookupErr    error
	nextRecordID int64
}

func newFakeSummaryStore() *fakeSummaryStore {
	return &fakeSummaryStore{
		users:     make(map[string]*store.User),
		summaries: make(map[int64][]store.ConversationSummaryRecord),
		distress:  make(map[int64]int),
	}
}

func (f *fakeSummaryStore) GetUserByEmail(email string) (*store.User, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	return f.users[email], nil
}

func (f *fakeSummaryStore) AppendConversationSummary(userID int64, summary, sentimentLabel string, sentimentConfidence float64) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.nextRecordID++
	records := append(f.summaries[userID], store.ConversationSummaryRecord{
		ID:                  f.nextRecordID,
		UserID:              userID,
		Summary:             summary,
		SentimentLabel:      sentimentLabel,
		SentimentConfidence: sentimentConfidence,
	})
	if len(records) > 4 {
		records = records[len(records)-4:]
	}
	f.summaries[userID] = records
	return nil
}

func (f *fakeSummaryStore) GetRecentSummaries(userID int64, n int) ([]store.ConversationSummaryRecord, error) {
	records := f.summaries[userID]
	// newest first
	out := make([]store.ConversationSummaryRecord, 0, n)
	for i := len(records) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, records[i])
	}
	return out, nil
}

func (f *fakeSummaryStore) AddDistressUser(userID int64) error {
	f.distress[userID]++
	return nil
}
