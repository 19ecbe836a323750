package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medbot-ai/medbot-backend/internal/store"
)

func newRAGFixture() (*RAGService, *fakeMedicalStore, *fakeEmbedder, *fakeChatClient) {
	medStore := newFakeMedicalStore()
	embedder := &fakeEmbedder{}
	chat := &fakeChatClient{response: "Here is my advice."}
	rag := NewRAGService(NewContextService(medStore), embedder, chat)
	return rag, medStore, embedder, chat
}

func TestAnswerShortCircuitsWithoutMedicalData(t *testing.T) {
	rag, _, embedder, chat := newRAGFixture()

	answer, err := rag.Answer(context.Background(), "nobody@x.com", "what should I take?")
	require.NoError(t, err)

	assert.Equal(t, NoMedicalDataMessage, answer)
	// Neither the embedder nor the LLM may be called on the short circuit.
	assert.Zero(t, embedder.calls)
	assert.Zero(t, chat.calls)
}

func TestAnswerIncludesHistoryAndQueryInPrompt(t *testing.T) {
	rag, medStore, _, chat := newRAGFixture()
	medStore.prescriptions["a@x.com"] = []store.PrescriptionRecord{
		{UserEmail: "a@x.com", ExtractedText: "Metformin 500mg"},
	}

	answer, err := rag.Answer(context.Background(), "a@x.com", "what should I take with food?")
	require.NoError(t, err)
	assert.Equal(t, "Here is my advice.", answer)

	require.Len(t, chat.prompts, 1)
	prompt := chat.prompts[0]
	assert.Contains(t, prompt, "Metformin 500mg")
	assert.Contains(t, prompt, "No medical form details available.")
	assert.Contains(t, prompt, "what should I take with food?")
	assert.Contains(t, prompt, "You are MedBot")
}

func TestAnswerIndexesAndRetrievesChunks(t *testing.T) {
	rag, medStore, embedder, chat := newRAGFixture()

	// History long enough to split into several chunks.
	medStore.prescriptions["a@x.com"] = []store.PrescriptionRecord{
		{UserEmail: "a@x.com", ExtractedText: strings.Repeat("Metformin 500mg twice daily with meals. ", 40)},
	}

	_, err := rag.Answer(context.Background(), "a@x.com", "metformin dosage")
	require.NoError(t, err)

	// One batch call to index the chunks, one call to embed the query.
	assert.Equal(t, 2, embedder.calls)

	require.Len(t, chat.prompts, 1)
	assert.Contains(t, chat.prompts[0], "Metformin 500mg twice daily with meals.")
}

func TestAnswerDegradesWhenEmbeddingFails(t *testing.T) {
	rag, medStore, embedder, chat := newRAGFixture()
	medStore.prescriptions["a@x.com"] = []store.PrescriptionRecord{
		{UserEmail: "a@x.com", ExtractedText: "Metformin 500mg"},
	}
	embedder.err = errors.New("embedding service down")

	answer, err := rag.Answer(context.Background(), "a@x.com", "question")
	require.NoError(t, err)

	// The turn still succeeds: full history carries the prompt.
	assert.Equal(t, "Here is my advice.", answer)
	require.Len(t, chat.prompts, 1)
	assert.Contains(t, chat.prompts[0], "Metformin 500mg")
}

func TestAnswerReturnsErrorWhenLLMFails(t *testing.T) {
	rag, medStore, _, chat := newRAGFixture()
	medStore.prescriptions["a@x.com"] = []store.PrescriptionRecord{
		{UserEmail: "a@x.com", ExtractedText: "Metformin 500mg"},
	}
	chat.err = errors.New("model unavailable")

	_, err := rag.Answer(context.Background(), "a@x.com", "question")
	assert.Error(t, err)
}

func TestVectorIndexRanksMostSimilarFirst(t *testing.T) {
	embedder := &fakeEmbedder{}
	index := NewVectorIndex(embedder)

	chunks := []string{"aaaa", "bbbb", "completely different length chunk here"}
	require.NoError(t, index.Index(context.Background(), chunks))

	results, err := index.Query(context.Background(), "aaaa", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// The identical chunk must come back first with maximal similarity.
	assert.Equal(t, "aaaa", results[0].Content)
	assert.InDelta(t, 1.0, float64(results[0].Similarity), 1e-5)
	assert.GreaterOrEqual(t, results[0].Similarity, results[1].Similarity)
}

func TestVectorIndexQueryEmptyIndex(t *testing.T) {
	index := NewVectorIndex(&fakeEmbedder{})
	_, err := index.Query(context.Background(), "query", 5)
	assert.Error(t, err)
}

func TestVectorIndexCapsKAtChunkCount(t *testing.T) {
	embedder := &fakeEmbedder{}
	index := NewVectorIndex(embedder)
	require.NoError(t, index.Index(context.Background(), []string{"one", "two"}))

	results, err := index.Query(context.Background(), "one", NumRelevantChunks)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}
