package core

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"

	"github.com/medbot-ai/medbot-backend/internal/llm"
)

// VectorIndex is a transient in-memory similarity index over text chunks. It
// is rebuilt for every prompt-build call and holds the embedded medical
// history only for the lifetime of one request.
type VectorIndex struct {
	embedder llm.Embedder
	chunks   []string
	vectors  [][]float32
}

func NewVectorIndex(embedder llm.Embedder) *VectorIndex {
	return &VectorIndex{embedder: embedder}
}

// Index embeds every chunk in one batch call and stores the vectors.
func (idx *VectorIndex) Index(ctx context.Context, chunks []string) error {
	if len(chunks) == 0 {
		return fmt.Errorf("no chunks to index")
	}

	vectors, err := idx.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		return fmt.Errorf("failed to embed chunks: %w", err)
	}

	idx.chunks = chunks
	idx.vectors = vectors
	return nil
}

// RetrievedChunk pairs a chunk with its similarity to the query.
type RetrievedChunk struct {
	Content    string
	Similarity float32
}

// Query embeds the query text and returns the top-k chunks ranked by cosine
// similarity, best first.
func (idx *VectorIndex) Query(ctx context.Context, query string, k int) ([]RetrievedChunk, error) {
	if len(idx.chunks) == 0 {
		return nil, fmt.Errorf("index is empty")
	}

	queryVec, err := idx.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	scored := make([]RetrievedChunk, 0, len(idx.chunks))
	for i, chunk := range idx.chunks {
		sim, err := cosineSimilarity(queryVec, idx.vectors[i])
		if err != nil {
			log.Printf("Error scoring chunk %d against query: %v. Skipping.", i, err)
			continue
		}
		scored = append(scored, RetrievedChunk{Content: chunk, Similarity: sim})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})

	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}

func dotProduct(vec1, vec2 []float32) (float32, error) {
	if len(vec1) != len(vec2) {
		return 0, fmt.Errorf("vectors must have the same dimension")
	}
	var product float32
	for i := range vec1 {
		product += vec1[i] * vec2[i]
	}
	return product, nil
}

func magnitude(vec []float32) float32 {
	var sumOfSquares float32
	for _, val := range vec {
		sumOfSquares += val * val
	}
	return float32(math.Sqrt(float64(sumOfSquares)))
}

func cosineSimilarity(vec1, vec2 []float32) (float32, error) {
	if len(vec1) == 0 || len(vec2) == 0 {
		return 0, fmt.Errorf("vectors cannot be empty")
	}
	product, err := dotProduct(vec1, vec2)
	if err != nil {
		return 0, err
	}

	mag1 := magnitude(vec1)
	mag2 := magnitude(vec2)

	if mag1 == 0 || mag2 == 0 {
		return 0, nil
	}

	return product / (mag1 * mag2), nil
}
