package core

const (
	// ChunkSize and ChunkOverlap control how the aggregated medical history is
	// split before indexing. The overlap keeps facts that straddle a chunk
	// boundary retrievable from either side.
	ChunkSize    = 500
	ChunkOverlap = 50
)

// SplitText splits text into fixed-size chunks of at most size runes, with
// consecutive chunks overlapping by overlap runes. Boundaries are stable: a
// chunk that already fits within size re-splits to itself.
func SplitText(text string, size, overlap int) []string {
	if text == "" {
		return nil
	}
	if size <= 0 {
		size = ChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	runes := []rune(text)
	if len(runes) <= size {
		return []string{text}
	}

	stride := size - overlap
	var chunks []string
	for start := 0; start < len(runes); start += stride {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}
