// Package ingestion implements the campus document ingestion pipeline.
// It reads document files, flattens structured formats to plain text, splits
// the text into overlapping boundary-aware chunks, embeds each chunk, and
// adds the results to the vector store. The pipeline is invoked by the
// `copilot ingest` CLI command and by the knowledge store's AddDocument.
package ingestion

import (
	"strings"
	"unicode/utf8"
)

// Chunking defaults. A 1000-character window with 200 characters of overlap
// keeps each chunk inside common embedding input limits while preserving
// context across boundaries.
const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 200

	// boundaryScan is how far past the window end the chunker searches for a
	// natural break (newline, then sentence period) before cutting raw.
	boundaryScan = 100
)

// ChunkMetadata locates a chunk within its source document.
type ChunkMetadata struct {
	// Source is the origin file name of the document.
	Source string
	// ChunkIndex is the running index of this chunk within the document.
	ChunkIndex int
	// TotalChunks is the number of chunks the document produced. Back-filled
	// once the whole document has been walked.
	TotalChunks int
}

// Chunk is one bounded, overlap-aware slice of source text prepared for
// embedding. Chunks are immutable once produced; ownership transfers to the
// vector store on ingestion.
type Chunk struct {
	Content  string
	Metadata ChunkMetadata
}

// Chunker splits raw text into overlapping chunks.
type Chunker struct {
	// size is the window length in characters.
	size int
	// overlap is how many characters the next window re-reads from the
	// previous one.
	overlap int
}

// NewChunker constructs a Chunker. Non-positive size or negative overlap
// fall back to the defaults; an overlap >= size is clamped to size/10 so the
// walk always advances.
func NewChunker(size, overlap int) *Chunker {
	if size <= 0 {
		size = defaultChunkSize
	}
	if overlap < 0 {
		overlap = defaultChunkOverlap
	}
	if overlap >= size {
		overlap = size / 10
	}
	return &Chunker{size: size, overlap: overlap}
}

// Split walks text in fixed-size windows, snapping each window end to the
// nearest newline (preferred) or sentence period within boundaryScan
// characters, and starts the next window overlap characters before the
// previous end. Whitespace-only chunks are dropped. Empty text yields nil;
// text shorter than the window yields a single chunk.
func (c *Chunker) Split(text, source string) []Chunk {
	if len(text) == 0 {
		return nil
	}

	var chunks []Chunk
	start := 0
	index := 0

	for start < len(text) {
		end := start + c.size
		if end >= len(text) {
			end = len(text)
		} else {
			end = snapBoundary(text, end)
			if end < len(text) {
				end = snapRuneStart(text, end)
			}
			if end <= start {
				// The whole window sat inside one multi-byte rune; take
				// that rune rather than stalling.
				_, n := utf8.DecodeRuneInString(text[start:])
				end = start + n
			}
		}

		if piece := strings.TrimSpace(text[start:end]); piece != "" {
			chunks = append(chunks, Chunk{
				Content:  piece,
				Metadata: ChunkMetadata{Source: source, ChunkIndex: index},
			})
			index++
		}

		if end == len(text) {
			break
		}

		// Re-read overlap characters, but never move the cursor backwards —
		// a zero-advance step would walk the same window forever.
		next := end - min(c.overlap, end-start)
		if next > start {
			next = snapRuneStart(text, next)
		}
		if next <= start {
			next = end
		}
		start = next
	}

	for i := range chunks {
		chunks[i].Metadata.TotalChunks = len(chunks)
	}
	return chunks
}

// snapBoundary searches forward from end for a natural break within
// boundaryScan characters: first the nearest newline, then the nearest
// sentence-terminating period. When neither is found the raw end stands.
func snapBoundary(text string, end int) int {
	limit := end + boundaryScan
	if limit > len(text) {
		limit = len(text)
	}

	if nl := strings.IndexByte(text[end:limit], '\n'); nl >= 0 {
		return end + nl + 1
	}
	if p := strings.IndexByte(text[end:limit], '.'); p >= 0 {
		return end + p + 1
	}
	return end
}

// snapRuneStart backs i up to the start of the rune it falls inside, so a
// byte-offset cut never splits a multi-byte character. i must be a valid
// index into text.
func snapRuneStart(text string, i int) int {
	for i > 0 && !utf8.RuneStart(text[i]) {
		i--
	}
	return i
}
