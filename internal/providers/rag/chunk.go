package rag

import (
	"strings"
	"sync"
	"unicode"

	"github.com/pkoukk/tiktoken-go"
)

var (
	tk     *tiktoken.Tiktoken
	tkOnce sync.Once
)

type Chunk struct {
	Text      string
	TokenSize int
	Index     int
}

type ChunkerConfig struct {
	MaxTokens     int
	OverlapTokens int
}

func DefaultChunkerConfig() ChunkerConfig {
	return ChunkerConfig{
		MaxTokens:     800,
		OverlapTokens: 100,
	}
}

// ChunkText splits lesson text into sentence-aligned chunks with token
// overlap between consecutive chunks.
func ChunkText(text string, cfg ChunkerConfig) []Chunk {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	sentences := splitSentences(text)

	var chunks []Chunk
	var currentChunk strings.Builder
	currentTokens := 0
	chunkIndex := 0

	for i, sentence := range sentences {
		sentenceTokens := countTokens(sentence)

		// A single sentence larger than MaxTokens gets sliced by raw tokens.
		if sentenceTokens > cfg.MaxTokens {
			if currentChunk.Len() > 0 {
				chunks = append(chunks, Chunk{
					Text:      strings.TrimSpace(currentChunk.String()),
					TokenSize: currentTokens,
					Index:     chunkIndex,
				})
				chunkIndex++
				currentChunk.Reset()
				currentTokens = 0
			}

			for _, sc := range chunkByTokens(sentence, cfg.MaxTokens) {
				chunks = append(chunks, Chunk{
					Text:      strings.TrimSpace(sc.Text),
					TokenSize: sc.TokenSize,
					Index:     chunkIndex,
				})
				chunkIndex++
			}
			continue
		}

		// Flush when the next sentence would overflow the chunk.
		if currentTokens+sentenceTokens > cfg.MaxTokens && currentChunk.Len() > 0 {
			chunks = append(chunks, Chunk{
				Text:      strings.TrimSpace(currentChunk.String()),
				TokenSize: currentTokens,
				Index:     chunkIndex,
			})
			chunkIndex++

			overlap := overlapFromSentences(sentences, i, cfg.OverlapTokens)
			currentChunk.Reset()
			currentChunk.WriteString(overlap)
			currentTokens = countTokens(overlap)
		}

		if currentChunk.Len() > 0 {
			currentChunk.WriteString(" ")
		}
		currentChunk.WriteString(sentence)
		currentTokens += sentenceTokens
	}

	if currentChunk.Len() > 0 {
		chunks = append(chunks, Chunk{
			Text:      strings.TrimSpace(currentChunk.String()),
			TokenSize: currentTokens,
			Index:     chunkIndex,
		})
	}

	return chunks
}

func chunkByTokens(text string, maxTokens int) []Chunk {
	enc := getTokenizer()
	tokens := enc.Encode(text, nil, nil)

	var chunks []Chunk
	numTokens := len(tokens)

	for i := 0; i < numTokens; i += maxTokens {
		end := i + maxTokens
		if end > numTokens {
			end = numTokens
		}

		chunkTokens := tokens[i:end]
		chunks = append(chunks, Chunk{
			Text:      enc.Decode(chunkTokens),
			TokenSize: len(chunkTokens),
		})
	}

	return chunks
}

func splitSentences(text string) []string {
	paragraphs := splitParagraphs(text)

	sentenceEnders := map[rune]bool{
		'.': true, '!': true, '?': true, '…': true,
	}

	var sentences []string

	for _, para := range paragraphs {
		var current strings.Builder
		runes := []rune(para)

		for i, r := range runes {
			current.WriteRune(r)

			if sentenceEnders[r] {
				if i+1 >= len(runes) || unicode.IsSpace(runes[i+1]) {
					s := strings.TrimSpace(current.String())
					if s != "" {
						sentences = append(sentences, s)
					}
					current.Reset()
				}
			}
		}

		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
	}

	if len(sentences) == 0 && text != "" {
		return []string{text}
	}

	return sentences
}

func splitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n\n")

	var result []string
	for _, p := range parts {
		// Collapse soft wraps inside a paragraph
		p = strings.ReplaceAll(p, "\n", " ")
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

func getTokenizer() *tiktoken.Tiktoken {
	tkOnce.Do(func() {
		var err error
		tk, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			panic("failed to load tiktoken: " + err.Error())
		}
	})
	return tk
}

func countTokens(text string) int {
	if text == "" {
		return 0
	}
	return len(getTokenizer().Encode(text, nil, nil))
}

func overlapFromSentences(sentences []string, currentIdx int, targetTokens int) string {
	if currentIdx == 0 {
		return ""
	}

	var overlap []string
	tokens := 0

	for i := currentIdx - 1; i >= 0 && tokens < targetTokens; i-- {
		overlap = append([]string{sentences[i]}, overlap...)
		tokens += countTokens(sentences[i])
	}

	return strings.Join(overlap, " ")
}
