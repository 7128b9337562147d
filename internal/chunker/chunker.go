// Package chunker provides the two text-splitting policies of the
// pipeline: line-boundary splitting of file content for summarisation
// prompts, and overlapping fixed-size windowing of documents for
// embedding.
package chunker

import (
	"fmt"
	"strings"

	"github.com/eabdelmoneim/autodoc/internal/core/domain"
)

// SplitLines splits content into prompt chunks on line boundaries.
// Chunks grow toward target characters; no chunk except the final one is
// smaller than minSize. Content at or under target is returned whole.
//
// A single line longer than maxSize cannot be split further and fails
// with domain.ErrTooLarge.
func SplitLines(content string, target, minSize, maxSize int) ([]string, error) {
	if len(content) <= target {
		return []string{content}, nil
	}

	lines := strings.SplitAfter(content, "\n")
	var chunks []string
	var current strings.Builder

	for _, line := range lines {
		if len(line) > maxSize {
			return nil, fmt.Errorf("%w: line of %d characters", domain.ErrTooLarge, len(line))
		}

		if current.Len() > 0 && current.Len()+len(line) > target {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		current.WriteString(line)
	}

	if current.Len() > 0 {
		// Fold a trailing fragment below the minimum into the previous
		// chunk when it still fits the model input budget.
		if current.Len() < minSize && len(chunks) > 0 &&
			len(chunks[len(chunks)-1])+current.Len() <= maxSize {
			chunks[len(chunks)-1] += current.String()
		} else {
			chunks = append(chunks, current.String())
		}
	}

	return chunks, nil
}

// Window splits content into fixed-size chunks with overlap characters
// shared between adjacent chunks. Size and overlap count runes, so a
// chunk boundary never splits a multi-byte character. Every character of
// content belongs to at least one chunk, and no chunk exceeds size.
func Window(content string, size, overlap int) []string {
	if content == "" {
		return nil
	}
	if size <= 0 {
		size = domain.DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = size / 5
	}

	runes := []rune(content)
	total := len(runes)
	step := size - overlap
	chunks := make([]string, 0, total/step+1)

	for start := 0; start < total; start += step {
		end := start + size
		if end > total {
			end = total
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == total {
			break
		}
	}

	return chunks
}
