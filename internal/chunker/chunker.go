package chunker

import (
	"fmt"
	"strings"
)

// Chunk represents a slice of the document text.
type Chunk struct {
	Index int
	Text  string
}

// Split breaks text into word-aligned chunks whose length stays within budget.
// Words are whitespace-delimited. A single word longer than budget is emitted
// as its own chunk rather than truncated.
func Split(text string, budget int) []Chunk {
	if budget <= 0 {
		panic(fmt.Sprintf("chunker: budget must be positive, got %d", budget))
	}

	words := strings.Fields(text)
	var chunks []Chunk
	if len(words) == 0 {
		return chunks
	}

	var current strings.Builder
	flush := func() {
		if current.Len() == 0 {
			return
		}
		chunks = append(chunks, Chunk{Index: len(chunks), Text: current.String()})
		current.Reset()
	}

	for _, word := range words {
		size := len(word)
		if current.Len() > 0 {
			size += current.Len() + 1
		}
		if size > budget {
			flush()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(word)
	}
	flush()

	return chunks
}

// Texts returns the text of each chunk in order.
func Texts(chunks []Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Text
	}
	return out
}
