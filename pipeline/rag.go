package pipeline

import (
	"fmt"
	"strings"

	"github.com/AltairaLabs/CallKit/store"
)

// MinRetrievalScore is the relevance floor: matches scoring below it are
// dropped rather than fed to the LLM as noise.
const MinRetrievalScore = 0.5

// ragHeader introduces the retrieval block appended to the system prompt.
const ragHeader = "Relevant information from knowledge base:"

// buildRAGContext formats knowledge-base matches into the context block
// appended to the system prompt. Returns "" when nothing clears the score
// floor.
func buildRAGContext(results []store.SearchResult) string {
	var b strings.Builder

	n := 0
	for _, result := range results {
		if result.Score < MinRetrievalScore || strings.TrimSpace(result.Text) == "" {
			continue
		}
		n++
		if n == 1 {
			b.WriteString(ragHeader)
			b.WriteString("\n")
		}
		if result.Title != "" {
			b.WriteString(fmt.Sprintf("\n[Source %d: %s]\n", n, result.Title))
		} else {
			b.WriteString(fmt.Sprintf("\n[Source %d]\n", n))
		}
		b.WriteString(result.Text)
	}

	return b.String()
}
