package groq

import (
	"fmt"
	"strings"

	"github.com/mkravets/studyassist/internal/core/domain"
)

func buildSystemPrompt(chunks []domain.ScoredChunk) string {
	if len(chunks) == 0 {
		return `You are a study assistant. The knowledge base has no readable text yet.
Tell the user that their documents produced no extractable text (scanned PDFs have no text layer) and suggest uploading a text-based PDF.`
	}

	var contextBuilder strings.Builder
	for _, chunk := range chunks {
		fmt.Fprintf(&contextBuilder, "[Source: %s p%d]\n%s\n\n", chunk.Source, chunk.Page, chunk.Text)
	}

	return fmt.Sprintf(`You are a study assistant. Answer the user's question using only the context below.
Cite sources inline as [source pX]. If the context does not contain the answer, say so directly instead of guessing.

Context:
%s`, contextBuilder.String())
}
