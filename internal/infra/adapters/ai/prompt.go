package ai

import "fmt"

// answerSystemPrompt pins the generator to the retrieved context. Chunks
// arrive annotated with their source title and [start–end] time range; the
// model is told to cite those ranges.
const answerSystemPrompt = `You answer questions about a private video library.
Use ONLY the provided context. If the context does not contain the answer,
say you don't have that information. When you use a passage, reference its
video title and time range (e.g. "Why Go? [02:10-03:45]"). Do not invent
timestamps or content.`

func buildUserPrompt(contextBlock, query string) string {
	return fmt.Sprintf("Context:\n%s\n\nQuestion: %s", contextBlock, query)
}
