package services

import (
	"fmt"
	"strings"
)

// answerInstruction pins the model to the retrieved context so it declines
// rather than hallucinates when the context does not contain the answer.
const answerInstruction = `You are a helpful assistant. Use ONLY the following context to answer the question. If the answer is not in the context, say "I don't know".`

// BuildPrompt assembles the generation prompt: instruction, source-tagged
// context blocks in descending score order, then the question. Context is
// truncated to maxContextLen characters to bound generation cost; the first
// chunk is always represented even if it must be cut.
func BuildPrompt(hits []Retrieved, question string, maxContextLen int) string {
	var context strings.Builder
	for i, hit := range hits {
		block := fmt.Sprintf("Context %d (source: %s):\n%s", i+1, hit.Source, hit.Text)
		if context.Len()+len(block) > maxContextLen {
			if i == 0 {
				context.WriteString(block[:maxContextLen])
			}
			break
		}
		if i > 0 {
			context.WriteString("\n\n")
		}
		context.WriteString(block)
	}

	return fmt.Sprintf("%s\n\n%s\n\nQuestion: %s\nAnswer:", answerInstruction, context.String(), question)
}

// noContentAnswer is returned instead of calling the model when retrieval
// came back empty.
func noContentAnswer(filtered bool) string {
	scope := ""
	if filtered {
		scope = " from this source"
	}
	return fmt.Sprintf("I don't have any indexed content%s to answer your question. Please index some content first.", scope)
}
