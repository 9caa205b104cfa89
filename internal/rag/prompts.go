package rag

import (
	"fmt"
	"strings"

	"docassist/internal/domain/docmodel"
)

// PromptStrategy selects the instruction template and retrieval shape for a
// request. All variants share the same grounding rules.
type PromptStrategy string

const (
	// StrategyStrictCite answers only from context and cites per claim.
	StrategyStrictCite PromptStrategy = "strict-cite"
	// StrategyStepByStep asks the model to reason through the context
	// before committing to an answer.
	StrategyStepByStep PromptStrategy = "step-by-step"
	// StrategyHybrid retrieves for both the original and the rewritten
	// query and answers over the union.
	StrategyHybrid PromptStrategy = "hybrid"
)

// InsufficiencyPhrase is the fixed wording the model must use when the
// context cannot answer the question. Tests and evaluation key off it.
const InsufficiencyPhrase = "I don't have enough information in the provided documents to answer this question."

const systemInstruction = "You are a helpful assistant that answers questions based strictly on the provided context."

const contextDelimiter = "\n\n---\n\n"

const rewriteInstruction = `Rewrite the following question as a short, keyword-rich search query for a document retrieval system. Respond with the query only, nothing else.

Question: %s`

// formatContext renders retrieved passages as Source/Content blocks in rank
// order. An empty retrieval yields an empty block on purpose: the
// instruction template, not local special-casing, decides what an empty
// context means.
func formatContext(passages []docmodel.RetrievedPassage) string {
	formatted := make([]string, 0, len(passages))
	for _, p := range passages {
		origin := p.Origin()
		if origin == "" {
			origin = "unknown"
		}
		formatted = append(formatted, fmt.Sprintf("Source: %s\nContent: %s", origin, p.Text))
	}
	return strings.Join(formatted, contextDelimiter)
}

func buildPrompt(strategy PromptStrategy, contextBlock string, question string, history []string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("If the answer is not found in the context, say %q Do not make up answers.\n\n", InsufficiencyPhrase))
	b.WriteString("Always mention which source document your answer comes from.\n\n")

	if strategy == StrategyStepByStep {
		b.WriteString("Work through the context step by step: first identify which passages are relevant, then derive the answer from them alone.\n\n")
	}

	if len(history) > 0 {
		b.WriteString("Conversation so far (each entry holds a previous question, your answer and its sources):\n")
		b.WriteString(strings.Join(history, "\n"))
		b.WriteString("\n\n")
	}

	b.WriteString("Context:\n")
	b.WriteString(contextBlock)
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\n\nAnswer:")

	return b.String()
}

func rewritePrompt(question string) string {
	return fmt.Sprintf(rewriteInstruction, question)
}

// distinctOrigins returns the provenance identifiers of the passages that
// were actually put in front of the model, deduplicated in rank order.
func distinctOrigins(passages []docmodel.RetrievedPassage) []string {
	seen := make(map[string]struct{}, len(passages))
	origins := make([]string, 0, len(passages))
	for _, p := range passages {
		origin := p.Origin()
		if origin == "" {
			continue
		}
		if _, ok := seen[origin]; ok {
			continue
		}
		seen[origin] = struct{}{}
		origins = append(origins, origin)
	}
	return origins
}
