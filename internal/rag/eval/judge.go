package eval

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"docassist/internal/config"
	"docassist/internal/rag/llm"
)

const judgePromptTemplate = `You are evaluating a question answering system. Score the following on a scale of 0 to 1.

Question: %s
Retrieved Context: %s
Generated Answer: %s
Ground Truth: %s

Score these four things, responding ONLY with valid JSON, nothing else:
{
    "faithfulness": <0-1, is the answer supported by the context?>,
    "answer_relevancy": <0-1, does the answer address the question?>,
    "context_recall": <0-1, does the context contain enough to answer the question?>,
    "completeness": <0-1, did the answer actually answer the question with substance? Saying 'I dont know' or 'I dont have enough information' should score 0>
}`

// Scores holds one judged exchange. All values sit in [0, 1].
type Scores struct {
	Faithfulness    float64 `json:"faithfulness"`
	AnswerRelevancy float64 `json:"answer_relevancy"`
	ContextRecall   float64 `json:"context_recall"`
	Completeness    float64 `json:"completeness"`
}

func (e *Evaluator) judge(ctx context.Context, question string, answer string, contextText string, groundTruth string) Scores {
	prompt := fmt.Sprintf(judgePromptTemplate, question, contextText, answer, groundTruth)

	raw, err := e.judgeProvider.Generate(ctx, llm.Request{
		Prompt:      prompt,
		Temperature: config.ModelTemperature,
		MaxTokens:   config.MaxAnswerTokens,
	})
	if err != nil {
		e.logger.Warn("judge call failed, scoring zero", "error", err.Error())
		return Scores{}
	}

	return parseScores(raw)
}

// parseScores expects strict JSON but tolerates a markdown code fence
// around it. Anything else scores zero across the board.
func parseScores(raw string) Scores {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var s Scores
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return Scores{}
	}
	return s
}
