package eval

import (
	"context"
	"fmt"
	"strings"

	"docassist/internal/rag"
	"docassist/internal/rag/llm"
	"docassist/internal/rag/retriever"
	"docassist/pkg/logger_i"
)

// Item is one test case: a question and the answer the system should
// ground itself to.
type Item struct {
	Question    string `json:"question"`
	GroundTruth string `json:"ground_truth"`
}

// Config records the pipeline parameters a run was scored under, so results
// files from different sweeps stay comparable.
type Config struct {
	K            int `json:"k"`
	ChunkSize    int `json:"chunk_size"`
	ChunkOverlap int `json:"chunk_overlap"`
}

// Result is the persisted outcome of one evaluation run.
type Result struct {
	Config Config `json:"config"`
	Scores Scores `json:"scores"`
}

type Evaluator struct {
	svc           rag.Service
	retriever     *retriever.Retriever
	judgeProvider llm.Provider
	askOpts       rag.AskOptions
	logger        *logger_i.Logger
}

func NewEvaluator(svc rag.Service, rt *retriever.Retriever, judgeProvider llm.Provider, askOpts rag.AskOptions) (*Evaluator, error) {
	if svc == nil || rt == nil || judgeProvider == nil {
		return nil, fmt.Errorf("evaluator needs a service, a retriever and a judge provider")
	}
	return &Evaluator{
		svc:           svc,
		retriever:     rt,
		judgeProvider: judgeProvider,
		askOpts:       askOpts,
		logger:        logger_i.NewLogger("evaluator"),
	}, nil
}

// Run scores every test item in order, one at a time. A judge failure on
// one item records zero scores for it and the run continues.
func (e *Evaluator) Run(ctx context.Context, testSet []Item) ([]Scores, error) {
	if len(testSet) == 0 {
		return nil, fmt.Errorf("empty test set")
	}

	allScores := make([]Scores, 0, len(testSet))
	for i, item := range testSet {
		if err := ctx.Err(); err != nil {
			return allScores, err
		}

		answer, err := e.svc.Ask(ctx, item.Question, e.askOpts, nil)
		if err != nil {
			return allScores, fmt.Errorf("ask failed on item %d: %w", i, err)
		}

		passages, err := e.retriever.Retrieve(ctx, item.Question, e.askOpts.K)
		if err != nil {
			return allScores, fmt.Errorf("retrieval failed on item %d: %w", i, err)
		}
		contextParts := make([]string, 0, len(passages))
		for _, p := range passages {
			contextParts = append(contextParts, p.Text)
		}

		scores := e.judge(ctx, item.Question, answer.Text, strings.Join(contextParts, " "), item.GroundTruth)
		allScores = append(allScores, scores)

		e.logger.Info("item scored",
			"question", truncate(item.Question, 70),
			"answer", truncate(answer.Text, 100),
			"faithfulness", scores.Faithfulness,
			"relevancy", scores.AnswerRelevancy,
			"recall", scores.ContextRecall,
			"completeness", scores.Completeness,
		)
	}

	return allScores, nil
}

// Aggregate averages the per-item scores. Items with completeness above 0.3
// count as answered; faithfulness and relevancy are averaged over answered
// items only, recall and completeness over everything.
func Aggregate(allScores []Scores) (Scores, int, int) {
	if len(allScores) == 0 {
		return Scores{}, 0, 0
	}

	var answered []Scores
	for _, s := range allScores {
		if s.Completeness > 0.3 {
			answered = append(answered, s)
		}
	}

	var agg Scores
	for _, s := range answered {
		agg.Faithfulness += s.Faithfulness
		agg.AnswerRelevancy += s.AnswerRelevancy
	}
	if len(answered) > 0 {
		agg.Faithfulness /= float64(len(answered))
		agg.AnswerRelevancy /= float64(len(answered))
	}

	for _, s := range allScores {
		agg.ContextRecall += s.ContextRecall
		agg.Completeness += s.Completeness
	}
	agg.ContextRecall /= float64(len(allScores))
	agg.Completeness /= float64(len(allScores))

	return agg, len(answered), len(allScores) - len(answered)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
