package adapter

import (
	"fmt"

	"docassist/internal/api"
	"docassist/internal/domain/docmodel"
	"docassist/internal/rag"
)

// ToSources validates and converts the request payload into domain
// sources. The first invalid entry fails the whole request; partial
// ingests are harder to reason about than a clean 400.
func ToSources(inputs []api.SourceInput) ([]docmodel.Source, error) {
	sources := make([]docmodel.Source, 0, len(inputs))
	for i, in := range inputs {
		if in.Location == "" {
			return nil, fmt.Errorf("source %d: location is required", i)
		}
		var sourceType docmodel.SourceType
		switch in.Type {
		case "pdf":
			sourceType = docmodel.SourcePDF
		case "txt":
			sourceType = docmodel.SourceTXT
		case "url":
			sourceType = docmodel.SourceURL
		default:
			return nil, fmt.Errorf("source %d: unknown type %q", i, in.Type)
		}
		sources = append(sources, docmodel.Source{
			Type:        sourceType,
			Location:    in.Location,
			DisplayName: in.DisplayName,
		})
	}
	return sources, nil
}

// ToAskOptions maps request knobs onto pipeline options. An unknown
// strategy falls back to the default rather than failing the request.
func ToAskOptions(req api.AskRequest) rag.AskOptions {
	opts := rag.AskOptions{
		K:       req.K,
		Rewrite: req.Rewrite,
	}
	switch rag.PromptStrategy(req.Strategy) {
	case rag.StrategyStrictCite, rag.StrategyStepByStep, rag.StrategyHybrid:
		opts.Strategy = rag.PromptStrategy(req.Strategy)
	}
	return opts
}

func ToAskResponse(answer docmodel.Answer, chatId string) api.AskResponse {
	sources := answer.Sources
	if sources == nil {
		sources = []string{}
	}
	return api.AskResponse{
		Question: answer.Question,
		Answer:   answer.Text,
		Sources:  sources,
		ChatId:   chatId,
	}
}

func ToExchange(answer docmodel.Answer) docmodel.Exchange {
	return docmodel.Exchange{
		Question: answer.Question,
		Answer:   answer.Text,
		Sources:  answer.Sources,
	}
}

func BadRequest(message string, code int) api.ErrorResponse {
	return api.ErrorResponse{
		Code:    code,
		Message: message,
	}
}
