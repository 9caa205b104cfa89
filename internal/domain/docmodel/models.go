package docmodel

import (
	"context"
	"time"
)

type SourceType string

const (
	SourcePDF SourceType = "pdf"
	SourceTXT SourceType = "txt"
	SourceURL SourceType = "url"
)

// Source is what a user submits for ingestion: a file path or a URL plus the
// name it should be cited under.
type Source struct {
	Type        SourceType `json:"type"`
	Location    string     `json:"location"`
	DisplayName string     `json:"display_name,omitempty"`
}

// Document is one logical unit of extracted text: a PDF page, a whole text
// file, or a fetched web page. FileName is set for file-backed sources,
// SourceURL for web sources; Origin picks between them.
type Document struct {
	SourceType SourceType `json:"source_type"`
	FileName   string     `json:"file_name,omitempty"`
	SourceURL  string     `json:"source,omitempty"`
	Page       int        `json:"page,omitempty"`
	Text       string     `json:"-"`
	IngestedAt time.Time  `json:"ingested_at"`
}

// Origin returns the provenance identifier. The file-name key takes priority
// over the url key; dedup and citation both depend on this ordering.
func (d Document) Origin() string {
	if d.FileName != "" {
		return d.FileName
	}
	return d.SourceURL
}

// Passage is the retrieval unit: a bounded span of a Document's text. It
// carries the parent Document's metadata unchanged.
type Passage struct {
	ID         string     `json:"chunk_id"`
	Text       string     `json:"content"`
	SourceType SourceType `json:"source_type"`
	FileName   string     `json:"file_name,omitempty"`
	SourceURL  string     `json:"source,omitempty"`
	Page       int        `json:"page,omitempty"`
	Order      int        `json:"chunk_order"`
	IngestedAt time.Time  `json:"ingested_at"`
}

func (p Passage) Origin() string {
	if p.FileName != "" {
		return p.FileName
	}
	return p.SourceURL
}

// RetrievedPassage is a Passage with the similarity score it was ranked by.
type RetrievedPassage struct {
	Passage
	Score float32 `json:"score"`
}

// Answer is generated text plus the distinct origins of the passages that
// were actually supplied to the model, in retrieval rank order.
type Answer struct {
	Question string   `json:"question"`
	Text     string   `json:"answer"`
	Sources  []string `json:"sources"`
}

// Exchange is one question/answer turn kept in a chat's history.
type Exchange struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Sources  []string `json:"sources,omitempty"`
}

type MessageStore interface {
	ValidateChatId(ctx context.Context, id string) bool
	InitNewChat(ctx context.Context, id string) error
	TrySaveChat(ctx context.Context, id string, exchange Exchange) error
	GetMessageHistory(ctx context.Context, chatId string) ([]string, error)
}
