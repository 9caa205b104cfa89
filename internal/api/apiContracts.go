package api

// AskRequest asks one question. ChatId is optional; when present the
// previous turns of that chat are supplied to the model and the new
// exchange is appended to it.
type AskRequest struct {
	Question string `json:"question"`
	ChatId   string `json:"chat_id,omitempty"`
	K        int    `json:"k,omitempty"`
	Strategy string `json:"strategy,omitempty"`
	Rewrite  bool   `json:"rewrite,omitempty"`
}

type AskResponse struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Sources  []string `json:"sources"`
	ChatId   string   `json:"chat_id,omitempty"`
}

// SourceInput names one document to ingest. Type is "pdf", "txt" or "url".
type SourceInput struct {
	Type        string `json:"type"`
	Location    string `json:"location"`
	DisplayName string `json:"display_name,omitempty"`
}

type IngestRequest struct {
	Sources      []SourceInput `json:"sources"`
	ChunkSize    int           `json:"chunk_size,omitempty"`
	ChunkOverlap int           `json:"chunk_overlap,omitempty"`
}

// IngestResponse reports how many passages were actually added. Chunks
// whose source was already indexed are skipped silently.
type IngestResponse struct {
	Added int `json:"added"`
}

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
