package models

// SourceKind distinguishes where a cited source came from.
type SourceKind string

const (
	SourceKindDocument  SourceKind = "document"
	SourceKindFlashcard SourceKind = "flashcard"
)

// Source is one cited context entry in a query response, ordered by relevance.
type Source struct {
	Kind      SourceKind `json:"type"`
	Source    string     `json:"source"`
	Unit      int        `json:"page_or_slide,omitempty"`
	Section   string     `json:"section,omitempty"`
	Relevance float64    `json:"relevance"`
}

// QueryResponse is the answer contract for the query API.
// Degraded marks answers produced by the rule-based fallback path.
type QueryResponse struct {
	Answer   string   `json:"answer"`
	Sources  []Source `json:"sources"`
	Success  bool     `json:"success"`
	Degraded bool     `json:"degraded"`
}

// HistoryTurn is one prior question/answer pair carried for continuity.
type HistoryTurn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// IngestResult summarizes one batch ingestion run.
type IngestResult struct {
	Success     bool     `json:"success"`
	Processed   int      `json:"processed"`
	TotalChunks int      `json:"total_chunks"`
	FailedFiles []string `json:"failed_files,omitempty"`
	Err         string   `json:"error,omitempty"`
}
