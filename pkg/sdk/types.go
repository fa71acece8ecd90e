package docrag

// AskRequest is one question. Book optionally pins the answer to a single
// book by its catalog identifier.
type AskRequest struct {
	Question string `json:"question"`
	Book     string `json:"book,omitempty"`
}

// Source is one provenance line behind an answer.
type Source struct {
	Source string  `json:"source"`
	Score  float64 `json:"score"`
}

// AskResponse is the answer with its provenance.
type AskResponse struct {
	Answer    string   `json:"answer"`
	Intent    string   `json:"intent,omitempty"`
	Books     []string `json:"books,omitempty"`
	Sources   []Source `json:"sources,omitempty"`
	Degraded  bool     `json:"degraded,omitempty"`
	Cached    bool     `json:"cached,omitempty"`
	SessionID string   `json:"session_id"`
}

// Book is one catalog entry.
type Book struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Publisher string `json:"publisher,omitempty"`
}

// FeedbackStats aggregates recorded thumbs-up/down feedback.
type FeedbackStats struct {
	Positive     int64   `json:"positive"`
	Negative     int64   `json:"negative"`
	Total        int64   `json:"total"`
	Satisfaction float64 `json:"satisfaction"`
}

// Stats is the service-level counters snapshot.
type Stats struct {
	Books          int           `json:"books"`
	Chunks         int           `json:"chunks"`
	ActiveSessions int           `json:"active_sessions"`
	Feedback       FeedbackStats `json:"feedback"`
}

// Health is the service health report. Status is "ok" or "degraded";
// each check value is "ok" or "error".
type Health struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
