package jwtsecurity

import (
	"encoding/json"
	"net/http"
	"time"
)

// ProblemDetail is the structured body produced for a failed request.
type ProblemDetail struct {
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Status    int       `json:"status"`
	Detail    string    `json:"detail,omitempty"`
	Instance  string    `json:"instance,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Code      string    `json:"code,omitempty"`
}

// ProblemWriter serialises a ProblemDetail onto the response. Status and any
// stage headers are already decided; the writer owns the body.
type ProblemWriter func(w http.ResponseWriter, r *http.Request, p ProblemDetail)

// JSONProblemWriter writes p as application/problem+json. It is the default
// ProblemWriter.
func JSONProblemWriter(w http.ResponseWriter, _ *http.Request, p ProblemDetail) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// PlainProblemWriter writes only the status line and its text. The chain
// falls back to it when the exception stage is disabled.
func PlainProblemWriter(w http.ResponseWriter, _ *http.Request, p ProblemDetail) {
	http.Error(w, http.StatusText(p.Status), p.Status)
}
