package compare

import (
	"time"

	"github.com/JaimeStill/screener/internal/rules"
)

// Status reports whether a classifier produced a result.
type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// Priority ranks a document for human review.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// Priorities returns every priority from lowest to highest.
func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh}
}

// Outcome is one classifier's contribution to a DualResult. An error outcome
// carries no Result; it is never treated as an UNCERTAIN decision.
type Outcome struct {
	Classifier string        `json:"classifier"`
	Status     Status        `json:"status"`
	Result     *rules.Result `json:"result,omitempty"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration_ns"`
}

// OK reports whether the classifier produced a result.
func (o Outcome) OK() bool {
	return o.Status == StatusOK && o.Result != nil
}

// Decision returns the decision, or "ERROR" for an error outcome.
func (o Outcome) Decision() string {
	if !o.OK() {
		return "ERROR"
	}
	return string(o.Result.Decision)
}

// DualResult is the comparison record for one document.
type DualResult struct {
	DocumentID  string    `json:"document_id"`
	Title       string    `json:"title"`
	Primary     Outcome   `json:"primary"`
	Secondary   Outcome   `json:"secondary"`
	Agreement   bool      `json:"agreement"`
	Priority    Priority  `json:"priority"`
	ProcessedAt time.Time `json:"processed_at"`
	Worker      int       `json:"worker"`
}

// Errored reports whether either side failed.
func (d DualResult) Errored() bool {
	return !d.Primary.OK() || !d.Secondary.OK()
}
