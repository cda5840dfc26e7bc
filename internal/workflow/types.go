package workflow

import (
	"github.com/JaimeStill/screener/internal/criteria"
	"github.com/JaimeStill/screener/internal/rules"
)

const (
	KeyDocument  = "document"
	KeyScreening = "screening"
)

// Screening is the running state carried between graph nodes.
type Screening struct {
	// Initial is the first-pass result after the correction pass.
	Initial rules.Result `json:"initial"`
	// Current is the result as of the latest completed node.
	Current rules.Result `json:"current"`
	// Raw is the first-pass oracle reply, echoed to the follow-up prompt.
	Raw string `json:"-"`
	// Targets lists the criteria sent to the follow-up pass.
	Targets []criteria.Criterion `json:"targets,omitempty"`
	// FollowUpErr records why the follow-up pass left the result unchanged.
	FollowUpErr string `json:"follow_up_error,omitempty"`
}

// FollowedUp reports whether a follow-up pass was attempted.
func (s Screening) FollowedUp() bool {
	return len(s.Targets) > 0
}
