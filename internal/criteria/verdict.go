package criteria

import "strings"

// Verdict is the tri-state outcome for one criterion.
type Verdict string

const (
	Affirm     Verdict = "AFFIRM"
	Deny       Verdict = "DENY"
	Unresolved Verdict = "UNRESOLVED"
)

// ParseVerdict accepts both the classifier vocabulary (YES, NO, UNCLEAR)
// and the internal one (AFFIRM, DENY, UNRESOLVED), case-insensitively.
func ParseVerdict(s string) (Verdict, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "YES", "AFFIRM", "TRUE":
		return Affirm, true
	case "NO", "DENY", "FALSE":
		return Deny, true
	case "UNCLEAR", "UNRESOLVED", "UNKNOWN", "UNCERTAIN":
		return Unresolved, true
	default:
		return "", false
	}
}

// Label returns the classifier-facing word for v.
func (v Verdict) Label() string {
	switch v {
	case Affirm:
		return "YES"
	case Deny:
		return "NO"
	default:
		return "UNCLEAR"
	}
}
