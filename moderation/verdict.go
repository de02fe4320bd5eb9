// Package moderation screens candidate posts before they leave the process.
//
// A Gate runs a denylist check first and, when enabled, an external
// classifier second. Any classifier failure blocks the text.
package moderation

import "encoding/json"

// Block reasons reported by the gate.
const (
	ReasonDenylist   = "denylist match"
	ReasonFlagged    = "flagged by external classifier"
	reasonFailedPref = "moderation check failed: "

	reasonDefault = "blocked"
)

// Verdict is the result of evaluating one text. Reason is non-empty iff the
// text was blocked; the zero Verdict is a block.
type Verdict struct {
	allowed bool
	reason  string
}

// Allow returns a passing verdict.
func Allow() Verdict { return Verdict{allowed: true} }

// Block returns a blocking verdict. An empty reason is replaced so the
// verdict never blocks silently.
func Block(reason string) Verdict {
	if reason == "" {
		reason = reasonDefault
	}
	return Verdict{reason: reason}
}

func (v Verdict) Allowed() bool { return v.allowed }

// Reason is empty for an allowed text.
func (v Verdict) Reason() string {
	if v.allowed {
		return ""
	}
	if v.reason == "" {
		return reasonDefault
	}
	return v.reason
}

func (v Verdict) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Allowed bool   `json:"allowed"`
		Reason  string `json:"reason,omitempty"`
	}{v.Allowed(), v.Reason()})
}
