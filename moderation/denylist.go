package moderation

import (
	"strings"

	"golang.org/x/text/cases"
)

// Denylist is an immutable set of literal terms matched case-insensitively
// anywhere in a text.
type Denylist struct {
	terms  []string
	folded []string
}

// NewDenylist trims terms and drops empty or duplicate entries.
func NewDenylist(terms []string) *Denylist {
	d := &Denylist{}
	seen := make(map[string]struct{}, len(terms))
	fold := cases.Fold()
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		f := fold.String(t)
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		d.terms = append(d.terms, t)
		d.folded = append(d.folded, f)
	}
	return d
}

// SplitTerms parses a comma separated term list such as BLOCKLIST_WORDS.
func SplitTerms(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Len reports the number of distinct terms.
func (d *Denylist) Len() int {
	if d == nil {
		return 0
	}
	return len(d.terms)
}

// Match returns the first configured term found in text.
func (d *Denylist) Match(text string) (string, bool) {
	if d.Len() == 0 {
		return "", false
	}
	folded := cases.Fold().String(text)
	for i, f := range d.folded {
		if strings.Contains(folded, f) {
			return d.terms[i], true
		}
	}
	return "", false
}
