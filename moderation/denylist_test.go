package moderation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitTerms(t *testing.T) {
	assert.Equal(t, []string{"a", "b c", "d"}, SplitTerms(" a, b c ,,d,"))
	assert.Nil(t, SplitTerms(""))
	assert.Nil(t, SplitTerms(" , "))
}

func TestDenylistMatch(t *testing.T) {
	d := NewDenylist([]string{"Secret", " xyz ", "", "secret"})
	assert.Equal(t, 2, d.Len())

	cases := []struct {
		text string
		term string
		hit  bool
	}{
		{"this is xyz content", "xyz", true},
		{"THIS IS XYZ", "xyz", true},
		{"a SeCrEt plan", "Secret", true},
		{"topsecretive", "Secret", true},
		{"ΣΊΓΜΑ xyz", "xyz", true},
		{"nothing to see", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		term, ok := d.Match(c.text)
		assert.Equal(t, c.hit, ok, c.text)
		assert.Equal(t, c.term, term, c.text)
	}
}

func TestEmptyDenylist(t *testing.T) {
	var nilList *Denylist
	_, ok := nilList.Match("anything")
	assert.False(t, ok)

	_, ok = NewDenylist(nil).Match("anything")
	assert.False(t, ok)
}
