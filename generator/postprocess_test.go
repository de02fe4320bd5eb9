package generator

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateLongText(t *testing.T) {
	for _, n := range []int{281, 300, 1000} {
		orig := strings.Repeat("a", n)
		out := Truncate(orig, MaxPostChars)
		assert.Equal(t, MaxPostChars, utf8.RuneCountInString(out))
		assert.True(t, strings.HasSuffix(out, Ellipsis))
		assert.Equal(t, orig[:277], out[:277])
	}
}

func TestTruncateCountsCharacters(t *testing.T) {
	orig := strings.Repeat("ж", 300)
	out := Truncate(orig, MaxPostChars)
	assert.Equal(t, MaxPostChars, utf8.RuneCountInString(out))
	assert.Equal(t, strings.Repeat("ж", 277)+Ellipsis, out)

	short := strings.Repeat("ж", 280)
	assert.Equal(t, short, Truncate(short, MaxPostChars))
}

func TestPostProcessKeepsTextVerbatim(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  The door was never locked.  \n", "The door was never locked."},
		{"**The door** was _never_ locked.", "**The door** was _never_ locked."},
		{"# Notice\n\nThe door\nwas never locked.", "# Notice\n\nThe door\nwas never locked."},
		{"a  b\tc", "a  b\tc"},
		{"Meet me <b>at dawn</b>", "Meet me <b>at dawn</b>"},
	}
	for _, c := range cases {
		out, err := PostProcess(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, out)
	}
}

func TestPostProcessLongOutputKeepsPrefix(t *testing.T) {
	inputs := []string{
		"**Beware** the " + strings.Repeat("x", 400),
		"a  b " + strings.Repeat("y", 400),
		"1. the first\n2. the second " + strings.Repeat("z", 400),
		"Meet me <b>at dawn</b> " + strings.Repeat("w", 400),
	}
	for _, in := range inputs {
		trimmed := strings.TrimSpace(in)
		out, err := PostProcess(in)
		require.NoError(t, err)
		assert.Equal(t, MaxPostChars, utf8.RuneCountInString(out))
		assert.Equal(t, trimmed[:277], out[:277])
		assert.True(t, strings.HasSuffix(out, Ellipsis))
	}
}

func TestPostProcessLongWords(t *testing.T) {
	words := strings.TrimSpace(strings.Repeat("echo ", 80))
	out, err := PostProcess(words)
	require.NoError(t, err)
	assert.Equal(t, MaxPostChars, utf8.RuneCountInString(out))
	assert.Equal(t, words[:277]+Ellipsis, out)
}

func TestPostProcessEmpty(t *testing.T) {
	for _, in := range []string{"", "   \n\t"} {
		_, err := PostProcess(in)
		assert.Error(t, err)
	}
}

func TestPrefix(t *testing.T) {
	assert.Equal(t, "abc", Prefix("abc", 80))
	assert.Equal(t, "ab", Prefix("abc", 2))
	assert.Equal(t, "жж", Prefix("жжж", 2))
}

func TestMarkupKinds(t *testing.T) {
	assert.Empty(t, MarkupKinds(""))
	assert.Empty(t, MarkupKinds("plain words  with\nspacing"))
	assert.Contains(t, MarkupKinds("**bold** move"), "Emphasis")
	assert.Contains(t, MarkupKinds("# Title\n\nbody"), "Heading")
	assert.Contains(t, MarkupKinds("1. one\n2. two"), "List")
}
