package publisher

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDryRunLogsOnly(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)
	p := NewDryRun("reddit", "r/test", &log)

	require.NoError(t, p.Publish(context.Background(), "hello there"))
	assert.Equal(t, "reddit", p.Platform())
	out := buf.String()
	assert.Contains(t, out, "[DRY_RUN] would post")
	assert.Contains(t, out, `"target":"r/test"`)
	assert.Contains(t, out, `"text":"hello there"`)
}

func TestClip(t *testing.T) {
	assert.Equal(t, "abc", clip("abc", 5))
	assert.Equal(t, "ab", clip("abc", 2))
	assert.Equal(t, "жж", clip("жжж", 2))
}

func TestNewHTTPClientTimeout(t *testing.T) {
	assert.Equal(t, DefaultTimeout, NewHTTPClient(0).Timeout)
	assert.Equal(t, 5*time.Second, NewHTTPClient(5*time.Second).Timeout)
}
