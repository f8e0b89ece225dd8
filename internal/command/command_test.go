package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/plasma-spotlight/internal/errors"
)

func TestExecRunnerReportsFailure(t *testing.T) {
	_, err := ExecRunner{}.Run(t.Context(), "plasma-spotlight-no-such-binary")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryCommandExecution))
}

func TestExecRunnerCapturesOutput(t *testing.T) {
	out, err := ExecRunner{}.Run(t.Context(), "sh", "-c", "echo hello")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(out))
}

func TestExecRunnerIncludesOutputOnFailure(t *testing.T) {
	_, err := ExecRunner{}.Run(t.Context(), "sh", "-c", "echo boom >&2; exit 3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
