package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudobility/ratelimit-client/internal/output"
)

func newOutputCommand(t *testing.T) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addOutputFlags(cmd)
	return cmd
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "ratelimit.history.day", sanitizeFilename("ratelimit.history.day"))
	assert.Equal(t, "acme-corp-limits", sanitizeFilename("  Acme Corp/Limits "))
	assert.Equal(t, "output", sanitizeFilename("..//.."))
}

func TestResolveOutputFormat(t *testing.T) {
	cmd := newOutputCommand(t)
	format, err := resolveOutputFormat(cmd)
	require.NoError(t, err)
	assert.Equal(t, output.FormatTable, format)

	require.NoError(t, cmd.Flags().Set("output-format", "yml"))
	format, err = resolveOutputFormat(cmd)
	require.NoError(t, err)
	assert.Equal(t, output.FormatYAML, format)

	require.NoError(t, cmd.Flags().Set("output-format", "csv"))
	_, err = resolveOutputFormat(cmd)
	require.Error(t, err)
}

func TestResolveSinkPath(t *testing.T) {
	t.Run("Stdout", func(t *testing.T) {
		path, err := resolveSinkPath(newOutputCommand(t), output.FormatJSON, "ratelimit.limits")
		require.NoError(t, err)
		assert.Empty(t, path)
	})

	t.Run("OutDir", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "reports")
		cmd := newOutputCommand(t)
		require.NoError(t, cmd.Flags().Set("out-dir", dir))

		path, err := resolveSinkPath(cmd, output.FormatJSON, "ratelimit.limits")
		require.NoError(t, err)
		assert.Equal(t, "ratelimit.limits.json", filepath.Base(path))
		assert.DirExists(t, dir)
	})

	t.Run("MutuallyExclusive", func(t *testing.T) {
		cmd := newOutputCommand(t)
		require.NoError(t, cmd.Flags().Set("out", "a.json"))
		require.NoError(t, cmd.Flags().Set("out-dir", "b"))

		_, err := resolveSinkPath(cmd, output.FormatJSON, "x")
		require.Error(t, err)
	})
}

func TestOpenSink(t *testing.T) {
	var stdout bytes.Buffer
	sink, err := openSink("", &stdout)
	require.NoError(t, err)
	assert.Equal(t, "-", sink.path)
	require.NoError(t, sink.close())

	path := filepath.Join(t.TempDir(), "nested", "out.yaml")
	sink, err = openSink(path, &stdout)
	require.NoError(t, err)
	_, err = sink.writer.Write([]byte("ok\n"))
	require.NoError(t, err)
	require.NoError(t, sink.close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ok\n", string(data))
}
