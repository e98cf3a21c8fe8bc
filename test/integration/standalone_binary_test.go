package integration

import (
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudobility/ratelimit-client/internal/server"
)

func buildBinary(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("standalone binary copy/exec test is unix-focused")
	}
	if testing.Short() {
		t.Skip("builds the binary")
	}

	goModPathBytes, err := exec.Command("go", "env", "GOMOD").Output()
	require.NoError(t, err, "go env GOMOD")
	goModPath := strings.TrimSpace(string(goModPathBytes))
	require.NotEmpty(t, goModPath, "go env GOMOD returned empty")
	repoRoot := filepath.Dir(goModPath)

	binaryPath := filepath.Join(t.TempDir(), "ratelimit")
	build := exec.Command("go", "build", "-o", binaryPath, "./cmd/ratelimit")
	build.Dir = repoRoot
	build.Env = os.Environ()
	out, err := build.CombinedOutput()
	require.NoError(t, err, "go build:\n%s", string(out))
	return binaryPath
}

// isolatedCommand runs the binary outside the repo with no user config.
func isolatedCommand(t *testing.T, binary string, args ...string) *exec.Cmd {
	t.Helper()
	home := t.TempDir()
	c := exec.Command(binary, args...)
	c.Dir = t.TempDir()
	c.Env = []string{
		"HOME=" + home,
		"XDG_CONFIG_HOME=" + filepath.Join(home, ".config"),
		"PATH=" + os.Getenv("PATH"),
	}
	return c
}

func TestStandaloneBinaryVersionAndHelpWorkOutsideRepo(t *testing.T) {
	binary := buildBinary(t)

	out, err := isolatedCommand(t, binary, "version").CombinedOutput()
	require.NoError(t, err, "version failed:\n%s", string(out))
	assert.True(t, strings.HasPrefix(string(out), "ratelimit "))

	out, err = isolatedCommand(t, binary, "--help").CombinedOutput()
	require.NoError(t, err, "--help failed:\n%s", string(out))
	assert.Contains(t, string(out), "limits")
	assert.Contains(t, string(out), "history")
}

func TestStandaloneBinaryAgainstFixtureServer(t *testing.T) {
	binary := buildBinary(t)

	ts := httptest.NewServer(server.New("127.0.0.1", 0).Handler())
	defer ts.Close()

	t.Run("Limits", func(t *testing.T) {
		c := isolatedCommand(t, binary, "--base-url", ts.URL, "limits", "--token", "secret", "--output-format", "json")
		out, err := c.Output()
		require.NoError(t, err)
		assert.Contains(t, string(out), `"limits"`)
		assert.Contains(t, string(out), `"hour"`)
	})

	t.Run("HistoryWithIdentifierInQuery", func(t *testing.T) {
		c := isolatedCommand(t, binary, "--base-url", ts.URL, "--addressing", "query",
			"history", "month", "--identifier", "acme", "--token", "secret", "--output-format", "yaml")
		out, err := c.Output()
		require.NoError(t, err)
		assert.Contains(t, string(out), "periodType: month")
	})

	t.Run("TokenFromEnvironment", func(t *testing.T) {
		c := isolatedCommand(t, binary, "limits", "--output-format", "json")
		c.Env = append(c.Env, "RATELIMIT_CLIENT_BASE_URL="+ts.URL, "RATELIMIT_CLIENT_TOKEN=secret")
		out, err := c.Output()
		require.NoError(t, err)
		assert.Contains(t, string(out), `"limits"`)
	})

	t.Run("MissingTokenFails", func(t *testing.T) {
		c := isolatedCommand(t, binary, "--base-url", ts.URL, "limits")
		out, err := c.CombinedOutput()
		require.Error(t, err)
		assert.Contains(t, string(out), "Unauthorized")
	})

	t.Run("MissingBaseURLIsConfigError", func(t *testing.T) {
		out, err := isolatedCommand(t, binary, "limits").CombinedOutput()
		require.Error(t, err)
		assert.Contains(t, string(out), "configuration")
	})
}
