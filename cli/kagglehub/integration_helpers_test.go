//go:build integration

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/kagglehub/internal/cli"
)

// isolateEnv clears every variable that selects a backend or overrides settings.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"KAGGLEHUB_CACHE", "KAGGLE_API_ENDPOINT", "KAGGLEHUB_LOG_LEVEL",
		"KAGGLE_KERNEL_RUN_TYPE", "KAGGLE_DATA_PROXY_URL", "KAGGLE_DATA_PROXY_TOKEN",
		"COLAB_RELEASE_TAG", "TBE_RUNTIME_ADDR", "KAGGLE_USERNAME", "KAGGLE_KEY",
	} {
		t.Setenv(name, "")
	}
}

// writeTempConfig writes a config file pointing at endpoint and cacheDir.
func writeTempConfig(t *testing.T, dir, endpoint, cacheDir string) string {
	t.Helper()
	cfgPath := filepath.Join(dir, "config.yaml")
	yamlContent := `settings:
  cache_dir: ` + cacheDir + `
  endpoint: ` + endpoint + `
  connect_timeout: 5s
  read_timeout: 5s
  log_level: error
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(yamlContent), 0o600))
	return cfgPath
}

// runCLI executes the root command in-process and returns its standard output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--no-progress"}, args...))

	err := cmd.ExecuteContext(context.Background())
	return strings.TrimSpace(stdout.String()), err
}
