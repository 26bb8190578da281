package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "glimpse", cmd.Use)
	assert.Contains(t, cmd.Long, "GLIMPSE_")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"eval", "select", "resolve", "validate", "history", "test"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	require.NotNil(t, cmd.PersistentFlags().Lookup("trace"))
}

func TestCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	tests := []struct {
		command string
		flags   []string
	}{
		{"eval", []string{"db", "strict"}},
		{"validate", []string{"strict"}},
		{"history", []string{"db", "source", "pass", "limit"}},
		{"test", []string{"update", "filter", "golden-dir"}},
	}
	for _, tt := range tests {
		sub, _, err := cmd.Find([]string{tt.command})
		require.NoError(t, err)
		for _, name := range tt.flags {
			assert.NotNil(t, sub.Flags().Lookup(name), "%s --%s", tt.command, name)
		}
	}
}

func TestFormatValidation(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	_, stderr, code := run(t, "--format", "invalid", "resolve", "testdata/totals.yaml", "A")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "invalid format")
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "log.db")
	config := filepath.Join(dir, "glimpse.yaml")
	require.NoError(t, os.WriteFile(config, []byte("format: json\ndb: "+db+"\n"), 0644))

	stdout, _, code := run(t, "--config", config, "eval", "testdata/totals.yaml")
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, "ok", decode[PassReport](t, stdout).Status)

	// The configured db received the pass.
	stdout, _, code = run(t, "--config", config, "history")
	require.Equal(t, ExitSuccess, code)
	assert.Len(t, decode[[]PassReport](t, stdout).Data, 1)
}

func TestConfigFile_Missing(t *testing.T) {
	_, stderr, code := run(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "resolve", "testdata/totals.yaml", "A")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "failed to read config")
}

func TestEnvironmentAndFlagPrecedence(t *testing.T) {
	t.Setenv("GLIMPSE_FORMAT", "json")

	stdout, _, code := run(t, "resolve", "testdata/totals.yaml", "A")
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, []string{"A"}, decode[ResolveResult](t, stdout).Data.IDs)

	stdout, _, code = run(t, "--format", "text", "resolve", "testdata/totals.yaml", "A")
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, "A\n", stdout)
}

func TestExecute_JSONErrors(t *testing.T) {
	stdout, stderr, code := run(t, "--format", "json", "eval", "testdata/missing.yaml")
	assert.Equal(t, ExitCommandError, code)
	assert.Empty(t, stderr)

	resp := decode[any](t, stdout)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeLoad, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "failed to load manifest")
}

func TestExecute_ArgErrors(t *testing.T) {
	_, stderr, code := run(t, "eval")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stderr, "accepts 1 arg")
}
