package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCommand_RequiresJobSource(t *testing.T) {
	t.Setenv("TAILOR_API_KEY", "test-key")

	err := runPipelineCmd(runCommand, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--job")
}

func TestRunCommand_RequiresResume(t *testing.T) {
	t.Setenv("TAILOR_API_KEY", "test-key")

	runJob = "posting.txt"
	t.Cleanup(func() { runJob = "" })

	err := runPipelineCmd(runCommand, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--resume")
}

func TestRunCommand_MissingAPIKey(t *testing.T) {
	t.Setenv("TAILOR_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	err := runPipelineCmd(runCommand, nil)
	require.Error(t, err)
}

func TestCommandsAreRegistered(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["run"])
	assert.True(t, names["match"])
	assert.True(t, names["version"])
}
