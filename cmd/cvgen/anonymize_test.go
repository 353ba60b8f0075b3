package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestAnonymizeCommand_WritesToStdout(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := getBinaryPath(t)
	dataFile := writeTestCV(t, testCV)

	cmd := exec.Command(binaryPath, "anonymize", dataFile)
	output, err := cmd.Output()

	require.NoError(t, err)
	assert.NotContains(t, string(output), "Erika Mustermann")
	assert.NotContains(t, string(output), "erika@example.de")
	assert.Contains(t, string(output), "nationality: German")
	assert.Contains(t, string(output), "ACME GmbH")
}

func TestAnonymizeCommand_WritesToFile(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := getBinaryPath(t)
	dataFile := writeTestCV(t, testCV)
	outFile := filepath.Join(t.TempDir(), "nested", "cv_anon.yml")

	cmd := exec.Command(binaryPath, "anonymize", dataFile, "-o", outFile)
	output, err := cmd.CombinedOutput()

	require.NoError(t, err, "output: %s", output)
	assert.Contains(t, string(output), "Anonymized CV written to: "+outFile)

	content, err := os.ReadFile(outFile)
	require.NoError(t, err)

	// The output must still be a valid YAML CV, minus the identity fields.
	var parsed map[string]any
	require.NoError(t, yaml.Unmarshal(content, &parsed))
	assert.NotContains(t, parsed, "name")
	assert.Contains(t, parsed, "work_experience")
}

func TestAnonymizeCommand_MissingFile(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "anonymize", filepath.Join(t.TempDir(), "missing.yml"))
	output, err := cmd.CombinedOutput()

	assert.Equal(t, 1, commandExitCode(t, err))
	assert.Contains(t, string(output), "failed to read data file")
}
