// Package cmd contains testing utilities shared between command tests.
// This file provides common functions for setting up test environments,
// capturing output, and running the CLI in-process.
package cmd

import (
	"bytes"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/PolarWolf314/tact/internal/configs"
	logger "github.com/PolarWolf314/tact/internal/logging"
	"github.com/spf13/cobra"
)

// setupTestEnvironment points tact at temporary config and data
// directories and changes into a temporary working directory.
func setupTestEnvironment(t *testing.T) string {
	t.Helper()

	workDir := t.TempDir()
	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	if err := os.Chdir(workDir); err != nil {
		t.Fatalf("Failed to change to temp directory: %v", err)
	}

	originalSettings := configs.UserTactSettings
	useDevice(t)
	t.Setenv("NO_COLOR", "1")

	t.Cleanup(func() {
		if err := os.Chdir(originalWd); err != nil {
			t.Fatalf("Failed to change to original directory: %v", err)
		}
		configs.UserTactSettings = originalSettings
		ResetGlobalState()
		ResetConfigState()
	})

	return workDir
}

// useDevice switches to fresh config and data directories, as if the
// following commands ran on another machine.
func useDevice(t *testing.T) {
	t.Helper()

	base := t.TempDir()
	configs.UserTactSettings = &configs.UserSettings{
		ConfigPath: filepath.Join(base, "config"),
		DataPath:   filepath.Join(base, "data"),
	}
}

// captureOutput captures both stdout and stderr during function execution.
func captureOutput(fn func() error) (string, error) {
	// Save original stdout and stderr
	originalStdout := os.Stdout
	originalStderr := os.Stderr

	// Create pipes to capture output
	stdoutReader, stdoutWriter, _ := os.Pipe()
	stderrReader, stderrWriter, _ := os.Pipe()

	// Replace stdout and stderr
	os.Stdout = stdoutWriter
	os.Stderr = stderrWriter

	// Channel to collect output
	outputChan := make(chan string, 2)

	// Start goroutines to read from pipes
	go func() {
		var buf bytes.Buffer
		_, err := io.Copy(&buf, stdoutReader)
		if err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		outputChan <- buf.String()
	}()

	go func() {
		var buf bytes.Buffer
		_, err := io.Copy(&buf, stderrReader)
		if err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		outputChan <- buf.String()
	}()

	// Execute the function
	err := fn()

	// Close writers to signal EOF
	stdoutWriter.Close()
	stderrWriter.Close()

	// Restore original stdout and stderr
	os.Stdout = originalStdout
	os.Stderr = originalStderr

	// Collect output
	stdout := <-outputChan
	stderr := <-outputChan

	return stdout + stderr, err
}

// createTestCLI creates a complete CLI instance running args.
func createTestCLI(args ...string) *cobra.Command {
	ResetGlobalState()
	ResetConfigState()
	Logger = logger.Logger{}
	ConfigLogger = logger.Logger{}

	rootCmd := &cobra.Command{
		Use:           "tact",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	for _, group := range []*cobra.Command{BackupCmd, RecordsCmd, ProfileCmd, ConfigCmd} {
		rootCmd.AddCommand(group)
	}
	rootCmd.SetArgs(args)
	return rootCmd
}

// runCLI runs args and returns everything printed.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return captureOutput(func() error {
		return createTestCLI(args...).Execute()
	})
}
