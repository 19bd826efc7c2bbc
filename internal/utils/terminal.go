package utils

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"golang.org/x/term"
)

// ErrPasswordMismatch is returned when a confirmation does not match.
var ErrPasswordMismatch = errors.New("passwords do not match")

func ttyPath() string {
	if runtime.GOOS == "windows" {
		return "CON"
	}
	return "/dev/tty"
}

// ReadPassphrase prompts the user for a passphrase without echoing input.
// Returns an error if stdin is not a terminal.
func ReadPassphrase(prompt string) ([]byte, error) {
	fd := int(os.Stdin.Fd())

	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("cannot read password: stdin is not a terminal (hint: use --password-stdin)")
	}

	return readHidden(fd, prompt)
}

// ReadPassphraseFromTTY prompts for a passphrase on /dev/tty (or CON on
// Windows). Use it when stdin carries other input, such as piped frames.
func ReadPassphraseFromTTY(prompt string) ([]byte, error) {
	tty, err := os.Open(ttyPath())
	if err != nil {
		return nil, fmt.Errorf("cannot open %s for password input: %w", ttyPath(), err)
	}
	defer tty.Close()

	fd := int(tty.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("%s is not a terminal", ttyPath())
	}

	return readHidden(fd, prompt)
}

// ReadNewPassphrase prompts twice and returns the passphrase only when
// both entries match. read is ReadPassphrase or ReadPassphraseFromTTY.
func ReadNewPassphrase(read func(string) ([]byte, error), prompt, confirmPrompt string) ([]byte, error) {
	first, err := read(prompt)
	if err != nil {
		return nil, err
	}
	second, err := read(confirmPrompt)
	if err != nil {
		return nil, err
	}
	if string(first) != string(second) {
		return nil, ErrPasswordMismatch
	}
	return first, nil
}

func readHidden(fd int, prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	passphrase, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr) // Add newline after hidden input

	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}

	return passphrase, nil
}

// IsTerminal returns true if stdin is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// IsTTYAvailable returns true if /dev/tty (or CON on Windows) is available for reading.
func IsTTYAvailable() bool {
	tty, err := os.Open(ttyPath())
	if err != nil {
		return false
	}
	defer tty.Close()

	return term.IsTerminal(int(tty.Fd()))
}

// WriteToTTY writes content directly to the terminal, bypassing
// stdout and stderr.
func WriteToTTY(content string) error {
	tty, err := os.OpenFile(ttyPath(), os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("cannot open %s for writing: %w", ttyPath(), err)
	}
	defer tty.Close()

	if _, err := tty.WriteString(content); err != nil {
		return fmt.Errorf("failed to write to TTY: %w", err)
	}

	return nil
}

// ClearScreen clears the terminal screen using ANSI escape sequences.
func ClearScreen() error {
	return WriteToTTY("\033[2J\033[H")
}

// WaitForEnterFromTTY waits for the user to press Enter on the TTY.
func WaitForEnterFromTTY() error {
	tty, err := os.Open(ttyPath())
	if err != nil {
		return fmt.Errorf("cannot open %s for reading: %w", ttyPath(), err)
	}
	defer tty.Close()

	buf := make([]byte, 1)
	for {
		if _, err := tty.Read(buf); err != nil {
			return fmt.Errorf("failed to read from TTY: %w", err)
		}
		if buf[0] == '\n' || buf[0] == '\r' {
			return nil
		}
	}
}
