package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// StdinIsPiped reports whether stdin is a pipe or file rather than a terminal.
func StdinIsPiped() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice == 0
}

// ReadLine reads a single line from r with the trailing line break removed.
func ReadLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read line: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" && err == io.EOF {
		return "", fmt.Errorf("input is empty")
	}
	return line, nil
}
