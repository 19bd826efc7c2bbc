package artifacts

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// maxLineSize bounds a single frame line when reading text transfers.
const maxLineSize = 1 << 20

// WriteText writes one frame text per line.
func WriteText(w io.Writer, texts []string) error {
	bw := bufio.NewWriter(w)
	for _, t := range texts {
		if strings.ContainsAny(t, "\r\n") {
			return fmt.Errorf("frame text contains a line break")
		}
		if _, err := bw.WriteString(t + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadText returns the non-blank lines of r with surrounding whitespace
// removed.
func ReadText(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var lines []string
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading frames: %w", err)
	}
	return lines, nil
}
