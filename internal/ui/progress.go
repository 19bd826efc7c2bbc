package ui

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// Bar renders a fixed-width progress bar such as "[######----] 6/10".
// An unknown total renders the count alone.
func Bar(done, total, width int) string {
	if total <= 0 {
		return fmt.Sprintf("[%s] %d", strings.Repeat("?", width), done)
	}
	if done > total {
		done = total
	}
	filled := done * width / total
	return fmt.Sprintf("[%s%s] %d/%d",
		Success.Sprint(strings.Repeat("#", filled)),
		strings.Repeat("-", width-filled),
		done, total)
}

// Bytes formats a byte count for humans, e.g. "1.2 kB".
func Bytes(n int) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

// Plural returns word with an "s" appended unless n is one.
func Plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
