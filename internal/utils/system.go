package utils

import (
	"os"
	"regexp"
	"strings"
)

var (
	unsafeNameChars = regexp.MustCompile(`[^a-z0-9\-_]`)
	repeatedHyphens = regexp.MustCompile(`-+`)
)

// GetHostname returns the system hostname.
func GetHostname() (string, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return "", err
	}
	return hostname, nil
}

// SanitizeName turns an arbitrary label into a lowercase token safe for
// file names: spaces become hyphens and anything else unusual is dropped.
func SanitizeName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "-")
	name = unsafeNameChars.ReplaceAllString(name, "")
	name = repeatedHyphens.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-")

	if name == "" {
		name = "device"
	}

	return name
}

// DeviceName returns the sanitized hostname, or "device" when the
// hostname is unavailable.
func DeviceName() string {
	hostname, err := GetHostname()
	if err != nil {
		return "device"
	}
	return SanitizeName(hostname)
}
