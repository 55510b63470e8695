package middleware

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	domain "github.com/bryanwahyu/codeguard/internal/domain/analyses"
)

// Input validation and sanitization utilities

const (
	maxRecentLimit = 100
	maxFilename    = 255
)

var analysisIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidateAnalysisID checks the id path parameter format
func ValidateAnalysisID(id string) error {
	if id == "" {
		return fmt.Errorf("analysis ID cannot be empty")
	}
	if !analysisIDPattern.MatchString(id) {
		return fmt.Errorf("invalid analysis ID format")
	}
	return nil
}

// ParseLimit parses the ?limit= query value: empty or <= 0 uses the default,
// values above 100 are capped.
func ParseLimit(raw string) (int, error) {
	if raw == "" {
		return domain.DefaultRecentLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("limit must be an integer")
	}
	if n <= 0 {
		return domain.DefaultRecentLimit, nil
	}
	if n > maxRecentLimit {
		return maxRecentLimit, nil
	}
	return n, nil
}

// SanitizeFilename keeps only the base name of an uploaded file
func SanitizeFilename(name string) string {
	name = SanitizeString(name)
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	if name == "." || name == "/" {
		return ""
	}
	if len(name) > maxFilename {
		name = name[len(name)-maxFilename:]
		// drop a cut rune at the front
		for len(name) > 0 && !utf8.RuneStart(name[0]) {
			name = name[1:]
		}
	}
	return name
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}
