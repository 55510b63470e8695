package sqlstore

import (
	"encoding/json"
	"strings"
)

// dashIfEmpty returns "-" when the input is empty/whitespace
func dashIfEmpty(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// jsonOrWrap keeps valid JSON as is and wraps anything else as {"raw": ...}.
func jsonOrWrap(s string) string {
	if strings.TrimSpace(s) == "" {
		return "{}"
	}
	var js any
	if json.Unmarshal([]byte(s), &js) != nil {
		b, _ := json.Marshal(map[string]string{"raw": s})
		return string(b)
	}
	return s
}
