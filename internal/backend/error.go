package backend

import (
	"encoding/json"
	"fmt"
	"strings"
)

// APIError is a non-2xx response from the backend. Body is kept raw so
// callers can pull a human-readable message out of whatever shape the
// backend sent.
type APIError struct {
	Status int
	Body   []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned status %d: %s", e.Status, truncate(e.Body, 200))
}

// Message digs a user-presentable message out of the error body, trying
// the field names the backend is known to use. Empty when nothing
// usable is found.
func (e *APIError) Message() string {
	var payload map[string]any
	if err := json.Unmarshal(e.Body, &payload); err != nil {
		return ""
	}
	for _, key := range []string{"message", "error", "detail", "description"} {
		if v, ok := payload[key].(string); ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
