package backend

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

// errorMessage pulls a human readable message out of an error body. The backend
// uses either {"error": "..."}, {"error": {"message": "..."}} or {"message": "..."}.
func errorMessage(status int, body []byte) string {
	var payload struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if len(payload.Error) > 0 {
			var s string
			if json.Unmarshal(payload.Error, &s) == nil && s != "" {
				return s
			}
			var nested struct {
				Message string `json:"message"`
			}
			if json.Unmarshal(payload.Error, &nested) == nil && nested.Message != "" {
				return nested.Message
			}
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	if text := strings.TrimSpace(http.StatusText(status)); text != "" {
		return text
	}
	return "unexpected response"
}
