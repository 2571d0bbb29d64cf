package middleware

import (
	"encoding/json"
	"net/http"
	"time"
)

// writeJSONError mirrors the handler envelope for failures raised before a
// request reaches its handler.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSONErrorCode(w, status, msg, "auth_error")
}

func writeJSONErrorCode(w http.ResponseWriter, status int, msg, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success":   false,
		"message":   msg,
		"error":     map[string]string{"code": code},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
