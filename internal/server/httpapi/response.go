package httpapi

import (
	"encoding/json"
	"net/http"
)

// APIResponse is the JSON envelope used by every endpoint.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// JSON writes the envelope with the given status code.
func JSON(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func fail(w http.ResponseWriter, status int, message string) {
	JSON(w, status, APIResponse{Success: false, Message: message})
}

func ok(w http.ResponseWriter, status int, message string, data interface{}) {
	JSON(w, status, APIResponse{Success: true, Message: message, Data: data})
}
