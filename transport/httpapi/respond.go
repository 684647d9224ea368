package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
)

var (
	errBadJSON      = errors.New("invalid request body")
	errBodyTooLarge = errors.New("request body too large")
)

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

// decode reads a JSON body. An empty body decodes to the zero value so that
// field checks in the engine produce the usual messages.
func decode(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errBodyTooLarge
		}
		return errBadJSON
	}
	return nil
}
