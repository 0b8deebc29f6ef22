package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// MaxBodyBytes caps JSON request bodies
const MaxBodyBytes = 200 << 10

var errBodyTooLarge = errors.New("request body too large")

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeFailure reports an operation failure with the underlying cause
func writeFailure(w http.ResponseWriter, status int, code string, err error) {
	writeJSON(w, status, map[string]string{"error": code, "detail": err.Error()})
}

// readBody reads a size-limited request body
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errBodyTooLarge
		}
		return nil, err
	}
	return body, nil
}

// decodeBody decodes a size-limited JSON body into v, writing the error response on failure
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	body, err := readBody(w, r)
	if err == errBodyTooLarge {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return false
	}
	if err != nil || json.Unmarshal(body, v) != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
