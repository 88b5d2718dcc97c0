package handler

import (
	"encoding/json"
	"net/http"
)

// The API speaks one envelope: {"ok":true, ...} on success and
// {"ok":false,"message":...} on failure, always with an appropriate
// status code.

// okResponse is the success envelope.
type okResponse struct {
	OK   bool `json:"ok"`
	User any  `json:"user,omitempty"`
}

// failResponse is the failure envelope.
type failResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// writeJSON writes a JSON body with the given status.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeOK writes a 200 success envelope.
func writeOK(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// writeOKUser writes a 200 success envelope carrying the user profile.
func writeOKUser(w http.ResponseWriter, user any) {
	writeJSON(w, http.StatusOK, okResponse{OK: true, User: user})
}

// writeFail writes a failure envelope with the given status and message.
func writeFail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, failResponse{OK: false, Message: message})
}
