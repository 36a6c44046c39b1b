package main

import (
	"encoding/json"
	"net/http"
)

// This file contains helper functions for sending standardized JSON responses.

// respondWithError logs an error (if one is provided) and sends the
// standard failure shape {error, details?} with the given status code.
// Details carry the diagnostic (for example which adapters a fallback chain
// tried), which the frontend needs to distinguish "providers unreachable"
// from "nothing in this area".
func (cfg *apiConfig) respondWithError(w http.ResponseWriter, code int, msg string, err error) {
	response := ErrorResponse{Error: msg}
	if err != nil {
		cfg.logger.Error(msg, "error", err)
		response.Details = err.Error()
	}
	cfg.respondWithJSON(w, code, response)
}

// respondWithJSON marshals a payload to JSON, sets the appropriate content-type header,
// writes the HTTP status code, and sends the JSON response to the client.
func (cfg *apiConfig) respondWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	data, err := json.Marshal(payload)
	if err != nil {
		cfg.logger.Error("error marshalling JSON", "error", err)
		w.WriteHeader(500)
		return
	}
	w.WriteHeader(code)
	_, err = w.Write(data)
	if err != nil {
		cfg.logger.Error("error writing response", "error", err)
	}
}
