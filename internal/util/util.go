package util

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// WithBodyAndStatus writes body as a JSON response with the given status.
func WithBodyAndStatus(body interface{}, status int, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Error("failed to encode response body")
	}
}
