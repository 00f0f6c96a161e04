package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"placegallery/backend/filestore"
	"placegallery/backend/models"
)

const maxJSONBody = 1 << 20

var (
	store *models.Store
	files filestore.Store
	log   logrus.FieldLogger = logrus.StandardLogger()
)

func SetStore(s *models.Store) { store = s }

func SetFileStore(fs filestore.Store) { files = fs }

func SetLogger(l logrus.FieldLogger) { log = l }

func sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("encode response")
	}
}

func sendErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	sendJSON(w, statusCode, models.Response{
		Success: false,
		Message: message,
	})
}

// sendStoreError maps store errors onto HTTP statuses; anything unexpected is
// logged and reported as a 500 without leaking details.
func sendStoreError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		sendErrorResponse(w, notFound, http.StatusNotFound)
	case errors.Is(err, models.ErrForbidden):
		sendErrorResponse(w, "Not allowed", http.StatusForbidden)
	default:
		log.WithError(err).WithField("path", r.URL.Path).Error("store failure")
		sendErrorResponse(w, "DB error", http.StatusInternalServerError)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		sendErrorResponse(w, "Invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}
