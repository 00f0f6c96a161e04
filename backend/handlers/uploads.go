package handlers

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"placegallery/backend/models"
)

const maxUploadSize = 5 << 20

// POST /uploads (multipart field "image") stores a picture and returns its URL,
// which the client then uses as a card link or avatar.
func UploadHandler(w http.ResponseWriter, r *http.Request) {
	if files == nil {
		sendErrorResponse(w, "Uploads disabled", http.StatusServiceUnavailable)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1<<20)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		sendErrorResponse(w, "Error parsing form data", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		sendErrorResponse(w, "Image file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if header.Size > maxUploadSize {
		sendErrorResponse(w, "File too large: max size is 5MB", http.StatusBadRequest)
		return
	}

	buff := make([]byte, 512)
	n, err := file.Read(buff)
	if err != nil && err != io.EOF {
		sendErrorResponse(w, "Could not read file", http.StatusBadRequest)
		return
	}
	filetype := http.DetectContentType(buff[:n])
	if !strings.HasPrefix(filetype, "image/") {
		sendErrorResponse(w, "Invalid file type: only images are allowed", http.StatusBadRequest)
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		sendErrorResponse(w, "Could not read file", http.StatusBadRequest)
		return
	}

	name := uuid.New().String() + extensionFor(filetype)
	url, err := files.Put(r.Context(), name, filetype, file, header.Size)
	if err != nil {
		log.WithError(err).Error("store upload")
		sendErrorResponse(w, "Could not store file", http.StatusInternalServerError)
		return
	}

	sendJSON(w, http.StatusCreated, models.UploadResult{URL: url})
}

func extensionFor(contentType string) string {
	if contentType == "image/jpeg" {
		return ".jpg"
	}
	exts, err := mime.ExtensionsByType(contentType)
	if err != nil || len(exts) == 0 {
		return fmt.Sprintf(".%s", strings.TrimPrefix(contentType, "image/"))
	}
	return exts[0]
}
