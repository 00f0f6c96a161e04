package handlers

import (
	"net/http"

	"placegallery/backend/models"
)

// GET /users/me
func GetMeHandler(w http.ResponseWriter, r *http.Request) {
	user, err := store.GetUser(r.Context(), CurrentUserID(r))
	if err != nil {
		sendStoreError(w, r, err, "User not found")
		return
	}
	sendJSON(w, http.StatusOK, user)
}

// PATCH /users/me {name, about}
func UpdateMeHandler(w http.ResponseWriter, r *http.Request) {
	var payload models.ProfileUpdate
	if !decodeJSON(w, r, &payload) {
		return
	}
	payload = normalizeProfile(payload)

	if v := firstInvalid(ValidateName(payload.Name), ValidateAbout(payload.About)); !v.IsValid {
		sendErrorResponse(w, v.Message, http.StatusBadRequest)
		return
	}

	user, err := store.UpdateProfile(r.Context(), CurrentUserID(r), payload)
	if err != nil {
		sendStoreError(w, r, err, "User not found")
		return
	}

	Emit(models.EventUserUpdated, user)
	sendJSON(w, http.StatusOK, user)
}

// PATCH /users/me/avatar {avatar}
func UpdateAvatarHandler(w http.ResponseWriter, r *http.Request) {
	var payload models.AvatarUpdate
	if !decodeJSON(w, r, &payload) {
		return
	}

	if v := ValidateLink(payload.Avatar); !v.IsValid {
		sendErrorResponse(w, v.Message, http.StatusBadRequest)
		return
	}

	user, err := store.UpdateAvatar(r.Context(), CurrentUserID(r), payload)
	if err != nil {
		sendStoreError(w, r, err, "User not found")
		return
	}

	Emit(models.EventUserUpdated, user)
	sendJSON(w, http.StatusOK, user)
}
