package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"placegallery/backend/models"
)

// PUT /cards/{cardID}/likes adds the caller to the liker set,
// DELETE removes them. Both are idempotent and return the whole card.
func LikeHandler(w http.ResponseWriter, r *http.Request) {
	cardID := mux.Vars(r)["cardID"]
	liked := r.Method == http.MethodPut

	card, err := store.SetLike(r.Context(), cardID, CurrentUserID(r), liked)
	if err != nil {
		sendStoreError(w, r, err, "Card not found")
		return
	}

	Emit(models.EventCardLikes, card)
	sendJSON(w, http.StatusOK, card)
}
