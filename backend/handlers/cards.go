package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"placegallery/backend/models"
)

// GET /cards
func ListCardsHandler(w http.ResponseWriter, r *http.Request) {
	cards, err := store.ListCards(r.Context())
	if err != nil {
		sendStoreError(w, r, err, "No cards")
		return
	}
	sendJSON(w, http.StatusOK, cards)
}

// POST /cards {name, link}
func CreateCardHandler(w http.ResponseWriter, r *http.Request) {
	var payload models.NewCard
	if !decodeJSON(w, r, &payload) {
		return
	}
	payload = normalizeCard(payload)

	if v := firstInvalid(ValidateCardName(payload.Name), ValidateLink(payload.Link)); !v.IsValid {
		sendErrorResponse(w, v.Message, http.StatusBadRequest)
		return
	}

	card, err := store.CreateCard(r.Context(), CurrentUserID(r), payload)
	if err != nil {
		sendStoreError(w, r, err, "User not found")
		return
	}

	Emit(models.EventCardCreated, card)
	sendJSON(w, http.StatusCreated, card)
}

// DELETE /cards/{cardID}; only the owner may delete.
func DeleteCardHandler(w http.ResponseWriter, r *http.Request) {
	cardID := mux.Vars(r)["cardID"]

	if err := store.DeleteCard(r.Context(), cardID, CurrentUserID(r)); err != nil {
		sendStoreError(w, r, err, "Card not found")
		return
	}

	Emit(models.EventCardDeleted, map[string]string{"_id": cardID})
	sendJSON(w, http.StatusOK, models.Response{Success: true, Message: "Card deleted"})
}
