package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"placegallery/backend/models"
)

type samplePlace struct {
	Name string
	Link string
}

var samplePlaces = []samplePlace{
	{"Архыз", "https://pictures.s3.yandex.net/frontend-developer/cards-compressed/arkhyz.jpg"},
	{"Челябинская область", "https://pictures.s3.yandex.net/frontend-developer/cards-compressed/chelyabinsk-oblast.jpg"},
	{"Иваново", "https://pictures.s3.yandex.net/frontend-developer/cards-compressed/ivanovo.jpg"},
	{"Камчатка", "https://pictures.s3.yandex.net/frontend-developer/cards-compressed/kamchatka.jpg"},
	{"Холмогорский район", "https://pictures.s3.yandex.net/frontend-developer/cards-compressed/kholmogorsky-rayon.jpg"},
	{"Байкал", "https://pictures.s3.yandex.net/frontend-developer/cards-compressed/baikal.jpg"},
}

// Seed fills an empty database with the gallery owner, a neighbour account
// and the sample places. It returns the owner's API token, which is never
// stored in plain text; the token is empty when the database was not empty.
func Seed(ctx context.Context, store *models.Store, cost int, log logrus.FieldLogger) (string, error) {
	n, err := store.CountUsers(ctx)
	if err != nil {
		return "", err
	}
	if n > 0 {
		return "", nil
	}

	owner := models.User{
		ID:     uuid.New().String(),
		Name:   "Жак-Ив Кусто",
		About:  "Исследователь океана",
		Avatar: "https://pictures.s3.yandex.net/frontend-developer/common/ava.jpg",
	}
	secret := uuid.New().String()
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", fmt.Errorf("hash token: %w", err)
	}
	if err := store.CreateUser(ctx, owner, string(hash)); err != nil {
		return "", err
	}

	neighbour := models.User{
		ID:     uuid.New().String(),
		Name:   "Соседка",
		About:  "Путешественница",
		Avatar: "https://pictures.s3.yandex.net/frontend-developer/common/ava.jpg",
	}
	if err := store.CreateUser(ctx, neighbour, ""); err != nil {
		return "", err
	}

	// Oldest first so the listing shows them in the original order.
	for i := len(samplePlaces) - 1; i >= 0; i-- {
		p := samplePlaces[i]
		ownerID := owner.ID
		if i%2 == 1 {
			ownerID = neighbour.ID
		}
		card, err := store.CreateCard(ctx, ownerID, models.NewCard{Name: p.Name, Link: p.Link})
		if err != nil {
			log.WithError(err).WithField("place", p.Name).Warn("seed card failed")
			continue
		}
		if i%3 == 0 {
			if _, err := store.SetLike(ctx, card.ID, neighbour.ID, true); err != nil {
				log.WithError(err).WithField("place", p.Name).Warn("seed like failed")
			}
		}
	}

	log.WithField("user_id", owner.ID).Info("seeded gallery owner")
	return owner.ID + "." + secret, nil
}
