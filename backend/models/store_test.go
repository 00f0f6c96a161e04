package models

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := InitDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db)
}

func seedUsers(t *testing.T, s *Store, users ...User) {
	t.Helper()
	for _, u := range users {
		require.NoError(t, s.CreateUser(context.Background(), u, ""))
	}
}

func TestStore_ListCardsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedUsers(t, s, User{ID: "u1", Name: "Jacques", About: "explorer"})

	first, err := s.CreateCard(ctx, "u1", NewCard{Name: "Baikal", Link: "https://img/baikal.jpg"})
	require.NoError(t, err)
	second, err := s.CreateCard(ctx, "u1", NewCard{Name: "Elbrus", Link: "https://img/elbrus.jpg"})
	require.NoError(t, err)

	cards, err := s.ListCards(ctx)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, second.ID, cards[0].ID)
	assert.Equal(t, first.ID, cards[1].ID)
	assert.Equal(t, "Jacques", cards[0].Owner.Name)
	assert.NotNil(t, cards[0].Likes)
	assert.Empty(t, cards[0].Likes)
}

func TestStore_SetLikeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedUsers(t, s, User{ID: "u1", Name: "Owner"}, User{ID: "u2", Name: "Fan"})

	card, err := s.CreateCard(ctx, "u1", NewCard{Name: "Kamchatka", Link: "https://img/k.jpg"})
	require.NoError(t, err)

	card, err = s.SetLike(ctx, card.ID, "u2", true)
	require.NoError(t, err)
	card, err = s.SetLike(ctx, card.ID, "u2", true)
	require.NoError(t, err)
	require.Len(t, card.Likes, 1)
	assert.True(t, card.LikedBy("u2"))
	assert.False(t, card.LikedBy("u1"))

	card, err = s.SetLike(ctx, card.ID, "u2", false)
	require.NoError(t, err)
	assert.Empty(t, card.Likes)

	_, err = s.SetLike(ctx, "missing", "u2", true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_DeleteCardChecksOwner(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedUsers(t, s, User{ID: "u1", Name: "Owner"}, User{ID: "u2", Name: "Other"})

	card, err := s.CreateCard(ctx, "u1", NewCard{Name: "Altai", Link: "https://img/a.jpg"})
	require.NoError(t, err)
	_, err = s.SetLike(ctx, card.ID, "u2", true)
	require.NoError(t, err)

	assert.ErrorIs(t, s.DeleteCard(ctx, card.ID, "u2"), ErrForbidden)
	assert.ErrorIs(t, s.DeleteCard(ctx, "missing", "u1"), ErrNotFound)
	require.NoError(t, s.DeleteCard(ctx, card.ID, "u1"))

	_, err = s.GetCard(ctx, card.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	n, err := s.CountCards(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStore_UpdateProfileAndAvatar(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedUsers(t, s, User{ID: "u1", Name: "Old", About: "old", Avatar: "https://img/old.png"})

	u, err := s.UpdateProfile(ctx, "u1", ProfileUpdate{Name: "New", About: "sailor"})
	require.NoError(t, err)
	assert.Equal(t, User{ID: "u1", Name: "New", About: "sailor", Avatar: "https://img/old.png"}, u)

	u, err = s.UpdateAvatar(ctx, "u1", AvatarUpdate{Avatar: "https://img/new.png"})
	require.NoError(t, err)
	assert.Equal(t, "https://img/new.png", u.Avatar)
	assert.Equal(t, "New", u.Name)

	_, err = s.UpdateProfile(ctx, "ghost", ProfileUpdate{Name: "x", About: "y"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ListCardsQueryError(t *testing.T) {
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer raw.Close()

	mock.ExpectQuery("SELECT c.card_id").WillReturnError(assert.AnError)

	s := NewStore(sqlx.NewDb(raw, "sqlite3"))
	_, err = s.ListCards(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}
