package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Store holds every query the gallery backend runs against sqlite.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

type cardRow struct {
	ID          string    `db:"card_id"`
	Name        string    `db:"name"`
	Link        string    `db:"link"`
	CreatedAt   time.Time `db:"created_at"`
	OwnerID     string    `db:"owner_id"`
	OwnerName   string    `db:"owner_name"`
	OwnerAbout  string    `db:"owner_about"`
	OwnerAvatar string    `db:"owner_avatar"`
}

func (r cardRow) card() Card {
	return Card{
		ID:        r.ID,
		Name:      r.Name,
		Link:      r.Link,
		CreatedAt: r.CreatedAt,
		Owner: User{
			ID:     r.OwnerID,
			Name:   r.OwnerName,
			About:  r.OwnerAbout,
			Avatar: r.OwnerAvatar,
		},
		Likes: []User{},
	}
}

type likeRow struct {
	CardID string `db:"card_id"`
	User
}

const selectCards = `
SELECT c.card_id, c.name, c.link, c.created_at,
       u.user_id AS owner_id, u.name AS owner_name, u.about AS owner_about, u.avatar AS owner_avatar
FROM cards c
JOIN users u ON u.user_id = c.owner_id`

func (s *Store) CreateUser(ctx context.Context, u User, tokenHash string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO users (user_id, name, about, avatar, token_hash) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.About, u.Avatar, tokenHash)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (User, error) {
	var u User
	err := s.db.GetContext(ctx, &u, `SELECT user_id, name, about, avatar FROM users WHERE user_id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("get user %s: %w", id, err)
	}
	return u, nil
}

// TokenHash returns the bcrypt hash of the user's API token secret.
func (s *Store) TokenHash(ctx context.Context, userID string) (string, error) {
	var hash string
	err := s.db.GetContext(ctx, &hash, `SELECT token_hash FROM users WHERE user_id = ?`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get token hash: %w", err)
	}
	return hash, nil
}

func (s *Store) UpdateProfile(ctx context.Context, userID string, p ProfileUpdate) (User, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET name = ?, about = ? WHERE user_id = ?`, p.Name, p.About, userID)
	if err != nil {
		return User{}, fmt.Errorf("update profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return User{}, ErrNotFound
	}
	return s.GetUser(ctx, userID)
}

func (s *Store) UpdateAvatar(ctx context.Context, userID string, a AvatarUpdate) (User, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET avatar = ? WHERE user_id = ?`, a.Avatar, userID)
	if err != nil {
		return User{}, fmt.Errorf("update avatar: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return User{}, ErrNotFound
	}
	return s.GetUser(ctx, userID)
}

// ListCards returns every card, newest first, with owners and likers attached.
func (s *Store) ListCards(ctx context.Context) ([]Card, error) {
	var rows []cardRow
	if err := s.db.SelectContext(ctx, &rows, selectCards+` ORDER BY c.created_at DESC, c.rowid DESC`); err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}

	cards := make([]Card, len(rows))
	ids := make([]string, len(rows))
	for i, r := range rows {
		cards[i] = r.card()
		ids[i] = r.ID
	}
	if len(ids) == 0 {
		return cards, nil
	}

	likes, err := s.likesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range cards {
		if l, ok := likes[cards[i].ID]; ok {
			cards[i].Likes = l
		}
	}
	return cards, nil
}

func (s *Store) GetCard(ctx context.Context, id string) (Card, error) {
	var r cardRow
	err := s.db.GetContext(ctx, &r, selectCards+` WHERE c.card_id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Card{}, ErrNotFound
	}
	if err != nil {
		return Card{}, fmt.Errorf("get card %s: %w", id, err)
	}

	card := r.card()
	likes, err := s.likesFor(ctx, []string{id})
	if err != nil {
		return Card{}, err
	}
	if l, ok := likes[id]; ok {
		card.Likes = l
	}
	return card, nil
}

func (s *Store) likesFor(ctx context.Context, cardIDs []string) (map[string][]User, error) {
	query, args, err := sqlx.In(`
SELECT l.card_id, u.user_id, u.name, u.about, u.avatar
FROM likes l
JOIN users u ON u.user_id = l.user_id
WHERE l.card_id IN (?)
ORDER BY l.created_at ASC, l.rowid ASC`, cardIDs)
	if err != nil {
		return nil, fmt.Errorf("build likes query: %w", err)
	}

	var rows []likeRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("load likes: %w", err)
	}

	out := make(map[string][]User)
	for _, r := range rows {
		out[r.CardID] = append(out[r.CardID], r.User)
	}
	return out, nil
}

func (s *Store) CreateCard(ctx context.Context, ownerID string, nc NewCard) (Card, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx, `INSERT INTO cards (card_id, owner_id, name, link, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, ownerID, nc.Name, nc.Link, time.Now().UTC())
	if err != nil {
		return Card{}, fmt.Errorf("insert card: %w", err)
	}
	return s.GetCard(ctx, id)
}

// DeleteCard removes a card owned by userID together with its likes.
func (s *Store) DeleteCard(ctx context.Context, cardID, userID string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var owner string
	err = tx.GetContext(ctx, &owner, `SELECT owner_id FROM cards WHERE card_id = ?`, cardID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("select card owner: %w", err)
	}
	if owner != userID {
		return ErrForbidden
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM likes WHERE card_id = ?`, cardID); err != nil {
		return fmt.Errorf("delete likes: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM cards WHERE card_id = ?`, cardID); err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	return tx.Commit()
}

// SetLike puts userID into (liked) or out of the card's liker set and returns
// the card as stored afterwards. Repeating the same call is a no-op.
func (s *Store) SetLike(ctx context.Context, cardID, userID string, liked bool) (Card, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return Card{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var ok int
	err = tx.GetContext(ctx, &ok, `SELECT 1 FROM cards WHERE card_id = ?`, cardID)
	if errors.Is(err, sql.ErrNoRows) {
		return Card{}, ErrNotFound
	}
	if err != nil {
		return Card{}, fmt.Errorf("select card: %w", err)
	}

	if liked {
		_, err = tx.ExecContext(ctx, `INSERT OR IGNORE INTO likes (card_id, user_id, created_at) VALUES (?, ?, ?)`,
			cardID, userID, time.Now().UTC())
	} else {
		_, err = tx.ExecContext(ctx, `DELETE FROM likes WHERE card_id = ? AND user_id = ?`, cardID, userID)
	}
	if err != nil {
		return Card{}, fmt.Errorf("write like: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Card{}, fmt.Errorf("commit: %w", err)
	}
	return s.GetCard(ctx, cardID)
}

func (s *Store) CountCards(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM cards`); err != nil {
		return 0, fmt.Errorf("count cards: %w", err)
	}
	return n, nil
}

func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}
