// Package api is the HTTP client for the gallery backend. Every call returns
// the server's record or an error; callers decide what to do with failures.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"placegallery/backend/models"
)

// Error is a non-2xx answer from the backend.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gallery api: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("gallery api: %d %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) GetInitialCards(ctx context.Context) ([]models.Card, error) {
	var cards []models.Card
	if err := c.do(ctx, http.MethodGet, "/cards", nil, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

func (c *Client) GetUsersData(ctx context.Context) (models.User, error) {
	var u models.User
	err := c.do(ctx, http.MethodGet, "/users/me", nil, &u)
	return u, err
}

func (c *Client) SetUsersData(ctx context.Context, p models.ProfileUpdate) (models.User, error) {
	var u models.User
	err := c.do(ctx, http.MethodPatch, "/users/me", p, &u)
	return u, err
}

func (c *Client) SetAvatar(ctx context.Context, a models.AvatarUpdate) (models.User, error) {
	var u models.User
	err := c.do(ctx, http.MethodPatch, "/users/me/avatar", a, &u)
	return u, err
}

func (c *Client) CreateCard(ctx context.Context, nc models.NewCard) (models.Card, error) {
	var card models.Card
	err := c.do(ctx, http.MethodPost, "/cards", nc, &card)
	return card, err
}

// ChangeLikeCardStatus asks the server to put the caller into (liked) or out
// of the card's liker set and returns the card as the server now has it.
func (c *Client) ChangeLikeCardStatus(ctx context.Context, id string, liked bool) (models.Card, error) {
	method := http.MethodDelete
	if liked {
		method = http.MethodPut
	}
	var card models.Card
	err := c.do(ctx, method, "/cards/"+url.PathEscape(id)+"/likes", nil, &card)
	return card, err
}

func (c *Client) DeleteCard(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/cards/"+url.PathEscape(id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Authorization", c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode}
		var r models.Response
		if json.NewDecoder(resp.Body).Decode(&r) == nil {
			apiErr.Message = r.Message
		}
		return apiErr
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
