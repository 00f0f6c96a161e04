package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	tokenCacheTTL   = 15 * time.Minute
	cleanupInterval = 1 * time.Hour
)

var (
	errTokenMissing   = errors.New("token missing")
	errTokenMalformed = errors.New("token malformed")
	errTokenInvalid   = errors.New("token invalid")
)

type ctxKey struct{}

type verifiedToken struct {
	UserID    string
	ExpiresAt time.Time
}

func (v verifiedToken) IsExpired() bool {
	return v.ExpiresAt.Before(time.Now())
}

var (
	verified   = make(map[string]verifiedToken)
	tokenMutex = &sync.RWMutex{}
)

// SplitToken breaks an API token "<userID>.<secret>" into its parts.
func SplitToken(token string) (userID, secret string, err error) {
	userID, secret, ok := strings.Cut(strings.TrimSpace(token), ".")
	if !ok || userID == "" || secret == "" {
		return "", "", errTokenMalformed
	}
	return userID, secret, nil
}

// Authenticate resolves a token to its user. Successful bcrypt checks are
// cached for tokenCacheTTL.
func Authenticate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", errTokenMissing
	}

	tokenMutex.RLock()
	v, ok := verified[token]
	tokenMutex.RUnlock()
	if ok && !v.IsExpired() {
		return v.UserID, nil
	}

	userID, secret, err := SplitToken(token)
	if err != nil {
		return "", err
	}
	hash, err := store.TokenHash(ctx, userID)
	if err != nil || hash == "" {
		return "", errTokenInvalid
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)); err != nil {
		return "", errTokenInvalid
	}

	tokenMutex.Lock()
	verified[token] = verifiedToken{UserID: userID, ExpiresAt: time.Now().Add(tokenCacheTTL)}
	tokenMutex.Unlock()
	return userID, nil
}

// RequireToken rejects requests without a valid Authorization header and
// stores the caller's user ID in the request context.
func RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		userID, err := Authenticate(r.Context(), token)
		if err != nil {
			log.WithError(err).WithField("path", r.URL.Path).Debug("rejected token")
			sendErrorResponse(w, "Authorization required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, userID)))
	})
}

func CurrentUserID(r *http.Request) string {
	id, _ := r.Context().Value(ctxKey{}).(string)
	return id
}

// StartTokenCleanup evicts expired cache entries until ctx is done.
func StartTokenCleanup(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cleanupExpiredTokens()
		}
	}
}

func cleanupExpiredTokens() {
	now := time.Now()
	tokenMutex.Lock()
	defer tokenMutex.Unlock()

	for token, v := range verified {
		if v.ExpiresAt.Before(now) {
			delete(verified, token)
		}
	}
}

func resetTokenCache() {
	tokenMutex.Lock()
	verified = make(map[string]verifiedToken)
	tokenMutex.Unlock()
}

func CachedTokenCount() int {
	tokenMutex.RLock()
	defer tokenMutex.RUnlock()
	return len(verified)
}
