package auth

import (
	"crypto/sha256"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slog"
)

// Auth checks the Bearer token against a bcrypt hash of the API token.
// A token that passed bcrypt once is remembered by its SHA-256 digest, so
// bcrypt runs once per distinct valid token rather than per request.
// Rejected tokens are never remembered.
type Auth struct {
	tokenHash []byte
	log       *slog.Logger

	compare  func(hash, token []byte) error
	verified sync.Map // [sha256.Size]byte -> struct{}
}

func New(tokenHash string, log *slog.Logger) *Auth {
	return &Auth{
		tokenHash: []byte(tokenHash),
		log:       log.With("component", "auth_middleware"),
		compare:   bcrypt.CompareHashAndPassword,
	}
}

func (a *Auth) valid(token string) bool {
	digest := sha256.Sum256([]byte(token))
	if _, ok := a.verified.Load(digest); ok {
		return true
	}
	if err := a.compare(a.tokenHash, []byte(token)); err != nil {
		return false
	}
	a.verified.Store(digest, struct{}{})
	return true
}

// HashToken returns the bcrypt hash to configure as API_TOKEN_HASH.
func HashToken(token string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Middleware возвращает middleware для Huma с сигнатурой func(ctx Context, next func(Context))
func (a *Auth) Middleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		header := ctx.Header("Authorization")

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			a.log.Warn("missing bearer token", "path", ctx.URL().Path)
			a.unauthorized(ctx)
			return
		}

		if !a.valid(token) {
			a.log.Warn("invalid bearer token", "path", ctx.URL().Path)
			a.unauthorized(ctx)
			return
		}

		next(ctx)
	}
}

func (a *Auth) unauthorized(ctx huma.Context) {
	ctx.SetHeader("Content-Type", "application/json")
	ctx.SetStatus(http.StatusUnauthorized)

	err := json.NewEncoder(ctx.BodyWriter()).Encode(map[string]string{
		"error": "Unauthorized",
	})
	if err != nil {
		a.log.Error("failed to write auth error", "error", err)
	}
}
