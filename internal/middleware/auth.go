package middleware

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"time"

	"platewatch/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const sessionCookieName = "platewatch_session"
const sessionTTL = 12 * time.Hour

// AuthGateMiddleware enforces the basic-auth gate outside development. A
// successful basic-auth request mints a signed session cookie so the
// browser is not re-challenged for every asset.
func AuthGateMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !cfg.AuthEnabled() {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cookie, err := r.Cookie(sessionCookieName); err == nil {
				if validSessionToken(cookie.Value, cfg.SessionSecret) {
					next.ServeHTTP(w, r)
					return
				}
			}

			user, pass, ok := r.BasicAuth()
			if !ok || !credentialsMatch(cfg, user, pass) {
				w.Header().Set("WWW-Authenticate", `Basic realm="platewatch"`)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			token, err := mintSessionToken(cfg.SessionSecret)
			if err == nil {
				http.SetCookie(w, &http.Cookie{
					Name:     sessionCookieName,
					Value:    token,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
					MaxAge:   int(sessionTTL.Seconds()),
				})
			}

			next.ServeHTTP(w, r)
		})
	}
}

func credentialsMatch(cfg *config.Config, user, pass string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(cfg.BasicAuthUser)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(cfg.BasicAuthPassword)) == 1
	return userOK && passOK
}

func mintSessionToken(secret []byte) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"jti": uuid.New().String(),
		"iat": now.Unix(),
		"exp": now.Add(sessionTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

func validSessionToken(tokenString string, secret []byte) bool {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	return err == nil && token.Valid
}
