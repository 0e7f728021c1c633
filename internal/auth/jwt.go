package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/you/go-ramadan-transfers/internal/config"
	"github.com/you/go-ramadan-transfers/internal/logger"
)

const (
	tokenTTL     = time.Hour
	operatorRole = "operator"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

// IssueToken signs an operator token valid for one hour from now.
func IssueToken(cfg *config.Config, username string, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":  username,
		"role": operatorRole,
		"iat":  now.Unix(),
		"exp":  now.Add(tokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(cfg.JWTSecret))
}

// RequireOperator lets a request through to next only with a valid operator
// bearer token. With no jwt_secret configured every request is refused.
func RequireOperator(cfg *config.Config, log zerolog.Logger, next http.Handler) http.Handler {
	log = logger.Component(log, "auth")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cfg.JWTSecret == "" {
			http.Error(w, "operator access disabled", http.StatusServiceUnavailable)
			return
		}
		authH := r.Header.Get("Authorization")
		if !strings.HasPrefix(authH, "Bearer ") {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		tok := strings.TrimPrefix(authH, "Bearer ")
		parsed, err := jwt.Parse(tok, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenUnverifiable
			}
			return []byte(cfg.JWTSecret), nil
		}, jwt.WithExpirationRequired())
		if err != nil {
			log.Warn().Err(err).Str("path", r.URL.Path).Msg("Rejected operator token")
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		if claims, ok := parsed.Claims.(jwt.MapClaims); !ok || claims["role"] != operatorRole {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func LoginHandler(cfg *config.Config, log zerolog.Logger) http.HandlerFunc {
	log = logger.Component(log, "auth")
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if cfg.JWTSecret == "" {
			http.Error(w, "operator access disabled", http.StatusServiceUnavailable)
			return
		}
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Username != cfg.JWTUser || req.Password != cfg.JWTPassword {
			log.Warn().Str("username", req.Username).Msg("Failed operator login")
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		now := time.Now()
		tok, err := IssueToken(cfg, req.Username, now)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(loginResponse{Token: tok, ExpiresAt: now.Add(tokenTTL).Unix()})
	}
}
