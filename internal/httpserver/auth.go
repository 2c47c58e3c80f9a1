// apps/go-server/internal/httpserver/auth.go
//
// Operator authentication. There is a single operator identity: POST
// /auth/login checks the password against ADMIN_PASSWORD_HASH (bcrypt) and
// issues an HS256 JWT, returned in the body and as an HttpOnly cookie.
// requireAuth accepts either "Authorization: Bearer <token>" or the cookie.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const operatorSubject = "operator"

type ctxOperatorKey struct{}

type loginReq struct {
	Password string `json:"password"`
}

func (s *Server) mountAuth() {
	s.r.With(s.boundRequest).Post("/auth/login", s.handleLogin)
	s.r.With(s.boundRequest).Post("/auth/logout", s.handleLogout)
	s.r.With(s.boundRequest, s.requireAuth).Get("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		sub, _ := r.Context().Value(ctxOperatorKey{}).(string)
		writeJSON(w, http.StatusOK, map[string]string{"subject": sub})
	})
}

// handleLogin checks the operator password and sets the auth cookie.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body loginReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if s.cfg.AdminPasswordHash == "" {
		log.Warn().Msg("login attempted but ADMIN_PASSWORD_HASH is not set")
		writeError(w, http.StatusUnauthorized, "Invalid password")
		return
	}
	if !checkPassword(s.cfg.AdminPasswordHash, body.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid password")
		return
	}
	tok, exp, err := s.signJWT(operatorSubject)
	if err != nil {
		log.Error().Err(err).Msg("sign jwt")
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	s.setAuthCookie(w, tok, exp)
	writeJSON(w, http.StatusOK, map[string]any{"token": tok, "expiresAt": exp.UTC()})
}

// handleLogout clears the auth cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearAuthCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// requireAuth rejects requests without a valid operator token.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := s.bearerOrCookie(r)
		if tok == "" {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		sub, err := s.parseJWT(tok)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		ctx := context.WithValue(r.Context(), ctxOperatorKey{}, sub)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// checkPassword is a bcrypt verifier.
func checkPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// ------------------------------ JWT & cookies ------------------------------

func (s *Server) secret() []byte {
	if s.cfg.JWTSecret == "" {
		return []byte("dev_secret_change_me")
	}
	return []byte(s.cfg.JWTSecret)
}

// signJWT creates an HS256 JWT for sub, valid for cfg.JWTExpires.
func (s *Server) signJWT(sub string) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.cfg.JWTExpires)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sub,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	ss, err := t.SignedString(s.secret())
	return ss, exp, err
}

// parseJWT validates tok and returns its subject.
func (s *Server) parseJWT(tok string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", err
	}
	if !t.Valid {
		return "", errors.New("token invalid")
	}
	if claims.Subject != operatorSubject {
		return "", fmt.Errorf("unexpected subject %q", claims.Subject)
	}
	return claims.Subject, nil
}

// setAuthCookie writes the auth token cookie with appropriate security attributes.
func (s *Server) setAuthCookie(w http.ResponseWriter, token string, exp time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.SecureCookies,
		SameSite: s.sameSite(),
		Expires:  exp,
	})
}

func (s *Server) clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.SecureCookies,
		SameSite: s.sameSite(),
		MaxAge:   -1,
	})
}

func (s *Server) sameSite() http.SameSite {
	if s.cfg.SecureCookies {
		return http.SameSiteNoneMode // required for third-party contexts when Secure
	}
	return http.SameSiteLaxMode
}

func (s *Server) bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(s.cfg.CookieName); err == nil {
		return c.Value
	}
	return ""
}
