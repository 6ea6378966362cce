package apitest

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	apierrors "github.com/pribylovaa/skilltrack/internal/errors"
)

type ctxKey string

const ctxUserID ctxKey = "user_id"

// recoverer превращает panic в 500 с detail без подробностей.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				apierrors.WriteDetail(w, r, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// requestID обеспечивает наличие X-Request-Id в запросе и ответе.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			var b [16]byte
			_, _ = rand.Read(b[:])
			id = hex.EncodeToString(b[:])
			r.Header.Set("X-Request-Id", id)
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r)
	})
}

// countHits считает запросы по шаблону маршрута chi (известен после роутинга).
func (s *Server) countHits(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)

		pattern := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			pattern = rc.RoutePattern()
		}

		s.mu.Lock()
		s.hits[hitKey(r.Method, pattern)]++
		s.mu.Unlock()
	})
}

// hitKey отбрасывает завершающий "/": chi отдаёт "/skills" для r.Get("/")
// внутри r.Route("/skills").
func hitKey(method, pattern string) string {
	if len(pattern) > 1 {
		pattern = strings.TrimSuffix(pattern, "/")
	}

	return method + " " + pattern
}

// authenticate пропускает запрос только с действительным access-токеном
// активного пользователя и кладёт его id в контекст.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		const prefix = "Bearer "

		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, prefix) {
			unauthorized(w, r, "Not authenticated")
			return
		}

		claims, err := s.parse(strings.TrimSpace(auth[len(prefix):]))
		if err != nil || claims.Type != "access" {
			unauthorized(w, r, "Could not validate credentials")
			return
		}
		uid, err := parseUID(claims.Subject)
		if err != nil {
			unauthorized(w, r, "Could not validate credentials")
			return
		}

		s.mu.Lock()
		u, ok := s.users[uid]
		valid := ok && u.IsActive && claims.Gen == s.gen
		s.mu.Unlock()

		if !valid {
			unauthorized(w, r, "Could not validate credentials")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxUserID, uid)))
	})
}

func unauthorized(w http.ResponseWriter, r *http.Request, detail string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	apierrors.WriteDetail(w, r, http.StatusUnauthorized, detail)
}

func userID(r *http.Request) int64 {
	uid, _ := r.Context().Value(ctxUserID).(int64)
	return uid
}
