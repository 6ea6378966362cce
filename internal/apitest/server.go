// apitest — фейковый backend skilltrack для тестов: REST API /api/v1 на chi
// с настоящими JWT (HS256), bcrypt-хэшами паролей и ротацией refresh-токенов.
//
// Состояние хранится в памяти сервера. Тесты управляют им через методы
// Server: ExpireAccessTokens имитирует истечение access-токенов на стороне
// сервера, RevokeRefreshTokens отзывает все refresh-токены, Hits считает
// обращения к маршрутам.
package apitest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pribylovaa/skilltrack/internal/models"
)

// BasePath — префикс API.
const BasePath = "/api/v1"

// Options — параметры фейкового backend.
type Options struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	// Now — источник времени; по умолчанию time.Now.
	Now func() time.Time
}

type user struct {
	models.User
	hash []byte
}

// Server — фейковый backend. Безопасен для конкурентного использования.
type Server struct {
	opts    Options
	handler http.Handler

	// URL заполняется в Start.
	URL string

	mu        sync.Mutex
	seq       int64
	gen       int
	users     map[int64]*user
	skills    map[int64]*models.Skill
	logs      map[int64]*models.ProgressLog
	resources map[int64]*models.Resource
	summaries map[int64]*models.WeeklySummary
	refresh   map[string]int64
	hits      map[string]int
}

// New собирает сервер без сетевого слушателя (см. Start).
func New(opts Options) *Server {
	if opts.Secret == "" {
		opts.Secret = "apitest-secret"
	}
	if opts.AccessTTL <= 0 {
		opts.AccessTTL = 15 * time.Minute
	}
	if opts.RefreshTTL <= 0 {
		opts.RefreshTTL = 7 * 24 * time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Server{
		opts:      opts,
		users:     make(map[int64]*user),
		skills:    make(map[int64]*models.Skill),
		logs:      make(map[int64]*models.ProgressLog),
		resources: make(map[int64]*models.Resource),
		summaries: make(map[int64]*models.WeeklySummary),
		refresh:   make(map[string]int64),
		hits:      make(map[string]int),
	}
	s.handler = s.routes()

	return s
}

// Start поднимает httptest-сервер и закрывает его по окончании теста.
func Start(tb testing.TB, opts Options) *Server {
	tb.Helper()

	s := New(opts)
	ts := httptest.NewServer(s)
	tb.Cleanup(ts.Close)
	s.URL = ts.URL

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.handler.ServeHTTP(w, r) }

// BaseURL — адрес API для config.API.BaseURL.
func (s *Server) BaseURL() string { return s.URL + BasePath }

// ExpireAccessTokens делает недействительными все выданные access-токены.
func (s *Server) ExpireAccessTokens() {
	s.mu.Lock()
	s.gen++
	s.mu.Unlock()
}

// RevokeRefreshTokens отзывает все refresh-токены.
func (s *Server) RevokeRefreshTokens() {
	s.mu.Lock()
	s.refresh = make(map[string]int64)
	s.mu.Unlock()
}

// Hits — число обработанных запросов к маршруту, например
// Hits(http.MethodGet, "/api/v1/skills/{id}"). Завершающий "/" не учитывается.
func (s *Server) Hits(method, pattern string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.hits[hitKey(method, pattern)]
}

// RefreshCalls — число вызовов POST /auth/refresh.
func (s *Server) RefreshCalls() int {
	return s.Hits(http.MethodPost, BasePath+"/auth/refresh")
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	r.Use(
		s.recoverer,
		requestID,
		s.countHits,
	)

	r.Route(BasePath, func(r chi.Router) {
		r.Post("/auth/register", s.register)
		r.Post("/auth/login", s.login)
		r.Post("/auth/refresh", s.refreshTokens)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Post("/auth/logout", s.logout)
			r.Get("/auth/me", s.me)
			r.Post("/auth/change-password", s.changePassword)
			r.Post("/auth/verify-token", s.verifyToken)

			r.Get("/users/profile", s.profile)
			r.Put("/users/profile", s.updateProfile)
			r.Put("/users/email", s.updateEmail)
			r.Get("/users/dashboard", s.dashboard)
			r.Get("/users/stats", s.quickStats)
			r.Post("/users/deactivate", s.deactivate)

			r.Route("/skills", func(r chi.Router) {
				r.Post("/", s.createSkill)
				r.Get("/", s.listSkills)
				r.Get("/stats", s.skillStats)
				r.Patch("/bulk-update", s.bulkUpdateSkills)
				r.Get("/{id}", s.getSkill)
				r.Put("/{id}", s.updateSkill)
				r.Delete("/{id}", s.deleteSkill)
			})

			r.Route("/progress", func(r chi.Router) {
				r.Post("/", s.createProgress)
				r.Get("/", s.listProgress)
				r.Get("/stats", s.progressStats)
				r.Get("/stats/daily", s.dailyStats)
				r.Get("/stats/weekly", s.weeklyStats)
				r.Get("/stats/monthly", s.monthlyStats)
				r.Get("/skills/{id}/summary", s.skillProgressSummary)
				r.Get("/{id}", s.getProgress)
				r.Put("/{id}", s.updateProgress)
				r.Delete("/{id}", s.deleteProgress)
			})

			r.Route("/resources", func(r chi.Router) {
				r.Post("/", s.createResource)
				r.Get("/", s.listResources)
				r.Get("/stats", s.resourceStats)
				r.Get("/{id}", s.getResource)
				r.Patch("/{id}", s.updateResource)
				r.Delete("/{id}", s.deleteResource)
				r.Post("/{id}/complete", s.completeResource)
			})

			r.Route("/summaries", func(r chi.Router) {
				r.Post("/generate", s.generateSummary)
				r.Get("/", s.listSummaries)
				r.Get("/stats", s.summaryStats)
				r.Get("/current-week", s.currentWeekSummary)
				r.Get("/last-week", s.lastWeekSummary)
				r.Get("/{id}", s.getSummary)
				r.Delete("/{id}", s.deleteSummary)
			})
		})
	})

	return r
}

// nextID вызывается под s.mu.
func (s *Server) nextID() int64 {
	s.seq++
	return s.seq
}

func (s *Server) now() time.Time { return s.opts.Now().UTC() }

func (s *Server) today() string { return s.now().Format(models.DateLayout) }

type tokenClaims struct {
	Type string `json:"type"`
	Gen  int    `json:"gen,omitempty"`
	jwt.RegisteredClaims
}

// issuePair выпускает пару токенов пользователю uid. Вызывается под s.mu.
func (s *Server) issuePair(uid int64) (models.TokenPair, error) {
	now := s.now()

	access, err := s.sign(tokenClaims{
		Type: "access",
		Gen:  s.gen,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(uid, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.opts.AccessTTL)),
		},
	})
	if err != nil {
		return models.TokenPair{}, err
	}

	refresh, err := s.sign(tokenClaims{
		Type: "refresh",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(uid, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.opts.RefreshTTL)),
		},
	})
	if err != nil {
		return models.TokenPair{}, err
	}

	s.refresh[refresh] = uid

	return models.TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}, nil
}

func (s *Server) sign(c tokenClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(s.opts.Secret))
}

// parse проверяет подпись и срок токена и возвращает claims.
func (s *Server) parse(token string) (*tokenClaims, error) {
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (interface{}, error) { return []byte(s.opts.Secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}

	return claims, nil
}

func parseUID(sub string) (int64, error) {
	uid, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad subject %q", sub)
	}

	return uid, nil
}
