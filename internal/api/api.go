// api — типизированные эндпойнты backend skilltrack поверх client.Client.
//
// Запросы-чтения (query) кэшируются по ключу метод+путь+query и помечаются
// тегами; мутации после успеха инвалидируют теги из таблицы invalidations.
// Не-2xx ответы возвращаются как *errors.APIError.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/pribylovaa/skilltrack/internal/cache"
	"github.com/pribylovaa/skilltrack/internal/client"
	"github.com/pribylovaa/skilltrack/internal/config"
	apierrors "github.com/pribylovaa/skilltrack/internal/errors"
	"github.com/pribylovaa/skilltrack/internal/models"
)

// ErrInvalidInput — аргументы не прошли локальную валидацию, запрос не отправлялся.
var ErrInvalidInput = errors.New("invalid input")

// API безопасен для конкурентного использования.
type API struct {
	client *client.Client
	cache  cache.Cache
	log    *slog.Logger

	// mu связывает поколение кэша с записью в него: чтение, начатое до
	// инвалидации, свой ответ уже не сохранит.
	mu  sync.Mutex
	gen uint64
}

type Option func(*API)

// WithCache подменяет кэш, выбранный по конфигурации.
func WithCache(c cache.Cache) Option { return func(a *API) { a.cache = c } }

func WithLogger(l *slog.Logger) Option { return func(a *API) { a.log = l } }

func New(c *client.Client, cfg config.CacheConfig, opts ...Option) *API {
	a := &API{client: c, log: slog.Default()}
	if cfg.Disabled {
		a.cache = cache.NewNop()
	} else {
		a.cache = cache.New(cfg.TTL)
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Cache возвращает кэш ответов.
func (a *API) Cache() cache.Cache { return a.cache }

// do выполняет запрос и превращает не-2xx ответ в *APIError.
func (a *API) do(ctx context.Context, req client.Request) (*client.Response, error) {
	resp, err := a.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, apierrors.FromResponse(resp.StatusCode, resp.Header, resp.Body)
	}

	return resp, nil
}

// invalidate сбрасывает чтения, устаревшие после мутации m.
func (a *API) invalidate(m Mutation, t Target) {
	tags := invalidations[m](t)

	a.mu.Lock()
	a.gen++
	n := a.cache.Invalidate(tags...)
	a.mu.Unlock()

	a.log.Debug("cache_invalidated", "mutation", string(m), "tags", len(tags), "dropped", n)
}

func (a *API) generation() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.gen
}

// remember сохраняет ответ, если с момента gen кэш не инвалидировался.
func (a *API) remember(gen uint64, key string, body []byte, tags []cache.Tag) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.gen != gen {
		return false
	}
	a.cache.Set(key, body, 0, tags...)

	return true
}

func cacheKey(req client.Request) string {
	key := req.Method + " " + req.Path
	if len(req.Query) > 0 {
		key += "?" + req.Query.Encode()
	}

	return key
}

// query выполняет GET с кэшированием. provides возвращает теги,
// которые предоставляет разобранный ответ.
func query[T any](ctx context.Context, a *API, op string, req client.Request, provides func(T) []cache.Tag) (T, error) {
	var out T

	key := cacheKey(req)
	if body, ok := a.cache.Get(key); ok {
		resp := client.Response{StatusCode: http.StatusOK, Body: body}
		if err := resp.Decode(&out); err == nil {
			return out, nil
		}
	}

	gen := a.generation()
	resp, err := a.do(ctx, req)
	if err != nil {
		return out, fmt.Errorf("%s: %w", op, err)
	}
	if err := resp.Decode(&out); err != nil {
		return out, fmt.Errorf("%s: %w", op, err)
	}

	if !a.remember(gen, key, resp.Body, provides(out)) {
		a.log.Debug("cache_store_skipped", "key", key)
	}

	return out, nil
}

// mutate выполняет запрос записи и после успеха инвалидирует кэш.
// target строит затронутую сущность по ответу.
func mutate[T any](ctx context.Context, a *API, op string, m Mutation, req client.Request, target func(T) Target) (T, error) {
	var out T

	resp, err := a.do(ctx, req)
	if err != nil {
		return out, fmt.Errorf("%s: %w", op, err)
	}
	if err := resp.Decode(&out); err != nil {
		return out, fmt.Errorf("%s: %w", op, err)
	}

	a.invalidate(m, target(out))

	return out, nil
}

// validate проверяет аргументы по тегам validate.
func validate(op string, v any) error {
	if err := models.Validate.Struct(v); err != nil {
		return fmt.Errorf("%s: %w: %s", op, ErrInvalidInput, models.Describe(err))
	}

	return nil
}

func checkID(op string, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%s: %w: id must be positive", op, ErrInvalidInput)
	}

	return nil
}

func idPath(prefix string, id int64) string {
	return prefix + strconv.FormatInt(id, 10)
}

// page дописывает параметры пагинации, если они заданы.
func page(q url.Values, page, size int) {
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if size > 0 {
		q.Set("page_size", strconv.Itoa(size))
	}
}

// empty — ответ без тела (204).
type empty struct{}

func none[T any](T) Target { return Target{} }
