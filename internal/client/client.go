// client — HTTP-клиент backend с bearer-авторизацией и восстановлением
// сессии после 401.
//
// Основные аспекты:
//   - обычный путь: к запросу прикладывается access-токен из session.Store,
//     ответ возвращается как есть при любом статусе;
//   - восстановление: на буквальный 401 клиент один раз вызывает
//     POST /auth/refresh, атомарно сохраняет новую пару и повторяет исходный
//     запрос ровно один раз через базовую отправку (не через Do);
//   - неудачное восстановление очищает хранилище, вызывает Navigator
//     с guard.RouteLogin и возвращает ErrSessionExpired вместо ответа;
//   - конкурентные 401 разделяют один вызов refresh (singleflight).
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pribylovaa/skilltrack/internal/config"
	"github.com/pribylovaa/skilltrack/internal/session"
	"golang.org/x/sync/singleflight"
)

// ErrSessionExpired — сессию восстановить не удалось; пользователь уведён на вход.
var ErrSessionExpired = errors.New("session expired")

// PathRefresh — эндпоинт обновления пары токенов.
const PathRefresh = "/auth/refresh"

// Client безопасен для конкурентного использования.
type Client struct {
	baseURL        string
	http           *http.Client
	store          session.Store
	nav            Navigator
	log            *slog.Logger
	metrics        *Metrics
	userAgent      string
	requestTimeout time.Duration
	refreshTimeout time.Duration

	flight singleflight.Group
}

// Option настраивает Client.
type Option func(*Client)

// WithHTTPClient задаёт базовый *http.Client. Его Transport становится
// нижним звеном цепочки клиента.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithNavigator задаёт реакцию на истечение сессии.
func WithNavigator(n Navigator) Option {
	return func(c *Client) { c.nav = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New создаёт клиент для cfg.API.BaseURL поверх store.
func New(cfg config.Config, store session.Store, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(cfg.API.BaseURL, "/"),
		store:          store,
		nav:            nopNavigator{},
		log:            slog.Default(),
		userAgent:      cfg.API.UserAgent,
		requestTimeout: cfg.Timeouts.Request,
		refreshTimeout: cfg.Timeouts.Refresh,
	}
	for _, o := range opts {
		o(c)
	}

	base := http.DefaultTransport
	hc := &http.Client{}
	if c.http != nil {
		*hc = *c.http
		if c.http.Transport != nil {
			base = c.http.Transport
		}
	}

	// Цепочка исходящих middleware: metadata -> timeout -> logging.
	hc.Transport = Chain(base,
		WithMetadata(c.userAgent),
		WithTimeout(c.requestTimeout),
		WithLogging(c.log),
	)
	c.http = hc

	return c
}

// Store возвращает хранилище сессии клиента.
func (c *Client) Store() session.Store { return c.store }

// Do выполняет запрос. Ответ с любым статусом возвращается без ошибки;
// ошибка означает транспортный сбой, отмену контекста или ErrSessionExpired.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	const op = "client.Do"

	token := ""
	if !req.Anonymous {
		creds, err := c.store.Get(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: read session: %w", op, err)
		}
		token = creds.AccessToken
	}

	resp, err := c.send(ctx, req, token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if resp.StatusCode != http.StatusUnauthorized || req.SkipRefresh || req.Anonymous {
		return resp, nil
	}

	return c.recoverSession(ctx, req, token, resp)
}

// send — базовая отправка: одна попытка, без восстановления сессии.
func (c *Client) send(ctx context.Context, req Request, token string) (*Response, error) {
	u := c.baseURL + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	hr, err := http.NewRequestWithContext(ctx, req.Method, u, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	hr.Header.Set("Accept", "application/json")
	if body != nil {
		hr.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		hr.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	hresp, err := c.http.Do(hr)
	if err != nil {
		c.metrics.observeRequest(req.Method, 0, time.Since(start))
		return nil, err
	}
	defer hresp.Body.Close()

	data, err := io.ReadAll(hresp.Body)
	c.metrics.observeRequest(req.Method, hresp.StatusCode, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &Response{StatusCode: hresp.StatusCode, Header: hresp.Header, Body: data}, nil
}
