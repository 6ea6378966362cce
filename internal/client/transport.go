package client

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pribylovaa/skilltrack/pkg/log"
)

type ctxKey string

const ctxRequestID ctxKey = "request_id"

// HeaderRequestID — заголовок корреляции запросов с логами сервера.
const HeaderRequestID = "X-Request-Id"

// WithRequestID кладёт request id в контекст; исходящие запросы используют его
// вместо сгенерированного.
func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, ctxRequestID, rid)
}

// RequestIDFrom возвращает request id из контекста или "".
func RequestIDFrom(ctx context.Context) string {
	rid, _ := ctx.Value(ctxRequestID).(string)
	return rid
}

// RoundTripperFunc адаптирует функцию к http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// Middleware оборачивает RoundTripper.
type Middleware func(http.RoundTripper) http.RoundTripper

// Chain собирает цепочку: первый middleware — самый внешний.
func Chain(base http.RoundTripper, mws ...Middleware) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}

	rt := base
	for i := len(mws) - 1; i >= 0; i-- {
		rt = mws[i](rt)
	}

	return rt
}

// WithMetadata добавляет в исходящий запрос заголовки:
//   - X-Request-Id (из контекста или новый UUID, если не задан);
//   - User-Agent (если передан параметром).
func WithMetadata(userAgent string) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			r = r.Clone(r.Context())

			if r.Header.Get(HeaderRequestID) == "" {
				rid := RequestIDFrom(r.Context())
				if rid == "" {
					rid = uuid.NewString()
				}
				r.Header.Set(HeaderRequestID, rid)
			}
			if userAgent != "" {
				r.Header.Set("User-Agent", userAgent)
			}

			return next.RoundTrip(r)
		})
	}
}

// WithTimeout навешивает таймаут d на запрос, если у контекста ещё нет дедлайна.
//
// Контракт:
//  1. d <= 0 — запрос уходит как есть;
//  2. у контекста уже есть deadline — оставляет как есть;
//  3. иначе — контекст с таймаутом живёт до закрытия тела ответа.
func WithTimeout(d time.Duration) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if d <= 0 {
				return next.RoundTrip(r)
			}
			if _, ok := r.Context().Deadline(); ok {
				return next.RoundTrip(r)
			}

			ctx, cancel := context.WithTimeout(r.Context(), d)
			resp, err := next.RoundTrip(r.WithContext(ctx))
			if err != nil {
				cancel()
				return nil, err
			}
			resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}

			return resp, nil
		})
	}
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}

// WithLogging пишет одну запись на HTTP-обмен: msg="http_out", method, path,
// status, dur, request_id. Логгер берётся из контекста запроса, если он там
// есть, иначе base. Тела и заголовок Authorization не логируются.
func WithLogging(base *slog.Logger) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()

			l, ok := log.Lookup(r.Context())
			if !ok {
				l = base
			}
			if l == nil {
				l = slog.Default()
			}
			l = l.With(
				slog.String("request_id", r.Header.Get(HeaderRequestID)),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)

			resp, err := next.RoundTrip(r)
			if err != nil {
				l.Warn("http_out",
					slog.String("err", err.Error()),
					slog.Duration("dur", time.Since(start)),
				)
				return nil, err
			}

			l.Info("http_out",
				slog.Int("status", resp.StatusCode),
				slog.Duration("dur", time.Since(start)),
			)

			return resp, nil
		})
	}
}
