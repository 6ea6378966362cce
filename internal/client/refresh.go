package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/pribylovaa/skilltrack/internal/guard"
	"github.com/pribylovaa/skilltrack/internal/models"
	"github.com/pribylovaa/skilltrack/internal/session"
	"github.com/pribylovaa/skilltrack/pkg/log"
	"github.com/pribylovaa/skilltrack/pkg/redact"
)

// errRefreshRejected — backend не выдал новую пару.
var errRefreshRejected = errors.New("refresh rejected")

// recoverSession обрабатывает 401 на запрос, отправленный с токеном sent.
//
// Поведение:
//   - refresh-токена нет — исходный 401 возвращается как есть;
//   - пара уже обновлена другим запросом (в хранилище другой access) —
//     повтор с текущей парой без нового refresh;
//   - иначе — общий для конкурентных запросов refresh и один повтор.
func (c *Client) recoverSession(ctx context.Context, req Request, sent string, unauthorized *Response) (*Response, error) {
	const op = "client.Do"

	creds, err := c.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: read session: %w", op, err)
	}

	if creds.RefreshToken == "" {
		c.metrics.observeRefresh(RefreshSkipped)
		return unauthorized, nil
	}

	access := creds.AccessToken
	if access == sent {
		pair, err := c.refreshShared(ctx, creds.RefreshToken)
		if err != nil {
			return nil, err
		}
		access = pair.AccessToken
	} else {
		c.metrics.observeRefresh(RefreshShared)
	}

	resp, err := c.send(ctx, req, access)
	if err != nil {
		return nil, fmt.Errorf("%s: retry: %w", op, err)
	}

	return resp, nil
}

// refreshShared выполняет refresh один раз на refresh-токен, сколько бы
// запросов его ни ждали. Сам вызов отвязан от отмены ctx первого
// ожидающего: новая пара сохраняется, даже если он ушёл.
func (c *Client) refreshShared(ctx context.Context, refreshToken string) (session.Credentials, error) {
	ch := c.flight.DoChan(refreshToken, func() (any, error) {
		fctx := context.WithoutCancel(ctx)
		if c.refreshTimeout > 0 {
			var cancel context.CancelFunc
			fctx, cancel = context.WithTimeout(fctx, c.refreshTimeout)
			defer cancel()
		}

		return c.refresh(fctx, refreshToken)
	})

	select {
	case <-ctx.Done():
		return session.Credentials{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return session.Credentials{}, res.Err
		}
		return res.Val.(session.Credentials), nil
	}
}

// refresh вызывает backend и сохраняет пару. Любой сбой получения пары
// завершает сессию: хранилище очищается, Navigator уводит на вход.
func (c *Client) refresh(ctx context.Context, refreshToken string) (session.Credentials, error) {
	const op = "client.refresh"

	pair, err := c.requestPair(ctx, refreshToken)
	if err != nil {
		c.metrics.observeRefresh(RefreshFailed)
		c.logger(ctx).Warn("refresh_failed", "refresh_token", redact.Token(), "err", err)
		c.expire(ctx)
		return session.Credentials{}, ErrSessionExpired
	}

	if err := c.store.Set(ctx, pair); err != nil {
		c.metrics.observeRefresh(RefreshFailed)
		c.logger(ctx).Error("refresh_store_failed", "err", err)
		return session.Credentials{}, fmt.Errorf("%s: store pair: %w", op, err)
	}

	c.metrics.observeRefresh(RefreshOK)
	c.logger(ctx).Info("token_refreshed")

	return pair, nil
}

func (c *Client) requestPair(ctx context.Context, refreshToken string) (session.Credentials, error) {
	resp, err := c.send(ctx, Request{
		Method:      http.MethodPost,
		Path:        PathRefresh,
		Body:        models.RefreshRequest{RefreshToken: refreshToken},
		Anonymous:   true,
		SkipRefresh: true,
	}, "")
	if err != nil {
		return session.Credentials{}, err
	}
	if !resp.OK() {
		return session.Credentials{}, fmt.Errorf("%w: status %d", errRefreshRejected, resp.StatusCode)
	}

	var tp models.TokenPair
	if err := resp.Decode(&tp); err != nil {
		return session.Credentials{}, fmt.Errorf("%w: %v", errRefreshRejected, err)
	}

	pair := session.Credentials{AccessToken: tp.AccessToken, RefreshToken: tp.RefreshToken}
	if !pair.Valid() {
		return session.Credentials{}, fmt.Errorf("%w: %v", errRefreshRejected, session.ErrIncompletePair)
	}

	return pair, nil
}

// expire очищает сессию и уводит на вход. Вызывается один раз на неудачный refresh.
func (c *Client) expire(ctx context.Context) {
	if err := c.store.Clear(ctx); err != nil {
		c.logger(ctx).Error("session_clear_failed", "err", err)
	} else {
		c.logger(ctx).Info("session_cleared")
	}

	c.nav.Navigate(ctx, guard.RouteLogin)
}

// logger — логгер вызывающего из контекста или логгер клиента.
func (c *Client) logger(ctx context.Context) *slog.Logger {
	if l, ok := log.Lookup(ctx); ok {
		return l
	}

	return c.log
}
