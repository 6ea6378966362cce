package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pribylovaa/skilltrack/internal/cache"
	"github.com/pribylovaa/skilltrack/internal/client"
	"github.com/pribylovaa/skilltrack/internal/models"
	"github.com/pribylovaa/skilltrack/internal/session"
)

// Register создаёт учётную запись и сохраняет выданную пару токенов.
func (a *API) Register(ctx context.Context, req models.RegisterRequest) (models.AuthResponse, error) {
	const op = "api.Register"

	if err := validate(op, req); err != nil {
		return models.AuthResponse{}, err
	}

	return a.authenticate(ctx, op, MutationRegister, "/auth/register", req)
}

// Login входит по email и паролю и сохраняет выданную пару токенов.
func (a *API) Login(ctx context.Context, req models.LoginRequest) (models.AuthResponse, error) {
	const op = "api.Login"

	if err := validate(op, req); err != nil {
		return models.AuthResponse{}, err
	}

	return a.authenticate(ctx, op, MutationLogin, "/auth/login", req)
}

func (a *API) authenticate(ctx context.Context, op string, m Mutation, path string, body any) (models.AuthResponse, error) {
	var out models.AuthResponse

	resp, err := a.do(ctx, client.Request{
		Method:      http.MethodPost,
		Path:        path,
		Body:        body,
		Anonymous:   true,
		SkipRefresh: true,
	})
	if err != nil {
		return out, fmt.Errorf("%s: %w", op, err)
	}
	if err := resp.Decode(&out); err != nil {
		return out, fmt.Errorf("%s: %w", op, err)
	}

	creds := session.Credentials{AccessToken: out.Tokens.AccessToken, RefreshToken: out.Tokens.RefreshToken}
	if err := a.client.Store().Set(ctx, creds); err != nil {
		return out, fmt.Errorf("%s: save session: %w", op, err)
	}

	a.invalidate(m, Target{ID: out.User.ID})

	return out, nil
}

// Logout завершает сессию. Вызов сервера best-effort: его ошибка только
// логируется, локальная пара удаляется в любом случае.
func (a *API) Logout(ctx context.Context) error {
	const op = "api.Logout"

	store := a.client.Store()

	creds, err := store.Get(ctx)
	if err != nil {
		a.log.Warn("logout_session_read_failed", "err", err)
	}

	if creds.AccessToken != "" {
		_, err := a.do(ctx, client.Request{
			Method:      http.MethodPost,
			Path:        "/auth/logout",
			Body:        models.LogoutRequest{RefreshToken: creds.RefreshToken},
			SkipRefresh: true,
		})
		if err != nil {
			a.log.Warn("logout_server_failed", "err", err)
		}
	}

	if err := store.Clear(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	a.invalidate(MutationLogout, Target{})

	return nil
}

// CurrentUser — GET /auth/me.
func (a *API) CurrentUser(ctx context.Context) (models.User, error) {
	return query(ctx, a, "api.CurrentUser",
		client.Request{Method: http.MethodGet, Path: "/auth/me"},
		func(models.User) []cache.Tag { return []cache.Tag{tag(cache.TypeAuth, cache.IDProfile)} },
	)
}

func (a *API) ChangePassword(ctx context.Context, req models.PasswordChangeRequest) (models.User, error) {
	const op = "api.ChangePassword"

	if err := validate(op, req); err != nil {
		return models.User{}, err
	}

	return mutate(ctx, a, op, MutationChangePassword,
		client.Request{Method: http.MethodPost, Path: "/auth/change-password", Body: req},
		func(u models.User) Target { return Target{ID: u.ID} },
	)
}

// VerifyToken проверяет текущий access-токен на сервере. Не кэшируется.
func (a *API) VerifyToken(ctx context.Context) (models.VerifyTokenResponse, error) {
	const op = "api.VerifyToken"

	var out models.VerifyTokenResponse

	resp, err := a.do(ctx, client.Request{Method: http.MethodPost, Path: "/auth/verify-token"})
	if err != nil {
		return out, fmt.Errorf("%s: %w", op, err)
	}
	if err := resp.Decode(&out); err != nil {
		return out, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}
