package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pribylovaa/skilltrack/internal/cache"
	"github.com/pribylovaa/skilltrack/internal/client"
	"github.com/pribylovaa/skilltrack/internal/models"
)

func (a *API) Profile(ctx context.Context) (models.User, error) {
	return query(ctx, a, "api.Profile",
		client.Request{Method: http.MethodGet, Path: "/users/profile"},
		func(models.User) []cache.Tag { return []cache.Tag{tag(cache.TypeUser, cache.IDProfile)} },
	)
}

func (a *API) UpdateProfile(ctx context.Context, req models.UserProfileUpdate) (models.User, error) {
	const op = "api.UpdateProfile"

	if err := validate(op, req); err != nil {
		return models.User{}, err
	}

	return mutate(ctx, a, op, MutationUpdateProfile,
		client.Request{Method: http.MethodPut, Path: "/users/profile", Body: req},
		func(u models.User) Target { return Target{ID: u.ID} },
	)
}

func (a *API) UpdateEmail(ctx context.Context, req models.UserEmailUpdate) (models.User, error) {
	const op = "api.UpdateEmail"

	if err := validate(op, req); err != nil {
		return models.User{}, err
	}

	return mutate(ctx, a, op, MutationUpdateEmail,
		client.Request{Method: http.MethodPut, Path: "/users/email", Body: req},
		func(u models.User) Target { return Target{ID: u.ID} },
	)
}

func (a *API) Dashboard(ctx context.Context) (models.UserDashboard, error) {
	return query(ctx, a, "api.Dashboard",
		client.Request{Method: http.MethodGet, Path: "/users/dashboard"},
		func(models.UserDashboard) []cache.Tag { return []cache.Tag{tag(cache.TypeUser, cache.IDDashboard)} },
	)
}

func (a *API) QuickStats(ctx context.Context) (models.UserQuickStats, error) {
	return query(ctx, a, "api.QuickStats",
		client.Request{Method: http.MethodGet, Path: "/users/stats"},
		func(models.UserQuickStats) []cache.Tag { return []cache.Tag{tag(cache.TypeUser, cache.IDStats)} },
	)
}

// Deactivate отключает учётную запись и завершает локальную сессию.
// Пароль передаётся query-параметром password.
func (a *API) Deactivate(ctx context.Context, password string) error {
	const op = "api.Deactivate"

	req := models.DeactivateRequest{Password: password}
	if err := validate(op, req); err != nil {
		return err
	}

	if _, err := mutate(ctx, a, op, MutationDeactivate,
		client.Request{Method: http.MethodPost, Path: "/users/deactivate", Query: url.Values{"password": {req.Password}}},
		none[empty],
	); err != nil {
		return err
	}

	if err := a.client.Store().Clear(ctx); err != nil {
		return fmt.Errorf("%s: clear session: %w", op, err)
	}

	return nil
}
