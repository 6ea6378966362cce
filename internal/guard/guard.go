// guard — проверка наличия сессии перед выполнением команды.
// Это удобство для пользователя, а не авторизация: права проверяет сервер.
package guard

import (
	"context"

	"github.com/pribylovaa/skilltrack/internal/session"
	"github.com/pribylovaa/skilltrack/pkg/log"
)

// Маршруты, на которые перенаправляет проверка и клиент после истечения сессии.
const (
	RouteLogin     = "/auth"
	RouteDashboard = "/dashboard"
)

// Access — требования команды к сессии.
type Access int

const (
	// Public — доступно всегда.
	Public Access = iota
	// Protected — требует access-токен.
	Protected
	// GuestOnly — только без сессии (вход, регистрация).
	GuestOnly
)

func (a Access) String() string {
	switch a {
	case Protected:
		return "protected"
	case GuestOnly:
		return "guest_only"
	default:
		return "public"
	}
}

// Decision — результат проверки. При Allow == false Redirect содержит маршрут.
type Decision struct {
	Allow    bool
	Redirect string
}

// Check решает, можно ли выполнить команду с уровнем доступа access.
// Ошибка чтения хранилища трактуется как отсутствие сессии.
func Check(ctx context.Context, store session.Store, access Access) Decision {
	hasToken := false
	if creds, err := store.Get(ctx); err != nil {
		log.From(ctx).Warn("guard_store_read_failed", "err", err)
	} else {
		hasToken = creds.AccessToken != ""
	}

	switch {
	case access == Protected && !hasToken:
		return Decision{Redirect: RouteLogin}
	case access == GuestOnly && hasToken:
		return Decision{Redirect: RouteDashboard}
	default:
		return Decision{Allow: true}
	}
}
