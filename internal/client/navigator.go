package client

import "context"

// Navigator уводит пользователя на другой маршрут. Клиент вызывает его
// ровно один раз на каждую неудачную попытку восстановить сессию.
type Navigator interface {
	Navigate(ctx context.Context, route string)
}

// NavigatorFunc адаптирует функцию к Navigator.
type NavigatorFunc func(ctx context.Context, route string)

func (f NavigatorFunc) Navigate(ctx context.Context, route string) { f(ctx, route) }

type nopNavigator struct{}

func (nopNavigator) Navigate(context.Context, string) {}
