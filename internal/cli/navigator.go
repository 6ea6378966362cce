package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/pribylovaa/skilltrack/internal/guard"
)

// Navigator — реакция CLI на уход клиента на экран входа: сообщение
// пользователю один раз и отметка для кода завершения.
type Navigator struct {
	w io.Writer

	mu      sync.Mutex
	expired bool
}

func NewNavigator(w io.Writer) *Navigator {
	if w == nil {
		w = io.Discard
	}

	return &Navigator{w: w}
}

func (n *Navigator) Navigate(_ context.Context, route string) {
	if route != guard.RouteLogin {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.expired {
		fmt.Fprintln(n.w, "session expired, log in again")
	}
	n.expired = true
}

// Expired сообщает, что сессия истекла за время работы команды.
func (n *Navigator) Expired() bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.expired
}
