package session

import (
	"context"
	"sync"
)

// Memory — хранилище сессии в памяти процесса.
// Используется в тестах и для одноразовых запусков без сохранения.
type Memory struct {
	mu    sync.RWMutex
	creds Credentials
}

// NewMemory создаёт пустое хранилище; initial (если задан и полон) становится текущей парой.
func NewMemory(initial ...Credentials) *Memory {
	m := &Memory{}
	if len(initial) > 0 {
		m.creds = initial[0].normalize()
	}

	return m
}

func (m *Memory) Get(_ context.Context) (Credentials, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.creds, nil
}

func (m *Memory) Set(_ context.Context, c Credentials) error {
	if err := validate(c); err != nil {
		return err
	}

	m.mu.Lock()
	m.creds = c
	m.mu.Unlock()

	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	m.creds = Credentials{}
	m.mu.Unlock()

	return nil
}
