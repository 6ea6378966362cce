package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Request — описание запроса к backend.
type Request struct {
	Method string
	// Path относительно базового URL, например "/skills/42".
	Path  string
	Query url.Values
	// Body кодируется в JSON; nil — без тела.
	Body any
	// Anonymous — не прикладывать Authorization.
	Anonymous bool
	// SkipRefresh — 401 возвращается как есть, без попытки восстановить сессию.
	SkipRefresh bool
}

// Response — полностью прочитанный ответ backend.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK сообщает, что статус 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode разбирает JSON-тело в v. Пустое тело (204) не ошибка.
func (r *Response) Decode(v any) error {
	if len(r.Body) == 0 || v == nil {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("client.Response.Decode: %w", err)
	}

	return nil
}
