// errors стандартизирует ошибки ответов backend для клиента.
// На вход он принимает не-2xx ответ (статус, заголовки, тело FastAPI),
// а на выход даёт *APIError:
//   - HTTP-статус и короткий стабильный код для машиночитаемой обработки;
//   - сообщение из поля detail (строка или список ошибок валидации);
//   - request id из X-Request-Id для привязки к логам сервера.
//
// Источник истинности по маппингу: статусы, которые реально отдаёт backend.
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Нестандартный код часто используемый для "клиент закрыл соединение".
const StatusClientClosedRequest = 499

// FieldError — элемент списка detail у ошибок валидации (422).
type FieldError struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

// Field возвращает путь поля без корневого элемента ("body", "query").
func (f FieldError) Field() string {
	parts := make([]string, 0, len(f.Loc))
	for i, p := range f.Loc {
		s := fmt.Sprint(p)
		if i == 0 && (s == "body" || s == "query" || s == "path") {
			continue
		}
		parts = append(parts, s)
	}

	return strings.Join(parts, ".")
}

// APIError — не-2xx ответ backend.
// Code — короткий стабильный код.
// Message — сообщение из detail или безопасное сообщение по статусу.
// RequestID — прокидывается из X-Request-Id, если есть.
type APIError struct {
	Status    int          `json:"status"`
	Code      string       `json:"code"`
	Message   string       `json:"message"`
	Fields    []FieldError `json:"fields,omitempty"`
	RequestID string       `json:"request_id,omitempty"`
}

func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("%s (%d): %s [request_id=%s]", e.Code, e.Status, e.Message, e.RequestID)
	}

	return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
}

// detailBody — корень тела ошибки FastAPI.
type detailBody struct {
	Detail json.RawMessage `json:"detail"`
}

// FromResponse строит *APIError из не-2xx ответа.
//
// Поведение:
//   - detail-строка становится Message;
//   - detail-список (422) раскладывается в Fields, Message — первая ошибка;
//   - тело без detail или не-JSON — Message по статусу из baseFromHTTP.
func FromResponse(status int, header http.Header, body []byte) *APIError {
	code, msg := baseFromHTTP(status)
	e := &APIError{Status: status, Code: code, Message: msg}
	if header != nil {
		e.RequestID = header.Get("X-Request-Id")
	}

	var db detailBody
	if err := json.Unmarshal(body, &db); err != nil || len(db.Detail) == 0 {
		return e
	}

	var s string
	if err := json.Unmarshal(db.Detail, &s); err == nil {
		if s != "" {
			e.Message = s
		}
		return e
	}

	var fields []FieldError
	if err := json.Unmarshal(db.Detail, &fields); err == nil && len(fields) > 0 {
		e.Fields = fields
		if f := fields[0].Field(); f != "" {
			e.Message = f + ": " + fields[0].Msg
		} else {
			e.Message = fields[0].Msg
		}
	}

	return e
}

// As — сокращение для errors.As(err, **APIError).
func As(err error) (*APIError, bool) {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae, true
	}

	return nil, false
}

// IsStatus сообщает, что err — *APIError с указанным HTTP-статусом.
func IsStatus(err error, status int) bool {
	ae, ok := As(err)
	return ok && ae.Status == status
}

// IsCode сообщает, что err — *APIError с указанным стабильным кодом.
func IsCode(err error, code string) bool {
	ae, ok := As(err)
	return ok && ae.Code == code
}

// WriteDetail пишет ошибку в формате FastAPI {"detail": "..."}.
// Используется фейковым backend в тестах.
func WriteDetail(w http.ResponseWriter, r *http.Request, status int, detail string) {
	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		w.Header().Set("X-Request-Id", rid)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}

// baseFromHTTP — базовый маппинг HTTP-статус -> стабильный код/сообщение.
//   - 400 -> invalid_argument (битые входные данные, неверный пароль при смене)
//   - 401 -> unauthenticated (неверные креды, истёкший/отозванный токен)
//   - 403 -> permission_denied (неактивный пользователь)
//   - 404 -> not_found
//   - 409 -> already_exists (email/username заняты)
//   - 412 -> failed_precondition
//   - 422 -> unprocessable (ошибки валидации pydantic)
//   - 429 -> resource_exhausted
//   - 499 -> canceled
//   - 501 -> unimplemented
//   - 503 -> unavailable
//   - 504 -> deadline_exceeded
//   - прочее 4xx -> failed_request, 5xx -> internal
func baseFromHTTP(status int) (string, string) {
	switch status {
	case http.StatusBadRequest:
		return "invalid_argument", "invalid argument"
	case http.StatusUnauthorized:
		return "unauthenticated", "unauthenticated"
	case http.StatusForbidden:
		return "permission_denied", "permission denied"
	case http.StatusNotFound:
		return "not_found", "not found"
	case http.StatusConflict:
		return "already_exists", "already exists"
	case http.StatusPreconditionFailed:
		return "failed_precondition", "failed precondition"
	case http.StatusUnprocessableEntity:
		return "unprocessable", "validation failed"
	case http.StatusTooManyRequests:
		return "resource_exhausted", "resource exhausted"
	case StatusClientClosedRequest:
		return "canceled", "canceled"
	case http.StatusNotImplemented:
		return "unimplemented", "unimplemented"
	case http.StatusServiceUnavailable:
		return "unavailable", "service unavailable"
	case http.StatusGatewayTimeout:
		return "deadline_exceeded", "deadline exceeded"
	}

	if status >= 400 && status < 500 {
		return "failed_request", "request failed"
	}

	return "internal", "internal error"
}
