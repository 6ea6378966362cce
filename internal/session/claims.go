package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims — сведения из access-токена для отображения (skilltrack status).
// Подпись НЕ проверяется: клиент не владеет секретом, а решение об
// истечении принимает только сервер (ответом 401).
type Claims struct {
	Subject   string
	Type      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired сообщает, что по данным токена срок уже прошёл.
// Нулевой ExpiresAt (claim отсутствует) считается бессрочным.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// Inspect разбирает JWT без проверки подписи.
func Inspect(token string) (Claims, error) {
	const op = "session.Inspect"

	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return Claims{}, fmt.Errorf("%s: %w", op, err)
	}

	var out Claims
	if sub, err := mc.GetSubject(); err == nil {
		out.Subject = sub
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time.UTC()
	}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time.UTC()
	}
	if typ, ok := mc["type"].(string); ok {
		out.Type = typ
	}

	return out, nil
}
