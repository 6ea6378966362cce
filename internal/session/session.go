// session хранит пару токенов клиента (access + refresh) — единственное
// разделяемое изменяемое состояние клиента.
//
// Основные аспекты:
//   - пара моделируется одним неизменяемым значением Credentials и пишется
//     в хранилище одной операцией: нельзя увидеть «половину» пары;
//   - Store — абстракция над конкретным бэкендом (память, файл, Redis),
//     которую получает client.Client вместо глобального состояния;
//   - срок жизни токенов не хранится: истечение обнаруживается только по 401.
package session

import (
	"context"
	"errors"
)

// Имена слотов. Совпадают с ключами, под которыми веб-клиент держит токены,
// и используются как поля JSON-файла и Redis-хэша.
const (
	SlotAccessToken  = "accessToken"
	SlotRefreshToken = "refreshToken"
)

var (
	// ErrIncompletePair — попытка сохранить пару, в которой есть только один токен.
	ErrIncompletePair = errors.New("incomplete token pair")
	// ErrUnknownBackend — в конфигурации указан неизвестный тип хранилища.
	ErrUnknownBackend = errors.New("unknown session backend")
)

// Credentials — пара токенов сессии.
// Нулевое значение означает «сессии нет».
type Credentials struct {
	AccessToken  string
	RefreshToken string
}

// Valid сообщает, что оба токена присутствуют.
func (c Credentials) Valid() bool {
	return c.AccessToken != "" && c.RefreshToken != ""
}

// Empty сообщает, что сессии нет.
func (c Credentials) Empty() bool {
	return c.AccessToken == "" && c.RefreshToken == ""
}

// normalize сворачивает повреждённую (половинчатую) пару в пустую.
func (c Credentials) normalize() Credentials {
	if c.Valid() {
		return c
	}

	return Credentials{}
}

// Store задаёт контракт хранилища сессии.
// Реализации обязаны быть безопасны для конкурентного использования.
type Store interface {
	// Get возвращает текущую пару.
	// Если сессии нет — нулевое Credentials и nil-ошибка.
	Get(ctx context.Context) (Credentials, error)
	// Set атомарно перезаписывает пару целиком.
	// Неполная пара отклоняется с ErrIncompletePair.
	Set(ctx context.Context, c Credentials) error
	// Clear удаляет оба токена одной операцией.
	Clear(ctx context.Context) error
}

func validate(c Credentials) error {
	if !c.Valid() {
		return ErrIncompletePair
	}

	return nil
}
