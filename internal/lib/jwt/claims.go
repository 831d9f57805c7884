// Package jwt реализует генерацию и парсинг JWT токенов с пользовательскими claim полями.
//
// Maker определяет интерфейс для создания и проверки токенов доступа с
// идентификатором пользователя и набором ролей. MakerImpl — конкретная
// реализация на симметричном ключе с настраиваемым временем жизни.
package jwt

import (
	"strings"
	"time"
)

// RolesSeparator — разделитель списка ролей в claim поле roles.
const RolesSeparator = ","

// Maker описывает интерфейс для генерации и парсинга токенов доступа.
type Maker interface {
	// GenerateToken создает токен с идентификатором пользователя и набором ролей.
	GenerateToken(userUID string, roles []string) (string, error)
	// ParseToken проверяет подпись и срок действия и возвращает *CustomClaims.
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа
// и времени жизни токена (TTL).
type MakerImpl struct {
	secretKey string        // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration // Время жизни токена.
	now       func() time.Time
}

// NewJWTMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
		now:       time.Now,
	}
}

// WithNowFunc заменяет источник времени токена. Используется в тестах
// для проверки истечения срока действия.
func (j *MakerImpl) WithNowFunc(now func() time.Time) *MakerImpl {
	j.now = now
	return j
}

// JoinRoles собирает список ролей в значение claim поля roles.
func JoinRoles(roles []string) string {
	return strings.Join(roles, RolesSeparator)
}

// SplitRoles разбирает значение claim поля roles в список ролей.
func SplitRoles(roles string) []string {
	if roles == "" {
		return nil
	}
	return strings.Split(roles, RolesSeparator)
}
