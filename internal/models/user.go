// Package models содержит доменную модель пользователя системы,
// включающую учетные данные, код подтверждения регистрации и поля профиля.
// Структуры используются в бизнес‑логике и при работе с хранилищем.
package models

// User представляет запись пользователя в хранилище.
//
// VerificationCode заполнен только пока пользователь не завершил активацию;
// после активации поле очищается. IsActive становится true только после
// успешной активации и снова false после деактивации.
type User struct {
	UID              string // Уникальный идентификатор пользователя
	Email            string // Нормализованная электронная почта
	PasswordHash     string // Хэш пароля пользователя
	VerificationCode string // Код подтверждения регистрации, пустой после активации
	IsActive         bool   // Признак активного пользователя
	FirstName        string
	LastName         string
	CountryCode      string
	City             string
}

// UserView — публичное представление пользователя, отдаваемое наружу.
// Не содержит хэш пароля и код подтверждения.
type UserView struct {
	UID         string `json:"id"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
	City        string `json:"city,omitempty"`
}

// ToView проецирует запись пользователя в публичное представление.
// Чувствительные поля не копируются по построению.
func (u *User) ToView() UserView {
	return UserView{
		UID:         u.UID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		CountryCode: u.CountryCode,
		City:        u.City,
	}
}

// UpdateUserEntry — данные полного обновления профиля текущего пользователя.
// Все поля профиля заменяются целиком; пустой Password оставляет пароль без изменений.
type UpdateUserEntry struct {
	Password    string
	FirstName   string
	LastName    string
	CountryCode string
	City        string
}
