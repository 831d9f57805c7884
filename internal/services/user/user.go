// Package user содержит логику бизнес-уровня жизненного цикла пользователя:
// регистрацию, активацию, вход, сброс пароля и операции над профилем.
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/glebkarpov/identity-hub/internal/authctx"
	"github.com/glebkarpov/identity-hub/internal/lib/idgen"
	"github.com/glebkarpov/identity-hub/internal/lib/jwt"
	"github.com/glebkarpov/identity-hub/internal/lib/password"
	"github.com/glebkarpov/identity-hub/internal/lib/sl"
	"github.com/glebkarpov/identity-hub/internal/models"
	"github.com/glebkarpov/identity-hub/internal/notifier"
	"github.com/glebkarpov/identity-hub/internal/roles"
	"github.com/glebkarpov/identity-hub/internal/storage"
)

const (
	viewCachePrefix = "userview:"
	viewCacheTTL    = 5 * time.Minute
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// SaveUser вставляет запись пользователя или заменяет существующую с тем же uid.
	SaveUser(ctx context.Context, user models.User) error

	// FindUserByEmail возвращает пользователя по email независимо от активности
	// или storage.ErrUserNotFound.
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)

	// FindUserByEmailAndActive возвращает пользователя по паре (email, активность)
	// или storage.ErrUserNotFound.
	FindUserByEmailAndActive(ctx context.Context, email string, active bool) (*models.User, error)

	// FindUserByIDAndActive возвращает пользователя по паре (uid, активность)
	// или storage.ErrUserNotFound.
	FindUserByIDAndActive(ctx context.Context, userUID string, active bool) (*models.User, error)
}

// ViewCache описывает кэш публичных представлений пользователей.
type ViewCache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Service реализует операции жизненного цикла пользователя.
type Service struct {
	users    UserRepository
	ids      idgen.Generator
	hasher   *password.Hasher
	jwtMaker jwt.Maker
	roles    roles.Provider
	notifier notifier.Notifier
	cache    ViewCache
	log      *slog.Logger
}

// New создает новый экземпляр Service.
func New(users UserRepository, ids idgen.Generator, hasher *password.Hasher,
	jwtMaker jwt.Maker, rolesProvider roles.Provider, n notifier.Notifier,
	cache ViewCache, log *slog.Logger) *Service {
	return &Service{
		users:    users,
		ids:      ids,
		hasher:   hasher,
		jwtMaker: jwtMaker,
		roles:    rolesProvider,
		notifier: n,
		cache:    cache,
		log:      log,
	}
}

// Register начинает регистрацию: сохраняет неактивного пользователя с хэшем
// пароля и свежим кодом подтверждения и отправляет код на email.
//
// Повторная регистрация того же email до активации переиспользует uid
// существующей записи: действует последний отправленный код, прежний
// перестает подходить. Занятый активным пользователем email отклоняется
// с ErrDuplicateActiveUser.
func (s *Service) Register(ctx context.Context, email, rawPassword string) error {
	const op = "services.user.Register"

	email = normalizeEmail(email)

	uid := ""
	existing, err := s.users.FindUserByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.IsActive {
			return fmt.Errorf("%s: %w", op, ErrDuplicateActiveUser)
		}
		uid = existing.UID
	case errors.Is(err, storage.ErrUserNotFound):
		uid = s.ids.Generate()
	default:
		return fmt.Errorf("%s: %w", op, err)
	}

	hash, err := s.hasher.Hash(rawPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	code, err := password.GenerateVerificationCode()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		UID:              uid,
		Email:            email,
		PasswordHash:     hash,
		VerificationCode: code,
		IsActive:         false,
	}
	if err = s.users.SaveUser(ctx, user); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = s.notifier.SendVerificationCode(ctx, email, code); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("registration started", "email", email)
	return nil
}

// Activate завершает регистрацию: сверяет код подтверждения и переводит
// пользователя в активное состояние, погашая код.
func (s *Service) Activate(ctx context.Context, email, code string) error {
	const op = "services.user.Activate"

	email = normalizeEmail(email)

	pending, err := s.users.FindUserByEmailAndActive(ctx, email, false)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return fmt.Errorf("%s: %w", op, ErrUnknownEmail)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if pending.VerificationCode == "" || pending.VerificationCode != code {
		return fmt.Errorf("%s: %w", op, ErrInvalidVerificationCode)
	}

	pending.VerificationCode = ""
	pending.IsActive = true
	if err = s.users.SaveUser(ctx, *pending); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user activated", "email", email)
	return nil
}

// SignIn проверяет учетные данные активного пользователя и возвращает
// подписанный токен доступа с его ролями.
//
// Неизвестный email и неверный пароль дают один и тот же результат —
// ErrInvalidCredentials.
func (s *Service) SignIn(ctx context.Context, email, rawPassword string) (string, error) {
	const op = "services.user.SignIn"

	email = normalizeEmail(email)

	user, err := s.users.FindUserByEmailAndActive(ctx, email, true)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err = s.hasher.Compare(user.PasswordHash, rawPassword); err != nil {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	userRoles, err := s.roles.RolesFor(ctx, user.UID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.jwtMaker.GenerateToken(user.UID, userRoles)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user signed in", "uid", user.UID)
	return token, nil
}

// ResetPassword выдает активному пользователю временный пароль: генерирует
// его, заменяет хэш в хранилище и отправляет временный пароль на email.
// Прежний пароль перестает подходить сразу после замены.
func (s *Service) ResetPassword(ctx context.Context, email string) error {
	const op = "services.user.ResetPassword"

	email = normalizeEmail(email)

	user, err := s.users.FindUserByEmailAndActive(ctx, email, true)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return fmt.Errorf("%s: %w", op, ErrUnknownEmail)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	tempPassword, err := password.GenerateTemporaryPassword()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	hash, err := s.hasher.Hash(tempPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	user.PasswordHash = hash
	if err = s.users.SaveUser(ctx, *user); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = s.notifier.SendTemporaryPassword(ctx, email, tempPassword); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("password reset", "uid", user.UID)
	return nil
}

// GetUser возвращает публичное представление активного пользователя по id.
func (s *Service) GetUser(ctx context.Context, userUID string) (*models.UserView, error) {
	const op = "services.user.GetUser"

	key := viewCachePrefix + userUID
	var cached models.UserView
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.log.Warn("failed to read user view from cache", sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	user, err := s.users.FindUserByIDAndActive(ctx, userUID, true)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUnknownOrInactiveUser)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	view := user.ToView()
	if err = s.cache.Set(ctx, key, view, viewCacheTTL); err != nil {
		s.log.Warn("failed to cache user view", sl.Err(err))
	}
	return &view, nil
}

// GetMe возвращает публичное представление текущего пользователя.
func (s *Service) GetMe(ctx context.Context) (*models.UserView, error) {
	const op = "services.user.GetMe"

	uid, err := authctx.RequesterUID(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.GetUser(ctx, uid)
}

// UpdateMe целиком заменяет профиль текущего пользователя. Непустой пароль
// в entry заменяет пароль пользователя, пустой оставляет прежний.
func (s *Service) UpdateMe(ctx context.Context, entry models.UpdateUserEntry) (*models.UserView, error) {
	const op = "services.user.UpdateMe"

	uid, err := authctx.RequesterUID(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.users.FindUserByIDAndActive(ctx, uid, true)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUnknownOrInactiveUser)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if strings.TrimSpace(entry.Password) != "" {
		hash, err := s.hasher.Hash(entry.Password)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		user.PasswordHash = hash
	}
	user.FirstName = entry.FirstName
	user.LastName = entry.LastName
	user.CountryCode = entry.CountryCode
	user.City = entry.City

	if err = s.users.SaveUser(ctx, *user); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidateView(ctx, uid)

	view := user.ToView()
	s.log.Info("profile updated", "uid", uid)
	return &view, nil
}

// DeactivateMe переводит текущего пользователя в неактивное состояние.
// Его email освобождается для новой регистрации.
func (s *Service) DeactivateMe(ctx context.Context) error {
	const op = "services.user.DeactivateMe"

	uid, err := authctx.RequesterUID(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.users.FindUserByIDAndActive(ctx, uid, true)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return fmt.Errorf("%s: %w", op, ErrUnknownOrInactiveUser)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	user.IsActive = false
	if err = s.users.SaveUser(ctx, *user); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidateView(ctx, uid)

	s.log.Info("user deactivated", "uid", uid)
	return nil
}

func (s *Service) invalidateView(ctx context.Context, userUID string) {
	if err := s.cache.Invalidate(ctx, viewCachePrefix+userUID); err != nil {
		s.log.Warn("failed to invalidate user view cache", sl.Err(err))
	}
}

// normalizeEmail приводит email к канонической форме хранения.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
