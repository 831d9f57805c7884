// Package storage реализует хранилище пользователей на основе PostgreSQL.
// Предоставляет upsert записи пользователя и выборки по email, по паре
// (email, активность) и по паре (id, активность).
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/glebkarpov/identity-hub/internal/models"
)

// ErrUserNotFound возвращается выборками, когда запись не найдена.
var ErrUserNotFound = errors.New("user not found")

// Storage инкапсулирует соединение с базой данных PostgreSQL
// и реализует методы работы с пользователями.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// SaveUser сохраняет запись пользователя, вставляя новую или заменяя
// существующую с тем же uid. Частичный уникальный индекс по email среди
// активных пользователей страхует инвариант "один активный пользователь
// на email" на уровне хранилища.
func (s *Storage) SaveUser(ctx context.Context, user models.User) error {
	const op = "storage.SaveUser"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (uid, email, password_hash, verification_code, is_active,
			      first_name, last_name, country_code, city)
			  VALUES ($1, $2, $3, NULLIF($4, ''), $5, NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''))
			  ON CONFLICT (uid) DO UPDATE
			  SET email = EXCLUDED.email,
			      password_hash = EXCLUDED.password_hash,
			      verification_code = EXCLUDED.verification_code,
			      is_active = EXCLUDED.is_active,
			      first_name = EXCLUDED.first_name,
			      last_name = EXCLUDED.last_name,
			      country_code = EXCLUDED.country_code,
			      city = EXCLUDED.city,
			      updated_at = NOW();`
	if _, err := s.DB.ExecContext(ctx, query,
		user.UID, user.Email, user.PasswordHash, user.VerificationCode, user.IsActive,
		user.FirstName, user.LastName, user.CountryCode, user.City); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// FindUserByEmail возвращает пользователя по нормализованному email
// независимо от активности или ErrUserNotFound.
func (s *Storage) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.FindUserByEmail"
	query := `SELECT uid, email, password_hash, verification_code, is_active,
			      first_name, last_name, country_code, city
			  FROM users
			  WHERE email = $1`
	return s.findUser(ctx, op, query, email)
}

// FindUserByEmailAndActive возвращает пользователя по паре (email, активность)
// или ErrUserNotFound.
func (s *Storage) FindUserByEmailAndActive(ctx context.Context, email string, active bool) (*models.User, error) {
	const op = "storage.FindUserByEmailAndActive"
	query := `SELECT uid, email, password_hash, verification_code, is_active,
			      first_name, last_name, country_code, city
			  FROM users
			  WHERE email = $1 AND is_active = $2`
	return s.findUser(ctx, op, query, email, active)
}

// FindUserByIDAndActive возвращает пользователя по паре (uid, активность)
// или ErrUserNotFound.
func (s *Storage) FindUserByIDAndActive(ctx context.Context, userUID string, active bool) (*models.User, error) {
	const op = "storage.FindUserByIDAndActive"
	query := `SELECT uid, email, password_hash, verification_code, is_active,
			      first_name, last_name, country_code, city
			  FROM users
			  WHERE uid = $1 AND is_active = $2`
	return s.findUser(ctx, op, query, userUID, active)
}

func (s *Storage) findUser(ctx context.Context, op, query string, args ...any) (*models.User, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, args...)

	var verificationCode, firstName, lastName, countryCode, city sql.NullString
	if err := row.Scan(&u.UID, &u.Email, &u.PasswordHash, &verificationCode, &u.IsActive,
		&firstName, &lastName, &countryCode, &city); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	u.VerificationCode = verificationCode.String
	u.FirstName = firstName.String
	u.LastName = lastName.String
	u.CountryCode = countryCode.String
	u.City = city.String
	return u, nil
}
