package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"emocare/backend/internal/apperr"
	"emocare/backend/internal/model"
)

func (s *Store) CreateUser(ctx context.Context, email, name, passwordHash string) (model.User, error) {
	user := model.User{ID: uuid.NewString(), Email: email, Name: name, PasswordHash: passwordHash}
	err := s.withConn(ctx, "create user", func(conn *pgxpool.Conn) error {
		err := conn.QueryRow(
			ctx,
			`INSERT INTO "User" ("userId", email, name, "passwordHash", "createdAt")
			 VALUES ($1, $2, $3, $4, NOW())
			 RETURNING "createdAt"`,
			user.ID,
			user.Email,
			user.Name,
			user.PasswordHash,
		).Scan(&user.CreatedAt)
		if isUniqueViolation(err) {
			return apperr.Validation("Email already registered")
		}
		return err
	})
	if err != nil {
		return model.User{}, err
	}
	return user, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (model.User, error) {
	user := model.User{}
	err := s.withConn(ctx, "load user", func(conn *pgxpool.Conn) error {
		err := conn.QueryRow(
			ctx,
			`SELECT "userId", email, name, "passwordHash", "createdAt"
			 FROM "User"
			 WHERE email = $1`,
			email,
		).Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.CreatedAt)
		if isNoRows(err) {
			return apperr.NotFound("User not found")
		}
		return err
	})
	if err != nil {
		return model.User{}, err
	}
	return user, nil
}
