package auth

import (
	"errors"
	"strings"

	autherrors "github.com/Ashokvp-05/hr-management-system-sub000/internal/auth/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return autherrors.ErrUserNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return autherrors.ErrEmailTaken
	}

	// sqlite reports unique violations only through the message
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unique constraint failed") && strings.Contains(msg, "email") {
		return autherrors.ErrEmailTaken
	}

	return err
}
