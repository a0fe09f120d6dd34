package postgres

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mochaaless/p4Backend/internal/domain"
	"github.com/mochaaless/p4Backend/pkg/database"
	apperrors "github.com/mochaaless/p4Backend/pkg/errors"
)

func newUserTestRepo(t *testing.T) (*UserRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	return NewUserRepository(mock), mock
}

func TestUserRepository_Create(t *testing.T) {
	repo, mock := newUserTestRepo(t)

	u := domain.NewUser("Ada", "ada@example.com", "hash")
	mock.ExpectExec("INSERT INTO users").
		WithArgs(u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), u)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	repo, mock := newUserTestRepo(t)

	u := domain.NewUser("Ada", "ada@example.com", "hash")
	mock.ExpectExec("INSERT INTO users").
		WithArgs(u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt).
		WillReturnError(&pgconn.PgError{Code: uniqueViolation, ConstraintName: "users_email_key"})

	err := repo.Create(context.Background(), u)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_List(t *testing.T) {
	repo, mock := newUserTestRepo(t)

	u := domain.NewUser("Ada", "ada@example.com", "hash")
	mock.ExpectQuery("SELECT").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "email", "password_hash", "created_at"}).
			AddRow(u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt))

	users, err := repo.List(context.Background())

	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "ada@example.com", users[0].Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}
