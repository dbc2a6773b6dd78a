package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Ashokvp-05/hr-management-system-sub000/internal/auth"
	autherrors "github.com/Ashokvp-05/hr-management-system-sub000/internal/auth/errors"
	authMock "github.com/Ashokvp-05/hr-management-system-sub000/internal/auth/mock"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

func parseClaims(t *testing.T, token string) jwt.MapClaims {
	t.Helper()
	parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	return parsed.Claims.(jwt.MapClaims)
}

func newUser(t *testing.T, password string) *auth.User {
	t.Helper()
	pw, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &auth.User{
		ID:       uuid.New(),
		Name:     "Dana Approver",
		Email:    "dana@example.com",
		Password: string(pw),
		IsActive: true,
	}
}

func TestService_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := authMock.NewMockRepository(ctrl)
	service := auth.NewService(mockRepo, testSecret, zap.NewNop())
	ctx := context.Background()

	user := newUser(t, "password123")

	t.Run("Success Login", func(t *testing.T) {
		mockRepo.EXPECT().GetByEmail(ctx, user.Email).Return(user, nil)
		mockRepo.EXPECT().PrimaryRole(ctx, user.ID).Return("MANAGER", nil)

		tokens, resp, err := service.Login(ctx, user.Email, "password123")

		require.NoError(t, err)
		assert.Equal(t, user.Email, resp.Email)
		assert.Equal(t, "MANAGER", resp.Role)

		access := parseClaims(t, tokens.AccessToken)
		assert.Equal(t, user.ID.String(), access["user_id"])
		assert.Equal(t, "MANAGER", access["role"])
		assert.Equal(t, "access", access["typ"])
		assert.Equal(t, "refresh", parseClaims(t, tokens.RefreshToken)["typ"])
	})

	t.Run("Wrong Password", func(t *testing.T) {
		mockRepo.EXPECT().GetByEmail(ctx, user.Email).Return(user, nil)

		_, _, err := service.Login(ctx, user.Email, "wrongpass")
		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})

	t.Run("Unknown Email", func(t *testing.T) {
		mockRepo.EXPECT().GetByEmail(ctx, "ghost@example.com").Return(nil, gorm.ErrRecordNotFound)

		_, _, err := service.Login(ctx, "ghost@example.com", "password123")
		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})

	t.Run("Inactive Account", func(t *testing.T) {
		inactive := *user
		inactive.IsActive = false
		mockRepo.EXPECT().GetByEmail(ctx, user.Email).Return(&inactive, nil)

		_, _, err := service.Login(ctx, user.Email, "password123")
		assert.ErrorIs(t, err, autherrors.ErrInactiveUser)
	})

	t.Run("Lookup Failure Is Not Masked", func(t *testing.T) {
		dbErr := errors.New("connection reset")
		mockRepo.EXPECT().GetByEmail(ctx, user.Email).Return(nil, dbErr)

		_, _, err := service.Login(ctx, user.Email, "password123")
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestService_RefreshToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := authMock.NewMockRepository(ctrl)
	service := auth.NewService(mockRepo, testSecret, zap.NewNop())
	ctx := context.Background()

	user := newUser(t, "password123")
	mockRepo.EXPECT().GetByEmail(ctx, user.Email).Return(user, nil)
	mockRepo.EXPECT().PrimaryRole(ctx, user.ID).Return("HR_ADMIN", nil)
	issued, _, err := service.Login(ctx, user.Email, "password123")
	require.NoError(t, err)

	t.Run("Success Refresh", func(t *testing.T) {
		mockRepo.EXPECT().GetByID(ctx, user.ID).Return(user, nil)
		mockRepo.EXPECT().PrimaryRole(ctx, user.ID).Return("HR_ADMIN", nil)

		tokens, resp, err := service.RefreshToken(ctx, issued.RefreshToken)

		require.NoError(t, err)
		assert.Equal(t, user.ID.String(), resp.ID)
		assert.NotEmpty(t, tokens.AccessToken)
	})

	t.Run("Access Token Is Not A Refresh Token", func(t *testing.T) {
		_, _, err := service.RefreshToken(ctx, issued.AccessToken)
		assert.ErrorIs(t, err, autherrors.ErrInvalidRefreshToken)
	})

	t.Run("Foreign Signature", func(t *testing.T) {
		other := auth.NewService(mockRepo, "other-secret", zap.NewNop())
		mockRepo.EXPECT().GetByEmail(ctx, user.Email).Return(user, nil)
		mockRepo.EXPECT().PrimaryRole(ctx, user.ID).Return("", nil)
		forged, _, err := other.Login(ctx, user.Email, "password123")
		require.NoError(t, err)

		_, _, err = service.RefreshToken(ctx, forged.RefreshToken)
		assert.ErrorIs(t, err, autherrors.ErrInvalidRefreshToken)
	})

	t.Run("User Deleted", func(t *testing.T) {
		mockRepo.EXPECT().GetByID(ctx, user.ID).Return(nil, gorm.ErrRecordNotFound)

		_, _, err := service.RefreshToken(ctx, issued.RefreshToken)
		assert.ErrorIs(t, err, autherrors.ErrUserNotFound)
	})
}

func TestService_GetMe(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := authMock.NewMockRepository(ctrl)
	service := auth.NewService(mockRepo, testSecret, zap.NewNop())
	ctx := context.Background()
	user := newUser(t, "password123")

	t.Run("Success", func(t *testing.T) {
		mockRepo.EXPECT().GetByID(ctx, user.ID).Return(user, nil)
		mockRepo.EXPECT().PrimaryRole(ctx, user.ID).Return("FINANCE_ADMIN", nil)

		resp, err := service.GetMe(ctx, user.ID.String())
		require.NoError(t, err)
		assert.Equal(t, "FINANCE_ADMIN", resp.Role)
	})

	t.Run("Invalid ID", func(t *testing.T) {
		_, err := service.GetMe(ctx, "not-a-uuid")
		assert.ErrorIs(t, err, autherrors.ErrInvalidUserID)
	})
}

func TestService_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := authMock.NewMockRepository(ctrl)
	service := auth.NewService(mockRepo, testSecret, zap.NewNop())
	ctx := context.Background()

	req := auth.RegisterRequest{Email: " New.User@Example.com ", Name: "New User", Password: "password123"}

	t.Run("Success Register", func(t *testing.T) {
		mockRepo.EXPECT().
			Create(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, u *auth.User) error {
				assert.Equal(t, "new.user@example.com", u.Email)
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)))
				return nil
			})

		resp, err := service.Register(ctx, req)

		require.NoError(t, err)
		assert.Equal(t, "new.user@example.com", resp.Email)
		assert.Empty(t, resp.Role)
	})

	t.Run("Email Taken", func(t *testing.T) {
		mockRepo.EXPECT().
			Create(ctx, gomock.Any()).
			Return(&pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email"})

		_, err := service.Register(ctx, req)
		assert.ErrorIs(t, err, autherrors.ErrEmailTaken)
	})
}
