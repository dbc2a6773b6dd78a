package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	autherrors "github.com/Ashokvp-05/hr-management-system-sub000/internal/auth/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour

	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Service interface {
	Login(ctx context.Context, email, password string) (Tokens, AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (Tokens, AuthResponse, error)
	GetMe(ctx context.Context, userID string) (*AuthResponse, error)
	Register(ctx context.Context, req RegisterRequest) (AuthResponse, error)
}

type service struct {
	repo   Repository
	secret []byte
	now    func() time.Time
	logger *zap.Logger
}

func NewService(repo Repository, secret string, logger ...*zap.Logger) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	return &service{repo: repo, secret: []byte(secret), now: time.Now, logger: l}
}

func (s *service) Login(ctx context.Context, email, password string) (Tokens, AuthResponse, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(mapRepositoryError(err), autherrors.ErrUserNotFound) {
			s.logger.Error("login lookup failed", zap.Error(err))
			return Tokens{}, AuthResponse{}, err
		}
		s.logger.Warn("login rejected: unknown email")
		return Tokens{}, AuthResponse{}, autherrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.logger.Warn("login rejected: wrong password", zap.String("user_id", user.ID.String()))
		return Tokens{}, AuthResponse{}, autherrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		s.logger.Warn("login rejected: inactive account", zap.String("user_id", user.ID.String()))
		return Tokens{}, AuthResponse{}, autherrors.ErrInactiveUser
	}

	return s.issue(ctx, user)
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (Tokens, AuthResponse, error) {
	claims, err := s.parse(refreshToken)
	if err != nil || claims["typ"] != tokenTypeRefresh {
		return Tokens{}, AuthResponse{}, autherrors.ErrInvalidRefreshToken
	}

	userIDStr, _ := claims["user_id"].(string)
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return Tokens{}, AuthResponse{}, autherrors.ErrInvalidToken
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return Tokens{}, AuthResponse{}, mapRepositoryError(err)
	}
	if !user.IsActive {
		return Tokens{}, AuthResponse{}, autherrors.ErrInactiveUser
	}

	return s.issue(ctx, user)
}

func (s *service) GetMe(ctx context.Context, userID string) (*AuthResponse, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, autherrors.ErrInvalidUserID
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	role, err := s.repo.PrimaryRole(ctx, u.ID)
	if err != nil {
		return nil, err
	}

	resp := mapToAuthResponse(u, role)
	return &resp, nil
}

// Register creates an account with no role; roles are granted through RBAC
// assignments.
func (s *service) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResponse{}, err
	}

	user := &User{
		ID:       uuid.New(),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Name:     strings.TrimSpace(req.Name),
		Password: string(hashed),
		IsActive: true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		mapped := mapRepositoryError(err)
		if errors.Is(mapped, autherrors.ErrEmailTaken) {
			s.logger.Warn("register rejected: email taken")
		} else {
			s.logger.Error("register failed", zap.Error(err))
		}
		return AuthResponse{}, mapped
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID.String()))
	return mapToAuthResponse(user, ""), nil
}

func (s *service) issue(ctx context.Context, user *User) (Tokens, AuthResponse, error) {
	role, err := s.repo.PrimaryRole(ctx, user.ID)
	if err != nil {
		s.logger.Error("resolve primary role failed", zap.String("user_id", user.ID.String()), zap.Error(err))
		return Tokens{}, AuthResponse{}, err
	}

	access, err := s.generateToken(user.ID.String(), role, tokenTypeAccess, accessTokenTTL)
	if err != nil {
		return Tokens{}, AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}
	refresh, err := s.generateToken(user.ID.String(), role, tokenTypeRefresh, refreshTokenTTL)
	if err != nil {
		return Tokens{}, AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}

	s.logger.Info("tokens issued", zap.String("user_id", user.ID.String()), zap.String("role", role))
	return Tokens{AccessToken: access, RefreshToken: refresh}, mapToAuthResponse(user, role), nil
}

func (s *service) generateToken(userID, role, typ string, expiry time.Duration) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"typ":     typ,
		"iat":     now.Unix(),
		"exp":     now.Add(expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *service) parse(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, autherrors.ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, autherrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, autherrors.ErrInvalidToken
	}
	return claims, nil
}
