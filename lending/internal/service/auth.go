package service

import (
	"context"
	"time"

	jwt "github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/bookhive/lending-service/lending/internal/errs"
	"github.com/bookhive/lending-service/lending/internal/model"
	"github.com/bookhive/lending-service/lending/internal/repository"
	"github.com/bookhive/lending-service/pkg/auth"
)

// AuthService owns credentials and token issuance. The lending core never
// sees a password or a token, only the Identity the middleware resolves.
type AuthService struct {
	log      *zap.Logger
	users    repository.Users
	secret   []byte
	tokenTTL time.Duration
}

func NewAuthService(users repository.Users, secret []byte, tokenTTL time.Duration, log *zap.Logger) *AuthService {
	return &AuthService{
		log:      log,
		users:    users,
		secret:   secret,
		tokenTTL: tokenTTL,
	}
}

func (s *AuthService) Register(ctx context.Context, req model.UserCreateRequest) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if _, err := s.users.CreateUser(ctx, req.Username, string(hash)); err != nil {
		return err
	}
	return nil
}

func (s *AuthService) Login(ctx context.Context, req model.AuthRequest) (model.AuthResponse, error) {
	user, err := s.users.GetUser(ctx, req.Username)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.AuthResponse{}, errs.ErrInvalidCredentials
		}
		return model.AuthResponse{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return model.AuthResponse{}, errs.ErrInvalidCredentials
	}

	expirationTime := time.Now().Add(s.tokenTTL)
	claims := &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
		},
	}
	claims.Profile.UserID = user.ID
	claims.Profile.Username = user.Username
	claims.Profile.Role = user.Role

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return model.AuthResponse{}, err
	}

	return model.AuthResponse{
		AccessToken: tokenString,
		ExpiresIn:   int(expirationTime.Unix()),
	}, nil
}
