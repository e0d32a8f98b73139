package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mivamind/casegrade-backend/internal/logger"
	"github.com/mivamind/casegrade-backend/internal/pkg/apperr"
	"github.com/mivamind/casegrade-backend/internal/repos"
	"github.com/mivamind/casegrade-backend/internal/requestdata"
	"github.com/mivamind/casegrade-backend/internal/types"
	"github.com/mivamind/casegrade-backend/internal/utils"
)

type AuthService interface {
	RegisterUser(ctx context.Context, user *types.User, password string) (*types.User, error)
	LoginUser(ctx context.Context, email, password string) (string, *types.User, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type JWTClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type authService struct {
	log          *logger.Logger
	userRepo     repos.UserRepo
	jwtSecretKey string
	accessTTL    time.Duration
}

func NewAuthService(log *logger.Logger, userRepo repos.UserRepo, jwtSecretKey string, accessTTL time.Duration) (AuthService, error) {
	if jwtSecretKey == "" {
		return nil, fmt.Errorf("missing JWT secret")
	}
	if accessTTL <= 0 {
		accessTTL = 7 * 24 * time.Hour
	}
	return &authService{
		log:          log.With("service", "AuthService"),
		userRepo:     userRepo,
		jwtSecretKey: jwtSecretKey,
		accessTTL:    accessTTL,
	}, nil
}

func (as *authService) RegisterUser(ctx context.Context, user *types.User, password string) (*types.User, error) {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.Email == "" {
		return nil, fmt.Errorf("%w: email required", apperr.ErrInvalidArgument)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password required", apperr.ErrInvalidArgument)
	}
	if user.Role == "" {
		user.Role = types.UserRoleStudent
	}
	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user.Password = hashed
	created, err := as.userRepo.Create(ctx, nil, user)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: email already registered", apperr.ErrInvalidArgument)
		}
		return nil, fmt.Errorf("%w: create user: %v", apperr.ErrPersistence, err)
	}
	as.log.Info("User registered", "user_email", created.Email)
	return created, nil
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (string, *types.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := as.userRepo.GetByEmail(ctx, nil, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthorized)
		}
		return "", nil, fmt.Errorf("%w: user lookup: %v", apperr.ErrPersistence, err)
	}
	if !utils.CheckPassword(user.Password, password) {
		return "", nil, fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthorized)
	}
	token, err := as.generateAccessToken(user)
	if err != nil {
		return "", nil, fmt.Errorf("generate access token: %w", err)
	}
	return token, user, nil
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		return ctx, fmt.Errorf("%w: %v", apperr.ErrUnauthorized, err)
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return ctx, fmt.Errorf("%w: invalid token", apperr.ErrUnauthorized)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("%w: invalid subject", apperr.ErrUnauthorized)
	}
	rd := &requestdata.RequestData{
		UserID:      userID,
		Email:       claims.Email,
		Role:        claims.Role,
		TokenString: tokenString,
	}
	return requestdata.WithRequestData(ctx, rd), nil
}
