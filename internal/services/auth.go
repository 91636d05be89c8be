package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/brainforge-backend/internal/data/repos"
	types "github.com/yungbote/brainforge-backend/internal/domain"
	"github.com/yungbote/brainforge-backend/internal/platform/dbctx"
	"github.com/yungbote/brainforge-backend/internal/platform/logger"
	"github.com/yungbote/brainforge-backend/internal/platform/requestdata"
)

// AuthService verifies access tokens minted by the external identity issuer.
// It never issues tokens itself.
type AuthService interface {
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

// AccessClaims is the claim set the issuer signs. Subject carries the user id.
type AccessClaims struct {
	Email      string `json:"email,omitempty"`
	GivenName  string `json:"given_name,omitempty"`
	FamilyName string `json:"family_name,omitempty"`
	Picture    string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

type authService struct {
	log          *logger.Logger
	userRepo     repos.UserRepo
	jwtSecretKey string
}

func NewAuthService(log *logger.Logger, userRepo repos.UserRepo, jwtSecretKey string) AuthService {
	return &authService{
		log:          log.With("service", "AuthService"),
		userRepo:     userRepo,
		jwtSecretKey: jwtSecretKey,
	}
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return ctx, fmt.Errorf("%w: missing token", ErrUnauthorized)
	}
	if as.jwtSecretKey == "" {
		return ctx, fmt.Errorf("%w: token verification is not configured", ErrUnauthorized)
	}
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return ctx, fmt.Errorf("%w: invalid token: %v", ErrUnauthorized, err)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil || userID == uuid.Nil {
		return ctx, fmt.Errorf("%w: invalid subject claim", ErrUnauthorized)
	}

	if as.userRepo != nil {
		u := &types.User{
			ID:        userID,
			Email:     strings.TrimSpace(claims.Email),
			FirstName: strings.TrimSpace(claims.GivenName),
			LastName:  strings.TrimSpace(claims.FamilyName),
			AvatarURL: strings.TrimSpace(claims.Picture),
		}
		if err := as.userRepo.Upsert(dbctx.New(ctx), u); err != nil {
			return ctx, fmt.Errorf("sync user from token: %w", err)
		}
	}

	return requestdata.WithRequestData(ctx, &requestdata.RequestData{
		TokenString: tokenString,
		UserID:      userID,
	}), nil
}
