package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/avelkin/storefront/internal/hash"
	"github.com/avelkin/storefront/internal/models"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

const AccessTokenTTL = 15 * time.Minute

type Service struct {
	DB        *gorm.DB
	JWTSecret []byte
}

func (s *Service) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: pwHash,
		Role:         "user",
	}
	if err := s.DB.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return user, nil
}

// Login checks the credentials and issues a short-lived HS256 access token.
func (s *Service) Login(ctx context.Context, username, password string) (string, *models.User, time.Time, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, time.Time{}, ErrInvalidCredentials
		}
		return "", nil, time.Time{}, err
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		return "", nil, time.Time{}, ErrInvalidCredentials
	}

	exp := time.Now().Add(AccessTokenTTL)
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": user.Role,
		"exp":  exp.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.JWTSecret)
	if err != nil {
		return "", nil, time.Time{}, err
	}

	return token, &user, exp, nil
}

// ParseToken returns the user id and role carried by an access token.
func ParseToken(tokenString string, secret []byte) (uint, string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return 0, "", err
	}
	if !token.Valid {
		return 0, "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", errors.New("invalid token claims")
	}
	sub, ok := claims["sub"].(float64)
	if !ok {
		return 0, "", errors.New("invalid subject claim")
	}
	role, _ := claims["role"].(string)

	return uint(sub), role, nil
}
