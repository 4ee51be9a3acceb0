package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"edu-chat-service/internal/models"
)

// GenerateToken issues a signed session token carrying the identity
// snapshot the chat engine stamps onto messages.
func GenerateToken(user models.User, secretKey []byte, ttl time.Duration) (string, error) {
	if user.ID == "" {
		return "", errors.New("user id cannot be empty")
	}

	claims := jwt.MapClaims{
		"sub":  user.ID,
		"name": user.Name,
		"role": user.Role,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey)
}

// ValidateToken checks the signature and returns the identity snapshot.
func ValidateToken(tokenString string, secretKey []byte) (models.User, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secretKey, nil
	})
	if err != nil {
		return models.User{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return models.User{}, errors.New("invalid token")
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return models.User{}, errors.New("invalid token subject")
	}
	name, _ := claims["name"].(string)
	role, _ := claims["role"].(string)
	return models.User{ID: sub, Name: name, Role: role}, nil
}
