package httpapi

import (
	"errors"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"meezypos/backend/internal/domain"
)

// AuthManager issues and validates the bearer tokens of the single admin
// operator. It is optional: with no secret or credentials configured the API
// runs open, which matches how the till is deployed on a trusted LAN.
type AuthManager struct {
	secret       []byte
	tokenTTL     time.Duration
	username     string
	passwordHash string
}

type posCustomClaims struct {
	jwtlib.RegisteredClaims
	Role string `json:"role"`
}

func NewAuthManager(secret string, tokenTTL time.Duration, username string, password string) *AuthManager {
	if secret == "" || username == "" || password == "" {
		return nil
	}
	if tokenTTL <= 0 {
		tokenTTL = 8 * time.Hour
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil
	}

	return &AuthManager{
		secret:       []byte(secret),
		tokenTTL:     tokenTTL,
		username:     strings.ToLower(strings.TrimSpace(username)),
		passwordHash: string(hash),
	}
}

func (a *AuthManager) Login(req domain.LoginRequest) (domain.LoginResponse, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	if username != a.username {
		return domain.LoginResponse{}, errors.New("invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(a.passwordHash), []byte(req.Password)) != nil {
		return domain.LoginResponse{}, errors.New("invalid credentials")
	}

	expiresAt := time.Now().UTC().Add(a.tokenTTL)
	token, err := a.sign(username, "admin", expiresAt)
	if err != nil {
		return domain.LoginResponse{}, err
	}

	return domain.LoginResponse{
		AccessToken: token,
		Role:        "admin",
		ExpiresAt:   expiresAt.Format(time.RFC3339),
	}, nil
}

func (a *AuthManager) ParseToken(tokenStr string) (domain.Actor, error) {
	claims := &posCustomClaims{}
	token, err := jwtlib.ParseWithClaims(tokenStr, claims, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	}, jwtlib.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return domain.Actor{}, errors.New("invalid or expired token")
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return domain.Actor{}, errors.New("invalid token subject")
	}
	return domain.Actor{Username: sub, Role: claims.Role}, nil
}

func (a *AuthManager) sign(username, role string, expiresAt time.Time) (string, error) {
	claims := posCustomClaims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwtlib.NewNumericDate(time.Now().UTC()),
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
			Issuer:    "meezypos",
		},
		Role: role,
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}
