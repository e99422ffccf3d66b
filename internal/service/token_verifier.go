package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "affinity-chat"

var (
	ErrJWTInvalid = errors.New("jwt invalid")
	ErrJWTExpired = errors.New("jwt expired")
)

// Claims identifica al participante humano de la conversacion.
type Claims struct {
	UserID    string `json:"uid"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// TokenVerifier valida los access tokens de la capa de presentacion.
// Las cuentas viven afuera; Issue existe para entornos de desarrollo y tests.
type TokenVerifier struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{
		secret: []byte(secret),
		issuer: tokenIssuer,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (v *TokenVerifier) Issue(userID string, ttl time.Duration) (string, error) {
	if len(v.secret) == 0 || strings.TrimSpace(userID) == "" {
		return "", ErrJWTInvalid
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	now := v.now()
	claims := Claims{
		UserID:    userID,
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    v.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

func (v *TokenVerifier) ParseAccessToken(accessToken string) (Claims, error) {
	if len(v.secret) == 0 || strings.TrimSpace(accessToken) == "" {
		return Claims{}, ErrJWTInvalid
	}
	var claims Claims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(accessToken, &claims, func(_ *jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrJWTExpired
		}
		return Claims{}, ErrJWTInvalid
	}
	if claims.TokenType != "access" || strings.TrimSpace(claims.UserID) == "" || claims.Subject != claims.UserID {
		return Claims{}, ErrJWTInvalid
	}
	if claims.Issuer != v.issuer {
		return Claims{}, ErrJWTInvalid
	}
	return claims, nil
}
