package session

import (
	"os"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	Name      string `json:"name"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email"`
	Confirmed bool   `json:"confirmed"`

	jwt.RegisteredClaims
}

func jwtSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "aquaflow-insecure-dev-secret"
	}
	return []byte(secret)
}

func SignToken(identity Identity, confirmed bool, now time.Time) (string, error) {
	claims := Claims{
		Name:      identity.Name,
		Lastname:  identity.Lastname,
		Email:     identity.Email,
		Confirmed: confirmed,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenExpiration)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret())
}

func ParseToken(token string) (*Context, error) {
	claims := Claims{}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return jwtSecret(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return nil, err
	}
	uid, err := types.ParseID(claims.Subject)
	if err != nil {
		return nil, err
	}
	ctx := Context{
		Token: token,
		Identity: Identity{
			ID:       uid,
			Name:     claims.Name,
			Lastname: claims.Lastname,
			Email:    claims.Email,
		},
	}
	if claims.IssuedAt != nil {
		ctx.SigningTime = claims.IssuedAt.Time
	}
	return &ctx, nil
}
