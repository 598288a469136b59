package auth

import "github.com/golang-jwt/jwt/v5"

type User struct {
	ID                int64  `json:"-"`
	Name              string `json:"name"`
	Username          string `json:"username"`
	Role              string `json:"role"`
	Token             string `json:"token,omitempty"`
	Password          []byte `json:"-"`
	PlaintextPassword string `json:"-"`
}

type UserClaim struct {
	Username string `json:"username"`

	jwt.RegisteredClaims
}
