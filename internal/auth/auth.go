package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mdobak/go-xerrors"
	"golang.org/x/crypto/bcrypt"

	"github.com/inkwellcms/inkwell/internal/utils/collectionutils"
	"github.com/inkwellcms/inkwell/internal/web"
)

const (
	UserCtxKey = "user_data"

	RoleOwner  = "owner"
	RoleEditor = "editor"
)

var (
	NotAuthenticatedUser = xerrors.Message("Not authenticated user")
)

// Auth issues and verifies tokens with a secret injected at construction and
// keeps a small token->user cache so the middleware does not hit the store on
// every authenticated request.
type Auth struct {
	secret             []byte
	authenticatedUsers *collectionutils.SafeMap[string, *User]
}

func NewAuth(secret string) *Auth {
	return &Auth{
		secret:             []byte(secret),
		authenticatedUsers: collectionutils.NewSafeMap[string, *User](),
	}
}

func (user *User) SetPassword(plainTextPassword string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), 12)
	if err != nil {
		return xerrors.New(err)
	}

	user.Password = hashedPassword
	return nil
}

func (user *User) IsPasswordMatch(plainTextPassword string) (bool, error) {
	err := bcrypt.CompareHashAndPassword(user.Password, []byte(plainTextPassword))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, xerrors.New(err)
	}

	return true, nil
}

func (auth *Auth) GenerateToken(user *User, duration time.Duration) (string, error) {
	expireAt := time.Now().Add(duration)
	claim := UserClaim{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expireAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claim)
	signedString, err := token.SignedString(auth.secret)
	if err != nil {
		return "", xerrors.New(err)
	}

	return signedString, nil
}

func (auth *Auth) Authenticate(tokenString string) (*UserClaim, error) {
	parsedToken, err := jwt.ParseWithClaims(tokenString, &UserClaim{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, xerrors.New("unexpected signing method")
		}
		return auth.secret, nil
	})

	if err != nil {
		return nil, xerrors.New(err)
	}

	if !parsedToken.Valid {
		return nil, xerrors.New("invalid token")
	}

	if claim, ok := parsedToken.Claims.(*UserClaim); ok {
		return claim, nil
	}
	return nil, xerrors.New("could not parse claims")
}

func (auth *Auth) GetAuthenticatedUser(r *http.Request) (*User, error) {
	user, ok := web.GetValueFromContext[*User](r, UserCtxKey)
	if !ok {
		return nil, NotAuthenticatedUser
	}

	return user, nil
}

func (auth *Auth) SetAuthenticatedUser(r *http.Request, user *User) *http.Request {
	return web.AddValueToContext(r, UserCtxKey, user)
}

func (auth *Auth) CacheAuthenticatedUser(token string, user *User) {
	auth.authenticatedUsers.Store(token, user)
}

func (auth *Auth) GetCachedUser(token string) (*User, bool) {
	return auth.authenticatedUsers.Get(token)
}

func (auth *Auth) IsUserAuthenticated(r *http.Request) bool {
	_, err := auth.GetAuthenticatedUser(r)
	return err == nil
}
