package utils // package utils provides helpers for session tokens and password hashing

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/iliyamo/campaign-companion/internal/model"
)

// ErrInvalidToken is returned for any token that fails verification. The
// cause is deliberately not distinguished for callers.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the payload of a session token.
type Claims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// AccessToken represents a signed session token along with its expiry.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// TokenIssuer signs and verifies HS256 session tokens. The secret is fixed
// for the lifetime of the process.
type TokenIssuer struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// NewTokenIssuer returns an issuer for the given service identity.
func NewTokenIssuer(secret, issuer, audience string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock returns a copy of the issuer that reads time from now.
func (t *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	cp := *t
	cp.now = now
	return &cp
}

// TTL is the validity window of issued tokens.
func (t *TokenIssuer) TTL() time.Duration { return t.ttl }

// Issue builds and signs a token carrying userID and username.
func (t *TokenIssuer) Issue(userID, username string) (AccessToken, error) {
	now := t.now()
	// NumericDate serializes whole seconds; truncate so Exp matches the claim.
	exp := now.Add(t.ttl).Truncate(time.Second)
	claims := Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			Issuer:    t.issuer,
			Audience:  jwt.ClaimStrings{t.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// Validate verifies signature, issuer, audience and expiry and returns the
// identity embedded in the token. A token is rejected at its expiry instant.
func (t *TokenIssuer) Validate(raw string) (model.Identity, error) {
	var claims Claims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithAudience(t.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !tok.Valid {
		return model.Identity{}, ErrInvalidToken
	}
	if claims.ExpiresAt == nil || !t.now().Before(claims.ExpiresAt.Time) {
		return model.Identity{}, ErrInvalidToken
	}
	if claims.UserID == "" || claims.Username == "" {
		return model.Identity{}, ErrInvalidToken
	}
	return model.Identity{UserID: claims.UserID, Username: claims.Username}, nil
}
