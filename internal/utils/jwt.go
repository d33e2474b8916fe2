package utils // package utils provides helper functions for token creation and hashing

import (
    "errors"  // sentinel errors for the verification taxonomy
    "strconv" // user IDs travel as the JWT subject string
    "time"    // time utilities for generating expirations

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
    "github.com/google/uuid"       // jti claim so every issuance is distinct
)

// Verification failures collapse into two classes.  Expiry is the only
// failure the request gate is allowed to react to (by attempting a refresh);
// everything else — bad signature, wrong algorithm, malformed payload — is
// reported uniformly so callers cannot probe which check failed.
var (
    ErrTokenExpired = errors.New("token expired")
    ErrTokenInvalid = errors.New("invalid token")
)

// Claims is the payload embedded in both access and refresh tokens: the
// subject user ID, the email and the role names current at issuance time.
// Access and refresh tokens share this shape and differ only in signing
// secret and lifetime.
type Claims struct {
    Email string   `json:"email"`
    Roles []string `json:"roles"`
    jwt.RegisteredClaims
}

// UserID parses the subject claim back into a numeric user ID.
func (c *Claims) UserID() (uint64, error) {
    id, err := strconv.ParseUint(c.Subject, 10, 64)
    if err != nil {
        return 0, ErrTokenInvalid
    }
    return id, nil
}

// Token represents a signed JWT along with its expiry.  The Raw field
// contains the serialized token string handed to the client.
type Token struct {
    Raw string    // the serialized JWT string
    Exp time.Time // the UTC expiration time
}

// NewToken builds and signs an HS256 JWT carrying the user's identity and
// roles.  The same function mints both access and refresh tokens; the caller
// chooses the secret and TTL.  Standard claims: sub, exp, iat and a random
// jti so two issuances for the same user are never byte-identical.
func NewToken(secret string, userID uint64, email string, roles []string, ttl time.Duration) (Token, error) {
    now := time.Now().UTC()
    exp := now.Add(ttl)
    claims := &Claims{
        Email: email,
        Roles: roles,
        RegisteredClaims: jwt.RegisteredClaims{
            Subject:   strconv.FormatUint(userID, 10),
            ExpiresAt: jwt.NewNumericDate(exp),
            IssuedAt:  jwt.NewNumericDate(now),
            ID:        uuid.NewString(),
        },
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return Token{}, err
    }
    return Token{Raw: signed, Exp: exp}, nil
}

// ParseToken verifies a token's signature and expiry against the given
// secret and returns its claims.  The signing method is pinned to HMAC so a
// token cannot downgrade the algorithm.  Returns ErrTokenExpired only when
// signature verification succeeded and the token is merely past its exp;
// every other failure maps to ErrTokenInvalid.
func ParseToken(raw, secret string) (*Claims, error) {
    tok, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrTokenInvalid
        }
        return []byte(secret), nil
    })
    if err != nil {
        if errors.Is(err, jwt.ErrTokenExpired) {
            return nil, ErrTokenExpired
        }
        return nil, ErrTokenInvalid
    }
    claims, ok := tok.Claims.(*Claims)
    if !ok || !tok.Valid {
        return nil, ErrTokenInvalid
    }
    return claims, nil
}
