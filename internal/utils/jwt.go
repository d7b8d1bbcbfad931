package utils // package utils provides helpers shared by handlers and the booking flow

import (
    "errors" // errors reports malformed tokens
    "time"   // time computes expirations

    "github.com/golang-jwt/jwt/v5" // JWT library for creating and verifying signed tokens
    "github.com/google/uuid"       // uuid generates session identifiers
)

// SessionToken is a signed cookie value naming one booking session.
type SessionToken struct {
    SessionID string    // random identifier keying the Session Store
    Token     string    // the serialized JWT string
    Exp       time.Time // UTC expiration time
}

// ErrInvalidSession is returned for tokens that fail verification or carry
// no subject.
var ErrInvalidSession = errors.New("invalid session token")

// NewSessionToken starts a new session and signs an HS256 JWT whose subject
// is the session id.
func NewSessionToken(secret string, ttl time.Duration) (SessionToken, error) {
    return SignSession(secret, uuid.NewString(), ttl)
}

// SignSession signs a token for an existing session id, used to slide the
// expiry forward on activity.
func SignSession(secret, sessionID string, ttl time.Duration) (SessionToken, error) {
    now := time.Now().UTC()
    exp := now.Add(ttl)
    claims := jwt.RegisteredClaims{
        Subject:   sessionID,
        IssuedAt:  jwt.NewNumericDate(now),
        ExpiresAt: jwt.NewNumericDate(exp),
    }
    signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
    if err != nil {
        return SessionToken{}, err
    }
    return SessionToken{SessionID: sessionID, Token: signed, Exp: exp}, nil
}

// ParseSessionToken verifies raw and returns the session id it names.
func ParseSessionToken(secret, raw string) (string, error) {
    var claims jwt.RegisteredClaims
    tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
        return []byte(secret), nil
    }, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
    if err != nil || !tok.Valid {
        return "", ErrInvalidSession
    }
    if _, err := uuid.Parse(claims.Subject); err != nil {
        return "", ErrInvalidSession
    }
    return claims.Subject, nil
}
