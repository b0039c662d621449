package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL is the token lifetime when the config does not override it.
const DefaultTokenTTL = time.Hour

// Claims is the payload carried by a bearer token. The permission level is
// a snapshot taken at issuance; changes to the underlying account do not
// affect tokens already in flight.
type Claims struct {
	AccountID int    `json:"account_id"`
	RUT       string `json:"rut"`
	Level     Level  `json:"level"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256-signed bearer tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	// now is swappable in tests.
	now func() time.Time
}

// NewTokenManager creates a TokenManager with the given signing secret and
// token lifetime. A non-positive ttl falls back to DefaultTokenTTL.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL returns the configured token lifetime.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a token for the given account snapshot. Expiry is strictly
// issued-at plus the configured TTL.
func (m *TokenManager) Issue(accountID int, rutID string, level Level) (string, error) {
	now := m.now().UTC()
	claims := &Claims{
		AccountID: accountID,
		RUT:       rutID,
		Level:     level,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify parses and validates a token. It returns (nil, false) on any
// failure: malformed token, wrong signature, or expiry. Callers get a
// single undifferentiated outcome; the reason is deliberately not
// surfaced.
func (m *TokenManager) Verify(token string) (*Claims, bool) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, false
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, false
	}
	return claims, true
}
