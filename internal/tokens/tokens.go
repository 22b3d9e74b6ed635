package tokens

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is the only failure Parse* returns. Bad signature, wrong
// algorithm, malformed structure, expiry and a missing subject all collapse
// into it so callers cannot probe token internals.
var ErrInvalidToken = errors.New("invalid token")

// Manager signs and verifies both token kinds. Access and refresh tokens use
// separate secrets so leaking one cannot forge the other.
type Manager struct {
	accessSecret  []byte
	refreshSecret []byte
	method        jwt.SigningMethod
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewManager(accessSecret, refreshSecret []byte, algorithm string, accessTTL, refreshTTL time.Duration) (*Manager, error) {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("unknown signing algorithm %q", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("signing algorithm %q is not an HMAC method", algorithm)
	}
	if len(accessSecret) == 0 || len(refreshSecret) == 0 {
		return nil, errors.New("empty signing secret")
	}
	if subtle.ConstantTimeCompare(accessSecret, refreshSecret) == 1 {
		return nil, errors.New("access and refresh secrets must differ")
	}

	return &Manager{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		method:        method,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}, nil
}

func (m *Manager) AccessTTL() time.Duration  { return m.accessTTL }
func (m *Manager) RefreshTTL() time.Duration { return m.refreshTTL }

// IssueAccess encodes {sub, exp = now + access TTL} into a signed token.
func (m *Manager) IssueAccess(subject string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.accessTTL)),
	}
	return jwt.NewWithClaims(m.method, claims).SignedString(m.accessSecret)
}

// IssueRefresh signs a refresh token for subject. The jti claim makes every
// issued string unique, which the ledger's unique index relies on.
func (m *Manager) IssueRefresh(subject string) (string, time.Time, error) {
	exp := time.Now().Add(m.refreshTTL)
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(exp),
		ID:        uuid.NewString(),
	}
	token, err := jwt.NewWithClaims(m.method, claims).SignedString(m.refreshSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, exp, nil
}

func (m *Manager) ParseAccess(token string) (string, error) {
	return m.parse(token, m.accessSecret)
}

func (m *Manager) ParseRefresh(token string) (string, error) {
	return m.parse(token, m.refreshSecret)
}

func (m *Manager) parse(tokenStr string, secret []byte) (string, error) {
	var claims jwt.RegisteredClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != m.method.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return secret, nil
	})
	if err != nil || !tkn.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
