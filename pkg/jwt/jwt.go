package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"shiftdesk/backend/config"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims are the custom JWT claims shared with the HR platform gateway.
type Claims struct {
	EmployeeID string `json:"employee_id"`
	Role       string `json:"role"` // employee | manager | admin
	BranchID   string `json:"branch_id"`
	jwtv5.RegisteredClaims
}

// Manager signs and verifies HS256 tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager creates a token manager from auth configuration.
func NewManager(cfg *config.AuthConfig) *Manager {
	return &Manager{
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.AccessTokenTTL,
	}
}

// GenerateToken issues an access token. Production tokens come from the HR
// gateway; this is used by tooling and tests.
func (m *Manager) GenerateToken(employeeID, role, branchID string) (string, error) {
	now := time.Now()
	claims := Claims{
		EmployeeID: employeeID,
		Role:       role,
		BranchID:   branchID,
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(m.ttl)),
			Issuer:    "shiftdesk",
		},
	}

	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ParseToken verifies a token and returns its claims.
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwtv5.ParseWithClaims(tokenString, &Claims{}, func(t *jwtv5.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return m.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
