package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/scribeworks/notes-service/internal/domain"
	"github.com/scribeworks/notes-service/internal/ports"
)

// JWTIssuer implements HS256 signing/parsing for the two token kinds.
// Access and refresh tokens use independent secrets; a token signed with one
// secret never verifies under the other, which is what keeps the kinds from
// being interchangeable.
type JWTIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	nowFn         func() time.Time
}

// NewJWTIssuer builds an issuer from the two configured secrets.
func NewJWTIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) (*JWTIssuer, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, errors.New("access and refresh token secrets are required")
	}
	if accessSecret == refreshSecret {
		return nil, errors.New("access and refresh token secrets must differ")
	}
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 30 * time.Minute
	}
	return &JWTIssuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		nowFn:         time.Now,
	}, nil
}

// WithClock overrides the issuer clock. Test hook.
func (s *JWTIssuer) WithClock(nowFn func() time.Time) *JWTIssuer {
	s.nowFn = nowFn
	return s
}

type accessJWTClaims struct {
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	Status   string   `json:"status,omitempty"`
	jwt.RegisteredClaims
}

type refreshJWTClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func (s *JWTIssuer) IssueAccessToken(userID uuid.UUID, username string, roles []domain.Role, status string) (string, error) {
	now := s.nowFn().UTC()
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, string(r))
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, accessJWTClaims{
		Username: username,
		Roles:    names,
		Status:   status,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	})
	return token.SignedString(s.accessSecret)
}

func (s *JWTIssuer) IssueRefreshToken(username string) (string, error) {
	now := s.nowFn().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshJWTClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
		},
	})
	return token.SignedString(s.refreshSecret)
}

func (s *JWTIssuer) ParseAccessToken(raw string) (ports.AccessClaims, error) {
	var claims accessJWTClaims
	if err := s.parse(raw, &claims, s.accessSecret); err != nil {
		return ports.AccessClaims{}, err
	}
	roles := make([]domain.Role, 0, len(claims.Roles))
	for _, name := range claims.Roles {
		roles = append(roles, domain.Role(name))
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ports.AccessClaims{}, fmt.Errorf("%w: parse subject: %v", domain.ErrTokenMalformed, err)
	}
	return ports.AccessClaims{
		UserID:    userID,
		Username:  claims.Username,
		Roles:     roles,
		Status:    claims.Status,
		IssuedAt:  claims.IssuedAt.Time.UTC(),
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}, nil
}

func (s *JWTIssuer) ParseRefreshToken(raw string) (ports.RefreshClaims, error) {
	var claims refreshJWTClaims
	if err := s.parse(raw, &claims, s.refreshSecret); err != nil {
		return ports.RefreshClaims{}, err
	}
	return ports.RefreshClaims{
		Username:  claims.Username,
		IssuedAt:  claims.IssuedAt.Time.UTC(),
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}, nil
}

func (s *JWTIssuer) parse(raw string, claims jwt.Claims, secret []byte) error {
	parsed, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
		}
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return s.nowFn().UTC() }),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.ErrTokenExpired
		}
		return fmt.Errorf("%w: %v", domain.ErrTokenMalformed, err)
	}
	if !parsed.Valid {
		return domain.ErrTokenMalformed
	}
	return nil
}
