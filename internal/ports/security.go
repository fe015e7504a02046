package ports

import (
	"time"

	"github.com/google/uuid"
	"github.com/scribeworks/notes-service/internal/domain"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// AccessClaims is the verified payload of an access token: a snapshot of
// identity and roles at issue time. Access tokens are stateless; nothing here
// is re-checked against the session store.
type AccessClaims struct {
	UserID    uuid.UUID
	Username  string
	Roles     []domain.Role
	Status    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// RefreshClaims carries identity only. A refresh token is valid when its
// signature checks out AND it is still a member of the account's active set.
type RefreshClaims struct {
	Username  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenIssuer signs and verifies the two token kinds with independent
// secrets. Tokens of one kind never validate as the other; that separation is
// why a leaked access token cannot be replayed as a refresh token.
type TokenIssuer interface {
	IssueAccessToken(userID uuid.UUID, username string, roles []domain.Role, status string) (string, error)
	IssueRefreshToken(username string) (string, error)
	ParseAccessToken(token string) (AccessClaims, error)
	ParseRefreshToken(token string) (RefreshClaims, error)
}
