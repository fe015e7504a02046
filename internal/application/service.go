package application

import (
	"log/slog"
	"time"

	"github.com/scribeworks/notes-service/internal/ports"
)

// Config carries the tunables the use-case layer needs. Everything else
// (ports, secrets) arrives through Dependencies.
type Config struct {
	RefreshTokenTTL      time.Duration
	FailedLoginThreshold int
	LockoutDuration      time.Duration
	AvatarMaxBytes       int64
}

type Service struct {
	cfg           Config
	users         ports.UserRepository
	notes         ports.NoteRepository
	categories    ports.CategoryRepository
	comments      ports.CommentRepository
	loginAttempts ports.LoginAttemptRepository
	outbox        ports.OutboxRepository
	lockouts      ports.LockoutStore
	avatars       ports.BlobStore
	hasher        ports.PasswordHasher
	tokens        ports.TokenIssuer
	logger        *slog.Logger
	nowFn         func() time.Time
}

type Dependencies struct {
	Config        Config
	Users         ports.UserRepository
	Notes         ports.NoteRepository
	Categories    ports.CategoryRepository
	Comments      ports.CommentRepository
	LoginAttempts ports.LoginAttemptRepository
	Outbox        ports.OutboxRepository
	Lockouts      ports.LockoutStore
	Avatars       ports.BlobStore
	Hasher        ports.PasswordHasher
	Tokens        ports.TokenIssuer
	Logger        *slog.Logger
}

// NewService wires the use-case layer. The logger is injected rather than
// pulled from a process-wide default so tests can capture output
// deterministically.
func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config
	if cfg.RefreshTokenTTL <= 0 {
		cfg.RefreshTokenTTL = 30 * time.Minute
	}
	if cfg.FailedLoginThreshold <= 0 {
		cfg.FailedLoginThreshold = 5
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = 15 * time.Minute
	}
	if cfg.AvatarMaxBytes <= 0 {
		cfg.AvatarMaxBytes = 5 << 20
	}
	return &Service{
		cfg:           cfg,
		users:         deps.Users,
		notes:         deps.Notes,
		categories:    deps.Categories,
		comments:      deps.Comments,
		loginAttempts: deps.LoginAttempts,
		outbox:        deps.Outbox,
		lockouts:      deps.Lockouts,
		avatars:       deps.Avatars,
		hasher:        deps.Hasher,
		tokens:        deps.Tokens,
		logger:        logger.With("service", "notes-api", "layer", "application"),
		nowFn:         func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the service clock. Test hook.
func (s *Service) WithClock(nowFn func() time.Time) *Service {
	s.nowFn = nowFn
	return s
}
