package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/scribeworks/notes-service/internal/domain"
	"github.com/scribeworks/notes-service/internal/ports"
)

// Register creates an account and emits a user.registered outbox event in the
// same transaction, then issues the first token pair so a new user is signed
// in immediately.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (RegisterResponse, error) {
	username, err := normalizeUsername(req.Username)
	if err != nil {
		return RegisterResponse{}, err
	}
	if err := domain.ValidatePassword(req.Password); err != nil {
		return RegisterResponse{}, err
	}
	if strings.TrimSpace(derefOr(req.Profile.Bio, "")) == "" {
		return RegisterResponse{}, fmt.Errorf("%w: bio is required", domain.ErrInvalidInput)
	}
	roles, err := parseRoles(req.Roles)
	if err != nil {
		return RegisterResponse{}, err
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return RegisterResponse{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.nowFn()
	profile := applyProfileInput(domain.Profile{Status: "active"}, req.Profile)

	payload, _ := json.Marshal(map[string]any{
		"username":      username,
		"registered_at": now,
	})
	event := ports.OutboxEvent{
		EventID:      uuid.New(),
		EventType:    eventTypeUserRegistered,
		PartitionKey: strings.ToLower(username),
		Payload:      payload,
		OccurredAt:   now,
	}

	user, err := s.users.CreateWithOutboxTx(ctx, ports.CreateUserTxParams{
		Username:        username,
		PasswordHash:    passwordHash,
		Roles:           roles,
		Profile:         profile,
		RegisteredAtUTC: now,
	}, event)
	if err != nil {
		return RegisterResponse{}, err
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return RegisterResponse{}, err
	}

	s.logger.InfoContext(ctx, "user registered",
		"module", "auth",
		"operation", "register",
		"outcome", "success",
		"user_id", user.UserID,
	)
	return RegisterResponse{UserID: user.UserID, Username: user.Username, Tokens: pair}, nil
}

// Login verifies credentials and starts a new refresh session. All credential
// failures collapse into ErrInvalidCredentials; nothing in the response
// distinguishes an unknown username from a wrong password.
func (s *Service) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	username, err := normalizeUsername(req.Username)
	if err != nil {
		return LoginResponse{}, err
	}
	if req.Password == "" {
		return LoginResponse{}, fmt.Errorf("%w: password is required", domain.ErrInvalidInput)
	}

	lockKey := "login:" + strings.ToLower(username)
	if lockState, lockErr := s.lockouts.Get(ctx, lockKey); lockErr == nil &&
		lockState.LockedUntil != nil && lockState.LockedUntil.After(s.nowFn()) {
		s.logger.WarnContext(ctx, "account lockout active",
			"module", "auth",
			"operation", "login",
			"outcome", "blocked",
			"username", username,
			"locked_until", lockState.LockedUntil,
		)
		return LoginResponse{}, domain.ErrAccountLocked
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		s.recordLoginAttempt(ctx, nil, req, "FAILED", "USER_NOT_FOUND")
		return LoginResponse{}, domain.ErrInvalidCredentials
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		s.recordLoginAttempt(ctx, &user.UserID, req, "FAILED", "INVALID_PASSWORD")
		now := s.nowFn()
		lockState, lockErr := s.lockouts.RecordFailure(ctx, lockKey, now, s.cfg.FailedLoginThreshold, s.cfg.LockoutDuration)
		if lockErr == nil && lockState.LockedUntil != nil && lockState.LockedUntil.After(now) {
			s.logger.WarnContext(ctx, "account lockout triggered",
				"module", "auth",
				"operation", "login",
				"outcome", "blocked",
				"username", username,
			)
			return LoginResponse{}, domain.ErrAccountLocked
		}
		return LoginResponse{}, domain.ErrInvalidCredentials
	}

	_ = s.lockouts.Clear(ctx, lockKey)

	// Re-login from the same device replaces exactly the presented session;
	// other devices keep theirs. This bounds active-set growth from repeated
	// logins without logout.
	if prior := strings.TrimSpace(req.PriorRefreshToken); prior != "" {
		if _, err := s.users.ConsumeRefreshToken(ctx, user.UserID, prior); err != nil {
			return LoginResponse{}, fmt.Errorf("replace prior session: %w", err)
		}
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return LoginResponse{}, err
	}

	s.recordLoginAttempt(ctx, &user.UserID, req, "SUCCESS", "")
	return LoginResponse{UserID: user.UserID, Tokens: pair}, nil
}

// Refresh rotates a refresh token: the presented token is consumed first, a
// new pair is issued only if everything else checks out.
//
// A syntactically valid token that no account owns is treated as compromise
// evidence: every outstanding session of the claimed identity is wiped before
// the caller gets an opaque Forbidden. The same applies when two concurrent
// calls race on one token; whichever loses the atomic consume lands here.
func (s *Service) Refresh(ctx context.Context, presentedToken string) (RefreshResponse, error) {
	if strings.TrimSpace(presentedToken) == "" {
		return RefreshResponse{}, domain.ErrUnauthorized
	}

	user, err := s.users.FindByRefreshToken(ctx, presentedToken)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.handleTokenReuse(ctx, presentedToken)
			return RefreshResponse{}, domain.ErrForbidden
		}
		return RefreshResponse{}, fmt.Errorf("find refresh session: %w", err)
	}

	consumed, err := s.users.ConsumeRefreshToken(ctx, user.UserID, presentedToken)
	if err != nil {
		return RefreshResponse{}, fmt.Errorf("consume refresh session: %w", err)
	}
	if !consumed {
		// Lost the rotation race: someone else used this token between the
		// lookup and the consume. Same treatment as reuse of a rotated-out
		// token.
		s.wipeSessions(ctx, user.UserID, "concurrent refresh of one token")
		return RefreshResponse{}, domain.ErrForbidden
	}

	claims, err := s.tokens.ParseRefreshToken(presentedToken)
	if err != nil {
		// The removal above stays persisted: a token that reached the server
		// is spent even when its verification fails.
		s.logger.WarnContext(ctx, "refresh token failed verification after consume",
			"module", "auth",
			"operation", "refresh",
			"outcome", "failure",
			"user_id", user.UserID,
			"error", err,
		)
		return RefreshResponse{}, domain.ErrForbidden
	}
	if !strings.EqualFold(claims.Username, user.Username) {
		s.logger.WarnContext(ctx, "refresh token identity mismatch",
			"module", "auth",
			"operation", "refresh",
			"outcome", "failure",
			"user_id", user.UserID,
		)
		return RefreshResponse{}, domain.ErrForbidden
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return RefreshResponse{}, err
	}
	return RefreshResponse{Tokens: pair}, nil
}

// Logout removes the presented refresh session. Removing an absent or foreign
// token is not an error; logging out twice succeeds twice.
func (s *Service) Logout(ctx context.Context, presentedToken string) error {
	token := strings.TrimSpace(presentedToken)
	if token == "" {
		return nil
	}
	user, err := s.users.FindByRefreshToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("find refresh session: %w", err)
	}
	if _, err := s.users.ConsumeRefreshToken(ctx, user.UserID, token); err != nil {
		return fmt.Errorf("remove refresh session: %w", err)
	}
	return nil
}

// LogoutAll clears every refresh session of the authenticated user, forcing
// re-login on all devices. Outstanding access tokens expire on their own.
func (s *Service) LogoutAll(ctx context.Context, auth AuthContext) error {
	if err := s.users.ClearRefreshTokens(ctx, auth.UserID); err != nil {
		return fmt.Errorf("clear refresh sessions: %w", err)
	}
	s.logger.InfoContext(ctx, "all sessions cleared",
		"module", "auth",
		"operation", "logout_all",
		"outcome", "success",
		"user_id", auth.UserID,
	)
	return nil
}

// LoginHistory lists the caller's recorded login attempts, newest first.
func (s *Service) LoginHistory(ctx context.Context, auth AuthContext, page Page) (Paginated[LoginAttemptView], error) {
	page = normalizePage(page)
	attempts, total, err := s.loginAttempts.ListByUser(ctx, auth.UserID, page.Size, page.Number*page.Size)
	if err != nil {
		return Paginated[LoginAttemptView]{}, fmt.Errorf("list login attempts: %w", err)
	}
	items := make([]LoginAttemptView, 0, len(attempts))
	for _, a := range attempts {
		items = append(items, LoginAttemptView{
			AttemptAt:     a.AttemptAt,
			IPAddress:     a.IPAddress,
			Status:        a.Status,
			FailureReason: a.FailureReason,
			UserAgent:     a.UserAgent,
		})
	}
	return Paginated[LoginAttemptView]{
		TotalItems:  total,
		Items:       items,
		CurrentPage: page.Number,
		TotalPages:  totalPages(total, page.Size),
	}, nil
}

// Authenticate is the request gate: it verifies an access token and returns
// the per-request identity. Purely cryptographic; session state is not
// consulted, so revocation bounds, not revokes, outstanding access tokens.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (AuthContext, error) {
	if strings.TrimSpace(accessToken) == "" {
		return AuthContext{}, domain.ErrUnauthorized
	}
	claims, err := s.tokens.ParseAccessToken(accessToken)
	if err != nil {
		return AuthContext{}, domain.ErrUnauthorized
	}
	return AuthContext{
		UserID:   claims.UserID,
		Username: claims.Username,
		Roles:    claims.Roles,
		IsAdmin:  domain.HasRole(claims.Roles, domain.RoleAdmin),
	}, nil
}

func (s *Service) issueTokenPair(ctx context.Context, user domain.User) (TokenPair, error) {
	accessToken, err := s.tokens.IssueAccessToken(user.UserID, user.Username, user.Roles, user.Profile.Status)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}
	refreshToken, err := s.tokens.IssueRefreshToken(user.Username)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}
	now := s.nowFn()
	if err := s.users.AddRefreshToken(ctx, user.UserID, refreshToken, now, now.Add(s.cfg.RefreshTokenTTL)); err != nil {
		return TokenPair{}, fmt.Errorf("persist refresh session: %w", err)
	}
	return TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// handleTokenReuse implements the reuse-detection policy: decode the orphan
// token, and if it names a real account, wipe that account's whole session
// set. The caller's response is Forbidden either way.
func (s *Service) handleTokenReuse(ctx context.Context, presentedToken string) {
	claims, err := s.tokens.ParseRefreshToken(presentedToken)
	if err != nil {
		s.logger.WarnContext(ctx, "unowned refresh token failed decode",
			"module", "auth",
			"operation", "refresh",
			"outcome", "failure",
			"error", err,
		)
		return
	}
	user, err := s.users.GetByUsername(ctx, claims.Username)
	if err != nil {
		s.logger.WarnContext(ctx, "reused refresh token names unknown account",
			"module", "auth",
			"operation", "refresh",
			"outcome", "failure",
			"claimed_username", claims.Username,
		)
		return
	}
	s.wipeSessions(ctx, user.UserID, "rotated-out token presented")
}

func (s *Service) wipeSessions(ctx context.Context, userID uuid.UUID, reason string) {
	if err := s.users.ClearRefreshTokens(ctx, userID); err != nil {
		// The caller still gets Forbidden; the wipe failure is an operator
		// problem, logged with full context.
		s.logger.ErrorContext(ctx, "failed to clear sessions after reuse detection",
			"module", "auth",
			"operation", "refresh",
			"outcome", "failure",
			"user_id", userID,
			"reason", reason,
			"error", err,
		)
		return
	}
	s.logger.WarnContext(ctx, "refresh token reuse detected; all sessions cleared",
		"module", "auth",
		"operation", "refresh",
		"outcome", "blocked",
		"user_id", userID,
		"reason", reason,
	)
}

func derefOr(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return *v
}
