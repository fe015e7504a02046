package application

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/scribeworks/notes-service/internal/domain"
	"github.com/scribeworks/notes-service/internal/ports"
)

// ListUsers returns the admin account listing. Role enforcement happens in
// the transport layer; ownership does not apply here.
func (s *Service) ListUsers(ctx context.Context, page Page) (Paginated[UserView], error) {
	page = normalizePage(page)
	users, total, err := s.users.List(ctx, page.Size, page.Number*page.Size)
	if err != nil {
		return Paginated[UserView]{}, fmt.Errorf("list users: %w", err)
	}
	items := make([]UserView, 0, len(users))
	for _, u := range users {
		items = append(items, toUserView(u))
	}
	return Paginated[UserView]{
		TotalItems:  total,
		Items:       items,
		CurrentPage: page.Number,
		TotalPages:  totalPages(total, page.Size),
	}, nil
}

// CreateUser is the admin variant of Register: same validation, no token
// issuance, roles taken as given (still normalized onto the closed set).
func (s *Service) CreateUser(ctx context.Context, req CreateUserRequest) (UserView, error) {
	username, err := normalizeUsername(req.Username)
	if err != nil {
		return UserView{}, err
	}
	if err := domain.ValidatePassword(req.Password); err != nil {
		return UserView{}, err
	}
	roles, err := parseRoles(req.Roles)
	if err != nil {
		return UserView{}, err
	}
	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return UserView{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.nowFn()
	payload, _ := json.Marshal(map[string]any{
		"username":      username,
		"registered_at": now,
		"by_admin":      true,
	})
	user, err := s.users.CreateWithOutboxTx(ctx, ports.CreateUserTxParams{
		Username:        username,
		PasswordHash:    passwordHash,
		Roles:           roles,
		Profile:         applyProfileInput(domain.Profile{Status: "active"}, req.Profile),
		RegisteredAtUTC: now,
	}, ports.OutboxEvent{
		EventID:      uuid.New(),
		EventType:    eventTypeUserRegistered,
		PartitionKey: strings.ToLower(username),
		Payload:      payload,
		OccurredAt:   now,
	})
	if err != nil {
		return UserView{}, err
	}
	return toUserView(user), nil
}

func (s *Service) GetUser(ctx context.Context, userID uuid.UUID) (UserView, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return UserView{}, err
	}
	return toUserView(user), nil
}

// UpdateUser is the admin mutation: roles and/or profile fields.
func (s *Service) UpdateUser(ctx context.Context, userID uuid.UUID, req UpdateUserRequest) (UserView, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return UserView{}, err
	}
	now := s.nowFn()
	if req.Roles != nil {
		roles, err := parseRoles(req.Roles)
		if err != nil {
			return UserView{}, err
		}
		if err := s.users.UpdateRoles(ctx, userID, roles, now); err != nil {
			return UserView{}, fmt.Errorf("update roles: %w", err)
		}
	}
	if req.Profile != nil {
		profile := applyProfileInput(user.Profile, *req.Profile)
		if err := s.users.UpdateProfile(ctx, userID, profile, now); err != nil {
			return UserView{}, fmt.Errorf("update profile: %w", err)
		}
	}
	updated, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return UserView{}, err
	}
	return toUserView(updated), nil
}

// DeleteUser removes the account, its sessions, and its avatar object, then
// emits user.deleted.
func (s *Service) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.users.ClearRefreshTokens(ctx, userID); err != nil {
		return fmt.Errorf("clear refresh sessions: %w", err)
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	if user.Profile.AvatarKey != "" {
		if err := s.avatars.Delete(ctx, user.Profile.AvatarKey); err != nil {
			s.logger.WarnContext(ctx, "failed to delete avatar object",
				"module", "users",
				"operation", "delete_user",
				"outcome", "failure",
				"user_id", userID,
				"error", err,
			)
		}
	}

	now := s.nowFn()
	payload, _ := json.Marshal(map[string]any{
		"user_id":    userID.String(),
		"username":   user.Username,
		"deleted_at": now,
	})
	if err := s.outbox.Enqueue(ctx, ports.OutboxEvent{
		EventID:      uuid.New(),
		EventType:    eventTypeUserDeleted,
		PartitionKey: userID.String(),
		Payload:      payload,
		OccurredAt:   now,
	}); err != nil {
		return fmt.Errorf("enqueue user.deleted: %w", err)
	}
	return nil
}

// GetProfile returns a user's profile. Owner-or-admin is enforced here since
// the route itself is reachable by any authenticated caller.
func (s *Service) GetProfile(ctx context.Context, auth AuthContext, userID uuid.UUID) (ProfileView, error) {
	if !domain.AuthorizeOwnerOrAdmin(auth.UserID.String(), auth.Roles, userID.String()) {
		return ProfileView{}, domain.ErrForbidden
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return ProfileView{}, err
	}
	return toUserView(user).Profile, nil
}

func (s *Service) UpdateProfile(ctx context.Context, auth AuthContext, userID uuid.UUID, in ProfileInput) (ProfileView, error) {
	if !domain.AuthorizeOwnerOrAdmin(auth.UserID.String(), auth.Roles, userID.String()) {
		return ProfileView{}, domain.ErrForbidden
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return ProfileView{}, err
	}
	profile := applyProfileInput(user.Profile, in)
	if err := s.users.UpdateProfile(ctx, userID, profile, s.nowFn()); err != nil {
		return ProfileView{}, fmt.Errorf("update profile: %w", err)
	}
	user.Profile = profile
	return toUserView(user).Profile, nil
}

// ChangePassword verifies the current password and replaces the hash. Owner
// only; admins reset through UpdateUser flows, not here.
func (s *Service) ChangePassword(ctx context.Context, auth AuthContext, userID uuid.UUID, req ChangePasswordRequest) error {
	if auth.UserID != userID {
		return domain.ErrForbidden
	}
	if err := domain.ValidatePassword(req.NewPassword); err != nil {
		return err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.hasher.Compare(user.PasswordHash, req.CurrentPassword); err != nil {
		return domain.ErrInvalidCredentials
	}
	newHash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, newHash, s.nowFn()); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	// Credential rotation invalidates every outstanding refresh session.
	if err := s.users.ClearRefreshTokens(ctx, userID); err != nil {
		return fmt.Errorf("clear refresh sessions: %w", err)
	}
	return nil
}

// UploadAvatar stores the binary under a fresh random key and swaps the
// profile reference; the previous object is deleted best-effort afterward.
func (s *Service) UploadAvatar(ctx context.Context, auth AuthContext, userID uuid.UUID, contentType string, size int64, body io.Reader) error {
	if !domain.AuthorizeOwnerOrAdmin(auth.UserID.String(), auth.Roles, userID.String()) {
		return domain.ErrForbidden
	}
	if size <= 0 || size > s.cfg.AvatarMaxBytes {
		return fmt.Errorf("%w: avatar must be between 1 byte and %d bytes", domain.ErrInvalidInput, s.cfg.AvatarMaxBytes)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return fmt.Errorf("%w: avatar must be an image", domain.ErrInvalidInput)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	key := "avatars/" + userID.String() + "/" + randomHex(16)
	if err := s.avatars.Put(ctx, key, contentType, size, body); err != nil {
		return fmt.Errorf("store avatar: %w", err)
	}

	oldKey := user.Profile.AvatarKey
	profile := user.Profile
	profile.AvatarKey = key
	if err := s.users.UpdateProfile(ctx, userID, profile, s.nowFn()); err != nil {
		// Roll back the orphan object so a failed swap leaves no leak.
		_ = s.avatars.Delete(ctx, key)
		return fmt.Errorf("update profile: %w", err)
	}
	if oldKey != "" {
		if err := s.avatars.Delete(ctx, oldKey); err != nil {
			s.logger.WarnContext(ctx, "failed to delete replaced avatar",
				"module", "users",
				"operation", "upload_avatar",
				"outcome", "failure",
				"user_id", userID,
				"error", err,
			)
		}
	}
	return nil
}

// GetAvatar streams a user's avatar. Readable by any authenticated caller.
func (s *Service) GetAvatar(ctx context.Context, userID uuid.UUID) (ports.BlobObject, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return ports.BlobObject{}, err
	}
	if user.Profile.AvatarKey == "" {
		return ports.BlobObject{}, domain.ErrNotFound
	}
	obj, err := s.avatars.Get(ctx, user.Profile.AvatarKey)
	if err != nil {
		return ports.BlobObject{}, fmt.Errorf("fetch avatar: %w", err)
	}
	return obj, nil
}
