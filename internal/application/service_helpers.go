package application

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/scribeworks/notes-service/internal/domain"
)

// normalizeUsername canonicalizes the handle before persistence/comparison.
// Uniqueness is case-insensitive; the stored form keeps the user's casing
// while lookups go through the lowered form.
func normalizeUsername(username string) (string, error) {
	trimmed := strings.TrimSpace(username)
	if err := domain.ValidateUsername(trimmed); err != nil {
		return "", err
	}
	return trimmed, nil
}

// recordLoginAttempt stores login outcomes for audit. Failures to write the
// audit row never fail the login itself.
func (s *Service) recordLoginAttempt(ctx context.Context, userID *uuid.UUID, req LoginRequest, status, reason string) {
	err := s.loginAttempts.Insert(ctx, domain.LoginAttempt{
		UserID:        userID,
		AttemptAt:     s.nowFn(),
		IPAddress:     req.IPAddress,
		Status:        status,
		FailureReason: reason,
		UserAgent:     req.UserAgent,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to persist login attempt",
			"module", "auth",
			"operation", "record_login_attempt",
			"outcome", "failure",
			"reason", reason,
			"error", err,
		)
	}
}

// randomHex returns a cryptographically random hex token, used for blob keys.
func randomHex(bytesLen int) string {
	raw := make([]byte, bytesLen)
	_, _ = rand.Read(raw)
	return hex.EncodeToString(raw)
}

// normalizePage clamps page inputs to sane bounds.
func normalizePage(page Page) Page {
	if page.Size <= 0 {
		page.Size = 10
	}
	if page.Size > 100 {
		page.Size = 100
	}
	if page.Number < 0 {
		page.Number = 0
	}
	return page
}

func totalPages(total int64, size int) int {
	if size <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}

func parseRoles(names []string) ([]domain.Role, error) {
	roles := make([]domain.Role, 0, len(names))
	for _, name := range names {
		role := domain.Role(strings.TrimSpace(name))
		if role == "" {
			continue
		}
		if !domain.ValidRole(role) {
			return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, name)
		}
		roles = append(roles, role)
	}
	return domain.NormalizeRoles(roles), nil
}

func roleNames(roles []domain.Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, string(r))
	}
	return out
}

func applyProfileInput(profile domain.Profile, in ProfileInput) domain.Profile {
	if in.FirstName != nil {
		profile.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		profile.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Gender != nil {
		profile.Gender = strings.TrimSpace(*in.Gender)
	}
	if in.BirthDate != nil {
		profile.BirthDate = in.BirthDate
	}
	if in.Bio != nil {
		profile.Bio = strings.TrimSpace(*in.Bio)
	}
	if in.Status != nil {
		profile.Status = strings.TrimSpace(*in.Status)
	}
	if in.Location != nil {
		profile.Location = strings.TrimSpace(*in.Location)
	}
	if in.Website != nil {
		profile.Website = strings.TrimSpace(*in.Website)
	}
	if in.SocialLinks != nil {
		profile.SocialLinks = domain.SocialLinks{
			Facebook:  strings.TrimSpace(in.SocialLinks.Facebook),
			Twitter:   strings.TrimSpace(in.SocialLinks.Twitter),
			Instagram: strings.TrimSpace(in.SocialLinks.Instagram),
			LinkedIn:  strings.TrimSpace(in.SocialLinks.LinkedIn),
		}
	}
	return profile
}

func toUserView(user domain.User) UserView {
	return UserView{
		UserID:   user.UserID,
		Username: user.Username,
		Roles:    roleNames(user.Roles),
		Profile: ProfileView{
			FirstName: user.Profile.FirstName,
			LastName:  user.Profile.LastName,
			Gender:    user.Profile.Gender,
			BirthDate: user.Profile.BirthDate,
			Bio:       user.Profile.Bio,
			Status:    user.Profile.Status,
			HasAvatar: user.Profile.AvatarKey != "",
			Location:  user.Profile.Location,
			Website:   user.Profile.Website,
			SocialLinks: SocialLinksInput{
				Facebook:  user.Profile.SocialLinks.Facebook,
				Twitter:   user.Profile.SocialLinks.Twitter,
				Instagram: user.Profile.SocialLinks.Instagram,
				LinkedIn:  user.Profile.SocialLinks.LinkedIn,
			},
		},
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func toNoteView(note domain.Note) NoteView {
	categories := make([]CategoryView, 0, len(note.Categories))
	for _, c := range note.Categories {
		categories = append(categories, CategoryView{CategoryID: c.CategoryID, Name: c.Name})
	}
	return NoteView{
		NoteID:      note.NoteID,
		Owner:       note.OwnerName,
		OwnerID:     note.OwnerID,
		Title:       note.Title,
		Description: note.Description,
		Picture:     note.Picture,
		Completed:   note.Completed,
		Categories:  categories,
		CreatedAt:   note.CreatedAt,
		UpdatedAt:   note.UpdatedAt,
	}
}

func toCommentView(comment domain.Comment) CommentView {
	view := CommentView{
		CommentID: comment.CommentID,
		NoteID:    comment.NoteID,
		Author:    comment.AuthorName,
		AuthorID:  comment.AuthorID,
		Body:      comment.Body,
		ParentID:  comment.ParentID,
		IsPrivate: comment.IsPrivate,
		Deleted:   comment.Deleted(),
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
	if view.Deleted {
		// Body is withheld once a comment is removed; the row remains so the
		// thread keeps its shape.
		view.Body = ""
	}
	return view
}
