package postgres

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/scribeworks/notes-service/internal/domain"
	"gorm.io/gorm"
)

// profileDoc is the JSONB shape of the users.profile column. The document
// form lets profile fields evolve without schema migrations.
type profileDoc struct {
	FirstName   string          `json:"first_name,omitempty"`
	LastName    string          `json:"last_name,omitempty"`
	Gender      string          `json:"gender,omitempty"`
	BirthDate   *time.Time      `json:"birth_date,omitempty"`
	Bio         string          `json:"bio,omitempty"`
	Status      string          `json:"status,omitempty"`
	AvatarKey   string          `json:"avatar_key,omitempty"`
	Location    string          `json:"location,omitempty"`
	Website     string          `json:"website,omitempty"`
	SocialLinks *socialLinksDoc `json:"social_links,omitempty"`
}

type socialLinksDoc struct {
	Facebook  string `json:"facebook,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
}

func encodeProfile(p domain.Profile) string {
	doc := profileDoc{
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Gender:    p.Gender,
		BirthDate: p.BirthDate,
		Bio:       p.Bio,
		Status:    p.Status,
		AvatarKey: p.AvatarKey,
		Location:  p.Location,
		Website:   p.Website,
	}
	if p.SocialLinks != (domain.SocialLinks{}) {
		doc.SocialLinks = &socialLinksDoc{
			Facebook:  p.SocialLinks.Facebook,
			Twitter:   p.SocialLinks.Twitter,
			Instagram: p.SocialLinks.Instagram,
			LinkedIn:  p.SocialLinks.LinkedIn,
		}
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

func decodeProfile(raw string) domain.Profile {
	var doc profileDoc
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return domain.Profile{}
	}
	p := domain.Profile{
		FirstName: doc.FirstName,
		LastName:  doc.LastName,
		Gender:    doc.Gender,
		BirthDate: doc.BirthDate,
		Bio:       doc.Bio,
		Status:    doc.Status,
		AvatarKey: doc.AvatarKey,
		Location:  doc.Location,
		Website:   doc.Website,
	}
	if doc.SocialLinks != nil {
		p.SocialLinks = domain.SocialLinks{
			Facebook:  doc.SocialLinks.Facebook,
			Twitter:   doc.SocialLinks.Twitter,
			Instagram: doc.SocialLinks.Instagram,
			LinkedIn:  doc.SocialLinks.LinkedIn,
		}
	}
	return p
}

func encodeRoles(roles []domain.Role) string {
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, string(r))
	}
	raw, err := json.Marshal(names)
	if err != nil {
		return "[]"
	}
	return string(raw)
}

func decodeRoles(raw string) []domain.Role {
	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		return []domain.Role{domain.RoleUser}
	}
	roles := make([]domain.Role, 0, len(names))
	for _, n := range names {
		roles = append(roles, domain.Role(n))
	}
	return domain.NormalizeRoles(roles)
}

func toDomainUser(row userModel) domain.User {
	return domain.User{
		UserID:       row.UserID,
		Username:     row.Username,
		PasswordHash: row.PasswordHash,
		Roles:        decodeRoles(row.Roles),
		Profile:      decodeProfile(row.Profile),
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func toDomainComment(row commentModel, authorName string) domain.Comment {
	return domain.Comment{
		CommentID:      row.CommentID,
		NoteID:         row.NoteID,
		AuthorID:       row.AuthorID,
		AuthorName:     authorName,
		Body:           row.Body,
		ParentID:       row.ParentID,
		IsPrivate:      row.IsPrivate,
		DeletedByUser:  row.DeletedByUser,
		DeletedByAdmin: row.DeletedByAdmin,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
}

func toDomainLoginAttempt(row loginAttemptModel) domain.LoginAttempt {
	ip := ""
	if row.IPAddress != nil {
		ip = *row.IPAddress
	}
	return domain.LoginAttempt{
		ID:            row.ID,
		UserID:        row.UserID,
		AttemptAt:     row.AttemptAt,
		IPAddress:     ip,
		Status:        row.Status,
		FailureReason: row.FailureReason,
		UserAgent:     row.UserAgent,
	}
}

func nullableString(v string) *string {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
