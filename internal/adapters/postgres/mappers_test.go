package postgres

import (
	"reflect"
	"testing"
	"time"

	"github.com/scribeworks/notes-service/internal/domain"
)

func TestProfileDocumentRoundTrip(t *testing.T) {
	t.Parallel()

	birth := time.Date(1990, 6, 1, 0, 0, 0, 0, time.UTC)
	in := domain.Profile{
		FirstName: "Alice",
		LastName:  "Doe",
		Gender:    "female",
		BirthDate: &birth,
		Bio:       "writes notes",
		Status:    "active",
		AvatarKey: "avatars/x/abc",
		Location:  "Berlin",
		Website:   "https://example.com",
		SocialLinks: domain.SocialLinks{
			Twitter: "@alice",
		},
	}

	out := decodeProfile(encodeProfile(in))
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("profile round trip mismatch:\n in: %+v\nout: %+v", in, out)
	}
}

func TestDecodeProfileDefensive(t *testing.T) {
	t.Parallel()

	if got := decodeProfile("not json"); got != (domain.Profile{}) {
		t.Fatalf("broken document should decode to zero profile, got %+v", got)
	}
	if got := decodeProfile("{}"); got != (domain.Profile{}) {
		t.Fatalf("empty document should decode to zero profile, got %+v", got)
	}
}

func TestRolesDocumentRoundTrip(t *testing.T) {
	t.Parallel()

	in := []domain.Role{domain.RoleUser, domain.RoleAdmin}
	out := decodeRoles(encodeRoles(in))
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("roles round trip mismatch: in=%v out=%v", in, out)
	}
}

func TestDecodeRolesDegradesToBaseRole(t *testing.T) {
	t.Parallel()

	// A corrupt column never produces an account with zero roles.
	if got := decodeRoles("not json"); !reflect.DeepEqual(got, []domain.Role{domain.RoleUser}) {
		t.Fatalf("corrupt roles should degrade to the base role, got %v", got)
	}
	// Unknown names stored by an older build are dropped on read.
	if got := decodeRoles(`["Moderator","Admin"]`); !reflect.DeepEqual(got, []domain.Role{domain.RoleUser, domain.RoleAdmin}) {
		t.Fatalf("unknown role names should be dropped, got %v", got)
	}
}

func TestNullableString(t *testing.T) {
	t.Parallel()

	if nullableString("") != nil || nullableString("   ") != nil {
		t.Fatalf("blank values should map to nil")
	}
	got := nullableString("  value  ")
	if got == nil || *got != "value" {
		t.Fatalf("expected trimmed pointer, got %v", got)
	}
}
