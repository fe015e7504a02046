package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/scribeworks/notes-service/internal/application"
	"github.com/scribeworks/notes-service/internal/domain"
)

func TestCreateNoteValidation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	auth := f.authFor(t, f.register(t, "alice").UserID)

	cases := []struct {
		name string
		req  application.CreateNoteRequest
	}{
		{"missing title", application.CreateNoteRequest{Description: "body"}},
		{"missing description", application.CreateNoteRequest{Title: "title"}},
		{"blank title", application.CreateNoteRequest{Title: "   ", Description: "body"}},
		{"unknown category", application.CreateNoteRequest{Title: "title", Description: "body", Categories: []uuid.UUID{uuid.New()}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.service.CreateNote(ctx, auth, tc.req); !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestCreateNoteAssignsOwnerAndEmitsEvent(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	alice := f.register(t, "alice")
	work := f.createCategory(t, "work")

	note, err := f.service.CreateNote(ctx, f.authFor(t, alice.UserID), application.CreateNoteRequest{
		Title:       "  Plan sprint  ",
		Description: "outline the next iteration",
		Categories:  []uuid.UUID{work.CategoryID},
	})
	if err != nil {
		t.Fatalf("create note failed: %v", err)
	}
	if note.OwnerID != alice.UserID {
		t.Fatalf("note owner should be the caller")
	}
	if note.Title != "Plan sprint" {
		t.Fatalf("title should be trimmed, got %q", note.Title)
	}
	if len(note.Categories) != 1 || note.Categories[0].Name != "work" {
		t.Fatalf("expected work category attached, got %v", note.Categories)
	}

	types := f.outbox.eventTypes()
	if len(types) != 1 || types[0] != "note.created" {
		t.Fatalf("expected note.created event, got %v", types)
	}
}

func TestUpdateNoteOwnershipAndPatching(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	alice := f.register(t, "alice")
	mallory := f.register(t, "mallory")
	admin := f.register(t, "root", "Admin")

	note, err := f.service.CreateNote(ctx, f.authFor(t, alice.UserID), application.CreateNoteRequest{
		Title:       "draft",
		Description: "first pass",
	})
	if err != nil {
		t.Fatalf("create note failed: %v", err)
	}

	title := "polished"
	if _, err := f.service.UpdateNote(ctx, f.authFor(t, mallory.UserID), note.NoteID, application.UpdateNoteRequest{Title: &title}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner update, got %v", err)
	}

	completed := true
	updated, err := f.service.UpdateNote(ctx, f.authFor(t, alice.UserID), note.NoteID, application.UpdateNoteRequest{
		Title:     &title,
		Completed: &completed,
	})
	if err != nil {
		t.Fatalf("owner update failed: %v", err)
	}
	if updated.Title != "polished" || !updated.Completed {
		t.Fatalf("patch not applied: %+v", updated)
	}
	// Untouched fields survive a partial patch.
	if updated.Description != "first pass" {
		t.Fatalf("description should be unchanged, got %q", updated.Description)
	}

	adminTitle := "admin edit"
	if _, err := f.service.UpdateNote(ctx, f.authFor(t, admin.UserID), note.NoteID, application.UpdateNoteRequest{Title: &adminTitle}); err != nil {
		t.Fatalf("admin update failed: %v", err)
	}

	empty := "   "
	if _, err := f.service.UpdateNote(ctx, f.authFor(t, alice.UserID), note.NoteID, application.UpdateNoteRequest{Title: &empty}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank title, got %v", err)
	}
}

func TestDeleteNoteOwnership(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	alice := f.register(t, "alice")
	mallory := f.register(t, "mallory")

	note, err := f.service.CreateNote(ctx, f.authFor(t, alice.UserID), application.CreateNoteRequest{
		Title:       "temp",
		Description: "to be removed",
	})
	if err != nil {
		t.Fatalf("create note failed: %v", err)
	}

	if err := f.service.DeleteNote(ctx, f.authFor(t, mallory.UserID), note.NoteID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner delete, got %v", err)
	}
	if err := f.service.DeleteNote(ctx, f.authFor(t, alice.UserID), note.NoteID); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	if _, err := f.service.GetNote(ctx, note.NoteID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestListNotesSortAndPagination(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	auth := f.authFor(t, f.register(t, "alice").UserID)

	titles := []string{"first", "second", "third"}
	for _, title := range titles {
		if _, err := f.service.CreateNote(ctx, auth, application.CreateNoteRequest{Title: title, Description: "d"}); err != nil {
			t.Fatalf("create note %q failed: %v", title, err)
		}
	}

	newest, err := f.service.ListNotes(ctx, application.Page{Size: 10}, true)
	if err != nil {
		t.Fatalf("list newest failed: %v", err)
	}
	if newest.Items[0].Title != "third" {
		t.Fatalf("newest-first listing should lead with third, got %q", newest.Items[0].Title)
	}

	oldest, err := f.service.ListNotes(ctx, application.Page{Size: 2}, false)
	if err != nil {
		t.Fatalf("list oldest failed: %v", err)
	}
	if oldest.Items[0].Title != "first" || oldest.TotalPages != 2 || oldest.TotalItems != 3 {
		t.Fatalf("unexpected oldest-first page: %+v", oldest)
	}
}

func TestListNotesByCategory(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	auth := f.authFor(t, f.register(t, "alice").UserID)

	work := f.createCategory(t, "work")
	home := f.createCategory(t, "home")

	if _, err := f.service.CreateNote(ctx, auth, application.CreateNoteRequest{Title: "office", Description: "d", Categories: []uuid.UUID{work.CategoryID}}); err != nil {
		t.Fatalf("create note failed: %v", err)
	}
	if _, err := f.service.CreateNote(ctx, auth, application.CreateNoteRequest{Title: "garden", Description: "d", Categories: []uuid.UUID{home.CategoryID}}); err != nil {
		t.Fatalf("create note failed: %v", err)
	}

	page, err := f.service.ListNotesByCategory(ctx, work.CategoryID, application.Page{Size: 10})
	if err != nil {
		t.Fatalf("list by category failed: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].Title != "office" {
		t.Fatalf("expected only the office note, got %+v", page.Items)
	}

	if _, err := f.service.ListNotesByCategory(ctx, uuid.New(), application.Page{Size: 10}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown category, got %v", err)
	}
}

func TestCategoryLifecycle(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.service.CreateCategory(ctx, "   "); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank name, got %v", err)
	}

	work := f.createCategory(t, "  work  ")
	if work.Name != "work" {
		t.Fatalf("category name should be trimmed, got %q", work.Name)
	}
	if _, err := f.service.CreateCategory(ctx, "WORK"); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict for case-insensitive duplicate, got %v", err)
	}

	renamed, err := f.service.RenameCategory(ctx, work.CategoryID, "projects")
	if err != nil {
		t.Fatalf("rename failed: %v", err)
	}
	if renamed.Name != "projects" {
		t.Fatalf("unexpected renamed value %q", renamed.Name)
	}

	if err := f.service.DeleteCategory(ctx, work.CategoryID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	list, err := f.service.ListCategories(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty category list, got %v", list)
	}
}
