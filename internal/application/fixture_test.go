package application_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/scribeworks/notes-service/internal/adapters/security"
	"github.com/scribeworks/notes-service/internal/application"
	"github.com/scribeworks/notes-service/internal/domain"
	"github.com/scribeworks/notes-service/internal/ports"
)

type fixture struct {
	service    *application.Service
	users      *fakeUsers
	notes      *fakeNotes
	categories *fakeCategories
	comments   *fakeComments
	attempts   *fakeLoginAttempts
	outbox     *fakeOutbox
	lockouts   *fakeLockouts
	blobs      *fakeBlobs
	issuer     *security.JWTIssuer

	mu  sync.Mutex
	now time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		now: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	f.users = &fakeUsers{
		byID:     map[uuid.UUID]domain.User{},
		byLower:  map[string]uuid.UUID{},
		sessions: map[string]domain.RefreshSession{},
	}
	f.categories = &fakeCategories{byID: map[uuid.UUID]domain.Category{}}
	f.notes = &fakeNotes{byID: map[uuid.UUID]domain.Note{}, categories: f.categories}
	f.comments = &fakeComments{byID: map[uuid.UUID]domain.Comment{}}
	f.attempts = &fakeLoginAttempts{}
	f.outbox = &fakeOutbox{}
	f.lockouts = &fakeLockouts{state: map[string]ports.LockoutState{}}
	f.blobs = &fakeBlobs{objects: map[string]blobEntry{}}

	issuer, err := security.NewJWTIssuer("access-secret-for-tests", "refresh-secret-for-tests", 15*time.Minute, 30*time.Minute)
	if err != nil {
		t.Fatalf("build token issuer: %v", err)
	}
	f.issuer = issuer.WithClock(f.clock)

	f.service = application.NewService(application.Dependencies{
		Config: application.Config{
			RefreshTokenTTL:      30 * time.Minute,
			FailedLoginThreshold: 3,
			LockoutDuration:      15 * time.Minute,
			AvatarMaxBytes:       1024,
		},
		Users:         f.users,
		Notes:         f.notes,
		Categories:    f.categories,
		Comments:      f.comments,
		LoginAttempts: f.attempts,
		Outbox:        f.outbox,
		Lockouts:      f.lockouts,
		Avatars:       f.blobs,
		Hasher:        &fakeHasher{},
		Tokens:        f.issuer,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}).WithClock(f.clock)

	return f
}

func (f *fixture) clock() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fixture) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// register creates an account through the service and returns its response.
func (f *fixture) register(t *testing.T, username string, roles ...string) application.RegisterResponse {
	t.Helper()
	bio := "test account"
	res, err := f.service.Register(context.Background(), application.RegisterRequest{
		Username: username,
		Password: "CorrectHorse9",
		Roles:    roles,
		Profile:  application.ProfileInput{Bio: &bio},
	})
	if err != nil {
		t.Fatalf("register %s failed: %v", username, err)
	}
	return res
}

// authFor builds the per-request identity for an already registered account.
func (f *fixture) authFor(t *testing.T, userID uuid.UUID) application.AuthContext {
	t.Helper()
	user, err := f.users.GetByID(context.Background(), userID)
	if err != nil {
		t.Fatalf("load user %s: %v", userID, err)
	}
	return application.AuthContext{
		UserID:   user.UserID,
		Username: user.Username,
		Roles:    user.Roles,
		IsAdmin:  domain.HasRole(user.Roles, domain.RoleAdmin),
	}
}

func (f *fixture) createCategory(t *testing.T, name string) application.CategoryView {
	t.Helper()
	view, err := f.service.CreateCategory(context.Background(), name)
	if err != nil {
		t.Fatalf("create category %q failed: %v", name, err)
	}
	return view
}

type fakeUsers struct {
	mu       sync.Mutex
	byID     map[uuid.UUID]domain.User
	byLower  map[string]uuid.UUID
	sessions map[string]domain.RefreshSession
	events   []ports.OutboxEvent
	// failNextConsume makes the next ConsumeRefreshToken report that another
	// caller already removed the token, without touching state.
	failNextConsume bool
}

func (f *fakeUsers) CreateWithOutboxTx(_ context.Context, params ports.CreateUserTxParams, outboxEvent ports.OutboxEvent) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lower := strings.ToLower(params.Username)
	if _, ok := f.byLower[lower]; ok {
		return domain.User{}, domain.ErrConflict
	}
	u := domain.User{
		UserID:       uuid.New(),
		Username:     params.Username,
		PasswordHash: params.PasswordHash,
		Roles:        params.Roles,
		Profile:      params.Profile,
		CreatedAt:    params.RegisteredAtUTC,
		UpdatedAt:    params.RegisteredAtUTC,
	}
	f.byID[u.UserID] = u
	f.byLower[lower] = u.UserID
	f.events = append(f.events, outboxEvent)
	return u, nil
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.byLower[strings.ToLower(username)]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return f.byID[id], nil
}

func (f *fakeUsers) GetByID(_ context.Context, userID uuid.UUID) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) List(_ context.Context, limit, offset int) ([]domain.User, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := make([]domain.User, 0, len(f.byID))
	for _, u := range f.byID {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Username < all[j].Username })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, userID uuid.UUID, profile domain.Profile, updatedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrNotFound
	}
	u.Profile = profile
	u.UpdatedAt = updatedAt
	f.byID[userID] = u
	return nil
}

func (f *fakeUsers) UpdateRoles(_ context.Context, userID uuid.UUID, roles []domain.Role, updatedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrNotFound
	}
	u.Roles = roles
	u.UpdatedAt = updatedAt
	f.byID[userID] = u
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, userID uuid.UUID, passwordHash string, updatedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = updatedAt
	f.byID[userID] = u
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, userID)
	delete(f.byLower, strings.ToLower(u.Username))
	return nil
}

func (f *fakeUsers) FindByRefreshToken(_ context.Context, token string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[token]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	u, ok := f.byID[session.UserID]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) AddRefreshToken(_ context.Context, userID uuid.UUID, token string, createdAt, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[token]; ok {
		return domain.ErrConflict
	}
	f.sessions[token] = domain.RefreshSession{
		UserID:    userID,
		Token:     token,
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
	}
	return nil
}

func (f *fakeUsers) ConsumeRefreshToken(_ context.Context, userID uuid.UUID, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNextConsume {
		f.failNextConsume = false
		return false, nil
	}
	session, ok := f.sessions[token]
	if !ok || session.UserID != userID {
		return false, nil
	}
	delete(f.sessions, token)
	return true, nil
}

func (f *fakeUsers) ClearRefreshTokens(_ context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for token, session := range f.sessions {
		if session.UserID == userID {
			delete(f.sessions, token)
		}
	}
	return nil
}

func (f *fakeUsers) sessionCount(userID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, session := range f.sessions {
		if session.UserID == userID {
			n++
		}
	}
	return n
}

type fakeNotes struct {
	mu         sync.Mutex
	byID       map[uuid.UUID]domain.Note
	order      []uuid.UUID
	categories *fakeCategories
}

func (f *fakeNotes) Create(ctx context.Context, note domain.Note, categoryIDs []uuid.UUID) (domain.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	note.NoteID = uuid.New()
	note.Categories = f.categories.resolve(categoryIDs)
	f.byID[note.NoteID] = note
	f.order = append(f.order, note.NoteID)
	return note, nil
}

func (f *fakeNotes) GetByID(_ context.Context, noteID uuid.UUID) (domain.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	note, ok := f.byID[noteID]
	if !ok {
		return domain.Note{}, domain.ErrNotFound
	}
	return note, nil
}

func (f *fakeNotes) List(_ context.Context, params ports.NoteListParams) ([]domain.Note, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	filtered := make([]domain.Note, 0, len(f.order))
	for _, id := range f.order {
		note, ok := f.byID[id]
		if !ok {
			continue
		}
		if params.OwnerID != nil && note.OwnerID != *params.OwnerID {
			continue
		}
		if params.CategoryID != nil && !noteHasCategory(note, *params.CategoryID) {
			continue
		}
		filtered = append(filtered, note)
	}
	if params.SortNewest {
		for i, j := 0, len(filtered)-1; i < j; i, j = i+1, j-1 {
			filtered[i], filtered[j] = filtered[j], filtered[i]
		}
	}
	total := int64(len(filtered))
	if params.Offset >= len(filtered) {
		return nil, total, nil
	}
	end := params.Offset + params.Limit
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[params.Offset:end], total, nil
}

func (f *fakeNotes) Update(_ context.Context, note domain.Note, categoryIDs *[]uuid.UUID) (domain.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.byID[note.NoteID]
	if !ok {
		return domain.Note{}, domain.ErrNotFound
	}
	if categoryIDs != nil {
		note.Categories = f.categories.resolve(*categoryIDs)
	} else {
		note.Categories = existing.Categories
	}
	f.byID[note.NoteID] = note
	return note, nil
}

func (f *fakeNotes) Delete(_ context.Context, noteID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[noteID]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, noteID)
	return nil
}

func noteHasCategory(note domain.Note, categoryID uuid.UUID) bool {
	for _, c := range note.Categories {
		if c.CategoryID == categoryID {
			return true
		}
	}
	return false
}

type fakeCategories struct {
	mu   sync.Mutex
	byID map[uuid.UUID]domain.Category
}

func (f *fakeCategories) Create(_ context.Context, name string, createdAt time.Time) (domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.byID {
		if strings.EqualFold(c.Name, name) {
			return domain.Category{}, domain.ErrConflict
		}
	}
	c := domain.Category{CategoryID: uuid.New(), Name: name, CreatedAt: createdAt, UpdatedAt: createdAt}
	f.byID[c.CategoryID] = c
	return c, nil
}

func (f *fakeCategories) GetByID(_ context.Context, categoryID uuid.UUID) (domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[categoryID]
	if !ok {
		return domain.Category{}, domain.ErrNotFound
	}
	return c, nil
}

func (f *fakeCategories) List(_ context.Context) ([]domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Category, 0, len(f.byID))
	for _, c := range f.byID {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeCategories) Rename(_ context.Context, categoryID uuid.UUID, name string, updatedAt time.Time) (domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[categoryID]
	if !ok {
		return domain.Category{}, domain.ErrNotFound
	}
	for id, other := range f.byID {
		if id != categoryID && strings.EqualFold(other.Name, name) {
			return domain.Category{}, domain.ErrConflict
		}
	}
	c.Name = name
	c.UpdatedAt = updatedAt
	f.byID[categoryID] = c
	return c, nil
}

func (f *fakeCategories) Delete(_ context.Context, categoryID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[categoryID]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, categoryID)
	return nil
}

func (f *fakeCategories) resolve(categoryIDs []uuid.UUID) []domain.Category {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Category, 0, len(categoryIDs))
	for _, id := range categoryIDs {
		if c, ok := f.byID[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

type fakeComments struct {
	mu    sync.Mutex
	byID  map[uuid.UUID]domain.Comment
	order []uuid.UUID
}

func (f *fakeComments) Create(_ context.Context, comment domain.Comment) (domain.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	comment.CommentID = uuid.New()
	f.byID[comment.CommentID] = comment
	f.order = append(f.order, comment.CommentID)
	return comment, nil
}

func (f *fakeComments) GetByID(_ context.Context, commentID uuid.UUID) (domain.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[commentID]
	if !ok {
		return domain.Comment{}, domain.ErrNotFound
	}
	return c, nil
}

func (f *fakeComments) List(_ context.Context, params ports.CommentListParams) ([]domain.Comment, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	filtered := make([]domain.Comment, 0, len(f.order))
	for _, id := range f.order {
		c, ok := f.byID[id]
		if !ok {
			continue
		}
		if params.NoteID != nil && c.NoteID != *params.NoteID {
			continue
		}
		if params.ParentID != nil && (c.ParentID == nil || *c.ParentID != *params.ParentID) {
			continue
		}
		if !params.IncludeDeleted && c.Deleted() {
			continue
		}
		filtered = append(filtered, c)
	}
	total := int64(len(filtered))
	if params.Offset >= len(filtered) {
		return nil, total, nil
	}
	end := params.Offset + params.Limit
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[params.Offset:end], total, nil
}

func (f *fakeComments) UpdateBody(_ context.Context, commentID uuid.UUID, body string, isPrivate *bool, updatedAt time.Time) (domain.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[commentID]
	if !ok {
		return domain.Comment{}, domain.ErrNotFound
	}
	c.Body = body
	if isPrivate != nil {
		c.IsPrivate = *isPrivate
	}
	c.UpdatedAt = updatedAt
	f.byID[commentID] = c
	return c, nil
}

func (f *fakeComments) MarkDeleted(_ context.Context, commentID uuid.UUID, byAdmin bool, deletedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[commentID]
	if !ok {
		return domain.ErrNotFound
	}
	if byAdmin {
		c.DeletedByAdmin = true
	} else {
		c.DeletedByUser = true
	}
	c.UpdatedAt = deletedAt
	f.byID[commentID] = c
	return nil
}

type fakeLoginAttempts struct {
	mu      sync.Mutex
	records []domain.LoginAttempt
}

func (f *fakeLoginAttempts) Insert(_ context.Context, attempt domain.LoginAttempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, attempt)
	return nil
}

func (f *fakeLoginAttempts) ListByUser(_ context.Context, userID uuid.UUID, limit, offset int) ([]domain.LoginAttempt, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	matched := make([]domain.LoginAttempt, 0, len(f.records))
	for _, a := range f.records {
		if a.UserID != nil && *a.UserID == userID {
			matched = append(matched, a)
		}
	}
	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

type fakeOutbox struct {
	mu     sync.Mutex
	events []ports.OutboxEvent
}

func (f *fakeOutbox) Enqueue(_ context.Context, event ports.OutboxEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeOutbox) ClaimUnpublished(context.Context, int, string, time.Time) ([]ports.OutboxRecord, error) {
	return nil, nil
}
func (f *fakeOutbox) MarkPublished(context.Context, uuid.UUID, string, time.Time) error { return nil }
func (f *fakeOutbox) MarkFailed(context.Context, uuid.UUID, string, string, time.Time) error {
	return nil
}
func (f *fakeOutbox) MarkDeadLettered(context.Context, uuid.UUID, string, string, time.Time) error {
	return nil
}

func (f *fakeOutbox) eventTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.EventType)
	}
	return out
}

type fakeLockouts struct {
	mu    sync.Mutex
	state map[string]ports.LockoutState
}

func (f *fakeLockouts) Get(_ context.Context, key string) (ports.LockoutState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state[key], nil
}

func (f *fakeLockouts) RecordFailure(_ context.Context, key string, now time.Time, threshold int, lockoutWindow time.Duration) (ports.LockoutState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.state[key]
	s.FailedCount++
	if s.FailedCount >= threshold {
		until := now.Add(lockoutWindow)
		s.LockedUntil = &until
	}
	f.state[key] = s
	return s, nil
}

func (f *fakeLockouts) Clear(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.state, key)
	return nil
}

type blobEntry struct {
	contentType string
	data        []byte
}

type fakeBlobs struct {
	mu      sync.Mutex
	objects map[string]blobEntry
}

func (f *fakeBlobs) Put(_ context.Context, key, contentType string, _ int64, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = blobEntry{contentType: contentType, data: data}
	return nil
}

func (f *fakeBlobs) Get(_ context.Context, key string) (ports.BlobObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.objects[key]
	if !ok {
		return ports.BlobObject{}, domain.ErrNotFound
	}
	return ports.BlobObject{
		Body:        io.NopCloser(bytes.NewReader(entry.data)),
		ContentType: entry.contentType,
		Size:        int64(len(entry.data)),
	}, nil
}

func (f *fakeBlobs) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

func (f *fakeBlobs) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (fakeHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return errors.New("password mismatch")
	}
	return nil
}
