package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/helmar/backend/internal/auth"
	"github.com/helmar/backend/internal/middleware"
	"github.com/helmar/backend/internal/models"
	"github.com/helmar/backend/internal/notify"
	"github.com/helmar/backend/internal/phone"
	"github.com/helmar/backend/internal/profiles"
	"github.com/helmar/backend/internal/repositories"
)

// staticVerifier treats the bearer token itself as the principal so tests can
// authenticate as anyone without minting real tokens.
type staticVerifier struct{}

func (staticVerifier) Verify(token string) (string, error) {
	if token == "" {
		return "", errors.New("empty token")
	}
	return token, nil
}

type testEnv struct {
	handler       http.Handler
	sessions      *auth.Manager
	accounts      *memAccountStore
	profiles      *memProfileStore
	profileCache  *profiles.CachingReader
	videos        *memVideoStore
	graph         *memGraphStore
	notifications *memNotificationStore
	phoneStore    *phone.InMemoryStore
	verifier      *phone.Verifier
	blobs         *memBlobStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	accounts := newMemAccountStore()
	profileStore := newMemProfileStore()
	videos := newMemVideoStore()
	graph := newMemGraphStore()
	notifications := newMemNotificationStore()
	phoneStore := phone.NewInMemoryStore()
	blobs := &memBlobStore{}

	cache := profiles.NewCachingReader(profileStore, time.Minute)
	dispatcher := notify.NewDispatcher(notifications, cache, slog.New(slog.NewTextHandler(io.Discard, nil)))
	verifier := phone.NewVerifier(phoneStore, 10*time.Minute, 3)
	sessions := auth.NewManager("test-secret", 15*time.Minute, 24*time.Hour, auth.NewInMemorySessionStore())

	deps := Dependencies{
		Accounts:      accounts,
		Sessions:      sessions,
		Profiles:      profileStore,
		ProfileCache:  cache,
		Videos:        videos,
		Graph:         graph,
		Notifications: notifications,
		Notifier:      dispatcher,
		Phone:         verifier,
		Blobs:         blobs,
	}

	router := chi.NewRouter()
	router.Use(middleware.Authenticate(staticVerifier{}))
	RegisterRoutes(router, deps)

	return &testEnv{
		handler:       router,
		sessions:      sessions,
		accounts:      accounts,
		profiles:      profileStore,
		profileCache:  cache,
		videos:        videos,
		graph:         graph,
		notifications: notifications,
		phoneStore:    phoneStore,
		verifier:      verifier,
		blobs:         blobs,
	}
}

// do executes a JSON request against the test router as the given principal.
// An empty principal performs the request as a guest.
func (e *testEnv) do(t *testing.T, method, path, principal string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if principal != "" {
		req.Header.Set("Authorization", "Bearer "+principal)
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	return out
}

// addAccount registers an account and optionally its profile directly in the
// fakes, bypassing the HTTP surface.
func (e *testEnv) addAccount(t *testing.T, principal, username string, role models.Role) {
	t.Helper()

	err := e.accounts.Create(context.Background(), models.Account{
		ID:        principal,
		Email:     principal + "@example.com",
		Password:  "hash",
		Role:      role,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed account %s: %v", principal, err)
	}

	if username != "" {
		err := e.profiles.Upsert(context.Background(), models.UserProfile{
			Principal: principal,
			Username:  username,
			UpdatedAt: time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("seed profile %s: %v", principal, err)
		}
	}
}

type memAccountStore struct {
	accounts map[string]models.Account
}

func newMemAccountStore() *memAccountStore {
	return &memAccountStore{accounts: make(map[string]models.Account)}
}

func (s *memAccountStore) Create(_ context.Context, account models.Account) error {
	for _, existing := range s.accounts {
		if existing.Email == account.Email {
			return repositories.ErrConflict
		}
	}
	if _, ok := s.accounts[account.ID]; ok {
		return repositories.ErrConflict
	}
	s.accounts[account.ID] = account
	return nil
}

func (s *memAccountStore) FindByEmail(_ context.Context, email string) (models.Account, error) {
	for _, account := range s.accounts {
		if account.Email == email {
			return account, nil
		}
	}
	return models.Account{}, repositories.ErrNotFound
}

func (s *memAccountStore) FindByID(_ context.Context, id string) (models.Account, error) {
	account, ok := s.accounts[id]
	if !ok {
		return models.Account{}, repositories.ErrNotFound
	}
	return account, nil
}

func (s *memAccountStore) UpdateRole(_ context.Context, id string, role models.Role) error {
	account, ok := s.accounts[id]
	if !ok {
		return repositories.ErrNotFound
	}
	account.Role = role
	s.accounts[id] = account
	return nil
}

type memProfileStore struct {
	profiles map[string]models.UserProfile
}

func newMemProfileStore() *memProfileStore {
	return &memProfileStore{profiles: make(map[string]models.UserProfile)}
}

func (s *memProfileStore) Upsert(_ context.Context, profile models.UserProfile) error {
	if existing, ok := s.profiles[profile.Principal]; ok {
		profile.PhoneNumber = existing.PhoneNumber
		profile.PhoneVerified = existing.PhoneVerified
		profile.CreatedAt = existing.CreatedAt
	} else {
		profile.CreatedAt = profile.UpdatedAt
	}
	s.profiles[profile.Principal] = profile
	return nil
}

func (s *memProfileStore) Find(_ context.Context, principal string) (models.UserProfile, error) {
	profile, ok := s.profiles[principal]
	if !ok {
		return models.UserProfile{}, repositories.ErrNotFound
	}
	return profile, nil
}

func (s *memProfileStore) Search(_ context.Context, query, exclude string, limit int) ([]models.UserProfile, error) {
	query = strings.ToLower(query)
	var out []models.UserProfile
	for _, profile := range s.profiles {
		if profile.Principal == exclude {
			continue
		}
		if strings.Contains(strings.ToLower(profile.Username), query) {
			out = append(out, profile)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memProfileStore) SetPhoneVerified(_ context.Context, principal, phoneNumber string) error {
	profile, ok := s.profiles[principal]
	if !ok {
		return repositories.ErrNotFound
	}
	profile.PhoneNumber = phoneNumber
	profile.PhoneVerified = true
	s.profiles[principal] = profile
	return nil
}

type memVideoStore struct {
	posts map[string]*models.VideoPost
	order []string
}

func newMemVideoStore() *memVideoStore {
	return &memVideoStore{posts: make(map[string]*models.VideoPost)}
}

func (s *memVideoStore) Create(_ context.Context, post models.VideoPost) error {
	if _, ok := s.posts[post.ID]; ok {
		return repositories.ErrConflict
	}
	post.Likes = []string{}
	post.Comments = []models.Comment{}
	s.posts[post.ID] = &post
	s.order = append(s.order, post.ID)
	return nil
}

func (s *memVideoStore) List(_ context.Context) ([]models.VideoPost, error) {
	out := make([]models.VideoPost, 0, len(s.order))
	// Insertion order reversed approximates reverse-chronological.
	for i := len(s.order) - 1; i >= 0; i-- {
		out = append(out, clonePost(s.posts[s.order[i]]))
	}
	return out, nil
}

func (s *memVideoStore) Find(_ context.Context, id string) (models.VideoPost, error) {
	post, ok := s.posts[id]
	if !ok {
		return models.VideoPost{}, repositories.ErrNotFound
	}
	return clonePost(post), nil
}

func (s *memVideoStore) ToggleLike(_ context.Context, videoID, principal string) (bool, error) {
	post, ok := s.posts[videoID]
	if !ok {
		return false, repositories.ErrNotFound
	}
	for i, liker := range post.Likes {
		if liker == principal {
			post.Likes = append(post.Likes[:i], post.Likes[i+1:]...)
			return false, nil
		}
	}
	post.Likes = append(post.Likes, principal)
	return true, nil
}

func (s *memVideoStore) AddComment(_ context.Context, comment models.Comment) error {
	post, ok := s.posts[comment.VideoID]
	if !ok {
		return repositories.ErrNotFound
	}
	post.Comments = append(post.Comments, comment)
	return nil
}

func clonePost(post *models.VideoPost) models.VideoPost {
	out := *post
	out.Likes = append([]string{}, post.Likes...)
	out.Comments = append([]models.Comment{}, post.Comments...)
	return out
}

type followEdge struct {
	follower string
	followee string
}

type memGraphStore struct {
	edges []followEdge
}

func newMemGraphStore() *memGraphStore {
	return &memGraphStore{}
}

func (s *memGraphStore) Follow(_ context.Context, follower, followee string) (bool, error) {
	for _, edge := range s.edges {
		if edge.follower == follower && edge.followee == followee {
			return false, nil
		}
	}
	s.edges = append(s.edges, followEdge{follower: follower, followee: followee})
	return true, nil
}

func (s *memGraphStore) Unfollow(_ context.Context, follower, followee string) error {
	for i, edge := range s.edges {
		if edge.follower == follower && edge.followee == followee {
			s.edges = append(s.edges[:i], s.edges[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *memGraphStore) Followers(_ context.Context, principal string) ([]string, error) {
	out := []string{}
	for _, edge := range s.edges {
		if edge.followee == principal {
			out = append(out, edge.follower)
		}
	}
	return out, nil
}

func (s *memGraphStore) Following(_ context.Context, principal string) ([]string, error) {
	out := []string{}
	for _, edge := range s.edges {
		if edge.follower == principal {
			out = append(out, edge.followee)
		}
	}
	return out, nil
}

type memNotificationStore struct {
	items []models.Notification
}

func newMemNotificationStore() *memNotificationStore {
	return &memNotificationStore{}
}

func (s *memNotificationStore) Create(_ context.Context, notification models.Notification) error {
	s.items = append(s.items, notification)
	return nil
}

func (s *memNotificationStore) ListForRecipient(_ context.Context, principal string) ([]models.Notification, error) {
	out := []models.Notification{}
	for i := len(s.items) - 1; i >= 0; i-- {
		if s.items[i].Recipient == principal {
			out = append(out, s.items[i])
		}
	}
	return out, nil
}

func (s *memNotificationStore) Find(_ context.Context, id string) (models.Notification, error) {
	for _, n := range s.items {
		if n.ID == id {
			return n, nil
		}
	}
	return models.Notification{}, repositories.ErrNotFound
}

func (s *memNotificationStore) SetRead(_ context.Context, id string, isRead bool) error {
	for i, n := range s.items {
		if n.ID == id {
			s.items[i].IsRead = isRead
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (s *memNotificationStore) forRecipient(principal string) []models.Notification {
	out, _ := s.ListForRecipient(context.Background(), principal)
	return out
}

type memBlobStore struct {
	saved []string
}

func (s *memBlobStore) Save(_ context.Context, name string, r io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	s.saved = append(s.saved, name)
	return fmt.Sprintf("https://cdn.test/%s", name), nil
}
