package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/and161185/task-keeper/internal/errs"
	"github.com/and161185/task-keeper/internal/model"
	"github.com/and161185/task-keeper/internal/service"
	"github.com/and161185/task-keeper/internal/token"
)

// In-memory repositories backing a full service stack for transport tests.

type memUsers struct {
	mu     sync.Mutex
	byName map[string]*model.User
}

func newMemUsers() *memUsers { return &memUsers{byName: map[string]*model.User{}} }

func (m *memUsers) Create(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byName[u.Username]; ok {
		return errs.ErrUsernameTaken
	}
	for _, other := range m.byName {
		if other.Email == u.Email {
			return errs.ErrEmailTaken
		}
	}
	cpy := *u
	m.byName[u.Username] = &cpy
	return nil
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byName[username]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (m *memUsers) ExistsByUsername(_ context.Context, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.byName[username]
	return ok, nil
}

func (m *memUsers) ExistsByEmail(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byName {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

type memTasks struct {
	mu     sync.Mutex
	byID   map[int64]*model.Task
	nextID int64
}

func newMemTasks() *memTasks { return &memTasks{byID: map[int64]*model.Task{}, nextID: 1} }

func (m *memTasks) Create(_ context.Context, t *model.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = m.nextID
	m.nextID++
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
	cpy := *t
	m.byID[t.ID] = &cpy
	return nil
}

func (m *memTasks) List(_ context.Context, ownerID uuid.UUID) ([]model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Task{}
	for _, t := range m.byID {
		if t.OwnerID == ownerID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *memTasks) ListByStatus(_ context.Context, ownerID uuid.UUID, status model.TaskStatus) ([]model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Task{}
	for _, t := range m.byID {
		if t.OwnerID == ownerID && t.Status == status {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *memTasks) SearchByTitle(_ context.Context, ownerID uuid.UUID, title string) ([]model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Task{}
	for _, t := range m.byID {
		if t.OwnerID == ownerID && strings.Contains(strings.ToLower(t.Title), strings.ToLower(title)) {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *memTasks) Get(_ context.Context, ownerID uuid.UUID, id int64) (*model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byID[id]
	if !ok || t.OwnerID != ownerID {
		return nil, errs.ErrNotFound
	}
	c := *t
	return &c, nil
}

func (m *memTasks) Update(_ context.Context, ownerID uuid.UUID, id int64, title, description string, status model.TaskStatus) (*model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byID[id]
	if !ok || t.OwnerID != ownerID {
		return nil, errs.ErrNotFound
	}
	t.Title = title
	t.Description = description
	t.Status = status
	t.UpdatedAt = time.Now()
	c := *t
	return &c, nil
}

func (m *memTasks) Delete(_ context.Context, ownerID uuid.UUID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byID[id]
	if !ok || t.OwnerID != ownerID {
		return errs.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func newTestApp(t *testing.T, ttl time.Duration) *fiber.App {
	t.Helper()
	tokens := token.New([]byte("test-key"), ttl)
	auth := service.NewAuthService(newMemUsers(), tokens)
	tasks := service.NewTaskService(newMemTasks())
	return New(auth, tasks, zap.NewNop()).App()
}

func doJSON(t *testing.T, app *fiber.App, method, path, bearer string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()

	var decoded map[string]any
	if len(raw) > 0 && json.Valid(raw) && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func registerUser(t *testing.T, app *fiber.App, username, email string) string {
	t.Helper()
	resp, body := doJSON(t, app, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"username": username, "email": email, "password": "pw123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	tok, _ := body["token"].(string)
	require.NotEmpty(t, tok)
	return tok
}

func TestRegister_ResponseShape(t *testing.T) {
	app := newTestApp(t, time.Minute)

	resp, body := doJSON(t, app, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"username": "alice", "email": "a@x.com", "password": "pw123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, "Bearer", body["tokenType"])
	require.Equal(t, "alice", body["username"])
	require.Equal(t, "a@x.com", body["email"])
	require.NotEmpty(t, body["token"])
}

func TestRegister_Conflicts(t *testing.T) {
	app := newTestApp(t, time.Minute)
	registerUser(t, app, "alice", "a@x.com")

	resp, _ := doJSON(t, app, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"username": "alice", "email": "other@x.com", "password": "pw",
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"username": "bob", "email": "a@x.com", "password": "pw",
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestLogin_AmbiguousFailure(t *testing.T) {
	app := newTestApp(t, time.Minute)
	registerUser(t, app, "alice", "a@x.com")

	okResp, okBody := doJSON(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"username": "alice", "password": "pw123",
	})
	require.Equal(t, http.StatusOK, okResp.StatusCode)
	require.NotEmpty(t, okBody["token"])

	wrongPw, wrongPwBody := doJSON(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"username": "alice", "password": "nope",
	})
	unknown, unknownBody := doJSON(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"username": "ghost", "password": "pw123",
	})
	require.Equal(t, http.StatusUnauthorized, wrongPw.StatusCode)
	require.Equal(t, http.StatusUnauthorized, unknown.StatusCode)
	// Identical outward error for unknown user and wrong password.
	require.Equal(t, wrongPwBody["error"], unknownBody["error"])
}

func TestTasks_RequireBearerToken(t *testing.T) {
	app := newTestApp(t, time.Minute)

	for _, header := range []string{"", "Basic abc", "Bearer ", "bearer"} {
		req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req, 5000)
		require.NoError(t, err)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, "header=%q", header)
		_ = resp.Body.Close()
	}

	resp, _ := doJSON(t, app, http.MethodGet, "/api/tasks", "not-a-jwt", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestTasks_ExpiredToken(t *testing.T) {
	app := newTestApp(t, -time.Minute)
	tok := registerUser(t, app, "alice", "a@x.com")

	resp, body := doJSON(t, app, http.MethodGet, "/api/tasks", tok, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "token expired", body["error"])
}

func TestTasks_CreateForcesPending(t *testing.T) {
	app := newTestApp(t, time.Minute)
	tok := registerUser(t, app, "alice", "a@x.com")

	resp, body := doJSON(t, app, http.MethodPost, "/api/tasks", tok, fiber.Map{
		"title": "Buy milk", "status": "COMPLETED",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, "PENDING", body["status"])
}

func TestTasks_ValidationErrors(t *testing.T) {
	app := newTestApp(t, time.Minute)
	tok := registerUser(t, app, "alice", "a@x.com")

	resp, body := doJSON(t, app, http.MethodPost, "/api/tasks", tok, fiber.Map{"title": "Hi"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	fields, _ := body["fields"].(map[string]any)
	require.Contains(t, fields, "title")

	resp, _ = doJSON(t, app, http.MethodGet, "/api/tasks/abc", tok, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/tasks/status/NOPE", tok, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTasks_OwnerIsolationOverHTTP(t *testing.T) {
	app := newTestApp(t, time.Minute)
	tokA := registerUser(t, app, "alice", "a@x.com")
	tokB := registerUser(t, app, "bob", "b@x.com")

	resp, created := doJSON(t, app, http.MethodPost, "/api/tasks", tokA, fiber.Map{"title": "A's task"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := int64(created["id"].(float64))

	// B's list never contains A's tasks.
	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Authorization", "Bearer "+tokB)
	listResp, err := app.Test(req, 5000)
	require.NoError(t, err)
	raw, _ := io.ReadAll(listResp.Body)
	_ = listResp.Body.Close()
	var listB []map[string]any
	require.NoError(t, json.Unmarshal(raw, &listB))
	require.Empty(t, listB)

	// B's get on A's id is indistinguishable from a missing id.
	foreign, foreignBody := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/tasks/%d", id), tokB, nil)
	missing, missingBody := doJSON(t, app, http.MethodGet, "/api/tasks/9999", tokA, nil)
	require.Equal(t, http.StatusNotFound, foreign.StatusCode)
	require.Equal(t, http.StatusNotFound, missing.StatusCode)
	require.Equal(t, foreignBody["error"], missingBody["error"])
}

func TestTasks_UpdateAndDelete(t *testing.T) {
	app := newTestApp(t, time.Minute)
	tok := registerUser(t, app, "alice", "a@x.com")

	_, created := doJSON(t, app, http.MethodPost, "/api/tasks", tok, fiber.Map{
		"title": "Buy milk", "description": "2 liters",
	})
	id := int64(created["id"].(float64))
	path := fmt.Sprintf("/api/tasks/%d", id)

	// Status supplied: applied.
	resp, updated := doJSON(t, app, http.MethodPut, path, tok, fiber.Map{
		"title": "Buy milk", "status": "IN_PROGRESS",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "IN_PROGRESS", updated["status"])
	require.Equal(t, "", updated["description"])

	// Status omitted: unchanged.
	resp, updated = doJSON(t, app, http.MethodPut, path, tok, fiber.Map{"title": "Buy oat milk"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "IN_PROGRESS", updated["status"])
	require.Equal(t, "Buy oat milk", updated["title"])

	resp, _ = doJSON(t, app, http.MethodDelete, path, tok, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, path, tok, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTasks_StatusAndSearchRoutes(t *testing.T) {
	app := newTestApp(t, time.Minute)
	tok := registerUser(t, app, "alice", "a@x.com")

	_, created := doJSON(t, app, http.MethodPost, "/api/tasks", tok, fiber.Map{"title": "Walk the dog"})
	doJSON(t, app, http.MethodPost, "/api/tasks", tok, fiber.Map{"title": "Buy milk"})
	id := int64(created["id"].(float64))
	doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/tasks/%d", id), tok, fiber.Map{
		"title": "Walk the dog", "status": "COMPLETED",
	})

	req := httptest.NewRequest(http.MethodGet, "/api/tasks/status/COMPLETED", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	var done []map[string]any
	require.NoError(t, json.Unmarshal(raw, &done))
	require.Len(t, done, 1)
	require.Equal(t, "Walk the dog", done[0]["title"])

	req = httptest.NewRequest(http.MethodGet, "/api/tasks/search?title=MILK", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err = app.Test(req, 5000)
	require.NoError(t, err)
	raw, _ = io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	var hits []map[string]any
	require.NoError(t, json.Unmarshal(raw, &hits))
	require.Len(t, hits, 1)
	require.Equal(t, "Buy milk", hits[0]["title"])
}

// The end-to-end scenario: register, login, create, validation failure, and a
// foreign user probing the task id.
func TestScenario_RegisterLoginCreateProbe(t *testing.T) {
	app := newTestApp(t, time.Minute)

	registerUser(t, app, "alice", "a@x.com")

	loginResp, loginBody := doJSON(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"username": "alice", "password": "pw123",
	})
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	tok := loginBody["token"].(string)

	createResp, created := doJSON(t, app, http.MethodPost, "/api/tasks", tok, fiber.Map{"title": "Buy milk"})
	require.Equal(t, http.StatusCreated, createResp.StatusCode)
	require.Equal(t, "PENDING", created["status"])

	shortResp, _ := doJSON(t, app, http.MethodPost, "/api/tasks", tok, fiber.Map{"title": "Hi"})
	require.Equal(t, http.StatusBadRequest, shortResp.StatusCode)

	otherTok := registerUser(t, app, "mallory", "m@x.com")
	probe, _ := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/tasks/%d", int64(created["id"].(float64))), otherTok, nil)
	require.Equal(t, http.StatusNotFound, probe.StatusCode)
}

func TestHealthz(t *testing.T) {
	app := newTestApp(t, time.Minute)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
