package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"office-panel/internal/audit"
	"office-panel/internal/cache"
	"office-panel/internal/config"
	"office-panel/internal/logging"
	"office-panel/internal/models"
	"office-panel/internal/requestcontext"
	"office-panel/internal/services"
	"office-panel/internal/webhook"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret"

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
	svc    *services.Services

	mu    sync.Mutex
	hooks []webhook.Payload
}

func (s *testServer) webhookCalls() []webhook.Payload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]webhook.Payload(nil), s.hooks...)
}

// setupTestRouter builds the full router over a temporary SQLite database.
func setupTestRouter(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()

	db, err := gorm.Open(sqlite.Open(filepath.Join(dir, "test.db")+"?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))

	ts := &testServer{db: db}
	hookServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p webhook.Payload
		_ = json.NewDecoder(r.Body).Decode(&p)
		ts.mu.Lock()
		ts.hooks = append(ts.hooks, p)
		ts.mu.Unlock()
	}))
	t.Cleanup(hookServer.Close)

	cfg := &config.Config{
		JWT:      config.JWTConfig{Secret: testSecret, ExpiresIn: "1h", Issuer: "office-panel"},
		Security: config.SecurityConfig{BcryptCost: bcrypt.MinCost},
		Media:    config.MediaConfig{Root: filepath.Join(dir, "media"), MaxUploadMB: 1},
	}
	log := logging.Discard()
	observer := audit.NewObserver(db, webhook.New(hookServer.URL, time.Second), log)
	ts.svc = services.New(cfg, db, observer, cache.NewMemory(16, time.Minute), log)

	ts.router = gin.New()
	SetupRoutes(ts.router, cfg, Deps{DB: db, Services: ts.svc, Log: log})
	return ts
}

func (s *testServer) createTestUser(t *testing.T, username, password, role string) *models.User {
	t.Helper()
	hash, err := s.svc.Auth.HashPassword(password)
	require.NoError(t, err)
	user := &models.User{Username: username, PasswordHash: hash, Role: role, IsActive: true}
	require.NoError(t, s.db.Create(user).Error)
	return user
}

func (s *testServer) createTestToken(t *testing.T, user *models.User) string {
	t.Helper()
	claims := jwt.MapClaims{
		"jti":     uuid.NewString(),
		"user_id": user.ID,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	require.NoError(t, s.svc.Auth.CreateSession(context.Background(), user.ID, token, time.Now().Add(time.Hour)))
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) auditRows(t *testing.T, model string) []models.AuditLog {
	t.Helper()
	var rows []models.AuditLog
	require.NoError(t, s.db.Where("model_name = ?", model).Order("id ASC").Find(&rows).Error)
	return rows
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestLoginAndMe(t *testing.T) {
	ts := setupTestRouter(t)
	ts.createTestUser(t, "clerk", "password123", models.RoleUser)

	w := ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "clerk", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "clerk", "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	login := decode[struct {
		Token string `json:"token"`
	}](t, w)
	require.NotEmpty(t, login.Token)

	w = ts.do(t, http.MethodGet, "/api/auth/me", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"clerk"`)

	w = ts.do(t, http.MethodPost, "/api/auth/logout", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/api/auth/me", login.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestNoticePublishFlow(t *testing.T) {
	ts := setupTestRouter(t)
	admin := ts.createTestUser(t, "admin", "password123", models.RoleAdmin)
	token := ts.createTestToken(t, admin)

	w := ts.do(t, http.MethodPost, "/api/notices", token, map[string]string{
		"title": "Holiday", "content": "Office closed on Friday", "status": models.NoticeStatusDraft,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	notice := decode[models.Notice](t, w)

	rows := ts.auditRows(t, "Notice")
	require.Len(t, rows, 1)
	assert.Equal(t, models.ActionCreated, rows[0].Action)
	assert.Contains(t, rows[0].Details, "Holiday")
	require.NotNil(t, rows[0].UserID)
	assert.Equal(t, admin.ID, *rows[0].UserID)
	assert.NotEmpty(t, rows[0].RequestID)
	assert.Empty(t, ts.webhookCalls())

	w = ts.do(t, http.MethodPut, "/api/notices/"+itoa(notice.ID), token, map[string]string{"status": models.NoticeStatusPublished})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[models.Notice](t, w)
	assert.NotNil(t, updated.PublishedDate)

	rows = ts.auditRows(t, "Notice")
	require.Len(t, rows, 2)
	assert.Equal(t, models.ActionUpdated, rows[1].Action)

	hooks := ts.webhookCalls()
	require.Len(t, hooks, 1)
	assert.Equal(t, "notice_published", hooks[0].Event)
	assert.Equal(t, notice.ID, hooks[0].ID)
	assert.Equal(t, "Holiday", hooks[0].Title)

	// Public feed needs no token.
	w = ts.do(t, http.MethodGet, "/api/notices/published", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	feed := decode[struct {
		Notices []models.Notice `json:"notices"`
	}](t, w)
	require.Len(t, feed.Notices, 1)
	assert.Equal(t, notice.ID, feed.Notices[0].ID)
}

func TestDeleteDeviceAudited(t *testing.T) {
	ts := setupTestRouter(t)
	admin := ts.createTestUser(t, "admin", "password123", models.RoleAdmin)
	token := ts.createTestToken(t, admin)

	w := ts.do(t, http.MethodPost, "/api/devices", token, map[string]string{"name": "Lobby screen", "ip_address": "10.0.0.5"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	device := decode[models.Device](t, w)

	w = ts.do(t, http.MethodDelete, "/api/devices/"+itoa(device.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	rows := ts.auditRows(t, "Device")
	require.Len(t, rows, 2)
	assert.Equal(t, models.ActionDeleted, rows[1].Action)
	assert.Contains(t, rows[1].Details, "Lobby screen")

	w = ts.do(t, http.MethodGet, "/api/devices/"+itoa(device.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStaffCannotUpdateForeignContact(t *testing.T) {
	ts := setupTestRouter(t)
	admin := ts.createTestUser(t, "admin", "password123", models.RoleAdmin)
	staff := ts.createTestUser(t, "clerk", "password123", models.RoleUser)

	ctx := requestcontext.WithActor(context.Background(), admin)
	contact, err := ts.svc.Contacts.Create(ctx, services.ContactInput{FullName: "Ward Office", PhoneNumber: "9800000000"})
	require.NoError(t, err)
	before := len(ts.auditRows(t, "Contact"))

	w := ts.do(t, http.MethodPut, "/api/contacts/"+itoa(contact.ID), ts.createTestToken(t, staff),
		map[string]string{"full_name": "Changed", "phone_number": "9811111111"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	assert.Len(t, ts.auditRows(t, "Contact"), before)
	var stored models.Contact
	require.NoError(t, ts.db.First(&stored, contact.ID).Error)
	assert.Equal(t, "Ward Office", stored.FullName)
}

func TestAccessGates(t *testing.T) {
	ts := setupTestRouter(t)
	staff := ts.createTestUser(t, "clerk", "password123", models.RoleUser)
	staffToken := ts.createTestToken(t, staff)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"health is public", http.MethodGet, "/api/health", "", http.StatusOK},
		{"notices are public", http.MethodGet, "/api/notices", "", http.StatusOK},
		{"contacts need a session", http.MethodGet, "/api/contacts", "", http.StatusUnauthorized},
		{"staff lists contacts", http.MethodGet, "/api/contacts", staffToken, http.StatusOK},
		{"unknown token is anonymous", http.MethodGet, "/api/contacts", "not-a-session", http.StatusUnauthorized},
		{"staff cannot list users", http.MethodGet, "/api/users", staffToken, http.StatusForbidden},
		{"staff cannot read audit logs", http.MethodGet, "/api/audit-logs", staffToken, http.StatusForbidden},
		{"staff reads dashboard", http.MethodGet, "/api/dashboard", staffToken, http.StatusOK},
		{"missing notice", http.MethodGet, "/api/notices/999", "", http.StatusNotFound},
		{"malformed id", http.MethodGet, "/api/notices/abc", "", http.StatusBadRequest},
		{"unknown display", http.MethodGet, "/api/display/999", "", http.StatusNotFound},
		{"unknown endpoint", http.MethodGet, "/api/nothing-here", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, tt.method, tt.path, tt.token, nil)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestActionRequestEscalation(t *testing.T) {
	ts := setupTestRouter(t)
	admin := ts.createTestUser(t, "admin", "password123", models.RoleAdmin)
	staff := ts.createTestUser(t, "clerk", "password123", models.RoleUser)
	adminToken := ts.createTestToken(t, admin)
	staffToken := ts.createTestToken(t, staff)

	w := ts.do(t, http.MethodPost, "/api/notices", staffToken, map[string]string{"title": "Water cut", "content": "Tuesday morning"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	notice := decode[models.Notice](t, w)

	w = ts.do(t, http.MethodDelete, "/api/notices/"+itoa(notice.ID), staffToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, http.MethodPost, "/api/action-requests", staffToken, map[string]any{
		"request_type": models.RequestTypeDelete, "model_name": "Notice", "object_id": notice.ID, "reason": "Duplicate",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	request := decode[models.ActionRequest](t, w)
	assert.Equal(t, "Water cut", request.ObjectTitle)

	w = ts.do(t, http.MethodGet, "/api/action-requests", staffToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, http.MethodPost, "/api/action-requests/"+itoa(request.ID)+"/complete", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	completed := decode[models.ActionRequest](t, w)
	assert.Equal(t, models.RequestStatusCompleted, completed.Status)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
