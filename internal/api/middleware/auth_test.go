package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"office-panel/internal/audit"
	"office-panel/internal/cache"
	"office-panel/internal/config"
	"office-panel/internal/logging"
	"office-panel/internal/models"
	"office-panel/internal/policy"
	"office-panel/internal/requestcontext"
	"office-panel/internal/services"
	"office-panel/internal/webhook"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupAuth(t *testing.T) (*services.AuthService, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "mw.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))

	cfg := &config.Config{Media: config.MediaConfig{Root: t.TempDir()}}
	log := logging.Discard()
	svc := services.New(cfg, db, audit.NewObserver(db, webhook.New("", 0), log), cache.NewMemory(8, time.Minute), log)
	return svc.Auth, db
}

func createSession(t *testing.T, auth *services.AuthService, db *gorm.DB, username, role string) string {
	t.Helper()
	user := &models.User{Username: username, Role: role, PasswordHash: "x", IsActive: true}
	require.NoError(t, db.Create(user).Error)
	token := "token-" + username
	require.NoError(t, auth.CreateSession(t.Context(), user.ID, token, time.Now().Add(time.Hour)))
	return token
}

func TestIdentityNoLeakBetweenConcurrentRequests(t *testing.T) {
	auth, db := setupAuth(t)
	tokens := map[string]string{
		"alice": createSession(t, auth, db, "alice", models.RoleAdmin),
		"bob":   createSession(t, auth, db, "bob", models.RoleUser),
	}

	r := gin.New()
	r.Use(Identity(auth))
	r.GET("/whoami", func(c *gin.Context) {
		time.Sleep(5 * time.Millisecond)
		user := requestcontext.Actor(c.Request.Context())
		if user == nil {
			c.String(200, "anonymous")
			return
		}
		c.String(200, user.Username)
	})

	names := []string{"alice", "bob", ""}
	var wg sync.WaitGroup
	errs := make(chan string, 60)
	for i := 0; i < 60; i++ {
		name := names[i%len(names)]
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest("GET", "/whoami", nil)
			if name != "" {
				req.Header.Set("Authorization", "Bearer "+tokens[name])
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			want := name
			if want == "" {
				want = "anonymous"
			}
			if w.Body.String() != want {
				errs <- fmt.Sprintf("want %s, got %s", want, w.Body.String())
			}
		}()
	}
	wg.Wait()
	close(errs)

	for e := range errs {
		t.Error(e)
	}
}

func TestIdentityClearedAfterRequest(t *testing.T) {
	auth, db := setupAuth(t)
	token := createSession(t, auth, db, "alice", models.RoleAdmin)

	var during, after *models.User
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Next()
		after = requestcontext.Actor(c.Request.Context())
	})
	r.Use(Identity(auth))
	r.GET("/ok", func(c *gin.Context) {
		during = requestcontext.Actor(c.Request.Context())
		c.Status(204)
	})

	req := httptest.NewRequest("GET", "/ok", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, during)
	assert.Equal(t, "alice", during.Username)
	assert.Nil(t, after)
}

func TestIdentityClearedOnPanic(t *testing.T) {
	auth, db := setupAuth(t)
	token := createSession(t, auth, db, "alice", models.RoleAdmin)

	recovered := false
	var seen *models.User
	r := gin.New()
	r.Use(func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				recovered = true
				seen = requestcontext.Actor(c.Request.Context())
				c.AbortWithStatus(500)
			}
		}()
		c.Next()
	})
	r.Use(Identity(auth))
	r.GET("/boom", func(c *gin.Context) {
		panic("boom")
	})

	req := httptest.NewRequest("GET", "/boom", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.True(t, recovered)
	assert.Nil(t, seen)
	assert.Equal(t, 500, w.Code)
}

func TestIdentityIgnoresBadTokens(t *testing.T) {
	auth, db := setupAuth(t)
	user := &models.User{Username: "old", PasswordHash: "x", IsActive: true}
	require.NoError(t, db.Create(user).Error)
	require.NoError(t, auth.CreateSession(t.Context(), user.ID, "expired", time.Now().Add(-time.Hour)))

	r := gin.New()
	r.Use(Identity(auth))
	r.GET("/whoami", func(c *gin.Context) {
		assert.Nil(t, requestcontext.Actor(c.Request.Context()))
		c.Status(204)
	})

	for _, header := range []string{"", "Bearer", "Basic abc", "Bearer expired", "Bearer unknown"} {
		req := httptest.NewRequest("GET", "/whoami", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, 204, w.Code, header)
	}
}

func TestAuthorize(t *testing.T) {
	auth, db := setupAuth(t)
	adminToken := createSession(t, auth, db, "alice", models.RoleAdmin)
	staffToken := createSession(t, auth, db, "bob", models.RoleUser)

	r := gin.New()
	r.Use(Identity(auth))
	r.DELETE("/contacts/1", Authorize(policy.Contacts, policy.Delete), func(c *gin.Context) { c.Status(204) })
	r.PUT("/tickers/1", Authorize(policy.Tickers, policy.Update), func(c *gin.Context) { c.Status(204) })

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"anonymous", "DELETE", "/contacts/1", "", http.StatusUnauthorized},
		{"staff", "DELETE", "/contacts/1", staffToken, http.StatusForbidden},
		{"admin", "DELETE", "/contacts/1", adminToken, http.StatusNoContent},
		{"ownership deferred to service", "PUT", "/tickers/1", staffToken, http.StatusNoContent},
		{"ownership needs a user", "PUT", "/tickers/1", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRequestIDAndRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.POST("/login", RateLimit(2), func(c *gin.Context) { c.String(200, c.GetString(RequestIDKey)) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("POST", "/login", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
		if w.Code == 200 {
			assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
			assert.Equal(t, w.Header().Get(RequestIDHeader), w.Body.String())
		}
	}
	assert.Equal(t, []int{200, 200, http.StatusTooManyRequests}, codes)

	req := httptest.NewRequest("OPTIONS", "/login", nil)
	req.Header.Set("X-Request-ID", "abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get(RequestIDHeader))
}
