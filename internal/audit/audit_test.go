package audit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"office-panel/internal/logging"
	"office-panel/internal/models"
	"office-panel/internal/requestcontext"
	"office-panel/internal/webhook"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	dbPath := filepath.Join(t.TempDir(), "audit.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))
	return db
}

type webhookRecorder struct {
	mu       sync.Mutex
	payloads []webhook.Payload
}

func (r *webhookRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.payloads)
}

func newWebhookServer(t *testing.T) (*httptest.Server, *webhookRecorder) {
	rec := &webhookRecorder{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p webhook.Payload
		_ = json.NewDecoder(r.Body).Decode(&p)
		rec.mu.Lock()
		rec.payloads = append(rec.payloads, p)
		rec.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)
	return server, rec
}

func auditRows(t *testing.T, db *gorm.DB) []models.AuditLog {
	var rows []models.AuditLog
	require.NoError(t, db.Order("id ASC").Find(&rows).Error)
	return rows
}

func TestObserverAttribution(t *testing.T) {
	db := setupTestDB(t)
	obs := NewObserver(db, webhook.New("", 0), logging.Discard())

	actor := &models.User{Username: "clerk", PasswordHash: "x", Role: models.RoleUser}
	require.NoError(t, db.Create(actor).Error)

	device := &models.Device{Name: "Lobby Screen"}
	require.NoError(t, db.Create(device).Error)

	ctx := requestcontext.WithActor(context.Background(), actor)
	ctx = requestcontext.WithRequestID(ctx, "req-1")
	ctx = requestcontext.WithClientIP(ctx, "10.0.0.5")

	obs.Saved(ctx, device, true)
	obs.Saved(context.Background(), device, false)

	rows := auditRows(t, db)
	require.Len(t, rows, 2)

	assert.Equal(t, models.ActionCreated, rows[0].Action)
	assert.Equal(t, "Device", rows[0].ModelName)
	assert.Equal(t, "Device Created: Lobby Screen", rows[0].Details)
	require.NotNil(t, rows[0].UserID)
	assert.Equal(t, actor.ID, *rows[0].UserID)
	assert.Equal(t, "req-1", rows[0].RequestID)
	assert.Equal(t, "10.0.0.5", rows[0].IPAddress)

	assert.Equal(t, models.ActionUpdated, rows[1].Action)
	assert.Nil(t, rows[1].UserID)
	assert.Equal(t, "1", rows[1].ObjectID)
}

func TestObserverWatchedTypes(t *testing.T) {
	db := setupTestDB(t)
	obs := NewObserver(db, webhook.New("", 0), logging.Discard())
	ctx := context.Background()

	obs.Saved(ctx, &models.Contact{ID: 1, FullName: "Ram", PhoneNumber: "123"}, true)
	obs.Saved(ctx, &models.TickerMessage{ID: 1, Content: "hello"}, true)
	obs.Deleted(ctx, &models.Gallery{ID: 1, Title: "Expo"})
	obs.Deleted(ctx, &models.User{ID: 1, Username: "gone"})
	assert.Empty(t, auditRows(t, db))

	obs.Saved(ctx, &models.CitizenCharter{ID: 4, ServiceName: "Birth registration"}, true)
	obs.Deleted(ctx, &models.Notice{ID: 9, Title: "Old"})

	rows := auditRows(t, db)
	require.Len(t, rows, 2)
	assert.Equal(t, "Citizen Charter", rows[0].ModelName)
	assert.Equal(t, "Citizen Charter Created: Birth registration", rows[0].Details)
	assert.Equal(t, models.ActionDeleted, rows[1].Action)
	assert.Equal(t, "9", rows[1].ObjectID)
}

func TestObserverWebhookIsLevelTriggered(t *testing.T) {
	db := setupTestDB(t)
	server, rec := newWebhookServer(t)
	obs := NewObserver(db, webhook.New(server.URL, time.Second), logging.Discard())
	ctx := context.Background()

	notice := &models.Notice{ID: 3, Title: "Holiday", Content: "Closed", Status: models.NoticeStatusDraft}
	obs.Saved(ctx, notice, true)
	assert.Equal(t, 0, rec.count())

	notice.Status = models.NoticeStatusPublished
	obs.Saved(ctx, notice, false)
	obs.Saved(ctx, notice, false)
	require.Equal(t, 2, rec.count())
	assert.Equal(t, webhook.Payload{Event: "notice_published", ID: 3, Title: "Holiday", Content: "Closed"}, rec.payloads[0])

	obs.Deleted(ctx, notice)
	assert.Equal(t, 2, rec.count())
	assert.Len(t, auditRows(t, db), 4)
}

func TestObserverSwallowsWebhookTimeout(t *testing.T) {
	db := setupTestDB(t)
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	obs := NewObserver(db, webhook.New(server.URL, 50*time.Millisecond), logging.Discard())

	start := time.Now()
	obs.Saved(context.Background(), &models.Notice{ID: 1, Title: "Flood", Status: models.NoticeStatusPublished}, true)
	assert.Less(t, time.Since(start), time.Second)

	rows := auditRows(t, db)
	require.Len(t, rows, 1)
	assert.Equal(t, "Notice Created: Flood", rows[0].Details)
}

func TestObserverSwallowsAuditFailure(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Migrator().DropTable(&models.AuditLog{}))
	obs := NewObserver(db, webhook.New("", 0), logging.Discard())

	assert.NotPanics(t, func() {
		obs.Saved(context.Background(), &models.Device{ID: 1, Name: "Hall"}, true)
	})
}

func TestRecent(t *testing.T) {
	db := setupTestDB(t)
	obs := NewObserver(db, webhook.New("", 0), logging.Discard())

	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 60; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		obs.now = func() time.Time { return at }
		obs.Saved(context.Background(), &models.Device{ID: uint(i + 1), Name: "d"}, true)
	}

	logs, err := obs.Recent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, logs, DefaultRecentLimit)
	assert.Equal(t, "60", logs[0].ObjectID)
	assert.True(t, logs[0].Timestamp.After(logs[1].Timestamp))

	logs, err = obs.Recent(context.Background(), 1000)
	require.NoError(t, err)
	assert.Len(t, logs, 60)
}
