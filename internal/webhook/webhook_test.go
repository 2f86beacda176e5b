package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"office-panel/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoticePublishedPayload(t *testing.T) {
	var got Payload
	var contentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	n := New(server.URL, time.Second)
	err := n.NoticePublished(context.Background(), &models.Notice{ID: 7, Title: "Holiday", Content: "Office closed"})
	require.NoError(t, err)

	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, Payload{Event: "notice_published", ID: 7, Title: "Holiday", Content: "Office closed"}, got)
}

func TestNoticePublishedErrors(t *testing.T) {
	t.Run("non 2xx", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		err := New(server.URL, time.Second).NoticePublished(context.Background(), &models.Notice{ID: 1})
		assert.Error(t, err)
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-release
		}))
		defer server.Close()
		defer close(release)

		start := time.Now()
		err := New(server.URL, 50*time.Millisecond).NoticePublished(context.Background(), &models.Notice{ID: 1})
		assert.Error(t, err)
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("disabled", func(t *testing.T) {
		n := New("", time.Second)
		assert.False(t, n.Enabled())
		assert.NoError(t, n.NoticePublished(context.Background(), &models.Notice{ID: 1}))
	})
}
