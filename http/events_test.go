package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"newsclf/config"
	"newsclf/inference"
	"newsclf/ml/mltest"
)

func TestEventHub_BroadcastsReload(t *testing.T) {
	dir := t.TempDir()
	mltest.WriteBundle(t, dir)
	models := config.Default().Models
	models.Dir = dir
	svc := inference.NewService(models, zap.NewNop())

	cfg := DefaultServerConfig()
	hub := NewEventHub(cfg.AllowedOrigins, zap.NewNop())
	svc.Subscribe(hub.Publish)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := httptest.NewServer(NewHandler(cfg, svc, hub, nil, zap.NewNop()))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/events"
	header := http.Header{"Origin": []string{"http://localhost:3000"}}
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, svc.Reload())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev inference.Event
	require.NoError(t, json.Unmarshal(msg, &ev))
	assert.Equal(t, inference.EventReloaded, ev.Type)
	assert.Equal(t, uint64(1), ev.Version)
	assert.Equal(t, inference.StatusHealthy, ev.Health.Status)
}

func TestEventHub_RejectsForeignOrigin(t *testing.T) {
	hub := NewEventHub([]string{"http://localhost:3000"}, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := httptest.NewServer(hub)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": []string{"http://evil.example"}})

	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
