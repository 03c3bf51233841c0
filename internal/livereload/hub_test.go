package livereload

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func startHub(t *testing.T, config HubConfig) (*Hub, *httptest.Server, func()) {
	t.Helper()

	hub := NewHub(config, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = hub.Run(ctx)
	}()

	srv := httptest.NewServer(hub)
	stop := func() {
		cancel()
		<-done
		srv.Close()
	}
	return hub, srv, stop
}

func dial(ctx context.Context, t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), &websocket.DialOptions{
		HTTPHeader: http.Header{"Origin": []string{srv.URL}},
	})
	require.NoError(t, err)
	return conn
}

func TestHubBroadcastsReload(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	hub, srv, stop := startHub(t, HubConfig{})
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dial(ctx, t, srv)
	defer conn.CloseNow()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.Reload("components/button/example-index.html")

	typ, data, err := conn.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, websocket.MessageText, typ)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, MessageTypeFullReload, msg.Type)
	assert.Equal(t, []string{"components/button/example-index.html"}, msg.Paths)
	assert.False(t, msg.Timestamp.IsZero())

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, ""))
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestHubShutdownDisconnectsClients(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	hub, srv, stop := startHub(t, HubConfig{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dial(ctx, t, srv)
	defer conn.CloseNow()
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	readErr := make(chan error, 1)
	go func() {
		_, _, err := conn.Read(ctx)
		readErr <- err
	}()

	stop()

	assert.Error(t, <-readErr)
	assert.Zero(t, hub.ClientCount())

	// Broadcasting after shutdown must not block.
	hub.Reload()
}

func TestHubClosesConnectionsAfterShutdown(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	hub := NewHub(HubConfig{}, nil)
	runCtx, stopRun := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = hub.Run(runCtx)
	}()
	stopRun()
	<-done

	srv := httptest.NewServer(hub)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dial(ctx, t, srv)
	defer conn.CloseNow()

	_, _, err := conn.Read(ctx)
	require.Error(t, err)
	assert.Equal(t, websocket.StatusGoingAway, websocket.CloseStatus(err))
	assert.Zero(t, hub.ClientCount())
}

func TestHubRejectsForeignOrigins(t *testing.T) {
	_, srv, stop := startHub(t, HubConfig{})
	defer stop()

	tests := []struct {
		name   string
		origin string
	}{
		{"missing", ""},
		{"other host", "http://evil.example"},
		{"bad scheme", "file://" + strings.TrimPrefix(srv.URL, "http://")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
			require.NoError(t, err)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		})
	}
}

func TestCheckOriginAllowedList(t *testing.T) {
	hub := NewHub(HubConfig{AllowedOrigins: []string{"localhost:4000"}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/__livereload", nil)

	req.Header.Set("Origin", "http://localhost:4000")
	host, ok := hub.checkOrigin(req)
	assert.True(t, ok)
	assert.Equal(t, "localhost:4000", host)

	req.Header.Set("Origin", "http://127.0.0.1:4000")
	_, ok = hub.checkOrigin(req)
	assert.False(t, ok, "httptest request host is example.com")

	req.Host = "127.0.0.1:4000"
	_, ok = hub.checkOrigin(req)
	assert.True(t, ok)
}
