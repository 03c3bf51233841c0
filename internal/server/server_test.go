package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/conneroisu/demoapp/internal/config"
	"github.com/conneroisu/demoapp/internal/livereload"
)

func TestNewRequiresConfig(t *testing.T) {
	_, err := New(nil, Deps{}, nil)
	require.Error(t, err)
}

func TestNewWithoutLiveReload(t *testing.T) {
	s := newTestServer(t, fixture{})

	assert.Nil(t, s.Hub())
	assert.False(t, s.base.LiveReload)

	rec := get(t, s, LiveReloadPath)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotContains(t, get(t, s, "/kitchen-sink").Body.String(), "WebSocket")
}

func TestLiveReloadClientInjected(t *testing.T) {
	s := newTestServer(t, fixture{}, func(c *config.Config) { c.Development.LiveReload = true })
	require.NotNil(t, s.Hub())

	body := get(t, s, "/kitchen-sink").Body.String()
	assert.Contains(t, body, LiveReloadPath)
	assert.Less(t, strings.Index(body, LiveReloadPath), strings.LastIndex(body, "</body>"))
}

func TestBaseOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Site.Title = "Demo"
	cfg.Site.Version = "4.2.0"
	cfg.Server.BasePath = "/demo/"
	cfg.Security.CSP = false

	o := baseOptions(cfg, true)
	assert.Equal(t, "layout", o.Layout)
	assert.Equal(t, "Demo", o.Title)
	assert.Equal(t, "4.2.0", o.Version)
	assert.Equal(t, "/demo/", o.BasePath)
	assert.False(t, o.CSP)
	assert.True(t, o.LiveReload)
}

func TestSecurityHeaders(t *testing.T) {
	s := newTestServer(t, fixture{})

	rec := get(t, s, "/kitchen-sink")
	assert.Equal(t, "SAMEORIGIN", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", rec.Header().Get("Referrer-Policy"))
}

func TestBuildCSPHeader(t *testing.T) {
	csp := &CSPConfig{
		DefaultSrc: []string{"'self'"},
		ScriptSrc:  []string{"'self'"},
		ObjectSrc:  []string{"'none'"},
	}

	header := buildCSPHeader(csp, "abc")
	assert.Contains(t, header, "default-src 'self'")
	assert.Contains(t, header, "script-src 'self' 'nonce-abc'")
	assert.Contains(t, header, "object-src 'none'")
	assert.Equal(t, []string{"'self'"}, csp.ScriptSrc, "config is not modified")
}

func TestNewNonce(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		n, err := newNonce()
		require.NoError(t, err)
		require.Len(t, n, 24)
		require.False(t, seen[n])
		seen[n] = true
	}
}

func TestStartServesUntilCancelled(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	s := newTestServer(t, fixture{}, func(c *config.Config) {
		c.Server.Host = "127.0.0.1"
		c.Server.Port = port
		c.Development.LiveReload = true
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	base := "http://" + s.config.Addr()
	client := &http.Client{Timeout: time.Second}
	require.Eventually(t, func() bool {
		resp, err := client.Get(base + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)
	client.CloseIdleConnections()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}

	assert.NoError(t, s.Shutdown(context.Background()), "shutdown is idempotent")
}

func TestReloadNotifiesBrowsers(t *testing.T) {
	s := newTestServer(t, fixture{}, func(c *config.Config) { c.Development.LiveReload = true })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	go func() { _ = s.Hub().Run(runCtx) }()

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + LiveReloadPath
	conn, _, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{
		HTTPHeader: http.Header{"Origin": []string{srv.URL}},
	})
	require.NoError(t, err)
	defer conn.CloseNow()

	require.Eventually(t, func() bool { return s.Hub().ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	s.Reload(ctx, "views/kitchen-sink.html")

	_, data, err := conn.Read(ctx)
	require.NoError(t, err)

	var msg livereload.Message
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, livereload.MessageTypeFullReload, msg.Type)
	assert.Equal(t, []string{"views/kitchen-sink.html"}, msg.Paths)

	metrics := get(t, s, "/metrics").Body.String()
	assert.Contains(t, metrics, "demoapp_reloads_total 1")
}
