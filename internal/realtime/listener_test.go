package realtime

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestListener(t *testing.T, origins []string) (*Listener, *httptest.Server) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	l := NewListener(origins, log)
	srv := httptest.NewServer(l)
	t.Cleanup(srv.Close)
	return l, srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/any/path"
}

func TestListenerTracksConnections(t *testing.T) {
	l, srv := newTestListener(t, []string{"*"})

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Sec-WebSocket-Protocol"))

	require.Eventually(t, func() bool { return l.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	// messages are accepted and ignored
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("hello")))

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	conn.Close()

	require.Eventually(t, func() bool { return l.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestListenerRejectsDisallowedOrigin(t *testing.T) {
	l, srv := newTestListener(t, []string{"http://allowed.test"})

	header := http.Header{}
	header.Set("Origin", "http://evil.test")
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv), header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	header.Set("Origin", "HTTP://Allowed.test")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), header)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return l.Count() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestListenerShutdownClosesConnections(t *testing.T) {
	l, srv := newTestListener(t, []string{"*"})

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return l.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, l.Shutdown(2*time.Second))
	assert.Equal(t, 0, l.Count())

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
}

func TestIsUpgrade(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	assert.False(t, IsUpgrade(req))

	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	assert.True(t, IsUpgrade(req))
}
