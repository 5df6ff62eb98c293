// Package realtime accepts persistent WebSocket connections. Connections are
// tracked and logged; no messages are exchanged yet.
package realtime

import (
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	writeWait  = 10 * time.Second
	readLimit  = 4096
)

// Listener upgrades requests and keeps the set of open connections
type Listener struct {
	upgrader websocket.Upgrader
	log      *logrus.Logger

	mu    sync.RWMutex
	conns map[string]*websocket.Conn
	wg    sync.WaitGroup
}

// NewListener creates a listener accepting the given origins. "*" allows all.
func NewListener(allowedOrigins []string, log *logrus.Logger) *Listener {
	l := &Listener{
		log:   log,
		conns: make(map[string]*websocket.Conn),
	}
	l.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins, log),
	}
	return l
}

// ServeHTTP upgrades the request and starts the connection pumps
func (l *Listener) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		l.log.Warnf("WebSocket upgrade failed for %s: %v", r.RemoteAddr, err)
		return
	}
	conn.SetReadLimit(readLimit)

	id := uuid.NewString()
	l.mu.Lock()
	l.conns[id] = conn
	count := len(l.conns)
	l.mu.Unlock()

	l.log.WithFields(logrus.Fields{"conn_id": id, "remote": r.RemoteAddr, "open": count}).Info("Client connected")

	done := make(chan struct{})
	l.wg.Add(2)
	go func() {
		defer l.wg.Done()
		l.readPump(id, conn, done)
	}()
	go func() {
		defer l.wg.Done()
		l.pingPump(id, conn, done)
	}()
}

// Count returns the number of open connections
func (l *Listener) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.conns)
}

// readPump discards incoming frames until the peer goes away
func (l *Listener) readPump(id string, conn *websocket.Conn, done chan struct{}) {
	defer func() {
		close(done)
		l.remove(id, conn)
	}()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.NextReader(); err != nil {
			if !isExpectedCloseError(err) {
				l.log.WithField("conn_id", id).Warnf("WebSocket read error: %v", err)
			}
			return
		}
	}
}

func (l *Listener) pingPump(id string, conn *websocket.Conn, done chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				l.log.WithField("conn_id", id).Debugf("Ping failed: %v", err)
				return
			}
		}
	}
}

func (l *Listener) remove(id string, conn *websocket.Conn) {
	l.mu.Lock()
	_, ok := l.conns[id]
	delete(l.conns, id)
	count := len(l.conns)
	l.mu.Unlock()

	conn.Close()
	if ok {
		l.log.WithFields(logrus.Fields{"conn_id": id, "open": count}).Info("Client disconnected")
	}
}

// Shutdown sends a close frame to every connection and waits for the pumps to
// finish, or until timeout.
func (l *Listener) Shutdown(timeout time.Duration) error {
	l.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(l.conns))
	for _, c := range l.conns {
		conns = append(conns, c)
	}
	l.mu.RUnlock()

	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for _, c := range conns {
		c.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		c.Close()
	}

	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		l.log.Infof("Closed %d WebSocket connections", len(conns))
		return nil
	case <-time.After(timeout):
		return errors.New("websocket shutdown timed out")
	}
}

// IsUpgrade reports whether r asks for a WebSocket upgrade
func IsUpgrade(r *http.Request) bool {
	return websocket.IsWebSocketUpgrade(r)
}

func originChecker(allowed []string, log *logrus.Logger) func(*http.Request) bool {
	allowAll := false
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			allowAll = true
			continue
		}
		if n, ok := normalizeOrigin(o); ok {
			set[n] = struct{}{}
		}
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if allowAll || origin == "" {
			return true
		}
		n, ok := normalizeOrigin(origin)
		if ok {
			if _, exists := set[n]; exists {
				return true
			}
		}
		log.Warnf("Blocked WebSocket connection from disallowed origin: %q", origin)
		return false
	}
}

func normalizeOrigin(origin string) (string, bool) {
	parsed, err := url.Parse(strings.TrimSpace(origin))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", false
	}
	return strings.ToLower(parsed.Scheme) + "://" + strings.ToLower(parsed.Host), true
}

// isExpectedCloseError matches errors seen when a peer or the server closes normally
func isExpectedCloseError(err error) bool {
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
		return true
	}
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		return true
	}
	return strings.Contains(err.Error(), "use of closed network connection")
}
