package kuma

import (
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Client is a Session backed by Uptime Kuma's Socket.IO API (engine.io v4
// over a websocket). The server acknowledges each emitted call and pushes
// its monitor and notification state after login; one reader goroutine
// dispatches acks, pushed state, and protocol pings. Everything above the
// Session interface stays strictly sequential.
type Client struct {
	cfg    Config
	logger *log.Logger
	conn   *websocket.Conn

	writeMu sync.Mutex

	ackMu   sync.Mutex
	nextAck int
	acks    map[int]chan []json.RawMessage

	stateMu            sync.Mutex
	monitors           map[int]MonitorInfo
	notifications      []NotificationInfo
	monitorsReady      chan struct{}
	notificationsReady chan struct{}
	monitorsOnce       sync.Once
	notificationsOnce  sync.Once

	closed    chan struct{}
	closeOnce sync.Once
}

var _ Session = (*Client)(nil)

// Dial connects to the server, completes the Socket.IO handshake, and logs
// in with the configured credentials.
func Dial(cfg Config, logger *log.Logger) (*Client, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = log.Default()
	}

	endpoint, err := socketURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	dialer := websocket.Dialer{HandshakeTimeout: cfg.Timeout}
	conn, _, err := dialer.Dial(endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.URL, err)
	}

	c := &Client{
		cfg:                cfg,
		logger:             logger,
		conn:               conn,
		acks:               make(map[int]chan []json.RawMessage),
		monitors:           make(map[int]MonitorInfo),
		monitorsReady:      make(chan struct{}),
		notificationsReady: make(chan struct{}),
		closed:             make(chan struct{}),
	}

	if err := c.handshake(); err != nil {
		conn.Close()
		return nil, err
	}

	go c.readLoop()

	if err := c.login(); err != nil {
		c.Disconnect()
		return nil, err
	}

	return c, nil
}

// socketURL converts the configured server URL into the engine.io websocket
// endpoint.
func socketURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid server URL %q: %w", raw, err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("invalid server URL %q: unsupported scheme %q", raw, u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/socket.io/"
	u.RawQuery = "EIO=4&transport=websocket"
	return u.String(), nil
}

// handshake reads the engine.io open packet and joins the default Socket.IO
// namespace. Runs before the read loop starts, so it reads synchronously.
func (c *Client) handshake() error {
	deadline := time.Now().Add(c.cfg.Timeout)
	c.conn.SetReadDeadline(deadline)

	_, open, err := c.conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("handshake failed: %w", err)
	}
	if len(open) == 0 || open[0] != '0' {
		return fmt.Errorf("handshake failed: unexpected open packet %q", string(open))
	}

	if err := c.write("40"); err != nil {
		return fmt.Errorf("handshake failed: %w", err)
	}

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("handshake failed: %w", err)
		}
		s := string(msg)
		if s == "2" {
			if err := c.write("3"); err != nil {
				return fmt.Errorf("handshake failed: %w", err)
			}
			continue
		}
		if strings.HasPrefix(s, "40") {
			c.conn.SetReadDeadline(time.Time{})
			return nil
		}
		if strings.HasPrefix(s, "44") {
			return fmt.Errorf("handshake failed: namespace refused: %s", s[2:])
		}
	}
}

func (c *Client) login() error {
	if _, err := c.emit("login", map[string]interface{}{
		"username": c.cfg.Username,
		"password": c.cfg.Password,
		"token":    "",
	}); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	return nil
}

// write sends one engine.io text frame under the write lock.
func (c *Client) write(frame string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(c.cfg.Timeout))
	if err := c.conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		return fmt.Errorf("%w: %v", ErrBadChannel, err)
	}
	return nil
}

// emit sends an event with an ack id and waits for the server's ack. The
// first ack argument is decoded and checked for an ok=false rejection.
func (c *Client) emit(event string, args ...interface{}) (interface{}, error) {
	select {
	case <-c.closed:
		return nil, fmt.Errorf("%w: %s on closed session", ErrBadChannel, event)
	default:
	}

	packet := append([]interface{}{event}, args...)
	body, err := json.Marshal(packet)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s call: %w", event, err)
	}

	c.ackMu.Lock()
	c.nextAck++
	id := c.nextAck
	ch := make(chan []json.RawMessage, 1)
	c.acks[id] = ch
	c.ackMu.Unlock()

	defer func() {
		c.ackMu.Lock()
		delete(c.acks, id)
		c.ackMu.Unlock()
	}()

	if err := c.write("42" + strconv.Itoa(id) + string(body)); err != nil {
		return nil, err
	}

	select {
	case ackArgs := <-ch:
		return decodeAck(event, ackArgs)
	case <-time.After(c.cfg.Timeout):
		return nil, fmt.Errorf("%w: %s", ErrAckTimeout, event)
	case <-c.closed:
		return nil, fmt.Errorf("%w: connection lost during %s", ErrBadChannel, event)
	}
}

// decodeAck unpacks the first ack argument and converts an ok=false payload
// into a ServerError.
func decodeAck(event string, args []json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		return nil, nil
	}
	var res interface{}
	if err := json.Unmarshal(args[0], &res); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", event, err)
	}
	if m, ok := res.(map[string]interface{}); ok {
		if okv, present := m["ok"]; present && !truthyValue(okv) {
			msg, _ := m["msg"].(string)
			return res, &ServerError{Op: event, Msg: msg}
		}
	}
	return res, nil
}

func truthyValue(v interface{}) bool {
	switch x := v.(type) {
	case bool:
		return x
	case float64:
		return x != 0
	}
	return false
}

func (c *Client) readLoop() {
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			c.shutdown()
			return
		}
		c.handleFrame(string(msg))
	}
}

func (c *Client) handleFrame(s string) {
	switch {
	case s == "2": // engine.io ping
		_ = c.write("3")
	case s == "41": // namespace disconnect
		c.shutdown()
	case strings.HasPrefix(s, "43"): // ack for one of our calls
		id, args, err := parsePacket(s[2:])
		if err != nil {
			c.logger.Printf("[WARN] Dropping malformed ack frame: %v", err)
			return
		}
		c.ackMu.Lock()
		ch := c.acks[id]
		c.ackMu.Unlock()
		if ch != nil {
			ch <- args
		}
	case strings.HasPrefix(s, "42"): // server-initiated event
		_, args, err := parsePacket(s[2:])
		if err != nil || len(args) == 0 {
			return
		}
		var event string
		if json.Unmarshal(args[0], &event) != nil {
			return
		}
		c.handleEvent(event, args[1:])
	}
}

// parsePacket splits an optional ack id from the JSON array that follows it.
func parsePacket(s string) (int, []json.RawMessage, error) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	id := 0
	if i > 0 {
		id, _ = strconv.Atoi(s[:i])
	}
	var args []json.RawMessage
	if err := json.Unmarshal([]byte(s[i:]), &args); err != nil {
		return 0, nil, fmt.Errorf("bad packet payload: %w", err)
	}
	return id, args, nil
}

// handleEvent keeps the pushed server state the restore phases read. The
// monitor list arrives keyed by id, the notification list as an array.
func (c *Client) handleEvent(event string, args []json.RawMessage) {
	switch event {
	case "monitorList":
		if len(args) == 0 {
			return
		}
		var list map[string]MonitorInfo
		if err := json.Unmarshal(args[0], &list); err != nil {
			c.logger.Printf("[WARN] Dropping malformed monitorList event: %v", err)
			return
		}
		c.stateMu.Lock()
		c.monitors = make(map[int]MonitorInfo, len(list))
		for _, m := range list {
			c.monitors[m.ID] = m
		}
		c.stateMu.Unlock()
		c.monitorsOnce.Do(func() { close(c.monitorsReady) })
	case "notificationList":
		if len(args) == 0 {
			return
		}
		var list []NotificationInfo
		if err := json.Unmarshal(args[0], &list); err != nil {
			c.logger.Printf("[WARN] Dropping malformed notificationList event: %v", err)
			return
		}
		c.stateMu.Lock()
		c.notifications = list
		c.stateMu.Unlock()
		c.notificationsOnce.Do(func() { close(c.notificationsReady) })
	}
}

// waitReady blocks until the server has pushed the named state at least once.
func (c *Client) waitReady(ready <-chan struct{}, what string) error {
	select {
	case <-ready:
		return nil
	case <-time.After(c.cfg.Timeout):
		return fmt.Errorf("%w: waiting for %s", ErrAckTimeout, what)
	case <-c.closed:
		return fmt.Errorf("%w: waiting for %s", ErrBadChannel, what)
	}
}

// Monitors returns the server's monitors as of the latest pushed state,
// sorted by id for deterministic iteration.
func (c *Client) Monitors() ([]MonitorInfo, error) {
	if err := c.waitReady(c.monitorsReady, "monitor list"); err != nil {
		return nil, err
	}
	c.stateMu.Lock()
	monitors := make([]MonitorInfo, 0, len(c.monitors))
	for _, m := range c.monitors {
		monitors = append(monitors, m)
	}
	c.stateMu.Unlock()
	sort.Slice(monitors, func(i, j int) bool { return monitors[i].ID < monitors[j].ID })
	return monitors, nil
}

// Notifications returns the server's notification channels as of the latest
// pushed state.
func (c *Client) Notifications() ([]NotificationInfo, error) {
	if err := c.waitReady(c.notificationsReady, "notification list"); err != nil {
		return nil, err
	}
	c.stateMu.Lock()
	notifications := make([]NotificationInfo, len(c.notifications))
	copy(notifications, c.notifications)
	c.stateMu.Unlock()
	return notifications, nil
}

func (c *Client) AddMonitor(payload map[string]interface{}) (interface{}, error) {
	return c.emit("add", payload)
}

func (c *Client) AddNotification(payload map[string]interface{}) (interface{}, error) {
	// The second argument selects an existing channel to edit; nil creates.
	return c.emit("addNotification", payload, nil)
}

func (c *Client) PauseMonitor(id int) error {
	_, err := c.emit("pauseMonitor", id)
	return err
}

func (c *Client) shutdown() {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.conn.Close()
	})
}

// Disconnect closes the session. Safe to call more than once; errors from
// the close handshake are deliberately swallowed, a session being torn down
// has nothing left to report.
func (c *Client) Disconnect() error {
	c.writeMu.Lock()
	c.conn.SetWriteDeadline(time.Now().Add(time.Second))
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()
	c.shutdown()
	return nil
}
