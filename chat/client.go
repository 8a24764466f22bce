package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/plus3/emotesky/config"
	"github.com/sirupsen/logrus"
)

// ErrClosed is returned when the server ends the session.
var ErrClosed = errors.New("chat connection closed")

const (
	writeWait = 10 * time.Second
	// Twitch pings about every five minutes.
	readWait = 6 * time.Minute
)

// Handler receives the emotes of one chat message. It is called from the
// listener goroutine and must not block for long.
type Handler func(emotes []Emote)

// Stats counts client activity.
type Stats struct {
	Connected bool
	Sessions  uint64
	Messages  uint64
	Batches   uint64
}

// Client listens to Twitch chat anonymously over WebSocket.
type Client struct {
	cfg      config.ChatConfig
	channels []string
	dialer   *websocket.Dialer
	log      *logrus.Entry

	connected atomic.Bool
	sessions  atomic.Uint64
	messages  atomic.Uint64
	batches   atomic.Uint64
}

func NewClient(cfg config.ChatConfig, channels []string, log *logrus.Entry) *Client {
	return &Client{
		cfg:      cfg,
		channels: append([]string(nil), channels...),
		dialer:   websocket.DefaultDialer,
		log:      log,
	}
}

func (c *Client) Stats() Stats {
	return Stats{
		Connected: c.connected.Load(),
		Sessions:  c.sessions.Load(),
		Messages:  c.messages.Load(),
		Batches:   c.batches.Load(),
	}
}

// Listen joins the configured channels and calls handle for every message
// that contains emotes. Connection failures are logged and retried with
// exponential backoff. Listen returns ctx.Err() once ctx is cancelled.
func (c *Client) Listen(ctx context.Context, handle Handler) error {
	backoff := NewBackoff(c.cfg.ReconnectMin, c.cfg.ReconnectMax)

	for {
		start := time.Now()
		err := c.session(ctx, handle)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		// a session that stayed up for a while resets the backoff
		if time.Since(start) > c.cfg.ReconnectMax {
			backoff.Reset()
		}

		wait := backoff.Next()
		c.log.WithError(err).WithField("retry", wait).Warn("Chat connection lost")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (c *Client) session(ctx context.Context, handle Handler) error {
	conn, _, err := c.dialer.DialContext(ctx, c.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("failed to dial chat server: %w", err)
	}
	defer conn.Close()

	c.connected.Store(true)
	defer c.connected.Store(false)
	c.sessions.Add(1)

	// unblock ReadMessage when ctx is cancelled
	stop := context.AfterFunc(ctx, func() {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "shutting down"),
			time.Now().Add(time.Second))
		conn.Close()
	})
	defer stop()

	if err := c.login(conn); err != nil {
		return err
	}
	c.log.WithField("channels", c.channels).Info("Connected to chat")

	for {
		conn.SetReadDeadline(time.Now().Add(readWait))
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return ErrClosed
			}
			return fmt.Errorf("failed to read from chat: %w", err)
		}

		for _, line := range strings.Split(string(data), "\r\n") {
			if line == "" {
				continue
			}
			if err := c.handleLine(conn, line, handle); err != nil {
				return err
			}
		}
	}
}

func (c *Client) login(conn *websocket.Conn) error {
	lines := []string{
		"CAP REQ :twitch.tv/tags",
		"NICK " + c.cfg.Nick,
	}
	for _, ch := range c.channels {
		lines = append(lines, "JOIN #"+ch)
	}

	for _, line := range lines {
		if err := send(conn, line); err != nil {
			return fmt.Errorf("failed to log in to chat: %w", err)
		}
	}
	return nil
}

func (c *Client) handleLine(conn *websocket.Conn, line string, handle Handler) error {
	msg, err := ParseMessage(line)
	if err != nil {
		c.log.WithField("line", line).Debug("Ignoring malformed chat line")
		return nil
	}

	switch msg.Command {
	case "PING":
		return send(conn, "PONG :"+msg.Trailing())
	case "RECONNECT":
		return ErrClosed
	case "NOTICE":
		c.log.WithField("notice", msg.Trailing()).Warn("Chat server notice")
	case "JOIN":
		if strings.EqualFold(msg.Nick(), c.cfg.Nick) {
			c.log.WithField("channel", msg.Channel()).Debug("Joined channel")
		}
	case "PRIVMSG":
		c.messages.Add(1)
		emotes, err := ParseEmotes(msg.Tags["emotes"], msg.Trailing())
		if err != nil {
			c.log.WithError(err).Debug("Ignoring message with bad emotes tag")
			return nil
		}
		emotes = Limit(emotes, c.cfg.MaxPerMessage, c.cfg.MaxDuplicates)
		if len(emotes) > 0 {
			c.batches.Add(1)
			handle(emotes)
		}
	}
	return nil
}

func send(conn *websocket.Conn, line string) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, []byte(line+"\r\n"))
}

// Backoff produces exponentially growing waits between min and max.
type Backoff struct {
	min  time.Duration
	max  time.Duration
	next time.Duration
}

func NewBackoff(initial, limit time.Duration) *Backoff {
	return &Backoff{min: initial, max: limit, next: initial}
}

// Next returns the current wait and doubles it for the next call.
func (b *Backoff) Next() time.Duration {
	wait := b.next
	b.next = min(b.next*2, b.max)
	return wait
}

func (b *Backoff) Reset() {
	b.next = b.min
}
